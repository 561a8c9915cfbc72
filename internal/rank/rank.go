package rank

import (
	"context"
	"sort"

	"shopkeywords-engine/internal/domain"
)

// DefaultMinScore is the exclusive lower bound for ranked terms.
const DefaultMinScore = 50.0

type Result struct {
	Term  string  `json:"term"`
	Score float64 `json:"score"`
}

// Rank keeps terms scoring strictly above minScore, ordered by score and
// then by term, both descending.
func Rank(t Table, minScore float64) []Result {
	out := make([]Result, 0, len(t))
	for term, score := range t {
		if score > minScore {
			out = append(out, Result{Term: term, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Term > out[j].Term
	})
	return out
}

// Top returns at most n results; n <= 0 returns all of them.
func Top(results []Result, n int) []Result {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// Keywords runs Analyze and Rank in one step.
func (a *Analyzer) Keywords(ctx context.Context, listings []domain.Listing, minScore float64) ([]Result, error) {
	table, err := a.Analyze(ctx, listings)
	if err != nil {
		return nil, err
	}
	return Rank(table, minScore), nil
}
