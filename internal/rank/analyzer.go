package rank

import (
	"context"
	"fmt"
	"html"
	"strings"

	"shopkeywords-engine/internal/domain"
	"shopkeywords-engine/internal/logger"
	"shopkeywords-engine/internal/nlp"
)

// Table maps a candidate term (single noun or phrase) to its accumulated weight.
type Table map[string]float64

// Weights are the per-occurrence increments. A term found in the listing
// title gets the matching Title* weight, anything else gets Base.
type Weights struct {
	TitleNoun   float64
	TitleProper float64
	TitlePhrase float64
	Base        float64
}

var DefaultWeights = Weights{
	TitleNoun:   100,
	TitleProper: 50,
	TitlePhrase: 300,
	Base:        1,
}

type Options struct {
	Weights Weights
	Banned  BannedSet
	Grammar *nlp.Grammar
}

// Analyzer accumulates keyword weights over listing titles and descriptions.
// Listing tags are not scored.
type Analyzer struct {
	tagger  nlp.Tagger
	chunker *nlp.Chunker
	weights Weights
	banned  BannedSet
}

// NewAnalyzer fills zero-valued options with DefaultWeights, DefaultBanned
// and nlp.KeywordGrammar.
func NewAnalyzer(tagger nlp.Tagger, opts Options) *Analyzer {
	if opts.Weights == (Weights{}) {
		opts.Weights = DefaultWeights
	}
	if opts.Banned.m == nil {
		opts.Banned = DefaultBanned
	}
	if opts.Grammar == nil {
		opts.Grammar = nlp.MustParseGrammar(nlp.KeywordGrammar)
	}
	return &Analyzer{
		tagger:  tagger,
		chunker: nlp.NewChunker(opts.Grammar),
		weights: opts.Weights,
		banned:  opts.Banned,
	}
}

// Analyze scores every listing into a fresh Table. A listing is merged only
// once it has been scored completely; a listing that fails is logged and
// skipped. On cancellation the table built so far is returned with ctx.Err().
func (a *Analyzer) Analyze(ctx context.Context, listings []domain.Listing) (Table, error) {
	table := make(Table)
	failed := 0

	for i, l := range listings {
		if err := ctx.Err(); err != nil {
			logger.Warn("[rank] canceled after %d/%d listings", i, len(listings))
			return table, err
		}

		delta, err := a.scoreListing(l)
		if err != nil {
			failed++
			logger.Warn("[rank] listing=%d shop=%q skipped: %v", l.ID, l.ShopName, err)
			continue
		}
		for term, w := range delta {
			table[term] += w
		}
	}

	logger.Debug("[rank] listings=%d failed=%d terms=%d", len(listings), failed, len(table))
	return table, nil
}

func (a *Analyzer) scoreListing(l domain.Listing) (delta Table, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			delta, err = nil, fmt.Errorf("panic while scoring: %v", rec)
		}
	}()

	title := a.tagger.TagFlat(html.UnescapeString(l.Title))
	desc := a.tagger.Tag(html.UnescapeString(l.Description))

	titleWords := make(map[string]struct{}, len(title))
	for _, w := range title {
		titleWords[strings.ToLower(w.Word)] = struct{}{}
	}
	titleChunks := make(map[string]struct{})
	for _, c := range a.chunker.Chunk([][]nlp.TaggedWord{title}) {
		titleChunks[c] = struct{}{}
	}

	delta = make(Table)
	for _, sent := range desc {
		for _, w := range sent {
			switch w.Tag {
			case "NN":
				a.add(delta, nounTerm(w.Word), titleWords, a.weights.TitleNoun)
			case "NNP":
				a.add(delta, nounTerm(w.Word), titleWords, a.weights.TitleProper)
			}
		}
	}
	for _, phrase := range a.chunker.Chunk(desc) {
		a.add(delta, phrase, titleChunks, a.weights.TitlePhrase)
	}
	return delta, nil
}

func (a *Analyzer) add(delta Table, term string, title map[string]struct{}, boost float64) {
	if term == "" || strings.Contains(term, "etsy.com") || a.banned.Contains(term) {
		return
	}
	if _, ok := title[term]; ok {
		delta[term] += boost
		return
	}
	delta[term] += a.weights.Base
}

func nounTerm(word string) string {
	return strings.ReplaceAll(strings.ToLower(word), "*", "")
}
