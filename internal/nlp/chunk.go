package nlp

import "strings"

// Chunker turns tagged sentences into lowercase phrases.
type Chunker struct {
	grammar *Grammar
}

func NewChunker(g *Grammar) *Chunker {
	return &Chunker{grammar: g}
}

// Chunk returns one phrase per run of contiguous tokens covered by the
// grammar, in text order. Adjacent matches form a single run; runs stop at
// sentence boundaries.
func (c *Chunker) Chunk(sentences [][]TaggedWord) []string {
	var out []string
	for _, sent := range sentences {
		inside := c.grammar.Inside(sent)

		var run []string
		flush := func() {
			if len(run) > 0 {
				out = append(out, strings.ToLower(strings.Join(run, " ")))
				run = run[:0]
			}
		}
		for i, w := range sent {
			if inside[i] {
				run = append(run, w.Word)
				continue
			}
			flush()
		}
		flush()
	}
	return out
}
