package nlp

import (
	"fmt"
	"strings"
	"sync"

	"shopkeywords-engine/internal/logger"

	"github.com/jdkato/prose/v2"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// TaggedWord is a token and its Penn Treebank part-of-speech tag.
type TaggedWord struct {
	Word string
	Tag  string
}

// Tagger splits text into tagged tokens. Implementations never fail:
// input that cannot be tagged yields no tokens.
type Tagger interface {
	// Tag segments text into sentences and tags each one.
	Tag(text string) [][]TaggedWord
	// TagFlat tags text as a single token sequence.
	TagFlat(text string) []TaggedWord
}

// ProseTagger is a Tagger backed by prose's English perceptron model and a
// Punkt sentence segmenter. Both are loaded once and shared by every call.
type ProseTagger struct {
	mu    sync.Mutex
	model *prose.Model

	segMu     sync.Mutex
	segmenter *sentences.DefaultSentenceTokenizer
}

func NewProseTagger() (*ProseTagger, error) {
	// prose has no exported constructor for its bundled model; build an
	// empty document and keep the model it loaded.
	doc, err := prose.NewDocument("",
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("load tagging model: %w", err)
	}
	seg, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	return &ProseTagger{model: doc.Model, segmenter: seg}, nil
}

func (t *ProseTagger) Tag(text string) (out [][]TaggedWord) {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("[nlp] sentence segmentation panicked: %v", rec)
			out = nil
		}
	}()

	for _, sent := range t.segment(text) {
		if words := t.TagFlat(sent.Text); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}

func (t *ProseTagger) segment(text string) []*sentences.Sentence {
	t.segMu.Lock()
	defer t.segMu.Unlock()
	return t.segmenter.Tokenize(text)
}

func (t *ProseTagger) TagFlat(text string) (out []TaggedWord) {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("[nlp] tagging panicked: %v", rec)
			out = nil
		}
	}()

	doc, err := prose.NewDocument(text,
		prose.UsingModel(t.model),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		logger.Warn("[nlp] tagging failed: %v", err)
		return nil
	}

	toks := doc.Tokens()
	out = make([]TaggedWord, 0, len(toks))
	for _, tok := range toks {
		if tok.Text == "" {
			continue
		}
		out = append(out, TaggedWord{Word: tok.Text, Tag: tok.Tag})
	}
	return out
}
