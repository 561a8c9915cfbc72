package nlp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(ws []TaggedWord) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Word
	}
	return out
}

func newTestTagger(t *testing.T) *ProseTagger {
	t.Helper()
	tg, err := NewProseTagger()
	require.NoError(t, err)
	return tg
}

func TestProseTagger_TagFlat(t *testing.T) {
	tg := newTestTagger(t)

	tagged := tg.TagFlat("Handmade ceramic mug")
	require.Len(t, tagged, 3)
	assert.Equal(t, []string{"Handmade", "ceramic", "mug"}, words(tagged))
	for _, w := range tagged {
		assert.NotEmpty(t, w.Tag, "word %q has no tag", w.Word)
	}
}

func TestProseTagger_TagSplitsSentences(t *testing.T) {
	tg := newTestTagger(t)

	sents := tg.Tag("This blue wool scarf is soft and warm. Perfect scarf for winter.")
	require.Len(t, sents, 2)
	assert.Contains(t, words(sents[0]), "scarf")
	assert.Contains(t, words(sents[1]), "winter")
}

func TestProseTagger_EmptyInput(t *testing.T) {
	tg := newTestTagger(t)

	assert.Empty(t, tg.Tag(""))
	assert.Empty(t, tg.Tag("   \n\t"))
	assert.Empty(t, tg.TagFlat(""))
}

func TestProseTagger_SatisfiesTagger(t *testing.T) {
	var _ Tagger = newTestTagger(t)
}

func TestProseTagger_TagReusesSegmenter(t *testing.T) {
	tg := newTestTagger(t)
	require.NotNil(t, tg.segmenter)
	seg := tg.segmenter

	for i := 0; i < 200; i++ {
		sents := tg.Tag("A ceramic mug. Handmade in Portland.")
		require.Len(t, sents, 2)
	}
	assert.Same(t, seg, tg.segmenter)
}

func TestProseTagger_ConcurrentTag(t *testing.T) {
	tg := newTestTagger(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, tg.Tag("Soft wool scarf. Perfect for winter."), 2)
		}()
	}
	wg.Wait()
}
