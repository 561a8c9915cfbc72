package nlp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// tagged builds a sentence from "word/TAG" pairs.
func tagged(s string) []TaggedWord {
	var out []TaggedWord
	for _, f := range strings.Fields(s) {
		i := strings.LastIndexByte(f, '/')
		out = append(out, TaggedWord{Word: f[:i], Tag: f[i+1:]})
	}
	return out
}

func TestParseGrammar_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":        "   ",
		"nested":       "<JJ<NN>>",
		"unbalanced":   "JJ>",
		"unterminated": "<JJ",
		"brace in tag": "<J{J}>",
		"bad regexp":   "(<JJ>",
		"empty match":  "<JJ>*",
	}
	for name, pattern := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseGrammar(pattern)
			assert.Error(t, err)
		})
	}
}

func TestMustParseGrammar_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseGrammar("<JJ") })
	assert.NotPanics(t, func() { MustParseGrammar(KeywordGrammar) })
}

func TestGrammar_Inside(t *testing.T) {
	g := MustParseGrammar(KeywordGrammar)

	tests := []struct {
		name string
		in   string
		want []bool
	}{
		{
			name: "adjectives then nouns",
			in:   "a/DT soft/JJ wool/NN scarf/NN ./.",
			want: []bool{false, true, true, true, false},
		},
		{
			name: "preposition joins two groups",
			in:   "set/NN of/IN blue/JJ mugs/NNS",
			want: []bool{true, true, true, true},
		},
		{
			name: "dangling preposition is left out",
			in:   "mug/NN for/IN the/DT kitchen/NN",
			want: []bool{true, false, false, true},
		},
		{
			name: "adjective alone is not a chunk",
			in:   "very/RB warm/JJ",
			want: []bool{false, false},
		},
		{
			name: "comparative adjectives do not match JJ",
			in:   "warmer/JJR hat/NN",
			want: []bool{false, true},
		},
		{
			name: "proper nouns match NN.*",
			in:   "New/NNP York/NNP",
			want: []bool{true, true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Inside(tagged(tt.in)))
		})
	}
}

func TestGrammar_InsideIgnoresDelimiterCharsInTags(t *testing.T) {
	g := MustParseGrammar(`<NN>`)
	got := g.Inside([]TaggedWord{{Word: "x", Tag: "<N>N"}, {Word: "y", Tag: "NN"}})
	assert.Equal(t, []bool{true, true}, got)
}

func TestGrammar_InsideEmpty(t *testing.T) {
	g := MustParseGrammar(KeywordGrammar)
	assert.Empty(t, g.Inside(nil))
}
