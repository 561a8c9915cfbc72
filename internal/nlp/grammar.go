package nlp

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// KeywordGrammar groups adjectives and nouns, optionally joined to a
// preceding adjective/noun group by one preposition.
const KeywordGrammar = `(<JJ>* <NN.*>+ <IN>)? <JJ>* <NN.*>+`

// tagChar is what "." turns into inside a <...> tag pattern.
const tagChar = `[^{}<>]`

// Grammar is a compiled tag pattern. Each <...> unit matches exactly one
// token by its tag; everything between units is regular-expression syntax
// over tokens. Matching is leftmost-first and non-overlapping.
type Grammar struct {
	re *regexp.Regexp
}

func ParseGrammar(pattern string) (*Grammar, error) {
	src := strings.Join(strings.Fields(pattern), "")
	if src == "" {
		return nil, errors.New("nlp: empty grammar")
	}

	var b strings.Builder
	inTag := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			b.WriteByte(c)
			b.WriteByte(src[i+1])
			i++
		case c == '<':
			if inTag {
				return nil, fmt.Errorf("nlp: nested '<' at offset %d in %q", i, pattern)
			}
			inTag = true
			b.WriteString("(?:<(?:")
		case c == '>':
			if !inTag {
				return nil, fmt.Errorf("nlp: unbalanced '>' at offset %d in %q", i, pattern)
			}
			inTag = false
			b.WriteString(")>)")
		case c == '.' && inTag:
			b.WriteString(tagChar)
		case inTag && (c == '{' || c == '}'):
			return nil, fmt.Errorf("nlp: brace inside tag at offset %d in %q", i, pattern)
		default:
			b.WriteByte(c)
		}
	}
	if inTag {
		return nil, fmt.Errorf("nlp: unterminated tag in %q", pattern)
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("nlp: compile grammar %q: %w", pattern, err)
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("nlp: grammar %q matches an empty token run", pattern)
	}
	return &Grammar{re: re}, nil
}

func MustParseGrammar(pattern string) *Grammar {
	g, err := ParseGrammar(pattern)
	if err != nil {
		panic(err)
	}
	return g
}

// Inside reports, per token, whether it is covered by a grammar match.
func (g *Grammar) Inside(words []TaggedWord) []bool {
	inside := make([]bool, len(words))
	if len(words) == 0 {
		return inside
	}

	var b strings.Builder
	starts := make([]int, len(words))
	for i, w := range words {
		starts[i] = b.Len()
		b.WriteByte('<')
		b.WriteString(cleanTag(w.Tag))
		b.WriteByte('>')
	}

	for _, m := range g.re.FindAllStringIndex(b.String(), -1) {
		i := sort.SearchInts(starts, m[0])
		for ; i < len(starts) && starts[i] < m[1]; i++ {
			inside[i] = true
		}
	}
	return inside
}

// cleanTag drops characters that delimit tags in the encoded sequence.
func cleanTag(tag string) string {
	if !strings.ContainsAny(tag, "<>{}") {
		return tag
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '{', '}':
			return -1
		}
		return r
	}, tag)
}
