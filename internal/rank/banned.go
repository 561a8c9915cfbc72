package rank

import "strings"

// BannedSet is an immutable set of lowercase terms that never score.
type BannedSet struct {
	m map[string]struct{}
}

// DefaultBanned holds measurement units and storefront boilerplate.
var DefaultBanned = NewBannedSet(
	// units and measurements
	"in", "inch", "inches", "ft", "foot", "feet", "mm", "cm", "m", "meter",
	"meters", "yards", "length",
	// commerce boilerplate
	"please", "shipping", "information", "seller", "package", "price",
	"product", "time", "order", "quality", "value", "address", "feedback",
	"wash", "request", "production", "packages", "notification", "issue",
	"volume", "print", "shop", "tags", "description", "etsy", "store",
	"sales", "download", "https", "http", "instant download", "size",
)

func NewBannedSet(words ...string) BannedSet {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		m[w] = struct{}{}
	}
	return BannedSet{m: m}
}

// With returns a new set holding s and extra. s is not modified.
func (s BannedSet) With(extra ...string) BannedSet {
	words := make([]string, 0, len(s.m)+len(extra))
	for w := range s.m {
		words = append(words, w)
	}
	return NewBannedSet(append(words, extra...)...)
}

// Contains expects an already lowercased term.
func (s BannedSet) Contains(term string) bool {
	_, ok := s.m[term]
	return ok
}

func (s BannedSet) Len() int { return len(s.m) }
