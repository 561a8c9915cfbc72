package httpapi

import "shopkeywords-engine/internal/rank"

type KeywordsResponse struct {
	Shop      string        `json:"shop"`
	Listings  int           `json:"listings"`
	FromCache bool          `json:"from_cache"`
	Keywords  []rank.Result `json:"keywords"`
}
