package httpapi

import (
	"sync/atomic"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/fetch"
	"shopkeywords-engine/internal/nlp"
	"shopkeywords-engine/internal/store"
)

type Deps struct {
	Runner *fetch.Runner
	Tagger nlp.Tagger

	// Cache may be nil when caching is disabled.
	Cache *store.DB

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
