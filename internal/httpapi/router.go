package httpapi

import "net/http"

// NewMux returns the raw mux; callers wrap it with Chain.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{}.Health,
	}))

	// Keywords
	kh := KeywordsHandler{Runner: d.Runner, Tagger: d.Tagger, CfgVal: d.CfgVal}
	mux.HandleFunc("/shops/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: kh.GetByPath, // expects /shops/{shop}/keywords
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Listing cache
	cah := CacheHandler{Cache: d.Cache, CfgVal: d.CfgVal}
	mux.HandleFunc("/cache/prune", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: cah.Prune,
	}))

	return mux
}

// NewHandler is NewMux wrapped in the standard middleware stack.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d), RequestID, AccessLog, Recover)
}
