package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/fetch"
	"shopkeywords-engine/internal/fetch/etsy"
	"shopkeywords-engine/internal/nlp"
	"shopkeywords-engine/internal/rank"
)

type KeywordsHandler struct {
	Runner *fetch.Runner
	Tagger nlp.Tagger
	CfgVal *atomic.Value // stores config.Config
}

// GetByPath serves GET /shops/{shop}/keywords?top=N.
func (h KeywordsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.EscapedPath(), "/shops/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "keywords" {
		WriteError(w, r, http.StatusNotFound, "not_found", "expected /shops/{shop}/keywords")
		return
	}
	shop, err := url.PathUnescape(parts[0])
	shop = strings.TrimSpace(shop)
	if err != nil || shop == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid shop")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)

	top := cfg.Output.Top
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			WriteError(w, r, http.StatusBadRequest, "bad_request", "top must be a non-negative integer")
			return
		}
		top = n
	}

	annotate(r.Context(), "shop", shop)
	res := h.Runner.FetchShop(r.Context(), shop)
	if res.Err != nil {
		status, code := fetchErrorStatus(res.Err)
		annotate(r.Context(), "err_code", code)
		WriteError(w, r, status, code, res.Err.Error())
		return
	}

	an := rank.NewAnalyzer(h.Tagger, cfg.AnalyzerOptions())
	results, err := an.Keywords(r.Context(), res.Listings, cfg.Analysis.MinScore)
	if err != nil {
		WriteError(w, r, http.StatusServiceUnavailable, "canceled", err.Error())
		return
	}

	annotate(r.Context(), "listings", len(res.Listings))
	annotate(r.Context(), "from_cache", res.FromCache)
	annotate(r.Context(), "keywords", len(results))

	WriteJSON(w, http.StatusOK, KeywordsResponse{
		Shop:      shop,
		Listings:  len(res.Listings),
		FromCache: res.FromCache,
		Keywords:  rank.Top(results, top),
	})
}

func fetchErrorStatus(err error) (int, string) {
	var apiErr *etsy.APIError
	switch {
	case errors.Is(err, etsy.ErrShopNotFound):
		return http.StatusNotFound, "shop_not_found"
	case errors.As(err, &apiErr):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "upstream_timeout"
	default:
		return http.StatusBadGateway, "fetch_failed"
	}
}
