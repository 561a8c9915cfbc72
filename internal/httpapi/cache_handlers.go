package httpapi

import (
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/store"
)

type CacheHandler struct {
	Cache  *store.DB
	CfgVal *atomic.Value // stores config.Config
}

// Prune drops cached shops older than cache.ttl_minutes. Local callers only.
func (h CacheHandler) Prune(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		WriteError(w, r, http.StatusForbidden, "forbidden", "forbidden")
		return
	}

	if h.Cache == nil {
		WriteError(w, r, http.StatusConflict, "cache_disabled", "listing cache is disabled")
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	n, err := h.Cache.PruneBefore(r.Context(), time.Now().Add(-ttl))
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "prune_failed", err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": n})
}
