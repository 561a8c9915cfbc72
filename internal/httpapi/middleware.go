package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"shopkeywords-engine/internal/logger"
)

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	logFieldsKey
)

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

const maxRequestIDLen = 64

// validRequestID accepts caller-supplied IDs that are safe to echo into a
// header and a space-separated log line.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}

func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// RequestID propagates a well-formed X-Request-ID or mints a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if !validRequestID(id) {
			id = newRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// logFields collects key=value pairs a handler attaches to its request's
// access log line (shop, listings, from_cache, ...).
type logFields struct {
	mu  sync.Mutex
	kvs []string
}

func (f *logFields) String() string {
	if f == nil {
		return ""
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.kvs) == 0 {
		return ""
	}
	return " " + strings.Join(f.kvs, " ")
}

// annotate adds key=val to the access log line of the request in ctx. It is
// a no-op outside AccessLog.
func annotate(ctx context.Context, key string, val any) {
	f, ok := ctx.Value(logFieldsKey).(*logFields)
	if !ok {
		return
	}
	var s string
	if str, isStr := val.(string); isStr {
		s = fmt.Sprintf("%s=%q", key, str)
	} else {
		s = fmt.Sprintf("%s=%v", key, val)
	}
	f.mu.Lock()
	f.kvs = append(f.kvs, s)
	f.mu.Unlock()
}

func fieldsFrom(ctx context.Context) *logFields {
	f, _ := ctx.Value(logFieldsKey).(*logFields)
	return f
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// Recover turns a handler panic into a 500, unless the handler already
// started its response.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("[http] msg=\"panic\" request_id=%s method=%s path=%s err=%v%s",
				RequestIDFrom(r.Context()), r.Method, r.URL.Path, rec, fieldsFrom(r.Context()))
			if sw, ok := w.(*statusWriter); ok && sw.status != 0 {
				return
			}
			WriteError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		fields := &logFields{}
		next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), logFieldsKey, fields)))

		logger.Info("[http] request_id=%s method=%s path=%s status=%d bytes=%d dur_ms=%d%s",
			RequestIDFrom(r.Context()), r.Method, r.URL.Path, sw.status, sw.bytes,
			time.Since(start).Milliseconds(), fields)
	})
}
