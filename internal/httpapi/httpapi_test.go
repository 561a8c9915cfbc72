package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/domain"
	"shopkeywords-engine/internal/fetch"
	"shopkeywords-engine/internal/fetch/etsy"
	"shopkeywords-engine/internal/logger"
	"shopkeywords-engine/internal/nlp"
	"shopkeywords-engine/internal/store"
)

type wordTagger map[string]string

func (d wordTagger) TagFlat(text string) []nlp.TaggedWord {
	var out []nlp.TaggedWord
	for _, f := range strings.Fields(text) {
		w := strings.TrimRight(f, ".")
		tag, ok := d[strings.ToLower(w)]
		if !ok {
			tag = "DT"
		}
		out = append(out, nlp.TaggedWord{Word: w, Tag: tag})
	}
	return out
}

func (d wordTagger) Tag(text string) [][]nlp.TaggedWord {
	if words := d.TagFlat(text); len(words) > 0 {
		return [][]nlp.TaggedWord{words}
	}
	return nil
}

type stubSource map[string][]domain.Listing

func (s stubSource) Name() string { return "stub" }

func (s stubSource) FetchShop(_ context.Context, shop string) ([]domain.Listing, error) {
	switch shop {
	case "missing":
		return nil, etsy.ErrShopNotFound
	case "broken":
		return nil, &etsy.APIError{StatusCode: 403, Body: "forbidden"}
	case "panicky":
		panic("boom")
	}
	return s[shop], nil
}

func newTestServer(t *testing.T, cache *store.DB) (*httptest.Server, *atomic.Value, string) {
	t.Helper()

	mug := domain.Listing{Title: "Ceramic Mug", Description: "Ceramic mug."}
	src := stubSource{"clay": {mug, mug}}

	var cfgVal atomic.Value
	cfgVal.Store(config.Default())

	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	d := Deps{
		Runner:      &fetch.Runner{Source: src, Concurrency: 1},
		Tagger:      wordTagger{"ceramic": "JJ", "mug": "NN"},
		Cache:       cache,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
	}
	srv := httptest.NewServer(NewHandler(d))
	t.Cleanup(srv.Close)
	return srv, &cfgVal, cfgPath
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(v))
	}
	return res
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	var body map[string]any
	res := getJSON(t, srv.URL+"/health", &body)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestKeywords(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	var body KeywordsResponse
	res := getJSON(t, srv.URL+"/shops/clay/keywords", &body)
	require.Equal(t, http.StatusOK, res.StatusCode)

	assert.Equal(t, "clay", body.Shop)
	assert.Equal(t, 2, body.Listings)
	require.Len(t, body.Keywords, 2)
	assert.Equal(t, "ceramic mug", body.Keywords[0].Term)
	assert.Equal(t, 600.0, body.Keywords[0].Score)
	assert.Equal(t, "mug", body.Keywords[1].Term)
	assert.Equal(t, 200.0, body.Keywords[1].Score)

	res = getJSON(t, srv.URL+"/shops/clay/keywords?top=1", &body)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Len(t, body.Keywords, 1)
}

func TestKeywords_EmptyShopGivesEmptyList(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	res, err := http.Get(srv.URL + "/shops/nothing/keywords")
	require.NoError(t, err)
	defer res.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(res.Body).Decode(&raw))
	assert.Equal(t, "[]", string(raw["keywords"]))
}

func TestKeywords_Errors(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/shops/missing/keywords", http.StatusNotFound, "shop_not_found"},
		{"/shops/broken/keywords", http.StatusBadGateway, "upstream_error"},
		{"/shops/clay/keywords?top=-1", http.StatusBadRequest, "bad_request"},
		{"/shops/clay/listings", http.StatusNotFound, "not_found"},
		{"/shops/clay", http.StatusNotFound, "not_found"},
		{"/shops/panicky/keywords", http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			var body APIError
			res := getJSON(t, srv.URL+tc.path, &body)
			assert.Equal(t, tc.status, res.StatusCode)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotEmpty(t, body.Error.RequestID)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)

	res, err := http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestConfig_PutValidatesAndApplies(t *testing.T) {
	srv, cfgVal, cfgPath := newTestServer(t, nil)

	bad := config.Default()
	bad.App.Port = 0
	b, _ := json.Marshal(bad)
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/config", strings.NewReader(string(b)))
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.NoFileExists(t, cfgPath)

	good := config.Default()
	good.Analysis.MinScore = 250
	b, _ = json.Marshal(good)
	req, _ = http.NewRequest(http.MethodPut, srv.URL+"/config", strings.NewReader(string(b)))
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.FileExists(t, cfgPath)
	assert.Equal(t, 250.0, cfgVal.Load().(config.Config).Analysis.MinScore)

	// the new threshold applies to the next request
	var body KeywordsResponse
	getJSON(t, srv.URL+"/shops/clay/keywords", &body)
	require.Len(t, body.Keywords, 1)
	assert.Equal(t, "ceramic mug", body.Keywords[0].Term)

	var vr config.Validation
	res = getJSON(t, srv.URL+"/config/validate", &vr)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, vr.OK())
}

func TestCachePrune(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	res, err := http.Post(srv.URL+"/cache/prune", "application/json", nil)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusConflict, res.StatusCode)

	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()

	srv, _, _ = newTestServer(t, db)
	res, err = http.Post(srv.URL+"/cache/prune", "application/json", nil)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestFetchErrorStatus(t *testing.T) {
	status, code := fetchErrorStatus(context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, status)
	assert.Equal(t, "upstream_timeout", code)

	status, _ = fetchErrorStatus(errors.New("dial tcp: refused"))
	assert.Equal(t, http.StatusBadGateway, status)
}

// logBuf is written by server goroutines and read by the test.
type logBuf struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuf) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuf) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *logBuf) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

func captureLog(t *testing.T) *logBuf {
	t.Helper()
	buf := &logBuf{}
	logger.SetOutput(buf)
	prev := logger.GetLevel()
	logger.SetLevel(logger.INFO)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(prev)
	})
	return buf
}

func TestAccessLog_RecordsShopFields(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	buf := captureLog(t)

	res := getJSON(t, srv.URL+"/shops/clay/keywords", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	line := buf.String()
	assert.Contains(t, line, "path=/shops/clay/keywords status=200")
	assert.Contains(t, line, `shop="clay" listings=2 from_cache=false keywords=2`)

	buf.Reset()
	res = getJSON(t, srv.URL+"/shops/missing/keywords", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, buf.String(), `shop="missing" err_code="shop_not_found"`)
}

func TestRecover_LogsShop(t *testing.T) {
	srv, _, _ := newTestServer(t, nil)
	buf := captureLog(t)

	res := getJSON(t, srv.URL+"/shops/panicky/keywords", nil)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Contains(t, buf.String(), `msg="panic"`)
	assert.Contains(t, buf.String(), `err=boom shop="panicky"`)
}

func TestRecover_KeepsStartedResponse(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late")
	}), RequestID, AccessLog, Recover)
	captureLog(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(RequestIDFrom(r.Context())))
	}))

	cases := []struct {
		name string
		in   string
		keep bool
	}{
		{"well formed", "req-42_a.b:c", true},
		{"empty", "", false},
		{"spaces", "two words", false},
		{"newline", "a\nstatus=500", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header["X-Request-Id"] = []string{tc.in}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			assert.Equal(t, got, rec.Body.String())
			if tc.keep {
				assert.Equal(t, tc.in, got)
			} else {
				assert.NotEqual(t, tc.in, got)
				assert.Len(t, got, 32)
			}
		})
	}
}

func TestAnnotate_OutsideAccessLogIsNoop(t *testing.T) {
	assert.NotPanics(t, func() { annotate(context.Background(), "shop", "x") })
	assert.Equal(t, "", fieldsFrom(context.Background()).String())
}
