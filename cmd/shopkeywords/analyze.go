package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"shopkeywords-engine/internal/config"
	"shopkeywords-engine/internal/fetch"
	"shopkeywords-engine/internal/fetch/etsy"
	"shopkeywords-engine/internal/fetch/util"
	"shopkeywords-engine/internal/logger"
	"shopkeywords-engine/internal/nlp"
	"shopkeywords-engine/internal/rank"
	"shopkeywords-engine/internal/secrets"
	"shopkeywords-engine/internal/store"
)

const (
	cacheFileName = "listings.db"
	shopTimeout   = 10 * time.Minute
)

// Swapped out in tests.
var (
	newSource = func(cfg config.Config, apiKey string) fetch.Source {
		limiter := util.NewHostLimiter(cfg.Etsy.RequestsPerSecond, cfg.Etsy.Burst)
		return etsy.New(etsy.Config{
			BaseURL:    cfg.Etsy.BaseURL,
			APIKey:     apiKey,
			PageLimit:  cfg.Etsy.PageLimit,
			MaxPages:   cfg.Etsy.MaxPages,
			MaxRetries: cfg.Etsy.MaxRetries,
			Timeout:    time.Duration(cfg.Etsy.TimeoutSeconds) * time.Second,
		}, limiter)
	}

	newTagger = func() (nlp.Tagger, error) {
		t, err := nlp.NewProseTagger()
		if err != nil {
			return nil, err
		}
		return t, nil
	}
)

// newRunner wires the listing source and, when enabled, the sqlite cache.
// The returned func releases the cache.
func newRunner(ctx context.Context, cfg config.Config, apiKey string) (*fetch.Runner, *store.DB, func(), error) {
	r := &fetch.Runner{
		Source:      newSource(cfg, apiKey),
		Concurrency: cfg.Etsy.ShopConcurrency,
		ShopTimeout: shopTimeout,
	}
	if !cfg.Cache.Enabled {
		return r, nil, func() {}, nil
	}

	path := filepath.Join(cfg.App.DataDir, cacheFileName)
	db, err := store.Open(ctx, path)
	if errors.Is(err, store.ErrLocked) {
		logger.Warn("[store] %s is in use; continuing without the cache", path)
		return r, nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open cache %s: %w", path, err)
	}

	r.Cache = db
	r.CacheTTL = time.Duration(cfg.Cache.TTLMinutes) * time.Minute
	return r, db, func() { _ = db.Close() }, nil
}

func runAnalyze(ctx context.Context, s *settings, shops []string, top int, out, errOut io.Writer) error {
	apiKey, err := secrets.ResolveAPIKey(s.apiKey)
	if err != nil {
		return err
	}

	tagger, err := newTagger()
	if err != nil {
		return fmt.Errorf("load tagger: %w", err)
	}

	runner, _, release, err := newRunner(ctx, s.cfg, apiKey)
	if err != nil {
		return err
	}
	defer release()

	results := runner.FetchShops(ctx, shops)
	an := rank.NewAnalyzer(tagger, s.cfg.AnalyzerOptions())

	failed := 0
	for i, res := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s (%d listings) ==\n", res.Shop, len(res.Listings))
		}
		if res.Err != nil {
			failed++
			fmt.Fprintf(errOut, "%s: %v\n", res.Shop, res.Err)
			continue
		}

		keywords, err := an.Keywords(ctx, res.Listings, s.cfg.Analysis.MinScore)
		if err != nil {
			return err
		}
		printResults(out, rank.Top(keywords, top), s.cfg.Output.Width)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d stores failed", failed, len(results))
	}
	return nil
}
