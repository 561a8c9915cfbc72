package fetch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"shopkeywords-engine/internal/logger"
)

type Runner struct {
	Source Source

	// Cache is optional; a nil Cache always fetches.
	Cache    Cache
	CacheTTL time.Duration

	Concurrency int
	ShopTimeout time.Duration

	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// FetchShops fetches every shop concurrently. Results are in the order of
// shops. One shop failing never cancels the others.
func (r *Runner) FetchShops(ctx context.Context, shops []string) []ShopResult {
	results := make([]ShopResult, len(shops))

	limit := r.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, shop := range shops {
		i, shop := i, shop
		g.Go(func() error {
			results[i] = r.FetchShop(ctx, shop)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) FetchShop(ctx context.Context, shop string) ShopResult {
	res := ShopResult{Shop: shop}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if r.Cache != nil && r.CacheTTL > 0 {
		listings, ok, err := r.Cache.LoadListings(ctx, shop, r.now().Add(-r.CacheTTL))
		switch {
		case err != nil:
			logger.Warn("[fetch] shop=%q cache read failed: %v", shop, err)
		case ok:
			logger.Debug("[fetch] shop=%q cache hit listings=%d", shop, len(listings))
			res.Listings = listings
			res.FromCache = true
			return res
		}
	}

	fctx := ctx
	if r.ShopTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, r.ShopTimeout)
		defer cancel()
	}

	start := r.now()
	logger.Info("[%s] shop=%q fetching...", r.Source.Name(), shop)
	listings, err := r.Source.FetchShop(fctx, shop)
	if err != nil {
		logger.Error("[%s] shop=%q error: %v", r.Source.Name(), shop, err)
		res.Err = err
		return res
	}
	res.Listings = listings

	if r.Cache != nil && r.CacheTTL > 0 {
		if err := r.Cache.SaveListings(ctx, shop, listings, start); err != nil {
			logger.Warn("[fetch] shop=%q cache write failed: %v", shop, err)
		}
	}
	return res
}
