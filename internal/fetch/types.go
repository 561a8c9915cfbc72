package fetch

import (
	"context"
	"time"

	"shopkeywords-engine/internal/domain"
)

// Source returns the active listings of one shop.
type Source interface {
	Name() string
	FetchShop(ctx context.Context, shop string) ([]domain.Listing, error)
}

// Cache stores fetched listings between runs. *store.DB satisfies it.
type Cache interface {
	LoadListings(ctx context.Context, shop string, notBefore time.Time) ([]domain.Listing, bool, error)
	SaveListings(ctx context.Context, shop string, listings []domain.Listing, fetchedAt time.Time) error
}

type ShopResult struct {
	Shop      string
	Listings  []domain.Listing
	FromCache bool
	Err       error
}
