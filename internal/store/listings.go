package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopkeywords-engine/internal/domain"
)

// fixed-width UTC timestamps so fetched_at compares correctly as text
const tsLayout = "2006-01-02T15:04:05.000000000Z"

func shopKey(shop string) string {
	return strings.ToLower(strings.TrimSpace(shop))
}

// SaveListings replaces the cached listings of shop with listings.
func (d *DB) SaveListings(ctx context.Context, shop string, listings []domain.Listing, fetchedAt time.Time) error {
	key := shopKey(shop)
	if key == "" {
		return errors.New("store: empty shop")
	}

	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE shop = ?;`, key); err != nil {
		return fmt.Errorf("clear listings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO listings (shop, listing_id, title, description, tags, url, position)
VALUES (?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	name := shop
	for i, l := range listings {
		tags := l.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsB, _ := json.Marshal(tags)
		if _, err := stmt.ExecContext(ctx, key, l.ID, l.Title, l.Description, string(tagsB), l.URL, i); err != nil {
			return fmt.Errorf("insert listing %d: %w", l.ID, err)
		}
		if l.ShopName != "" {
			name = l.ShopName
		}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO shop_fetches (shop, shop_name, fetched_at) VALUES (?, ?, ?)
ON CONFLICT(shop) DO UPDATE SET shop_name = excluded.shop_name, fetched_at = excluded.fetched_at;`,
		key, name, fetchedAt.UTC().Format(tsLayout)); err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}

	return tx.Commit()
}

// LoadListings returns the cached listings of shop if they were fetched at or
// after notBefore. ok is false on a miss or a stale entry.
func (d *DB) LoadListings(ctx context.Context, shop string, notBefore time.Time) (listings []domain.Listing, ok bool, err error) {
	key := shopKey(shop)

	var name, fetchedStr string
	err = d.Pool.QueryRowContext(ctx,
		`SELECT shop_name, fetched_at FROM shop_fetches WHERE shop = ?;`, key,
	).Scan(&name, &fetchedStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	fetchedAt, err := time.Parse(tsLayout, fetchedStr)
	if err != nil {
		return nil, false, fmt.Errorf("bad fetched_at %q: %w", fetchedStr, err)
	}
	if fetchedAt.Before(notBefore) {
		return nil, false, nil
	}

	rows, err := d.Pool.QueryContext(ctx, `
SELECT listing_id, title, description, tags, url
FROM listings
WHERE shop = ?
ORDER BY position ASC;`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	for rows.Next() {
		l := domain.Listing{ShopName: name}
		var tagsJSON string
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &tagsJSON, &l.URL); err != nil {
			return nil, false, err
		}
		_ = json.Unmarshal([]byte(tagsJSON), &l.Tags)
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return listings, true, nil
}

// PruneBefore drops every shop fetched before cutoff.
func (d *DB) PruneBefore(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := cutoff.UTC().Format(tsLayout)
	if _, err := tx.ExecContext(ctx, `
DELETE FROM listings
WHERE shop IN (SELECT shop FROM shop_fetches WHERE fetched_at < ?);`, ts); err != nil {
		return 0, fmt.Errorf("prune listings: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM shop_fetches WHERE fetched_at < ?;`, ts)
	if err != nil {
		return 0, fmt.Errorf("prune shops: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}
