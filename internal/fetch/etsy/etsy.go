package etsy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"shopkeywords-engine/internal/domain"
	"shopkeywords-engine/internal/fetch/util"
	"shopkeywords-engine/internal/logger"
)

const (
	DefaultBaseURL = "https://openapi.etsy.com/v3/application"
	userAgent      = "shopkeywords/1.0 (+local)"
	maxBody        = 8 << 20
)

var ErrShopNotFound = errors.New("etsy: shop not found")

// APIError is a non-retryable (or retries exhausted) HTTP failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("etsy status %d body=%s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL      string
	APIKey       string
	PageLimit    int
	MaxPages     int
	MaxRetries   int
	RetryBackoff time.Duration
	Timeout      time.Duration
}

// Client reads the active listings of a shop from the Etsy Open API v3.
type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageLimit <= 0 || cfg.PageLimit > 100 {
		cfg.PageLimit = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
	}
}

func (c *Client) Name() string { return "etsy" }

type shopsResponse struct {
	Count   int        `json:"count"`
	Results []shopInfo `json:"results"`
}

type shopInfo struct {
	ShopID   int64  `json:"shop_id"`
	ShopName string `json:"shop_name"`
}

type listingsResponse struct {
	Count   int           `json:"count"`
	Results []etsyListing `json:"results"`
}

type etsyListing struct {
	ListingID   int64    `json:"listing_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
}

// FetchShop returns every active listing of shop, given as a shop name or a
// numeric shop ID. Pages are read until an empty page, the reported count,
// or the configured page cap.
func (c *Client) FetchShop(ctx context.Context, shop string) ([]domain.Listing, error) {
	shop = strings.TrimSpace(shop)
	if shop == "" {
		return nil, errors.New("etsy: empty shop name")
	}

	id, name, err := c.resolveShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	var out []domain.Listing
	offset := 0
	page := 0
	for {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		if page >= c.cfg.MaxPages {
			logger.Warn("[etsy] shop=%q stopped at max_pages=%d listings=%d", name, c.cfg.MaxPages, len(out))
			break
		}
		page++

		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.cfg.PageLimit))
		q.Set("offset", strconv.Itoa(offset))
		endpoint := fmt.Sprintf("%s/shops/%d/listings/active?%s", c.cfg.BaseURL, id, q.Encode())

		logger.Debug("[etsy] shop=%q page=%d offset=%d", name, page, offset)

		var lr listingsResponse
		if err := c.getJSON(ctx, endpoint, &lr); err != nil {
			return out, fmt.Errorf("etsy listings shop=%q page=%d: %w", name, page, err)
		}
		if len(lr.Results) == 0 {
			break
		}

		for _, p := range lr.Results {
			out = append(out, toListing(name, p))
		}

		offset += len(lr.Results)
		if lr.Count > 0 && offset >= lr.Count {
			break
		}
	}

	logger.Info("[etsy] shop=%q id=%d listings=%d pages=%d", name, id, len(out), page)
	return out, nil
}

func toListing(shopName string, p etsyListing) domain.Listing {
	return domain.Listing{
		ID:          p.ListingID,
		ShopName:    shopName,
		Title:       util.PlainText(strings.TrimSpace(p.Title)),
		Description: util.PlainText(p.Description),
		Tags:        p.Tags,
		URL:         p.URL,
	}
}

func (c *Client) resolveShop(ctx context.Context, shop string) (int64, string, error) {
	if id, err := strconv.ParseInt(shop, 10, 64); err == nil && id > 0 {
		return id, shop, nil
	}

	q := url.Values{}
	q.Set("shop_name", shop)
	q.Set("limit", "25")
	endpoint := fmt.Sprintf("%s/shops?%s", c.cfg.BaseURL, q.Encode())

	var sr shopsResponse
	if err := c.getJSON(ctx, endpoint, &sr); err != nil {
		return 0, "", fmt.Errorf("etsy find shop %q: %w", shop, err)
	}
	for _, s := range sr.Results {
		if strings.EqualFold(s.ShopName, shop) && s.ShopID > 0 {
			return s.ShopID, s.ShopName, nil
		}
	}
	return 0, "", fmt.Errorf("%w: %q", ErrShopNotFound, shop)
}

// getJSON GETs endpoint into v. 429 and 5xx responses are retried up to
// MaxRetries times, honoring Retry-After when present.
func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-api-key", c.cfg.APIKey)

		if c.limiter != nil {
			if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
				return err
			}
		}

		res, err := c.hc.Do(req)
		if err != nil {
			return fmt.Errorf("etsy get: %w", err)
		}
		data, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("etsy read body: %w", err)
		}

		retryable := res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500
		if retryable && attempt < c.cfg.MaxRetries {
			wait := retryDelay(res.Header.Get("Retry-After"), attempt, c.cfg.RetryBackoff)
			logger.Warn("[etsy] status=%d retry=%d/%d wait=%s", res.StatusCode, attempt+1, c.cfg.MaxRetries, wait)
			if c.limiter != nil {
				c.limiter.PauseURL(endpoint, wait)
			}
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}
		if res.StatusCode >= 400 {
			return &APIError{StatusCode: res.StatusCode, Body: truncate(string(data), 240)}
		}

		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("etsy decode: %w body=%s", err, truncate(string(data), 240))
		}
		return nil
	}
}

func retryDelay(retryAfter string, attempt int, backoff time.Duration) time.Duration {
	if s, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && s >= 0 {
		return time.Duration(s) * time.Second
	}
	return time.Duration(attempt+1) * backoff
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
