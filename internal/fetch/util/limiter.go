package util

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// hostBucket is the request budget for one API host. until is set when the
// host answered with a throttling status and every caller must hold off.
type hostBucket struct {
	lim   *rate.Limiter
	until time.Time
}

// HostLimiter rate-limits Etsy API calls per hostname and lets a throttled
// response pause every in-flight shop fetch against that host.
type HostLimiter struct {
	mu      sync.Mutex
	buckets map[string]*hostBucket
	perSec  rate.Limit
	burst   int
	now     func() time.Time
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst < 1 {
		burst = 1
	}
	return &HostLimiter{
		buckets: make(map[string]*hostBucket),
		perSec:  rate.Limit(reqPerSec),
		burst:   burst,
		now:     time.Now,
	}
}

func hostKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "_"
	}
	return u.Host
}

// bucket must be called with hl.mu held.
func (hl *HostLimiter) bucket(host string) *hostBucket {
	b, ok := hl.buckets[host]
	if !ok {
		b = &hostBucket{lim: rate.NewLimiter(hl.perSec, hl.burst)}
		hl.buckets[host] = b
	}
	return b
}

// PauseURL holds back requests to raw's host for d. A shorter pause never
// cuts an existing one short.
func (hl *HostLimiter) PauseURL(raw string, d time.Duration) {
	if d <= 0 {
		return
	}
	hl.mu.Lock()
	defer hl.mu.Unlock()

	b := hl.bucket(hostKey(raw))
	if until := hl.now().Add(d); until.After(b.until) {
		b.until = until
	}
}

// WaitURL blocks until a request to raw's host is allowed: first past any
// pause, then through the token bucket. URLs without a host share one bucket.
func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	host := hostKey(raw)
	for {
		hl.mu.Lock()
		b := hl.bucket(host)
		wait := b.until.Sub(hl.now())
		hl.mu.Unlock()

		if wait <= 0 {
			return b.lim.Wait(ctx)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
