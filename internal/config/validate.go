package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// Err folds the validation errors into one error, or nil when OK.
func (v Validation) Err() error {
	if v.OK() {
		return nil
	}
	return fmt.Errorf("config validation failed:\n- %s", strings.Join(v.Errors, "\n- "))
}

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Analysis.ExtraBanned = trimList(out.Analysis.ExtraBanned)
	out.App.LogLevel = strings.ToLower(strings.TrimSpace(out.App.LogLevel))
	out.Etsy.BaseURL = strings.TrimRight(strings.TrimSpace(out.Etsy.BaseURL), "/")
	if strings.TrimSpace(out.App.DataDir) == "" {
		out.App.DataDir = "."
	}

	// ---- app ----
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	switch out.App.LogLevel {
	case "", "debug", "info", "warn", "error", "none":
	default:
		res.addWarn("app.log_level %q is unknown; using info", out.App.LogLevel)
	}

	// ---- etsy ----
	if u, err := url.Parse(out.Etsy.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("etsy.base_url must be an absolute URL")
	}
	if out.Etsy.PageLimit <= 0 || out.Etsy.PageLimit > 100 {
		res.addErr("etsy.page_limit must be 1..100")
	}
	if out.Etsy.MaxPages <= 0 {
		res.addErr("etsy.max_pages must be > 0")
	}
	if out.Etsy.RequestsPerSecond <= 0 {
		res.addErr("etsy.requests_per_second must be > 0")
	} else if out.Etsy.RequestsPerSecond > 10 {
		res.addWarn("etsy.requests_per_second is high (%.1f) and may hit API rate limits.", out.Etsy.RequestsPerSecond)
	}
	if out.Etsy.Burst <= 0 {
		res.addErr("etsy.burst must be > 0")
	}
	if out.Etsy.TimeoutSeconds <= 0 {
		res.addErr("etsy.timeout_seconds must be > 0")
	}
	if out.Etsy.MaxRetries < 0 {
		res.addErr("etsy.max_retries must be >= 0")
	}
	if out.Etsy.ShopConcurrency <= 0 {
		res.addErr("etsy.shop_concurrency must be > 0")
	}

	// ---- cache ----
	if out.Cache.Enabled && out.Cache.TTLMinutes <= 0 {
		res.addErr("cache.ttl_minutes must be > 0 when cache.enabled=true")
	}

	// ---- analysis ----
	if out.Analysis.MinScore < 0 {
		res.addErr("analysis.min_score must be >= 0")
	}
	w := out.Analysis.Weights
	if w.TitleNoun < 0 || w.TitleProper < 0 || w.TitlePhrase < 0 || w.Base < 0 {
		res.addErr("analysis.weights must be >= 0")
	}
	if w.Base > out.Analysis.MinScore && out.Analysis.MinScore > 0 {
		res.addWarn("analysis.weights.base (%.0f) exceeds min_score (%.0f); every term will rank.", w.Base, out.Analysis.MinScore)
	}

	// ---- output ----
	if out.Output.Top < 0 {
		res.addErr("output.top must be >= 0")
	}
	if out.Output.Width < 0 {
		res.addErr("output.width must be >= 0")
	}

	return out, res
}
