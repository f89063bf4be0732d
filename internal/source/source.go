// Package source fetches bounded byte samples from the places delimited
// text tends to live: local files, file:// URLs, and http(s):// endpoints.
//
// Sampling must be bounded in memory and time: callers pass a byte cap and a
// context, and no code path reads past the cap. The package also extracts
// embedded delimited text from HTML pages (see ExtractHTML), since published
// datasets frequently arrive wrapped in <pre> blocks or <table> markup.
package source

import (
	"context"
	"fmt"
	"strings"

	"sniff/internal/metrics"
)

// DefaultMaxBytes is the sample size used when the caller does not set one.
// Large enough for a meaningful row sample, small enough to fetch quickly.
const DefaultMaxBytes = 20000

// Config controls sample fetching.
type Config struct {
	// MaxBytes caps the sample size. If <= 0, DefaultMaxBytes is used.
	MaxBytes int

	// AllowInsecureTLS, when true, skips TLS certificate verification for
	// HTTP downloads (useful for self-signed / internal endpoints).
	AllowInsecureTLS bool

	// Metrics receives fetch counters and timings. Nil means no metrics.
	Metrics metrics.Backend
}

func (c Config) maxBytes() int {
	if c.MaxBytes <= 0 {
		return DefaultMaxBytes
	}
	return c.MaxBytes
}

func (c Config) metrics() metrics.Backend {
	if c.Metrics == nil {
		return metrics.Nop{}
	}
	return c.Metrics
}

// peekFn is a small overridable seam that dispatches a bounded fetch by URL
// scheme. In production it is backed by the HTTP client for http(s):// URLs
// and by Local for file:// URLs. Tests can replace it to avoid real I/O.
var peekFn = func(ctx context.Context, url string, cfg Config) ([]byte, error) {
	if strings.HasPrefix(url, "file://") {
		return peekFile(ctx, strings.TrimPrefix(url, "file://"), cfg)
	}
	client := NewClient(cfg)
	return client.FetchFirstBytes(ctx, url, cfg.maxBytes())
}

// Peek fetches the first bytes of the named source.
//
// Accepted forms:
//   - http:// and https:// URLs
//   - file:// URLs
//   - bare local paths (treated as file:// internally)
//
// Errors:
//   - Propagates open/transport errors from the underlying source.
//   - Never returns more than cfg.MaxBytes bytes.
func Peek(ctx context.Context, rawURL string, cfg Config) ([]byte, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, fmt.Errorf("peek: empty url")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "file://") {
		url = "file://" + url
	}
	return peekFn(ctx, url, cfg)
}
