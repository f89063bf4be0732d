package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"sniff/internal/metrics"
)

// Client fetches bounded prefixes over HTTP(S).
//
// The zero value is not usable; construct with NewClient.
type Client struct {
	hc *http.Client
	m  metrics.Backend
}

// NewClient builds an HTTP client from the fetch configuration.
//
// The transport is dedicated rather than shared so AllowInsecureTLS never
// leaks into other clients in the process.
func NewClient(cfg Config) *Client {
	tr := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.AllowInsecureTLS},
	}
	return &Client{
		hc: &http.Client{
			Transport: tr,
			Timeout:   30 * time.Second,
		},
		m: cfg.metrics(),
	}
}

// FetchFirstBytes downloads at most n bytes from the start of url.
//
// A Range header asks the server to stop early; servers that ignore it are
// handled by reading through an io.LimitedReader, so the bound holds either
// way.
//
// Errors:
//   - Transport errors are returned as-is.
//   - Status codes outside 2xx produce an error naming the status.
func (c *Client) FetchFirstBytes(ctx context.Context, url string, n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("fetch: n must be > 0")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", n-1))

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.m.IncCounter(metrics.FetchErrorsTotal, 1, metrics.Labels{"status": "unknown"})
		return nil, err
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	labels := metrics.Labels{"status": status}
	c.m.IncCounter(metrics.FetchRequestsTotal, 1, labels)
	c.m.ObserveHistogram(metrics.FetchDurationSeconds, time.Since(start).Seconds(), labels)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.m.IncCounter(metrics.FetchErrorsTotal, 1, labels)
		return nil, fmt.Errorf("fetch %s: status %s", url, resp.Status)
	}

	body, err := io.ReadAll(&io.LimitedReader{R: resp.Body, N: int64(n)})
	if err != nil {
		c.m.IncCounter(metrics.FetchErrorsTotal, 1, labels)
		return nil, err
	}

	c.m.ObserveHistogram(metrics.FetchBytes, float64(len(body)), labels)
	return body, nil
}
