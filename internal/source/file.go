package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"sniff/internal/metrics"
)

// Local reads from the local filesystem.
type Local struct {
	path string
}

// NewLocal returns a source for the given filesystem path.
func NewLocal(path string) *Local {
	return &Local{path: path}
}

// Open opens the underlying file. The caller owns the returned ReadCloser.
//
// The context is accepted for interface symmetry with remote sources; local
// opens are not cancellable mid-call.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(l.path)
}

// peekFile reads at most cfg.MaxBytes bytes from the start of a local file.
func peekFile(ctx context.Context, path string, cfg Config) ([]byte, error) {
	start := time.Now()
	m := cfg.metrics()

	rc, err := NewLocal(path).Open(ctx)
	if err != nil {
		m.IncCounter(metrics.FetchErrorsTotal, 1, metrics.Labels{"status": "file"})
		return nil, err
	}
	defer rc.Close()

	lr := &io.LimitedReader{R: rc, N: int64(cfg.maxBytes())}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lr); err != nil && err != io.EOF {
		m.IncCounter(metrics.FetchErrorsTotal, 1, metrics.Labels{"status": "file"})
		return nil, err
	}

	labels := metrics.Labels{"status": "file"}
	m.IncCounter(metrics.FetchRequestsTotal, 1, labels)
	m.ObserveHistogram(metrics.FetchDurationSeconds, time.Since(start).Seconds(), labels)
	m.ObserveHistogram(metrics.FetchBytes, float64(buf.Len()), labels)
	return buf.Bytes(), nil
}
