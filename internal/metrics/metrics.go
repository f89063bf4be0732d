// Package metrics defines the minimal instrumentation surface used by the
// detection engine and its collaborators.
//
// The core packages emit counters and histogram samples through the Backend
// interface and never depend on a concrete vendor SDK. Backends live in
// subpackages (e.g. metrics/datadog) and are selected at the CLI layer.
package metrics

// Labels carries dimension key/value pairs attached to a metric emission.
//
// Backends decide which labels they understand; unknown labels are ignored
// rather than rejected, so emitters do not need backend-specific code.
type Labels map[string]string

// Backend buffers and ships metrics.
//
// Implementations must be safe for concurrent use: detection work runs on
// worker goroutines that emit without coordination.
type Backend interface {
	// IncCounter adds delta to the named counter. Non-positive deltas are
	// ignored.
	IncCounter(name string, delta float64, labels Labels)

	// ObserveHistogram records one sample for the named distribution.
	// Negative samples are ignored.
	ObserveHistogram(name string, value float64, labels Labels)

	// Flush submits buffered metrics. Safe to call at any time.
	Flush() error

	// Close stops background work and performs a final Flush. Call once.
	Close() error
}

// Nop is a Backend that discards everything. It is the default when no
// metrics backend is configured, so call sites never nil-check.
type Nop struct{}

func (Nop) IncCounter(string, float64, Labels)       {}
func (Nop) ObserveHistogram(string, float64, Labels) {}
func (Nop) Flush() error                             { return nil }
func (Nop) Close() error                             { return nil }

var _ Backend = Nop{}

// Metric names emitted by the detection engine and source fetchers.
//
// These are the internal (snake_case) names passed to Backend methods;
// backends map them to their own naming conventions.
const (
	// DetectTotal counts finished detection runs. Label "outcome" is one of
	// "ok", "no_dialect", "timeout", "invalid_input", "error".
	DetectTotal = "sniff_detect_total"

	// CandidatesTotal counts dialect candidates evaluated across runs.
	CandidatesTotal = "sniff_candidates_total"

	// DetectDurationSeconds samples wall time per detection run.
	// Label "outcome" as for DetectTotal.
	DetectDurationSeconds = "sniff_detect_duration_seconds"

	// FetchRequestsTotal counts source fetches. Label "status" is the HTTP
	// status code, "file" for local reads, or "unknown".
	FetchRequestsTotal = "sniff_fetch_requests_total"

	// FetchErrorsTotal counts failed source fetches. Label "status" as above.
	FetchErrorsTotal = "sniff_fetch_errors_total"

	// FetchDurationSeconds samples fetch wall time. Label "status" as above.
	FetchDurationSeconds = "sniff_fetch_duration_seconds"

	// FetchBytes samples the number of bytes obtained per fetch.
	FetchBytes = "sniff_fetch_bytes"
)
