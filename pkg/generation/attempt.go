package generation

import (
	"time"
)

// Retry classes for one provider attempt. The class names the recovery the
// orchestrator applied after the attempt, not the attempt's cause.
const (
	RetryClassJSON          = "json-retry"
	RetryClassRateLimit     = "rate-limit-retry"
	RetryClassNetwork       = "network-retry"
	RetryClassModelFallback = "model-fallback"
)

// Attempt describes one provider call inside an orchestrated generation.
// Ordinal is 1-based and counts calls within a single Generate invocation.
// RetryClass is empty when no recovery followed (success or terminal error).
// Attempts live only for the duration of the call and are emitted to the
// metrics recorder; they are never persisted.
type Attempt struct {
	Model      string
	Ordinal    int
	RetryClass string
	Elapsed    time.Duration
	Success    bool
}

// MetricsRecorder receives per-attempt outcome records. Implementations are
// fire-and-forget collaborators: the orchestrator guards every call so a
// misbehaving recorder can never break the retry path.
type MetricsRecorder interface {
	RecordAttempt(a Attempt)
	RecordError(a Attempt, err error)
}

// NopMetricsRecorder satisfies MetricsRecorder and discards everything.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) RecordAttempt(Attempt)      {}
func (NopMetricsRecorder) RecordError(Attempt, error) {}

func safeRecordAttempt(m MetricsRecorder, a Attempt) {
	if m == nil {
		return
	}
	defer func() { _ = recover() }()
	m.RecordAttempt(a)
}

func safeRecordError(m MetricsRecorder, a Attempt, err error) {
	if m == nil {
		return
	}
	defer func() { _ = recover() }()
	m.RecordError(a, err)
}
