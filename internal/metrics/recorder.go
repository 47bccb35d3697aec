package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for generation runs. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome ResultLabel)
	ObserveSourceFetch(source string, d time.Duration, items int, success bool)
	IncPageResult(kind string, result ResultLabel)
	SetWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)          {}
func (NoopRecorder) ObserveRunDuration(time.Duration)                    {}
func (NoopRecorder) IncRunOutcome(ResultLabel)                           {}
func (NoopRecorder) ObserveSourceFetch(string, time.Duration, int, bool) {}
func (NoopRecorder) IncPageResult(string, ResultLabel)                   {}
func (NoopRecorder) SetWorkers(int)                                      {}
