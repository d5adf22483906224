package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of an export run.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess BuildOutcomeLabel = "success"
	BuildOutcomeFailed  BuildOutcomeLabel = "failed"
)

// IntegrityResult is the outcome of checking one stylesheet.
type IntegrityResult string

const (
	IntegrityVerified    IntegrityResult = "verified"
	IntegrityMismatch    IntegrityResult = "mismatch"
	IntegrityFetchFailed IntegrityResult = "fetch_failed"
	IntegrityUnchecked   IntegrityResult = "unchecked"
)

// Recorder defines observability hooks for config loading, link checks,
// asset verification and exports. Implementations may forward to Prometheus.
// All methods must be safe to call on NoopRecorder.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	ObserveAssetFetch(d time.Duration, success bool)
	IncIntegrityResult(result IntegrityResult)
	AddBrokenLinks(kind string, n int)
	SetResolvedLinks(kind string, n int)
	IncConfigReload(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)          {}
func (NoopRecorder) ObserveAssetFetch(time.Duration, bool)      {}
func (NoopRecorder) IncIntegrityResult(IntegrityResult)         {}
func (NoopRecorder) AddBrokenLinks(string, int)                 {}
func (NoopRecorder) SetResolvedLinks(string, int)               {}
func (NoopRecorder) IncConfigReload(bool)                       {}

// Stage names shared by callers.
const (
	StageLoad      = "load"
	StageLinks     = "links"
	StageIntegrity = "integrity"
	StageRender    = "render"
	StagePromote   = "promote"
)

// Timed runs fn and records its duration and result for stage.
func Timed(r Recorder, stage string, fn func() error) error {
	if r == nil {
		r = NoopRecorder{}
	}
	start := time.Now()
	err := fn()
	r.ObserveStageDuration(stage, time.Since(start))
	if err != nil {
		r.IncStageResult(stage, ResultFatal)
		return err
	}
	r.IncStageResult(stage, ResultSuccess)
	return nil
}
