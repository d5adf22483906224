package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitecfg"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once             sync.Once
	stageDuration    *prom.HistogramVec
	stageResults     *prom.CounterVec
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	assetFetch       *prom.HistogramVec
	integrityResults *prom.CounterVec
	brokenLinks      *prom.CounterVec
	resolvedLinks    *prom.GaugeVec
	configReloads    *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual export stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total export duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Export outcomes by final status",
		}, []string{"outcome"})
		pr.assetFetch = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "asset_fetch_duration_seconds",
			Help:      "Duration of stylesheet fetches for integrity checks",
			Buckets:   prom.DefBuckets,
		}, []string{"result"})
		pr.integrityResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_results_total",
			Help:      "Stylesheet integrity check results",
		}, []string{"result"})
		pr.brokenLinks = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "broken_links_total",
			Help:      "Unresolved internal links by link kind",
		}, []string{"kind"})
		pr.resolvedLinks = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "resolved_links",
			Help:      "Navbar and footer links in the current configuration by kind",
		}, []string{"kind"})
		pr.configReloads = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "config_reloads_total",
			Help:      "Configuration reloads by result",
		}, []string{"result"})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration, pr.buildOutcome,
			pr.assetFetch, pr.integrityResults, pr.brokenLinks, pr.resolvedLinks, pr.configReloads)
	})
	return pr
}

func successLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveAssetFetch(d time.Duration, success bool) {
	if p == nil || p.assetFetch == nil {
		return
	}
	p.assetFetch.WithLabelValues(successLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncIntegrityResult(result IntegrityResult) {
	if p == nil || p.integrityResults == nil {
		return
	}
	p.integrityResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddBrokenLinks(kind string, n int) {
	if p == nil || p.brokenLinks == nil || n <= 0 {
		return
	}
	p.brokenLinks.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) SetResolvedLinks(kind string, n int) {
	if p == nil || p.resolvedLinks == nil {
		return
	}
	p.resolvedLinks.WithLabelValues(kind).Set(float64(n))
}

func (p *PrometheusRecorder) IncConfigReload(success bool) {
	if p == nil || p.configReloads == nil {
		return
	}
	p.configReloads.WithLabelValues(successLabel(success)).Inc()
}
