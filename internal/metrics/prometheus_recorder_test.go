package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration(StageLinks, 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult(StageLinks, ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.ObserveAssetFetch(20*time.Millisecond, true)
	pr.IncIntegrityResult(IntegrityMismatch)
	pr.AddBrokenLinks("route", 2)
	pr.SetResolvedLinks("external", 7)
	pr.IncConfigReload(false)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.InDelta(t, 2, metricValue(t, pr.brokenLinks.WithLabelValues("route")), 0)
	assert.InDelta(t, 7, metricValue(t, pr.resolvedLinks.WithLabelValues("external")), 0)
	assert.InDelta(t, 1, metricValue(t, pr.integrityResults.WithLabelValues("mismatch")), 0)
	assert.InDelta(t, 1, metricValue(t, pr.configReloads.WithLabelValues("failed")), 0)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncBuildOutcome(BuildOutcomeFailed)
	pr.AddBrokenLinks("markdown", 1)
	pr.IncConfigReload(true)
}

func TestTimedRecordsResult(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	require.NoError(t, Timed(pr, StageRender, func() error { return nil }))
	boom := errors.New("boom")
	require.ErrorIs(t, Timed(pr, StageRender, func() error { return boom }), boom)
	require.NoError(t, Timed(nil, StageRender, func() error { return nil }))

	assert.InDelta(t, 1, metricValue(t, pr.stageResults.WithLabelValues(StageRender, string(ResultSuccess))), 0)
	assert.InDelta(t, 1, metricValue(t, pr.stageResults.WithLabelValues(StageRender, string(ResultFatal))), 0)
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(BuildOutcomeSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "sitecfg_build_outcomes_total"))
}

func metricValue(t *testing.T, m prom.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}
