package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestPrometheusRecorder_Gathers(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncRunOutcome(ResultSuccess)
	pr.ObserveSourceFetch("games", 20*time.Millisecond, 12, true)
	pr.ObserveSourceFetch("feed", 20*time.Millisecond, 0, false)
	pr.IncPageResult("single", ResultSuccess)
	pr.IncPageResult("single", ResultFailed)
	pr.SetWorkers(4)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	for _, want := range []string{
		"sitesmith_stage_duration_seconds",
		"sitesmith_run_outcomes_total",
		"sitesmith_source_items",
		"sitesmith_page_results_total",
		"sitesmith_render_workers",
	} {
		assert.True(t, names[want], want)
	}
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.IncPageResult("list", ResultSuccess)
		pr.ObserveRunDuration(time.Second)
	})
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncPageResult("list", ResultSuccess)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sitesmith_page_results_total{kind="list",result="success"} 1`)
}
