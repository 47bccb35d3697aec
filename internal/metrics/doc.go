// Package metrics records generation metrics.
//
// Components receive a Recorder by injection and never check for nil:
// NoopRecorder is the default and does nothing. PrometheusRecorder exports
// the same observations to a Prometheus registry, and HTTPHandler serves
// that registry for scraping while the preview server runs.
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	rec.ObserveStageDuration("render", d)
//	rec.IncPageResult("single", metrics.ResultSuccess)
package metrics
