// Package metrics provides build observability for popsite.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no call site needs a nil check. The serve command swaps in
// a PrometheusRecorder and exposes it through HTTPHandler.
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	builder := site.New(cfg, site.WithRecorder(rec))
package metrics
