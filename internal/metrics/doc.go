// Package metrics records pipeline metrics.
//
// Components receive a Recorder. NoopRecorder is the default and does
// nothing; PrometheusRecorder keeps Prometheus collectors in its own
// registry, which a one-shot command run writes out with WriteTextfile in
// the text exposition format (for node_exporter's textfile collector or
// plain inspection).
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	p := pipeline.New(cfg, pipeline.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(reg, "novelbuilder.prom")
package metrics
