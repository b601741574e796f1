// Package metrics records what the future link filter does at publish and
// render time.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics stay optional:
//
//	publisher := publish.New(cfg, filter, metrics.NoopRecorder{})
//
// The render server and the daemon swap in a PrometheusRecorder and expose
// its registry on /metrics through HTTPHandler.
package metrics
