/*
Package monitoring provides request metrics for the API manager.

# Overview

Metrics implements the pipeline's Observer: every finished request, offline
rejections included, is counted by method, outcome and status class, and its
latency is recorded in a histogram. Each Metrics owns its own Prometheus
registry, so several clients can coexist in one process.

# Metrics

  - apimanager_requests_total{method, outcome, status_class}
  - apimanager_request_duration_seconds{method, outcome}

outcome is "ok" or the error kind (offline, transport, decode, cancelled).
status_class is 1xx..5xx, "offline" for the offline sentinel and "none"
when no HTTP status arrived.

# Usage

	metrics := monitoring.NewMetrics()
	p := pipeline.New(backend, pipeline.WithObserver(metrics))

	// Expose for scraping
	http.Handle("/metrics", metrics.Handler())

	// Or dump once, e.g. at the end of a CLI run
	metrics.WriteText(os.Stderr)
*/
package monitoring
