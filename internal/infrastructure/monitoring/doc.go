/*
Package monitoring provides metrics collection for the UI client.

# Overview

Prometheus metrics are registered on a per-instance registry, so several
clients (or tests) can coexist in one process. Every recording method is a
no-op on a nil *Metrics.

# Features

- Connection lifecycle (attempts, opens, closes by reason, reconnect delays)
- Idle detection (timeouts and suspended suppressions)
- Protocol traffic by direction and kind, decode errors, dropped sends
- Mirror gauges (online, registry size, view stack depth)
- Model fetch results, latency and cache hit rates
- View adapter HTTP request metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(monitoring.Handler(metrics)))

	timer := monitoring.NewTimer(metrics)
	// ... fetch model ...
	timer.Stop("success")
*/
package monitoring
