/*
Package metrics provides Prometheus metrics collection and exposition for
rokt's request pipeline (D1 in SPEC_FULL.md).

Unlike the client-facing TCP protocol, these metrics are served over a
second, loopback-only HTTP port so pipeline observability never shares a
socket with dataset traffic.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │            Prometheus Registry               │          │
	│  │  - MustRegister at package init              │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Categories               │          │
	│  │                                              │          │
	│  │  Queue:   rokt_queue_depth (gauge)           │          │
	│  │           rokt_backpressure_sleeps_total      │          │
	│  │  Workers: rokt_workers_busy (gauge)          │          │
	│  │  Admission: rokt_admissions_rejected_total   │          │
	│  │  Commands: rokt_commands_total{verb,status}  │          │
	│  │            rokt_command_duration_seconds     │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │             Collector (ticker)               │          │
	│  │  - Samples pipeline.Server.Stats() every 2s  │          │
	│  │  - Pushes queue depth / busy-worker gauges   │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │      HTTP endpoint (loopback-only)           │          │
	│  │  - Path: /metrics, promhttp.Handler()        │          │
	│  │  - Path: /health, /ready, /live              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Monitoring

PromQL starting points:
  - Queue saturation: rokt_queue_depth
  - Rejection rate:   rate(rokt_admissions_rejected_total[1m])
  - p95 command latency: histogram_quantile(0.95, rokt_command_duration_seconds_bucket)
  - Timeout rate: rate(rokt_commands_total{status="504"}[1m])

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
*/
package metrics
