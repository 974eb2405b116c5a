/*
Package monitoring provides Prometheus metrics for the mode manager.

# Overview

Metrics are registered on an injected prometheus.Registerer so that each
server (and each test) owns its own registry. Every recording method is safe to
call on a nil *Metrics, which lets the arbitration engine run unobserved.

# Metrics

  - modemanager_admissions_total{result}: ChangeMode decisions
  - modemanager_commands_total{state}: commands processed by the worker
  - modemanager_mailbox_overwrites_total: commands replaced before processing
  - modemanager_stack_depth{resource}: holders per resource stack
  - modemanager_ledger_pending: applications with unacknowledged releases
  - modemanager_notifications_total{signal,status}: outbound notifications
  - modemanager_http_requests_total, modemanager_http_request_duration_seconds
  - modemanager_grpc_calls_total, modemanager_grpc_duration_seconds
  - modemanager_stream_subscribers{transport}: live notification streams

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
