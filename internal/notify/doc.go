/*
Package notify delivers arbitration signals to the outside world.

The Dispatcher implements arbiter.Notifier. Each call becomes a
types.Notification queued without blocking; a delivery goroutine hands it to
every Sink in registration order. Delivery is best effort: a full queue or a
failing sink is logged and counted, never retried, and never rolls back the
arbitration state that produced the notification.

Sinks:
  - Broadcaster: in-process fan-out to stream subscribers (WebSocket, gRPC)
  - Webhook: JSON POST to a configured URL behind a circuit breaker
  - LogSink: debug log line per notification
*/
package notify
