/*
Package resilience provides a circuit breaker for outbound notification sinks.

# Overview

Notifications are fire-and-forget: a failed delivery is logged and never
retried. The breaker keeps a dead webhook endpoint from costing a full request
timeout for every notification. After enough consecutive failures the circuit
opens and deliveries are skipped until the open timeout expires; a trial call
then decides whether to close it again.

# Usage

	breaker := resilience.New("webhook", resilience.Settings{
	    Timeout: 10 * time.Second,
	    ReadyToTrip: func(counts resilience.Counts) bool {
	        return counts.ConsecutiveFailures >= 3
	    },
	})

	err := breaker.Do(func() error {
	    return post(ctx, n)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
	    // skipped
	}
*/
package resilience
