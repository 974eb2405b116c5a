/*
Package arbiter decides which application owns the audio, display and tuner
resources at any moment.

# Model

Each resource has a stack of holders; the last element is the visible owner.
A request for a named mode is admitted or rejected synchronously against the
current stacks and the static policy table. Admitted requests are published
into a single-slot mailbox and applied by one worker goroutine, which also
handles mode ends and application teardown. A newer command overwrites an
unprocessed one.

Displaced applications are told to release their resources and acknowledge
through ReleaseDone. Until every outstanding release is acknowledged the new
owner is not announced.

# Concurrency

One mutex guards the stacks, the release ledger and the mailbox. Admission
holds it across decide and publish, the worker holds it for the whole
processing of a command. Notifier implementations are called with the lock
held and must not block.

# Usage

	engine := arbiter.New(table, dispatcher, logger).WithMetrics(metrics)
	if err := engine.Start(); err != nil {
	    return err
	}
	defer engine.Stop()

	if engine.RequestMode("radio", 2) {
	    _ = engine.WaitIdle(ctx)
	}
*/
package arbiter
