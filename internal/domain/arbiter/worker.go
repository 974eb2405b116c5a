package arbiter

import (
	"context"

	"go.uber.org/zap"
)

// Start launches the worker goroutine.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return ErrAlreadyStarted
	}
	e.running = true
	e.done = make(chan struct{})
	go e.run(e.done)

	e.logger.Info("Arbitration worker started", zap.Int("policies", e.table.Len()))
	return nil
}

// Stop lowers the running flag, wakes the worker and waits for it to exit.
// A command still in the mailbox is dropped.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	done := e.done
	e.wake.Broadcast()
	e.idle.Broadcast()
	e.mu.Unlock()

	<-done
	e.logger.Info("Arbitration worker stopped")
}

// Running reports whether the worker is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// WaitIdle blocks until the mailbox is empty, the context ends or the engine
// stops with a command still pending.
func (e *Engine) WaitIdle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.idle.Broadcast()
		e.mu.Unlock()
	})
	defer stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	for e.box.occupied() {
		if !e.running {
			return ErrNotRunning
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		e.idle.Wait()
	}
	return nil
}

func (e *Engine) run(done chan struct{}) {
	defer close(done)

	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		for e.running && !e.box.occupied() {
			e.wake.Wait()
		}
		if !e.running {
			return
		}
		e.process()
	}
}

// process applies the pending command. Must be called with mu held.
func (e *Engine) process() {
	cmd := e.box.pending
	if cmd == nil {
		return
	}

	e.logger.Debug("Processing command",
		zap.String("command_id", cmd.id.String()),
		zap.String("state", cmd.holder.State.String()),
		zap.String("mode", cmd.holder.Mode),
		zap.Int32("app", cmd.holder.App))

	switch cmd.holder.State {
	case Granting:
		e.ledger.merge(cmd.releases)
		e.grant(cmd.holder)
	case Resuming:
		e.endMode(cmd.holder)
	case Teardown:
		e.shutdown(cmd.holder)
	}

	e.box.clear()
	e.dump()
	e.updateGauges()
	e.metrics.RecordCommand(cmd.holder.State.String())
	e.idle.Broadcast()
}
