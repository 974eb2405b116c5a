package arbiter

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Snapshot returns a copy of the stacks, the ledger and the pending command.
func (e *Engine) Snapshot() types.StateView {
	e.mu.Lock()
	defer e.mu.Unlock()

	view := types.StateView{
		Audio:   views(e.audio),
		Display: views(e.display),
		Tuner:   views(e.tuner),
		Ledger:  e.ledger.toMap(),
	}
	if e.box.pending != nil {
		pending := e.box.pending.holder.view()
		view.Pending = &pending
	}
	return view
}

// Overwrites returns how many commands were replaced before processing.
func (e *Engine) Overwrites() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.box.overwrites
}

func views(s stack) []types.HolderView {
	out := make([]types.HolderView, len(s))
	for i, h := range s {
		out[i] = h.view()
	}
	return out
}

func names(s stack) []string {
	out := make([]string, len(s))
	for i, h := range s {
		out[i] = h.Entry.String()
	}
	return out
}

// dump logs every stack and the ledger at debug level.
func (e *Engine) dump() {
	if !e.logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}
	ledger := make([]string, 0, e.ledger.len())
	for _, entry := range e.ledger.entries {
		ledger = append(ledger, fmt.Sprintf("%d:%s", entry.app, entry.resources))
	}
	e.logger.Debug("Arbitration state",
		zap.Strings("audio", names(e.audio)),
		zap.Strings("display", names(e.display)),
		zap.Strings("tuner", names(e.tuner)),
		zap.Strings("ledger", ledger))
}
