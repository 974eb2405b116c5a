package arbiter

import (
	"sync"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
)

// Engine owns the resource stacks, the release ledger and the mailbox.
type Engine struct {
	mu   sync.Mutex
	wake *sync.Cond // command published or stop requested
	idle *sync.Cond // mailbox drained or stop requested

	audio   stack  // Protected by mu
	display stack  // Protected by mu
	tuner   stack  // Protected by mu
	ledger  ledger // Protected by mu
	box     mailbox
	running bool
	done    chan struct{}

	table    *policy.Table
	notifier Notifier
	logger   *logging.Logger
	metrics  *monitoring.Metrics
}

// New creates an engine over an immutable policy table. All stacks start
// empty; the home application is expected to request its mode at startup.
func New(table *policy.Table, notifier Notifier, logger *logging.Logger) *Engine {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		table:    table,
		notifier: notifier,
		logger:   logger.Named("arbiter"),
	}
	e.wake = sync.NewCond(&e.mu)
	e.idle = sync.NewCond(&e.mu)
	return e
}

// WithMetrics adds metrics tracking to the engine
func (e *Engine) WithMetrics(metrics *monitoring.Metrics) *Engine {
	e.metrics = metrics
	return e
}

// lookup resolves a policy record, logging misses at warning level.
func (e *Engine) lookup(mode string, app int32) (policy.Entry, bool) {
	entry, err := e.table.Lookup(mode, app)
	if err != nil {
		e.logger.Warn("Policy miss", zap.String("mode", mode), zap.Int32("app", app), zap.Error(err))
		return policy.Entry{}, false
	}
	return entry, true
}

func (e *Engine) changed(mode string, app int32) {
	e.notifier.ModeChanged(mode, app)
}

func (e *Engine) release(r types.Resource, app int32) {
	e.notifier.ReleaseResource(r, app)
}

// announceDisplay makes the display top visible: the overlay goes first for a
// shared display, a full takeover releases the overlay instead.
func (e *Engine) announceDisplay() {
	if e.display.empty() {
		return
	}
	top := e.display.top()
	if top.Full {
		e.release(types.ResourceDisplay, policy.OverlayApp)
	} else {
		e.changed(policy.OverlayMode, policy.OverlayApp)
	}
	e.changed(top.Mode, top.App)
}

func (e *Engine) updateGauges() {
	if e.metrics == nil {
		return
	}
	e.metrics.SetStackDepth("audio", len(e.audio))
	e.metrics.SetStackDepth("display", len(e.display))
	e.metrics.SetStackDepth("tuner", len(e.tuner))
	e.metrics.SetLedgerPending(e.ledger.len())
}
