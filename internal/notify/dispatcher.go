package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("notification queue full")
	ErrClosed    = errors.New("dispatcher closed")
)

// DefaultQueueSize bounds the notifications waiting for delivery
const DefaultQueueSize = 256

// Dispatcher turns engine callbacks into notifications and delivers them
// asynchronously to its sinks.
type Dispatcher struct {
	queue   chan types.Notification
	sinks   []Sink
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	started bool
	now     func() time.Time
}

// NewDispatcher creates a dispatcher; Start launches delivery
func NewDispatcher(logger *logging.Logger, queueSize int, sinks ...Sink) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{
		queue:  make(chan types.Notification, queueSize),
		sinks:  sinks,
		logger: logger.Named("notify"),
		done:   make(chan struct{}),
		now:    time.Now,
	}
}

// WithMetrics adds metrics tracking to the dispatcher
func (d *Dispatcher) WithMetrics(metrics *monitoring.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// Start launches the delivery goroutine
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	go d.run()
}

// Close stops accepting notifications and waits until the queued ones are
// delivered or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	started := d.started
	close(d.queue)
	d.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) ModeChanged(mode string, app int32) {
	d.enqueue(types.Notification{Signal: types.SignalChangedMode, Mode: mode, App: app})
}

func (d *Dispatcher) ReleaseResource(resources types.Resource, app int32) {
	d.enqueue(types.Notification{Signal: types.SignalReleaseResource, Resources: resources, App: app})
}

func (d *Dispatcher) ModeEnded(mode string, app int32) {
	d.enqueue(types.Notification{Signal: types.SignalEndedMode, Mode: mode, App: app})
}

func (d *Dispatcher) Suspended() {
	d.enqueue(types.Notification{Signal: types.SignalSuspendMode})
}

func (d *Dispatcher) Resumed() {
	d.enqueue(types.Notification{Signal: types.SignalResumeMode})
}

// enqueue never blocks; a full or closed queue drops the notification
func (d *Dispatcher) enqueue(n types.Notification) {
	n.ID = id.NewEventID().String()
	n.Timestamp = d.now()

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(n, "closed", ErrClosed)
		return
	}
	select {
	case d.queue <- n:
	default:
		d.drop(n, "dropped", ErrQueueFull)
	}
}

func (d *Dispatcher) drop(n types.Notification, status string, err error) {
	d.metrics.RecordNotification(string(n.Signal), status)
	d.logger.Error("Notification not delivered",
		zap.String("id", n.ID),
		zap.String("signal", string(n.Signal)),
		zap.Int32("app", n.App),
		zap.Error(err))
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n types.Notification) {
	ctx := context.Background()
	failed := false
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, n); err != nil {
			failed = true
			d.metrics.RecordNotification(string(n.Signal), "failed")
			d.logger.Error("Notification delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("id", n.ID),
				zap.String("signal", string(n.Signal)),
				zap.Error(err))
		}
	}
	if !failed {
		d.metrics.RecordNotification(string(n.Signal), "delivered")
	}
}
