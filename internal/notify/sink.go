package notify

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"go.uber.org/zap"
)

// Sink receives delivered notifications
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n types.Notification) error
}

// LogSink writes every notification to the debug log
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a log sink
func NewLogSink(logger *logging.Logger) *LogSink {
	return &LogSink{logger: logger.Named("signal")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(_ context.Context, n types.Notification) error {
	s.logger.Debug("Signal",
		zap.String("id", n.ID),
		zap.String("signal", string(n.Signal)),
		zap.String("mode", n.Mode),
		zap.Int32("app", n.App),
		zap.Stringer("resources", n.Resources))
	return nil
}
