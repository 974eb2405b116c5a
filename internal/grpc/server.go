package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/arbiter"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/notify"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// DefaultWaitTimeout bounds a ChangeMode call that waits for the commit
const DefaultWaitTimeout = 5 * time.Second

// Engine is the arbitration surface the service drives
type Engine interface {
	RequestMode(mode string, app int32) bool
	EndMode(mode string, app int32) bool
	ReleaseDone(resources types.Resource, app int32)
	Suspend()
	Resume()
	Snapshot() types.StateView
	WaitIdle(ctx context.Context) error
}

// Server implements ModeManagerServer on top of the engine
type Server struct {
	engine      Engine
	broadcaster *notify.Broadcaster
	logger      *logging.Logger
	metrics     *monitoring.Metrics
	validate    *validator.Validate
	waitTimeout time.Duration
}

// NewServer creates the service implementation
func NewServer(engine Engine, broadcaster *notify.Broadcaster, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	v := validator.New()
	v.SetTagName("binding")
	return &Server{
		engine:      engine,
		broadcaster: broadcaster,
		logger:      logger.Named("grpc"),
		validate:    v,
		waitTimeout: DefaultWaitTimeout,
	}
}

// WithMetrics adds subscriber tracking to the server
func (s *Server) WithMetrics(metrics *monitoring.Metrics) *Server {
	s.metrics = metrics
	return s
}

func (s *Server) check(req interface{}) error {
	if err := s.validate.Struct(req); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

// ChangeMode runs admission control
func (s *Server) ChangeMode(ctx context.Context, req *ChangeModeRequest) (*types.ModeResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	admitted := s.engine.RequestMode(req.Mode, req.App)
	if admitted && req.Wait {
		ctx, cancel := context.WithTimeout(ctx, s.waitTimeout)
		defer cancel()

		if err := s.engine.WaitIdle(ctx); err != nil {
			switch {
			case errors.Is(err, arbiter.ErrNotRunning):
				return nil, status.Error(codes.Unavailable, err.Error())
			case errors.Is(err, context.DeadlineExceeded):
				return nil, status.Error(codes.DeadlineExceeded, err.Error())
			default:
				return nil, status.FromContextError(err).Err()
			}
		}
	}
	return &types.ModeResult{Admitted: admitted}, nil
}

// ReleaseResourceDone records a release acknowledgement
func (s *Server) ReleaseResourceDone(_ context.Context, req *types.ReleaseRequest) (*Empty, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	s.engine.ReleaseDone(req.Resources, req.App)
	return &Empty{}, nil
}

// EndMode ends a held mode
func (s *Server) EndMode(_ context.Context, req *types.ModeRequest) (*types.EndResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	return &types.EndResult{Accepted: s.engine.EndMode(req.Mode, req.App)}, nil
}

// Suspend clears every stack
func (s *Server) Suspend(context.Context, *Empty) (*Empty, error) {
	s.engine.Suspend()
	return &Empty{}, nil
}

// Resume announces that the system resumed
func (s *Server) Resume(context.Context, *Empty) (*Empty, error) {
	s.engine.Resume()
	return &Empty{}, nil
}

// GetState returns the engine snapshot
func (s *Server) GetState(context.Context, *Empty) (*types.StateView, error) {
	state := s.engine.Snapshot()
	return &state, nil
}

// Watch streams notifications until the client leaves or the broadcaster closes
func (s *Server) Watch(_ *Empty, stream WatchServer) error {
	if s.broadcaster == nil {
		return status.Error(codes.Unimplemented, "notification stream disabled")
	}

	sub := s.broadcaster.Subscribe()
	defer sub.Close()

	s.metrics.AddSubscribers("grpc", 1)
	defer s.metrics.AddSubscribers("grpc", -1)

	log := s.logger.With(zap.String("subscriber_id", sub.ID.String()))
	log.Info("Watch subscriber connected")

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			log.Info("Watch subscriber disconnected", zap.Uint64("dropped", sub.Dropped()))
			return nil
		case n, ok := <-sub.C:
			if !ok {
				return status.Error(codes.Unavailable, "notification stream closed")
			}
			if err := stream.Send(&n); err != nil {
				return err
			}
		}
	}
}

// ServerOptions collects the cross-cutting concerns of the gRPC server
type ServerOptions struct {
	Tracer  *tracing.Tracer
	Metrics *monitoring.Metrics
}

// NewGRPCServer builds a grpc.Server with the service registered
func NewGRPCServer(srv *Server, opts ServerOptions) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{metricsUnaryInterceptor(opts.Metrics)}
	var stream []grpc.StreamServerInterceptor
	if opts.Tracer != nil {
		unary = append([]grpc.UnaryServerInterceptor{tracing.GRPCUnaryInterceptor(opts.Tracer)}, unary...)
		stream = append(stream, tracing.GRPCStreamInterceptor(opts.Tracer))
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: true,
		}),
	)
	RegisterModeManagerServer(s, srv)
	return s
}

func metricsUnaryInterceptor(metrics *monitoring.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		metrics.RecordGRPCCall(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
