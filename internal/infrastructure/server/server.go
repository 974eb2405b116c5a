package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	apihttp "github.com/GriffinCanCode/AgentOS/modemanager/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/arbiter"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	grpcapi "github.com/GriffinCanCode/AgentOS/modemanager/internal/grpc"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/notify"
)

// ShutdownTimeout bounds the graceful part of shutdown
const ShutdownTimeout = 5 * time.Second

// Server wires the engine to its transports and owns their lifecycle
type Server struct {
	config      *config.Config
	logger      *logging.Logger
	metrics     *monitoring.Metrics
	tracer      *tracing.Tracer
	table       *policy.Table
	engine      *arbiter.Engine
	dispatcher  *notify.Dispatcher
	broadcaster *notify.Broadcaster
	router      *gin.Engine
	httpServer  *http.Server
	grpcServer  *grpc.Server

	httpListener net.Listener
	grpcListener net.Listener
}

// NewLogger builds the process logger from configuration
func NewLogger(cfg config.LogConfig) (*logging.Logger, error) {
	logCfg := logging.DefaultConfig()
	if cfg.Development {
		logCfg = logging.DevelopmentConfig()
	}
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	return logging.New(logCfg)
}

// NewServer loads the policy table and builds every component. Nothing
// listens until Listen or Run is called.
func NewServer(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	logger.Info("Initializing mode manager",
		zap.String("http_addr", cfg.HTTPAddr()),
		zap.String("grpc_addr", cfg.GRPC.Address),
		zap.Bool("grpc_enabled", cfg.GRPC.Enabled),
		zap.String("policy_file", cfg.Policy.File),
	)

	entries, err := policy.Load(cfg.Policy.File)
	if err != nil {
		return nil, err
	}
	for _, dup := range policy.Duplicates(entries) {
		logger.Warn("Duplicate policy record ignored", zap.String("policy", dup.String()))
	}
	table := policy.New(entries)
	logger.Info("Policy table loaded",
		zap.Int("records", table.Len()),
		zap.String("fingerprint", table.Fingerprint()))

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	tracer := tracing.New("modemanager", logger)

	broadcaster := notify.NewBroadcaster(notify.DefaultSubscriberBuffer)
	sinks := []notify.Sink{notify.NewLogSink(logger), broadcaster}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout, logger))
		logger.Info("Webhook notifications enabled", zap.String("url", cfg.Notify.WebhookURL))
	}
	dispatcher := notify.NewDispatcher(logger, cfg.Notify.QueueSize, sinks...).WithMetrics(metrics)

	engine := arbiter.New(table, dispatcher, logger).WithMetrics(metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rateCfg := middleware.DefaultRateLimitConfig()
		rateCfg.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rateCfg.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rateCfg))
	}

	handlers := apihttp.NewHandlers(engine, table, logger)
	handlers.Register(router)

	wsHandler := ws.NewHandler(broadcaster, logger).WithMetrics(metrics)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s := &Server{
		config:      cfg,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		table:       table,
		engine:      engine,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		router:      router,
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if cfg.GRPC.Enabled {
		s.grpcServer = grpcapi.NewGRPCServer(
			grpcapi.NewServer(engine, broadcaster, logger).WithMetrics(metrics),
			grpcapi.ServerOptions{Tracer: tracer, Metrics: metrics},
		)
	}

	logger.Info("Server initialized successfully")
	return s, nil
}

// Engine exposes the arbitration engine
func (s *Server) Engine() *arbiter.Engine { return s.engine }

// Handler exposes the HTTP router
func (s *Server) Handler() http.Handler { return s.router }

// Listen binds the HTTP and gRPC listeners
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.config.HTTPAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.HTTPAddr(), err)
	}
	s.httpListener = lis

	if s.grpcServer != nil {
		lis, err := net.Listen("tcp", s.config.GRPC.Address)
		if err != nil {
			s.httpListener.Close()
			return fmt.Errorf("failed to listen on %s: %w", s.config.GRPC.Address, err)
		}
		s.grpcListener = lis
	}
	return nil
}

// HTTPAddr returns the bound HTTP address, valid after Listen
func (s *Server) HTTPAddr() string {
	if s.httpListener == nil {
		return ""
	}
	return s.httpListener.Addr().String()
}

// GRPCAddr returns the bound gRPC address, valid after Listen
func (s *Server) GRPCAddr() string {
	if s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// Run listens and serves until ctx ends
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve starts the worker and both transports on the bound listeners and
// shuts everything down when ctx ends or a transport fails.
func (s *Server) Serve(ctx context.Context) error {
	if s.httpListener == nil {
		return errors.New("server is not listening")
	}
	if err := s.engine.Start(); err != nil {
		return err
	}
	s.dispatcher.Start()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.HTTPAddr()))
		if err := s.httpServer.Serve(s.httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		g.Go(func() error {
			s.logger.Info("Starting gRPC server", zap.String("addr", s.GRPCAddr()))
			if err := s.grpcServer.Serve(s.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

// shutdown ends streams first so graceful stops do not wait on them, then
// stops the worker and drains notifications.
func (s *Server) shutdown() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.broadcaster.Close()

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if s.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			s.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			s.grpcServer.Stop()
		}
	}

	s.engine.Stop()

	if err := s.dispatcher.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("notification drain: %w", err))
	}
	s.tracer.Close()

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("Shutdown incomplete", zap.Error(err))
		return err
	}
	s.logger.Info("Server stopped")
	_ = s.logger.Sync()
	return nil
}
