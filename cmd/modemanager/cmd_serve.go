package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/server"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	configFile string
	debug      bool
	dev        bool
	httpPort   string
	grpcAddr   string
	noGRPC     bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the arbitration daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.apply(cfg)
			return runServe(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config-file", "c", "", "policy file (xml, yaml, toml or json)")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "log at debug level")
	flags.BoolVar(&opts.dev, "dev", false, "development logging")
	flags.StringVar(&opts.httpPort, "http-port", "", "HTTP listen port")
	flags.StringVar(&opts.grpcAddr, "grpc-addr", "", "gRPC listen address")
	flags.BoolVar(&opts.noGRPC, "no-grpc", false, "disable the gRPC transport")
	return cmd
}

// apply overrides configuration with the flags that were set
func (o *serveOptions) apply(cfg *config.Config) {
	if o.configFile != "" {
		cfg.Policy.File = o.configFile
	}
	if o.dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	if o.httpPort != "" {
		cfg.HTTP.Port = o.httpPort
	}
	if o.grpcAddr != "" {
		cfg.GRPC.Address = o.grpcAddr
	}
	if o.noGRPC {
		cfg.GRPC.Enabled = false
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := server.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
