package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	grpcapi "github.com/GriffinCanCode/AgentOS/modemanager/internal/grpc"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ctlOptions struct {
	addr    string
	timeout time.Duration
}

// call opens a client, runs fn under the call timeout and closes the client
func (o *ctlOptions) call(cmd *cobra.Command, fn func(context.Context, *grpcapi.Client) error) error {
	client, err := grpcapi.NewClient(o.addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
	defer cancel()
	return fn(ctx, client)
}

func parseApp(s string) (int32, error) {
	app, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid application id %q: %w", s, err)
	}
	return int32(app), nil
}

func newCtlCmd() *cobra.Command {
	opts := &ctlOptions{}

	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Drive a running daemon over gRPC",
	}
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", config.Default().GRPC.Address, "daemon gRPC address")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per call timeout")

	cmd.AddCommand(
		newChangeModeCmd(opts),
		newEndModeCmd(opts),
		newReleaseDoneCmd(opts),
		&cobra.Command{
			Use:   "suspend",
			Short: "Drop every holder",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.call(cmd, func(ctx context.Context, c *grpcapi.Client) error {
					return c.Suspend(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "resume",
			Short: "Announce resume",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.call(cmd, func(ctx context.Context, c *grpcapi.Client) error {
					return c.Resume(ctx)
				})
			},
		},
		newStateCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

func newChangeModeCmd(opts *ctlOptions) *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "change-mode MODE APP",
		Short: "Request a mode for an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := parseApp(args[1])
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c *grpcapi.Client) error {
				admitted, err := c.ChangeMode(ctx, args[0], app, wait)
				if err != nil {
					return err
				}
				if admitted {
					fmt.Fprintln(cmd.OutOrStdout(), "admitted")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "rejected")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "return after the change is applied")
	return cmd
}

func newEndModeCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "end-mode MODE APP",
		Short: "End a mode held by an application",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := parseApp(args[1])
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c *grpcapi.Client) error {
				accepted, err := c.EndMode(ctx, args[0], app)
				if err != nil {
					return err
				}
				if accepted {
					fmt.Fprintln(cmd.OutOrStdout(), "accepted")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "not held")
				}
				return nil
			})
		},
	}
}

func newReleaseDoneCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "release-done RESOURCES APP",
		Short: "Acknowledge a release, e.g. release-done display|audio 2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := types.ParseResource(args[0])
			if err != nil {
				return err
			}
			app, err := parseApp(args[1])
			if err != nil {
				return err
			}
			return opts.call(cmd, func(ctx context.Context, c *grpcapi.Client) error {
				return c.ReleaseDone(ctx, resources, app)
			})
		},
	}
}

func newStateCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the arbitration state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.call(cmd, func(ctx context.Context, c *grpcapi.Client) error {
				state, err := c.State(ctx)
				if err != nil {
					return err
				}
				data, err := sonic.ConfigStd.MarshalIndent(state, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
}

func newWatchCmd(opts *ctlOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := grpcapi.NewClient(opts.addr)
			if err != nil {
				return err
			}
			defer client.Close()

			stream, err := client.Watch(cmd.Context())
			if err != nil {
				return err
			}
			for {
				n, err := stream.Recv()
				if err != nil {
					if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
						return nil
					}
					return err
				}
				printNotification(cmd.OutOrStdout(), n)
			}
		},
	}
}

func printNotification(w io.Writer, n *types.Notification) {
	ts := n.Timestamp.Format(time.RFC3339Nano)
	switch n.Signal {
	case types.SignalReleaseResource:
		fmt.Fprintf(w, "%s %s resources=%s app=%d\n", ts, n.Signal, n.Resources, n.App)
	case types.SignalSuspendMode, types.SignalResumeMode:
		fmt.Fprintf(w, "%s %s\n", ts, n.Signal)
	default:
		fmt.Fprintf(w, "%s %s mode=%s app=%d\n", ts, n.Signal, n.Mode, n.App)
	}
}
