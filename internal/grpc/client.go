package grpc

import (
	"context"
	"fmt"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Client wraps a connection to the mode manager service
type Client struct {
	conn *grpc.ClientConn
	addr string
}

// WithTracer propagates the caller's trace on unary calls
func WithTracer(tracer *tracing.Tracer) grpc.DialOption {
	return grpc.WithChainUnaryInterceptor(tracing.GRPCClientInterceptor(tracer))
}

// NewClient creates a client for addr. Extra options are applied after the
// defaults.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                60 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: false,
		}),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial mode manager: %w", err)
	}
	return &Client{conn: conn, addr: addr}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ChangeMode asks for mode on behalf of app. With wait set the call returns
// after the worker committed the command.
func (c *Client) ChangeMode(ctx context.Context, mode string, app int32, wait bool) (bool, error) {
	var out types.ModeResult
	req := &ChangeModeRequest{Mode: mode, App: app, Wait: wait}
	if err := c.conn.Invoke(ctx, fullMethod("ChangeMode"), req, &out); err != nil {
		return false, err
	}
	return out.Admitted, nil
}

// EndMode ends mode for app
func (c *Client) EndMode(ctx context.Context, mode string, app int32) (bool, error) {
	var out types.EndResult
	req := &types.ModeRequest{Mode: mode, App: app}
	if err := c.conn.Invoke(ctx, fullMethod("EndMode"), req, &out); err != nil {
		return false, err
	}
	return out.Accepted, nil
}

// ReleaseDone acknowledges a release request
func (c *Client) ReleaseDone(ctx context.Context, resources types.Resource, app int32) error {
	req := &types.ReleaseRequest{Resources: resources, App: app}
	return c.conn.Invoke(ctx, fullMethod("ReleaseResourceDone"), req, &Empty{})
}

// Suspend asks the engine to drop every holder
func (c *Client) Suspend(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Suspend"), &Empty{}, &Empty{})
}

// Resume announces resume
func (c *Client) Resume(ctx context.Context) error {
	return c.conn.Invoke(ctx, fullMethod("Resume"), &Empty{}, &Empty{})
}

// State fetches the engine snapshot
func (c *Client) State(ctx context.Context) (*types.StateView, error) {
	var out types.StateView
	if err := c.conn.Invoke(ctx, fullMethod("GetState"), &Empty{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WatchStream receives notifications from a Watch call
type WatchStream struct {
	stream grpc.ClientStream
}

// Recv blocks for the next notification
func (w *WatchStream) Recv() (*types.Notification, error) {
	n := new(types.Notification)
	if err := w.stream.RecvMsg(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Watch opens the notification stream. Cancel ctx to end it.
func (c *Client) Watch(ctx context.Context) (*WatchStream, error) {
	stream, err := c.conn.NewStream(ctx, &serviceDesc.Streams[0], fullMethod("Watch"))
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &WatchStream{stream: stream}, nil
}
