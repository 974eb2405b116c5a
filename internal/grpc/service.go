package grpc

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "modemanager.ModeManager"

// Empty is the message of calls without arguments or results
type Empty struct{}

// ChangeModeRequest asks for a mode. Wait holds the answer until the worker
// has committed the admitted command.
type ChangeModeRequest struct {
	Mode string `json:"mode" binding:"required"`
	App  int32  `json:"app"`
	Wait bool   `json:"wait,omitempty"`
}

// ModeManagerServer is the server API of the service
type ModeManagerServer interface {
	ChangeMode(context.Context, *ChangeModeRequest) (*types.ModeResult, error)
	ReleaseResourceDone(context.Context, *types.ReleaseRequest) (*Empty, error)
	EndMode(context.Context, *types.ModeRequest) (*types.EndResult, error)
	Suspend(context.Context, *Empty) (*Empty, error)
	Resume(context.Context, *Empty) (*Empty, error)
	GetState(context.Context, *Empty) (*types.StateView, error)
	Watch(*Empty, WatchServer) error
}

// WatchServer is the server side of the Watch stream
type WatchServer interface {
	Send(*types.Notification) error
	grpc.ServerStream
}

type watchServer struct {
	grpc.ServerStream
}

func (s *watchServer) Send(n *types.Notification) error {
	return s.ServerStream.SendMsg(n)
}

// RegisterModeManagerServer registers srv on s
func RegisterModeManagerServer(s grpc.ServiceRegistrar, srv ModeManagerServer) {
	s.RegisterService(&serviceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds a method handler decoding Req and dispatching to call
func unary[Req any, Resp any](name string, call func(ModeManagerServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ModeManagerServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(ModeManagerServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(ModeManagerServer).Watch(in, &watchServer{stream})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ModeManagerServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ChangeMode", ModeManagerServer.ChangeMode),
		unary("ReleaseResourceDone", ModeManagerServer.ReleaseResourceDone),
		unary("EndMode", ModeManagerServer.EndMode),
		unary("Suspend", ModeManagerServer.Suspend),
		unary("Resume", ModeManagerServer.Resume),
		unary("GetState", ModeManagerServer.GetState),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Watch",
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "modemanager",
}
