// Package grpc serves the arbitration engine over gRPC and provides the
// matching client used by the command line tool.
//
// The service is described by hand rather than generated from protobuf:
// messages are the plain structs of the types package, serialized as JSON by
// a codec registered under the "json" content subtype.
//
// Service modemanager.ModeManager:
//   - ChangeMode: admission control for a mode request
//   - ReleaseResourceDone: release acknowledgement
//   - EndMode: end a held mode
//   - Suspend / Resume: system power transitions
//   - GetState: engine snapshot
//   - Watch: server stream of notifications
//
// Example Usage:
//
//	client, err := grpc.NewClient("127.0.0.1:8471")
//	admitted, err := client.ChangeMode(ctx, "radio", 2, false)
package grpc
