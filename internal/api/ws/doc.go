// Package ws streams arbitration notifications over WebSocket.
//
// Each connection subscribes to the notification broadcaster and receives
// every notification emitted after it connected. A subscriber that falls
// behind loses notifications rather than slowing the engine down.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping, either the bare text "ping" or {"type":"ping"}
//
// Message Types (Server → Client):
//   - system: Sent once after the upgrade, carries the subscriber id
//   - notification: One arbitration notification
//   - pong: Answer to ping
//   - error: Unknown client message
//
// Example Usage:
//
//	handler := ws.NewHandler(broadcaster, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
