// Package config provides 12-factor configuration for the mode manager.
//
// Configuration is loaded from environment variables prefixed with
// MODEMANAGER_ and falls back to defaults suited to the target image. CLI flags
// override individual values.
//
// Configuration Sections:
//   - HTTP: inbound HTTP/WebSocket listener
//   - GRPC: inbound gRPC listener
//   - Policy: location of the mode policy file
//   - Logging: log level and output format
//   - RateLimit: per-client rate limiting of inbound HTTP requests
//   - Notify: outbound notification queue and optional webhook
//
// Environment Variables:
//   - MODEMANAGER_HTTP_HOST, MODEMANAGER_HTTP_PORT
//   - MODEMANAGER_GRPC_ADDR, MODEMANAGER_GRPC_ENABLED
//   - MODEMANAGER_POLICY_FILE
//   - MODEMANAGER_LOG_LEVEL, MODEMANAGER_LOG_DEV
//   - MODEMANAGER_RATE_LIMIT_RPS, MODEMANAGER_RATE_LIMIT_BURST, MODEMANAGER_RATE_LIMIT_ENABLED
//   - MODEMANAGER_NOTIFY_QUEUE, MODEMANAGER_WEBHOOK_URL, MODEMANAGER_WEBHOOK_TIMEOUT
package config
