package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "MODEMANAGER"

// DefaultPolicyFile is where the target image installs the mode policy.
const DefaultPolicyFile = "/usr/share/mode/defaultmode.xml"

// Config holds all application configuration.
type Config struct {
	HTTP      HTTPConfig
	GRPC      GRPCConfig
	Policy    PolicyConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host string `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	Port string `envconfig:"HTTP_PORT" default:"8470"`
}

// GRPCConfig holds gRPC server configuration.
type GRPCConfig struct {
	Address string `envconfig:"GRPC_ADDR" default:"127.0.0.1:8471"`
	Enabled bool   `envconfig:"GRPC_ENABLED" default:"true"`
}

// PolicyConfig locates the mode policy file.
type PolicyConfig struct {
	File string `envconfig:"POLICY_FILE" default:"/usr/share/mode/defaultmode.xml"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"200"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"400"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// NotifyConfig holds outbound notification configuration.
type NotifyConfig struct {
	QueueSize      int           `envconfig:"NOTIFY_QUEUE" default:"256"`
	WebhookURL     string        `envconfig:"WEBHOOK_URL"`
	WebhookTimeout time.Duration `envconfig:"WEBHOOK_TIMEOUT" default:"2s"`
}

// HTTPAddr returns the host:port the HTTP server listens on.
func (c *Config) HTTPAddr() string {
	return c.HTTP.Host + ":" + c.HTTP.Port
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot express as tags.
func (c *Config) Validate() error {
	if c.Notify.QueueSize <= 0 {
		return fmt.Errorf("notify queue size must be positive, got %d", c.Notify.QueueSize)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit rps must be positive, got %d", c.RateLimit.RequestsPerSecond)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Host: "127.0.0.1",
			Port: "8470",
		},
		GRPC: GRPCConfig{
			Address: "127.0.0.1:8471",
			Enabled: true,
		},
		Policy: PolicyConfig{
			File: DefaultPolicyFile,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 200,
			Burst:             400,
			Enabled:           true,
		},
		Notify: NotifyConfig{
			QueueSize:      256,
			WebhookTimeout: 2 * time.Second,
		},
	}
}
