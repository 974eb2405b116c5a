package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Webhook posts notifications as JSON to an HTTP endpoint
type Webhook struct {
	url     string
	client  *resty.Client
	breaker *resilience.Breaker
}

// WebhookOption customizes a webhook sink
type WebhookOption func(*resilience.Settings)

// WithBreakerSettings replaces the default circuit breaker settings
func WithBreakerSettings(settings resilience.Settings) WebhookOption {
	return func(s *resilience.Settings) {
		onChange := s.OnStateChange
		*s = settings
		if s.OnStateChange == nil {
			s.OnStateChange = onChange
		}
	}
}

// NewWebhook creates a webhook sink. Deliveries are not retried; after three
// consecutive failures the endpoint is skipped for ten seconds.
func NewWebhook(url string, timeout time.Duration, logger *logging.Logger, opts ...WebhookOption) *Webhook {
	if logger == nil {
		logger = logging.NewNop()
	}
	log := logger.Named("webhook")

	// Pooled transport only; retries stay disabled
	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	client := resty.New().
		SetTransport(pooled.HTTPClient.Transport).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetHeader("User-Agent", "modemanager-webhook/1.0").
		SetHeader("Content-Type", "application/json")

	settings := resilience.Settings{
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to resilience.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}

	return &Webhook{
		url:     url,
		client:  client,
		breaker: resilience.New("webhook", settings),
	}
}

func (w *Webhook) Name() string { return "webhook" }

// Breaker exposes the circuit breaker guarding the endpoint
func (w *Webhook) Breaker() *resilience.Breaker { return w.breaker }

// Deliver posts n once
func (w *Webhook) Deliver(ctx context.Context, n types.Notification) error {
	return w.breaker.Do(func() error {
		resp, err := w.client.R().
			SetContext(ctx).
			SetBody(n).
			Post(w.url)
		if err != nil {
			return fmt.Errorf("webhook post: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("webhook post: unexpected status %d", resp.StatusCode())
		}
		return nil
	})
}
