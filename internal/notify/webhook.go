package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"cityline/pkg/platform/circuit"
)

// WebhookSender posts every notification to a configured HTTP endpoint,
// typically an operations integration or a test sink. A circuit breaker
// guards the endpoint: after a run of failed posts the sender fails fast and
// lets the manager's retry schedule probe the endpoint back to health.
type WebhookSender struct {
	client  *resty.Client
	url     string
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// webhookPayload is the JSON body posted to the endpoint.
type webhookPayload struct {
	Kind           string            `json:"kind"`
	TrackingNumber string            `json:"tracking_number"`
	Subject        string            `json:"subject"`
	Body           string            `json:"body"`
	Payload        map[string]string `json:"payload"`
	SentAt         time.Time         `json:"sent_at"`
}

// NewWebhookSender constructs a sender posting to url.
func NewWebhookSender(url string, logger *slog.Logger) *WebhookSender {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "cityline-notify")
	return &WebhookSender{
		client:  client,
		url:     url,
		breaker: circuit.New("webhook"),
		logger:  logger,
	}
}

func (s *WebhookSender) Channel() string { return ChannelWebhook }

// probeTimeout bounds posts while the circuit is open so workers are not
// parked on a dead endpoint for the full client timeout.
const probeTimeout = 2 * time.Second

func (s *WebhookSender) Deliver(ctx context.Context, n Notification) error {
	if s.breaker.IsOpen() {
		// Probe instead of skip: the manager retries deliveries anyway, and
		// successful probes are what close the circuit again.
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, probeTimeout)
		defer cancel()
	}

	if err := s.post(ctx, n); err != nil {
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.WarnContext(ctx, "webhook endpoint unhealthy, circuit opened",
				"url", s.url,
				"error", err.Error(),
			)
		}
		return err
	}

	if _, change := s.breaker.RecordSuccess(); change.Closed {
		s.logger.InfoContext(ctx, "webhook endpoint recovered, circuit closed", "url", s.url)
	}
	return nil
}

func (s *WebhookSender) post(ctx context.Context, n Notification) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookPayload{
			Kind:           string(n.Kind),
			TrackingNumber: n.Subject,
			Subject:        Subject(n),
			Body:           Body(n),
			Payload:        n.Payload,
			SentAt:         time.Now().UTC(),
		}).
		Post(s.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("post webhook: endpoint returned status %d", resp.StatusCode())
	}
	return nil
}
