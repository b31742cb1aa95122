package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the structured log. It is the fallback
// when no provider is configured, so development runs see every message
// without reaching external APIs.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Channel() string { return ChannelLog }

func (s *LogSender) Deliver(ctx context.Context, n Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"kind", string(n.Kind),
		"tracking_number", n.Subject,
		"subject", Subject(n),
		"body", Body(n),
		"has_email", n.Recipient.Email != "",
		"has_phone", n.Recipient.Phone != "",
	)
	return nil
}
