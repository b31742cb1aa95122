package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/mssola/useragent"

	"cityline/pkg/requestcontext"
)

// Publisher enriches audit events and hands them to the worker through a
// bounded channel. Emission never blocks a request: when the channel is full
// the event is dropped and counted, audit being best-effort by contract.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

// Emit fills in whatever the caller left blank: timestamp, category derived
// from the action, and request-scoped actor, request ID, and client string.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Category == "" {
		event.Category = EventKind(event.Action).Category()
	}
	if event.ActorID == "" {
		if actor := requestcontext.Actor(ctx); !actor.IsZero() {
			event.ActorID = actor.ID.String()
		}
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Client == "" {
		event.Client = describeClient(requestcontext.UserAgent(ctx))
	}

	select {
	case p.inbox <- event:
		return nil
	default:
		p.logger.Warn("audit inbox full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
		return nil
	}
}

// describeClient reduces a raw User-Agent header to "browser version / OS".
// Non-browser callers (curl, SDKs) fall back to the raw string.
func describeClient(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	out := name
	if version != "" {
		out += " " + version
	}
	if os := ua.OS(); os != "" {
		out += " / " + os
	}
	return out
}
