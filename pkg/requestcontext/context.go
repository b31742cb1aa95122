// Package requestcontext carries request-scoped values between the HTTP
// middleware that produces them and the services that consume them, without
// making services depend on net/http. Middleware writes through the With*
// functions; services and tests read through the typed getters, which return
// zero values when nothing was attached.
package requestcontext

import (
	"context"
	"time"

	"cityline/pkg/domain"
)

type (
	actorKey       struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

func value[T any](ctx context.Context, key any) T {
	v, _ := ctx.Value(key).(T)
	return v
}

// Actor returns the authenticated acting party, or the zero Actor when the
// request carried no credentials.
func Actor(ctx context.Context) domain.Actor {
	return value[domain.Actor](ctx, actorKey{})
}

// WithActor attaches the acting party.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ClientIP returns the client address recorded for the request.
func ClientIP(ctx context.Context) string {
	return value[string](ctx, clientIPKey{})
}

// UserAgent returns the client User-Agent recorded for the request.
func UserAgent(ctx context.Context) string {
	return value[string](ctx, userAgentKey{})
}

// WithClientMetadata attaches client IP and User-Agent together, the way the
// metadata middleware records them.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// RequestID returns the request correlation id.
func RequestID(ctx context.Context) string {
	return value[string](ctx, requestIDKey{})
}

// WithRequestID attaches the request correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the instant the request started, falling back to the wall
// clock outside a request (workers, tests that did not pin one). Deadline
// math, urgency snapshots, and resolution stamps all read the clock through
// here so a single request observes one consistent instant.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request clock; used by the request-time middleware and by
// tests that need deterministic time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
