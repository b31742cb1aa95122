package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"cityline/internal/notify/metrics"
	dErrors "cityline/pkg/domain-errors"
)

// Sender delivers a notification over one channel. Deliver is called from
// worker goroutines and must be safe for concurrent use.
type Sender interface {
	Channel() string
	Deliver(ctx context.Context, n Notification) error
}

const (
	ChannelEmail   = "email"
	ChannelSMS     = "sms"
	ChannelWebhook = "webhook"
	ChannelLog     = "log"
)

// retryDelayCap bounds the exponential backoff between delivery attempts.
const retryDelayCap = time.Minute

// delivery is one queued attempt of a notification on a single channel.
type delivery struct {
	notification Notification
	sender       Sender
	attempt      int
}

// Manager fans notifications out to the applicable senders through a bounded
// queue. Send only ever enqueues; workers deliver, retry with backoff, and
// give up after the configured attempts. Nothing a sender does can block a
// request handler.
type Manager struct {
	senders      []Sender
	queue        chan delivery
	workers      int
	maxRetries   int
	retryBackoff time.Duration
	limiters     map[string]*rate.Limiter
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(m *Manager)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

func WithQueueSize(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.queue = make(chan delivery, size)
		}
	}
}

func WithWorkers(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

func WithMaxRetries(n int) Option {
	return func(m *Manager) {
		if n >= 0 {
			m.maxRetries = n
		}
	}
}

func WithRetryBackoff(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retryBackoff = d
		}
	}
}

// WithRateLimit caps deliveries per second on every channel. Zero or
// negative disables limiting.
func WithRateLimit(perSecond float64) Option {
	return func(m *Manager) {
		if perSecond <= 0 {
			m.limiters = nil
			return
		}
		burst := max(int(perSecond), 1)
		m.limiters = make(map[string]*rate.Limiter, len(m.senders))
		for _, s := range m.senders {
			m.limiters[s.Channel()] = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewManager constructs a Manager over the given senders. Defaults: queue of
// 256, 4 workers, 3 retries, 5s base backoff, no rate limit.
func NewManager(senders []Sender, opts ...Option) *Manager {
	m := &Manager{
		senders:      senders,
		queue:        make(chan delivery, 256),
		workers:      4,
		maxRetries:   3,
		retryBackoff: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send enqueues the notification on every applicable channel. It returns an
// error only when the queue is full; acceptance says nothing about delivery.
func (m *Manager) Send(ctx context.Context, n Notification) error {
	enqueued := 0
	for _, sender := range m.senders {
		if !applies(sender.Channel(), n) {
			continue
		}
		select {
		case m.queue <- delivery{notification: n, sender: sender}:
			enqueued++
			m.count(func(mt *metrics.Metrics) { mt.Enqueued.WithLabelValues(sender.Channel()).Inc() })
		default:
			m.count(func(mt *metrics.Metrics) { mt.Dropped.WithLabelValues(sender.Channel()).Inc() })
			m.log(ctx, slog.LevelWarn, "notification queue full",
				"channel", sender.Channel(), "kind", string(n.Kind), "subject", n.Subject)
			return dErrors.New(dErrors.CodeInternal, "notification queue full")
		}
	}
	if enqueued == 0 {
		// No configured channel can reach this recipient; best-effort means
		// that is not an error.
		m.log(ctx, slog.LevelDebug, "notification has no deliverable channel",
			"kind", string(n.Kind), "subject", n.Subject)
	}
	return nil
}

// applies reports whether a channel can carry the notification. Email and
// SMS need recipient contacts; webhook and log observe everything.
func applies(channel string, n Notification) bool {
	switch channel {
	case ChannelEmail:
		return n.Recipient.Email != ""
	case ChannelSMS:
		return n.Recipient.Phone != ""
	default:
		return true
	}
}

// Run delivers queued notifications until the context is cancelled, then
// drains the queue before returning. Retries scheduled after cancellation
// are abandoned.
func (m *Manager) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for range m.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	wg.Wait()
	m.drain()
	return ctx.Err()
}

func (m *Manager) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-m.queue:
			m.deliver(ctx, d)
		}
	}
}

// drain flushes whatever is still queued after cancellation, without retries.
func (m *Manager) drain() {
	for {
		select {
		case d := <-m.queue:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			m.attempt(ctx, d)
			cancel()
		default:
			return
		}
	}
}

func (m *Manager) deliver(ctx context.Context, d delivery) {
	if limiter, ok := m.limiters[d.sender.Channel()]; ok {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
	}
	if err := m.attempt(ctx, d); err != nil {
		m.scheduleRetry(ctx, d)
	}
}

func (m *Manager) attempt(ctx context.Context, d delivery) error {
	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	err := d.sender.Deliver(deliverCtx, d.notification)
	if err != nil {
		m.count(func(mt *metrics.Metrics) { mt.Failed.WithLabelValues(d.sender.Channel()).Inc() })
		m.log(ctx, slog.LevelWarn, "notification delivery failed",
			"channel", d.sender.Channel(),
			"kind", string(d.notification.Kind),
			"subject", d.notification.Subject,
			"attempt", d.attempt+1,
			"error", err,
		)
		return err
	}
	m.count(func(mt *metrics.Metrics) { mt.Delivered.WithLabelValues(d.sender.Channel()).Inc() })
	return nil
}

// scheduleRetry re-enqueues the delivery after an exponential backoff, up to
// the retry budget. The timer goroutine dies with the context so shutdown is
// never held up by pending retries.
func (m *Manager) scheduleRetry(ctx context.Context, d delivery) {
	if d.attempt >= m.maxRetries {
		m.log(ctx, slog.LevelError, "notification abandoned after retries",
			"channel", d.sender.Channel(),
			"kind", string(d.notification.Kind),
			"subject", d.notification.Subject,
			"attempts", d.attempt+1,
		)
		return
	}
	d.attempt++
	m.count(func(mt *metrics.Metrics) { mt.Retried.WithLabelValues(d.sender.Channel()).Inc() })

	go func() {
		timer := time.NewTimer(m.backoff(d.attempt))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		select {
		case m.queue <- d:
		default:
			m.count(func(mt *metrics.Metrics) { mt.Dropped.WithLabelValues(d.sender.Channel()).Inc() })
		}
	}()
}

func (m *Manager) backoff(attempt int) time.Duration {
	d := m.retryBackoff << (attempt - 1)
	if d > retryDelayCap || d <= 0 {
		return retryDelayCap
	}
	return d
}

func (m *Manager) count(f func(mt *metrics.Metrics)) {
	if m.metrics != nil {
		f(m.metrics)
	}
}

func (m *Manager) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if m.logger != nil {
		m.logger.Log(ctx, level, msg, args...)
	}
}
