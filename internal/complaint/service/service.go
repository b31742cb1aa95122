// Package service implements complaint intake, tracking, lifecycle and
// forwarding. Every mutation goes through optimistic versioning on the
// complaint row; multi-write operations run inside a single transaction via
// pkg/platform/tx so the forwarding record and the complaint row can never
// diverge.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"

	"cityline/internal/audit"
	"cityline/internal/complaint/metrics"
	"cityline/internal/complaint/models"
	dirmodels "cityline/internal/directory/models"
	"cityline/internal/notify"
	"cityline/pkg/attrs"
	"cityline/pkg/domain"
	"cityline/pkg/platform/tx"
	"cityline/pkg/requestcontext"
)

// ComplaintStore is the persistence boundary for complaints. Update applies
// compare-and-swap on the stored version and reports a conflict when the row
// moved underneath the caller.
type ComplaintStore interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id domain.ComplaintID) (*models.Complaint, error)
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Complaint, error)
	Update(ctx context.Context, c *models.Complaint) error
}

// ForwardingStore persists the append-only forwarding history.
type ForwardingStore interface {
	Append(ctx context.Context, record *models.ForwardingRecord) error
	ListByComplaint(ctx context.Context, id domain.ComplaintID) ([]*models.ForwardingRecord, error)
}

// Directory answers institution and department lookups. Resolve picks the
// responsible institution for a location and is the single routing decision
// made at intake.
type Directory interface {
	Resolve(ctx context.Context, province, district string) (*dirmodels.Institution, error)
	GetInstitution(ctx context.Context, id domain.InstitutionID) (*dirmodels.Institution, error)
	GetDepartment(ctx context.Context, id domain.DepartmentID) (*dirmodels.DistrictDepartment, error)
}

// AuditPublisher receives audit events emitted from domain logic.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Dispatcher enqueues a notification for asynchronous delivery. Send returns
// an error only when the notification could not be accepted; delivery itself
// is never awaited.
type Dispatcher interface {
	Send(ctx context.Context, n notify.Notification) error
}

// Service coordinates complaint operations across stores, the institution
// directory, and the notification dispatcher.
type Service struct {
	complaints  ComplaintStore
	forwardings ForwardingStore
	directory   Directory

	db             tx.Beginner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	notifier       Dispatcher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithNotifier(notifier Dispatcher) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDB provides the database handle used to open transactions for
// multi-write operations. Without it (memory-backed deployments) those
// operations run non-transactionally against the stores.
func WithDB(db tx.Beginner) Option {
	return func(s *Service) {
		s.db = db
	}
}

func New(complaints ComplaintStore, forwardings ForwardingStore, directory Directory, opts ...Option) *Service {
	s := &Service{
		complaints:  complaints,
		forwardings: forwardings,
		directory:   directory,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NotificationStatus reports what happened to the notification a mutation
// tried to enqueue. Delivery is asynchronous and best-effort; this is the
// only signal callers receive, and no value here ever fails the operation.
type NotificationStatus string

const (
	// NotificationQueued means the dispatcher accepted the notification.
	NotificationQueued NotificationStatus = "queued"
	// NotificationDropped means the dispatcher rejected it, typically a full
	// queue. The triggering operation still succeeded.
	NotificationDropped NotificationStatus = "dropped"
	// NotificationSkipped means no dispatcher is configured or the operation
	// produced nothing to send.
	NotificationSkipped NotificationStatus = "skipped"
)

func (s *Service) dispatch(ctx context.Context, n notify.Notification) NotificationStatus {
	if s.notifier == nil {
		return NotificationSkipped
	}
	if err := s.notifier.Send(ctx, n); err != nil {
		s.logger.WarnContext(ctx, "notification not enqueued",
			"request_id", requestcontext.RequestID(ctx),
			"kind", string(n.Kind),
			"subject", n.Subject,
			"error", err.Error(),
		)
		return NotificationDropped
	}
	return NotificationQueued
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Subject: attrs.First(attributes, "complaint_id", "tracking_number"),
		Action:  event,
		Reason:  attrs.ExtractString(attributes, "reason"),
	})
}
