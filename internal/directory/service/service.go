package service

import (
	"context"
	"errors"
	"log/slog"

	"cityline/internal/audit"
	"cityline/internal/directory/metrics"
	"cityline/internal/directory/models"
	"cityline/pkg/attrs"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/sentinel"
	"cityline/pkg/requestcontext"
)

type InstitutionStore interface {
	Create(ctx context.Context, inst *models.Institution) error
	FindByID(ctx context.Context, id domain.InstitutionID) (*models.Institution, error)
	List(ctx context.Context) ([]*models.Institution, error)
	FindFirstInDistrict(ctx context.Context, province, district string) (*models.Institution, error)
	FindFirstInProvince(ctx context.Context, province string) (*models.Institution, error)
}

type DepartmentStore interface {
	Create(ctx context.Context, dept *models.DistrictDepartment) error
	FindByID(ctx context.Context, id domain.DepartmentID) (*models.DistrictDepartment, error)
	List(ctx context.Context) ([]*models.DistrictDepartment, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages the institution and department registry and resolves
// complaint assignments against it.
type Service struct {
	institutions   InstitutionStore
	departments    DepartmentStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(s *Service)

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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(institutions InstitutionStore, departments DepartmentStore, opts ...Option) *Service {
	s := &Service{institutions: institutions, departments: departments}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInstitutionParams carries validated-at-the-boundary input for
// institution registration.
type CreateInstitutionParams struct {
	Name         string
	Province     string
	District     string
	ContactEmail string
	ContactPhone string
}

func (s *Service) CreateInstitution(ctx context.Context, params CreateInstitutionParams) (*models.Institution, error) {
	inst, err := models.NewInstitution(
		domain.NewInstitutionID(),
		params.Name,
		params.Province,
		params.District,
		params.ContactEmail,
		params.ContactPhone,
		requestcontext.Now(ctx),
	)
	if err != nil {
		// Constructor invariants surface as validation errors at the API.
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.institutions.Create(ctx, inst); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "institution name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create institution")
	}

	s.logAudit(ctx, string(audit.EventInstitutionCreated),
		"institution_id", inst.ID.String(),
		"province", inst.Province,
		"district", inst.District)
	if s.metrics != nil {
		s.metrics.InstitutionCreated.Inc()
	}

	return inst, nil
}

func (s *Service) GetInstitution(ctx context.Context, id domain.InstitutionID) (*models.Institution, error) {
	inst, err := s.institutions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "institution not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load institution")
	}
	return inst, nil
}

func (s *Service) ListInstitutions(ctx context.Context) ([]*models.Institution, error) {
	institutions, err := s.institutions.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list institutions")
	}
	return institutions, nil
}

// CreateDepartmentParams carries input for district department registration.
type CreateDepartmentParams struct {
	Name         string
	District     string
	ContactEmail string
	ContactPhone string
}

func (s *Service) CreateDepartment(ctx context.Context, params CreateDepartmentParams) (*models.DistrictDepartment, error) {
	dept, err := models.NewDistrictDepartment(
		domain.NewDepartmentID(),
		params.Name,
		params.District,
		params.ContactEmail,
		params.ContactPhone,
		requestcontext.Now(ctx),
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, err
	}

	if err := s.departments.Create(ctx, dept); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "department name must be unique within its district")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create department")
	}

	s.logAudit(ctx, string(audit.EventDepartmentCreated),
		"department_id", dept.ID.String(),
		"district", dept.District)
	if s.metrics != nil {
		s.metrics.DepartmentCreated.Inc()
	}

	return dept, nil
}

func (s *Service) GetDepartment(ctx context.Context, id domain.DepartmentID) (*models.DistrictDepartment, error) {
	dept, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "department not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load department")
	}
	return dept, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]*models.DistrictDepartment, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list departments")
	}
	return departments, nil
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
		Subject: attrs.First(attributes, "institution_id", "department_id"),
		Action:  event,
		Reason:  attrs.ExtractString(attributes, "reason"),
	})
}
