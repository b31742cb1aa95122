// Package handler exposes the admin API for managing institutions and
// district departments.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cityline/internal/directory/models"
	"cityline/internal/directory/service"
	"cityline/internal/platform/middleware"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/httputil"
	"cityline/pkg/requestcontext"
)

// Service defines the directory operations the handler depends on.
type Service interface {
	CreateInstitution(ctx context.Context, params service.CreateInstitutionParams) (*models.Institution, error)
	ListInstitutions(ctx context.Context) ([]*models.Institution, error)
	CreateDepartment(ctx context.Context, params service.CreateDepartmentParams) (*models.DistrictDepartment, error)
	ListDepartments(ctx context.Context) ([]*models.DistrictDepartment, error)
}

// Handler serves the institution and department admin endpoints.
type Handler struct {
	logger       *slog.Logger
	directory    Service
	jwtValidator middleware.JWTValidator
}

// New creates a new directory admin Handler.
func New(directory Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		directory:    directory,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the admin routes under /admin. Every route requires an
// authenticated admin.
func (h *Handler) Register(r chi.Router) {
	adminRouter := chi.NewRouter()
	adminRouter.Use(middleware.Recovery(h.logger))
	adminRouter.Use(middleware.RequestID)
	adminRouter.Use(middleware.RequestTime)
	adminRouter.Use(middleware.ClientMetadata)
	adminRouter.Use(middleware.Logger(h.logger))
	adminRouter.Use(middleware.Timeout(30 * time.Second))
	adminRouter.Use(middleware.ContentTypeJSON)
	adminRouter.Use(middleware.Latency)
	adminRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	adminRouter.Use(middleware.RequireRole(domain.RoleAdmin))

	adminRouter.Post("/institutions", h.handleCreateInstitution)
	adminRouter.Get("/institutions", h.handleListInstitutions)
	adminRouter.Post("/departments", h.handleCreateDepartment)
	adminRouter.Get("/departments", h.handleListDepartments)

	r.Mount("/admin", adminRouter)
}

func (h *Handler) handleCreateInstitution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateInstitutionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	inst, err := h.directory.CreateInstitution(ctx, service.CreateInstitutionParams{
		Name:         req.Name,
		Province:     req.Province,
		District:     req.District,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		h.logFailure(ctx, "failed to create institution", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, inst)
}

func (h *Handler) handleListInstitutions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	institutions, err := h.directory.ListInstitutions(ctx)
	if err != nil {
		h.logFailure(ctx, "failed to list institutions", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listInstitutionsResponse{Institutions: institutions})
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateDepartmentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	dept, err := h.directory.CreateDepartment(ctx, service.CreateDepartmentParams{
		Name:         req.Name,
		District:     req.District,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		h.logFailure(ctx, "failed to create department", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, dept)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	departments, err := h.directory.ListDepartments(ctx)
	if err != nil {
		h.logFailure(ctx, "failed to list departments", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listDepartmentsResponse{Departments: departments})
}

type listInstitutionsResponse struct {
	Institutions []*models.Institution `json:"institutions"`
}

type listDepartmentsResponse struct {
	Departments []*models.DistrictDepartment `json:"departments"`
}

// logFailure logs client-caused failures at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	level := slog.LevelError
	switch dErrors.CodeOf(err) {
	case dErrors.CodeValidation, dErrors.CodeBadRequest, dErrors.CodeInvalidInput,
		dErrors.CodeNotFound, dErrors.CodeConflict:
		level = slog.LevelWarn
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"error", err.Error(),
	)
}
