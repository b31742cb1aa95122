// Package handler exposes the complaint API: public tracking, citizen
// intake, and the institution-side lifecycle and forwarding endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cityline/internal/complaint/models"
	"cityline/internal/complaint/service"
	"cityline/internal/platform/middleware"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/httputil"
	"cityline/pkg/requestcontext"
)

// Service defines the complaint operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, actor domain.Actor, params service.SubmitParams) (*service.SubmitResult, error)
	TrackByNumber(ctx context.Context, trackingNumber string) (*service.TrackedComplaint, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id domain.ComplaintID, next models.Status, newDeadline *time.Time) (*service.UpdateResult, error)
	UpdateDeadline(ctx context.Context, actor domain.Actor, id domain.ComplaintID, newDeadline time.Time) (*service.UpdateResult, error)
	Forward(ctx context.Context, actor domain.Actor, id domain.ComplaintID, params service.ForwardParams) (*service.ForwardResult, error)
	ListForwardings(ctx context.Context, actor domain.Actor, id domain.ComplaintID) ([]*models.ForwardingRecord, error)
}

// Handler serves the complaint endpoints.
type Handler struct {
	logger       *slog.Logger
	complaints   Service
	jwtValidator middleware.JWTValidator
}

// New creates a new complaint Handler.
func New(complaints Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		complaints:   complaints,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the complaint routes under /complaints. Tracking is
// public; everything else requires authentication, with intake restricted to
// citizens and lifecycle changes to institutions.
func (h *Handler) Register(r chi.Router) {
	complaintRouter := chi.NewRouter()
	complaintRouter.Use(middleware.Recovery(h.logger))
	complaintRouter.Use(middleware.RequestID)
	complaintRouter.Use(middleware.RequestTime)
	complaintRouter.Use(middleware.ClientMetadata)
	complaintRouter.Use(middleware.Logger(h.logger))
	complaintRouter.Use(middleware.Timeout(30 * time.Second))
	complaintRouter.Use(middleware.ContentTypeJSON)
	complaintRouter.Use(middleware.Latency)

	// The tracking number is the capability; no token needed.
	complaintRouter.Get("/track/{trackingNumber}", h.handleTrack)

	complaintRouter.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleCitizen))
			r.Post("/", h.handleSubmit)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(domain.RoleInstitution))
			r.Patch("/{id}/status", h.handleUpdateStatus)
			r.Patch("/{id}/deadline", h.handleUpdateDeadline)
			r.Post("/{id}/forward", h.handleForward)
		})

		// Readable by the handling institution and the filing citizen; the
		// service decides which, so no role gate here.
		r.Get("/{id}/forwardings", h.handleListForwardings)
	})

	r.Mount("/complaints", complaintRouter)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitComplaintRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.complaints.Submit(ctx, requestcontext.Actor(ctx), service.SubmitParams{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Province:     req.Province,
		District:     req.District,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		h.logFailure(ctx, "failed to submit complaint", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, submitResponse{
		Complaint:    res.Complaint,
		Institution:  res.InstitutionName,
		Notification: res.Notification,
	})
}

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tracked, err := h.complaints.TrackByNumber(ctx, chi.URLParam(r, "trackingNumber"))
	if err != nil {
		h.logFailure(ctx, "failed to track complaint", requestcontext.RequestID(ctx), err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, newTrackedView(tracked))
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "invalid complaint id", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		h.logFailure(ctx, "invalid status value", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.complaints.UpdateStatus(ctx, requestcontext.Actor(ctx), id, status, req.Deadline)
	if err != nil {
		h.logFailure(ctx, "failed to update complaint status", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updateResponse{
		Complaint:    res.Complaint,
		Notification: res.Notification,
	})
}

func (h *Handler) handleUpdateDeadline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "invalid complaint id", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateDeadlineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.complaints.UpdateDeadline(ctx, requestcontext.Actor(ctx), id, req.Deadline)
	if err != nil {
		h.logFailure(ctx, "failed to update complaint deadline", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, updateResponse{
		Complaint:    res.Complaint,
		Notification: res.Notification,
	})
}

func (h *Handler) handleForward(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "invalid complaint id", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ForwardRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	departmentID, err := domain.ParseDepartmentID(req.DepartmentID)
	if err != nil {
		h.logFailure(ctx, "invalid department id", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	res, err := h.complaints.Forward(ctx, requestcontext.Actor(ctx), id, service.ForwardParams{
		DepartmentID: departmentID,
		Note:         req.Note,
	})
	if err != nil {
		h.logFailure(ctx, "failed to forward complaint", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, forwardResponse{
		Forwarding:   res.Record,
		Complaint:    res.Complaint,
		Notification: res.Notification,
	})
}

func (h *Handler) handleListForwardings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := domain.ParseComplaintID(chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "invalid complaint id", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	records, err := h.complaints.ListForwardings(ctx, requestcontext.Actor(ctx), id)
	if err != nil {
		h.logFailure(ctx, "failed to list forwardings", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, listForwardingsResponse{Forwardings: records})
}

type submitResponse struct {
	Complaint    *models.Complaint          `json:"complaint"`
	Institution  string                     `json:"institution"`
	Notification service.NotificationStatus `json:"notification"`
}

type updateResponse struct {
	Complaint    *models.Complaint          `json:"complaint"`
	Notification service.NotificationStatus `json:"notification"`
}

type forwardResponse struct {
	Forwarding   *models.ForwardingRecord   `json:"forwarding"`
	Complaint    *models.Complaint          `json:"complaint"`
	Notification service.NotificationStatus `json:"notification"`
}

type listForwardingsResponse struct {
	Forwardings []*models.ForwardingRecord `json:"forwardings"`
}

// trackedView is the public shape served to anyone holding a tracking
// number. Contact details and internal identifiers stay out of it.
type trackedView struct {
	TrackingNumber string          `json:"tracking_number"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Category       models.Category `json:"category"`
	Province       string          `json:"province"`
	District       string          `json:"district"`
	Status         models.Status   `json:"status"`
	SubmittedAt    time.Time       `json:"submitted_at"`
	Deadline       time.Time       `json:"deadline"`
	ResolvedAt     *time.Time      `json:"resolved_at,omitempty"`
	Citizen        string          `json:"citizen,omitempty"`
	Institution    string          `json:"institution"`
	Department     string          `json:"department,omitempty"`
	Urgency        *models.Urgency `json:"urgency,omitempty"`
}

func newTrackedView(t *service.TrackedComplaint) trackedView {
	c := t.Complaint
	return trackedView{
		TrackingNumber: c.TrackingNumber,
		Title:          c.Title,
		Description:    c.Description,
		Category:       c.Category,
		Province:       c.Province,
		District:       c.District,
		Status:         c.Status,
		SubmittedAt:    c.SubmittedAt,
		Deadline:       c.Deadline,
		ResolvedAt:     c.ResolvedAt,
		Citizen:        t.CitizenName,
		Institution:    t.InstitutionName,
		Department:     t.DepartmentName,
		Urgency:        t.Urgency,
	}
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
