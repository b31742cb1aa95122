// Package handler exposes the performance report endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cityline/internal/platform/middleware"
	"cityline/internal/report/models"
	dErrors "cityline/pkg/domain-errors"
	"cityline/pkg/platform/httputil"
	"cityline/pkg/requestcontext"
)

// Service defines the report operation the handler depends on.
type Service interface {
	Aggregate(ctx context.Context, tf models.Timeframe) (*models.Report, error)
}

// Handler serves the performance report to authenticated readers.
type Handler struct {
	logger       *slog.Logger
	reports      Service
	jwtValidator middleware.JWTValidator
}

// New creates a new report Handler.
func New(reports Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		reports:      reports,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the report routes under /reports. Any authenticated role
// may read; the report exposes no citizen data, only aggregates.
func (h *Handler) Register(r chi.Router) {
	reportRouter := chi.NewRouter()
	reportRouter.Use(middleware.Recovery(h.logger))
	reportRouter.Use(middleware.RequestID)
	reportRouter.Use(middleware.RequestTime)
	reportRouter.Use(middleware.ClientMetadata)
	reportRouter.Use(middleware.Logger(h.logger))
	reportRouter.Use(middleware.Timeout(30 * time.Second))
	reportRouter.Use(middleware.ContentTypeJSON)
	reportRouter.Use(middleware.Latency)
	reportRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	reportRouter.Get("/performance", h.handlePerformance)

	r.Mount("/reports", reportRouter)
}

func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tf, err := models.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		h.logFailure(ctx, "invalid report timeframe", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	report, err := h.reports.Aggregate(ctx, tf)
	if err != nil {
		h.logFailure(ctx, "failed to aggregate performance report", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, report)
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
