package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	complaintmodels "cityline/internal/complaint/models"
	complaintstore "cityline/internal/complaint/store/complaint"
	dirmodels "cityline/internal/directory/models"
	institutionstore "cityline/internal/directory/store/institution"
	"cityline/internal/platform/middleware"
	"cityline/internal/report/service"
	"cityline/internal/report/store/performance"
	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

const (
	officerToken = "officer-token"
	citizenToken = "citizen-token"
)

var testTime = time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)

// tokenValidator maps fixed bearer tokens onto claims for handler tests.
type tokenValidator map[string]*middleware.Claims

func (v tokenValidator) Validate(token string) (*middleware.Claims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

type performanceResponse struct {
	Timeframe    string `json:"timeframe"`
	Institutions []struct {
		InstitutionID     uuid.UUID `json:"institution_id"`
		InstitutionName   string    `json:"institution_name"`
		Total             int       `json:"total_complaints"`
		Resolved          int       `json:"resolved_complaints"`
		ResolutionRate    float64   `json:"resolution_rate"`
		OnTimeRate        float64   `json:"on_time_rate"`
		AvgResolutionDays *float64  `json:"avg_resolution_days"`
	} `json:"institutions"`
	System struct {
		Total          int     `json:"total_complaints"`
		ResolutionRate float64 `json:"resolution_rate"`
	} `json:"system"`
}

func newReportRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()

	institutions := institutionstore.NewInMemory()
	complaints := complaintstore.NewInMemory()

	colombo := &dirmodels.Institution{
		ID:        domain.NewInstitutionID(),
		Name:      "Colombo Municipal Council",
		Province:  "Western",
		District:  "Colombo",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, institutions.Create(ctx, colombo))
	kandy := &dirmodels.Institution{
		ID:        domain.NewInstitutionID(),
		Name:      "Kandy Municipal Council",
		Province:  "Central",
		District:  "Kandy",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	require.NoError(t, institutions.Create(ctx, kandy))

	// One resolved on time, one unresolved, both recent.
	resolved, err := complaintmodels.NewComplaint(complaintmodels.NewComplaintParams{
		ID:             domain.NewComplaintID(),
		TrackingNumber: "CL-20250608-AAAAAA",
		Title:          "Water leak on Duplication Road",
		Description:    "Water has been leaking from the main for two days.",
		Category:       complaintmodels.CategoryWater,
		Province:       "Western",
		District:       "Colombo",
		CitizenID:      domain.NewCitizenID(),
		ContactEmail:   "kasun.perera@example.lk",
		AssignedTo:     colombo.ID,
		SubmittedAt:    testTime.AddDate(0, 0, -2),
		Deadline:       testTime.AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.NoError(t, complaints.Create(ctx, resolved))
	resolved.ApplyStatus(complaintmodels.StatusResolved, testTime.AddDate(0, 0, -1))
	require.NoError(t, complaints.Update(ctx, resolved))

	open, err := complaintmodels.NewComplaint(complaintmodels.NewComplaintParams{
		ID:             domain.NewComplaintID(),
		TrackingNumber: "CL-20250608-BBBBBB",
		Title:          "Pothole near Kandy lake",
		Description:    "A deep pothole is damaging vehicles.",
		Category:       complaintmodels.CategoryRoads,
		Province:       "Central",
		District:       "Kandy",
		CitizenID:      domain.NewCitizenID(),
		ContactEmail:   "nimal.silva@example.lk",
		AssignedTo:     kandy.ID,
		SubmittedAt:    testTime.AddDate(0, 0, -2),
		Deadline:       testTime.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	require.NoError(t, complaints.Create(ctx, open))

	svc := service.New(performance.NewInMemory(institutions, complaints))
	logger := slog.New(slog.DiscardHandler)

	validator := tokenValidator{
		officerToken: {Subject: uuid.NewString(), Role: "institution"},
		citizenToken: {Subject: uuid.NewString(), Role: "citizen"},
	}

	h := New(svc, logger, validator)
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func getPerformance(t *testing.T, router http.Handler, query, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/reports/performance"+query, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPerformanceAuthRequired(t *testing.T) {
	router := newReportRouter(t)

	rec := getPerformance(t, router, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPerformanceReport(t *testing.T) {
	router := newReportRouter(t)

	t.Run("any authenticated role may read", func(t *testing.T) {
		for _, token := range []string{officerToken, citizenToken} {
			rec := getPerformance(t, router, "", token)
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("defaults to the all-time window", func(t *testing.T) {
		rec := getPerformance(t, router, "", officerToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp performanceResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "all-time", resp.Timeframe)
		require.Len(t, resp.Institutions, 2)

		// Colombo resolved its only complaint on time; Kandy has not resolved.
		first := resp.Institutions[0]
		assert.Equal(t, "Colombo Municipal Council", first.InstitutionName)
		assert.Equal(t, 100.0, first.OnTimeRate)
		require.NotNil(t, first.AvgResolutionDays)
		assert.InDelta(t, 1.0, *first.AvgResolutionDays, 1e-9)

		second := resp.Institutions[1]
		assert.Equal(t, "Kandy Municipal Council", second.InstitutionName)
		assert.Equal(t, 1, second.Total)
		assert.Zero(t, second.OnTimeRate)
		assert.Nil(t, second.AvgResolutionDays)

		assert.Equal(t, 2, resp.System.Total)
		assert.Equal(t, 50.0, resp.System.ResolutionRate)
	})

	t.Run("accepts an explicit timeframe", func(t *testing.T) {
		rec := getPerformance(t, router, "?timeframe=week", officerToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp performanceResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "week", resp.Timeframe)
	})

	t.Run("rejects unknown timeframes", func(t *testing.T) {
		rec := getPerformance(t, router, "?timeframe=fortnight", officerToken)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "invalid_input", resp.Error)
	})
}
