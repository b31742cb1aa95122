package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cityline/internal/complaint/service"
	complaintstore "cityline/internal/complaint/store/complaint"
	forwardingstore "cityline/internal/complaint/store/forwarding"
	dirservice "cityline/internal/directory/service"
	departmentstore "cityline/internal/directory/store/department"
	institutionstore "cityline/internal/directory/store/institution"
	"cityline/internal/platform/middleware"
	dErrors "cityline/pkg/domain-errors"
)

const (
	citizenToken  = "citizen-token"
	operatorToken = "operator-token"
	otherToken    = "other-institution-token"
)

// tokenValidator maps fixed bearer tokens onto claims for handler tests.
type tokenValidator map[string]*middleware.Claims

func (v tokenValidator) Validate(token string) (*middleware.Claims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return claims, nil
}

type testEnv struct {
	router        http.Handler
	departmentID  string
	foreignDeptID string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	directory := dirservice.New(institutionstore.NewInMemory(), departmentstore.NewInMemory())
	inst, err := directory.CreateInstitution(ctx, dirservice.CreateInstitutionParams{
		Name:     "Colombo Municipal Council",
		Province: "Western",
		District: "Colombo",
	})
	require.NoError(t, err)
	dept, err := directory.CreateDepartment(ctx, dirservice.CreateDepartmentParams{
		Name:     "Road Maintenance Unit",
		District: "Colombo",
	})
	require.NoError(t, err)
	foreign, err := directory.CreateDepartment(ctx, dirservice.CreateDepartmentParams{
		Name:     "Kandy Drainage Unit",
		District: "Kandy",
	})
	require.NoError(t, err)

	svc := service.New(complaintstore.NewInMemory(), forwardingstore.NewInMemory(), directory)
	logger := slog.New(slog.DiscardHandler)

	validator := tokenValidator{
		citizenToken:  {Subject: uuid.NewString(), Role: "citizen"},
		operatorToken: {Subject: inst.ID.String(), Role: "institution"},
		otherToken:    {Subject: uuid.NewString(), Role: "institution"},
	}

	h := New(svc, logger, validator)
	r := chi.NewRouter()
	h.Register(r)

	return &testEnv{
		router:        r,
		departmentID:  dept.ID.String(),
		foreignDeptID: foreign.ID.String(),
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

type complaintBody struct {
	ID             uuid.UUID  `json:"id"`
	TrackingNumber string     `json:"tracking_number"`
	Status         string     `json:"status"`
	SubmittedAt    time.Time  `json:"submitted_at"`
	Deadline       time.Time  `json:"deadline"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	Version        int        `json:"version"`
}

type submitBody struct {
	Complaint    complaintBody `json:"complaint"`
	Institution  string        `json:"institution"`
	Notification string        `json:"notification"`
}

func validPayload() map[string]string {
	return map[string]string{
		"title":         "Burst water main on Galle Road",
		"description":   "Water has been flooding the junction since early morning.",
		"category":      "water",
		"province":      "Western",
		"district":      "Colombo",
		"contact_email": "kasun.perera@example.com",
	}
}

func (e *testEnv) submit(t *testing.T) submitBody {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/complaints", citizenToken, validPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body submitBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestSubmitComplaintRequestPrepare(t *testing.T) {
	t.Run("trims fields", func(t *testing.T) {
		req := &SubmitComplaintRequest{
			Title:       "  Burst main  ",
			Description: " Flooding. ",
			Category:    " Water ",
			Province:    " Western ",
			District:    " Colombo ",
		}
		require.NoError(t, req.Prepare())
		assert.Equal(t, "Burst main", req.Title)
		assert.Equal(t, "Water", req.Category)
	})

	t.Run("required fields", func(t *testing.T) {
		cases := []struct {
			name string
			mut  func(*SubmitComplaintRequest)
			want string
		}{
			{"title", func(r *SubmitComplaintRequest) { r.Title = " " }, "title is required"},
			{"description", func(r *SubmitComplaintRequest) { r.Description = "" }, "description is required"},
			{"category", func(r *SubmitComplaintRequest) { r.Category = "" }, "category is required"},
			{"province", func(r *SubmitComplaintRequest) { r.Province = "" }, "province is required"},
			{"district", func(r *SubmitComplaintRequest) { r.District = "" }, "district is required"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				req := &SubmitComplaintRequest{
					Title:       "Burst main",
					Description: "Flooding.",
					Category:    "water",
					Province:    "Western",
					District:    "Colombo",
				}
				tc.mut(req)
				err := req.Prepare()
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
				assert.Contains(t, err.Error(), tc.want)
			})
		}
	})
}

func TestForwardRequestPrepare(t *testing.T) {
	req := &ForwardRequest{DepartmentID: " " + uuid.NewString() + " ", Note: " crew needed "}
	require.NoError(t, req.Prepare())
	assert.Equal(t, "crew needed", req.Note)

	err := (&ForwardRequest{Note: "crew needed"}).Prepare()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "department_id is required")
}

func TestSubmitAuth(t *testing.T) {
	env := newEnv(t)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/complaints", "", validPayload())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("institution role cannot submit", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/complaints", operatorToken, validPayload())
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestSubmitComplaint(t *testing.T) {
	env := newEnv(t)

	body := env.submit(t)
	assert.NotEqual(t, uuid.Nil, body.Complaint.ID)
	assert.Regexp(t, `^CL-\d{8}-[A-Z0-9]{6}$`, body.Complaint.TrackingNumber)
	assert.Equal(t, "PENDING", body.Complaint.Status)
	assert.Equal(t, 1, body.Complaint.Version)
	assert.Equal(t, 72*time.Hour, body.Complaint.Deadline.Sub(body.Complaint.SubmittedAt), "water complaints carry a three day window")
	assert.Equal(t, "Colombo Municipal Council", body.Institution)
	assert.Equal(t, "skipped", body.Notification)
}

func TestSubmitValidationError(t *testing.T) {
	env := newEnv(t)

	payload := validPayload()
	payload["title"] = "   "
	rec := env.do(t, http.MethodPost, "/complaints", citizenToken, payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_error", resp.Error)
	assert.Contains(t, resp.Description, "title is required")
}

func TestSubmitWithoutCoverage(t *testing.T) {
	env := newEnv(t)

	payload := validPayload()
	payload["province"] = "Eastern"
	payload["district"] = "Trincomalee"
	rec := env.do(t, http.MethodPost, "/complaints", citizenToken, payload)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "conflict", resp.Error)
}

func TestSubmitMalformedBody(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/complaints", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+citizenToken)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackComplaint(t *testing.T) {
	env := newEnv(t)
	created := env.submit(t)

	t.Run("no authentication needed", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/complaints/track/"+created.Complaint.TrackingNumber, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var tracked struct {
			TrackingNumber string `json:"tracking_number"`
			Status         string `json:"status"`
			Citizen        string `json:"citizen"`
			Institution    string `json:"institution"`
			Urgency        *struct {
				DaysUntilDeadline int  `json:"days_until_deadline"`
				IsUrgent          bool `json:"is_urgent"`
			} `json:"urgency"`
		}
		raw := rec.Body.String()
		require.NoError(t, json.NewDecoder(strings.NewReader(raw)).Decode(&tracked))
		assert.Equal(t, created.Complaint.TrackingNumber, tracked.TrackingNumber)
		assert.Equal(t, "PENDING", tracked.Status)
		assert.Equal(t, "Kasun Perera", tracked.Citizen)
		assert.Equal(t, "Colombo Municipal Council", tracked.Institution)
		require.NotNil(t, tracked.Urgency)
		assert.Equal(t, 3, tracked.Urgency.DaysUntilDeadline)

		assert.NotContains(t, raw, "kasun.perera@example.com", "contact details must stay private")
		assert.NotContains(t, raw, created.Complaint.ID.String(), "internal ids must stay private")
	})

	t.Run("unknown number", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/complaints/track/CL-20250610-ZZZZZZ", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateStatus(t *testing.T) {
	env := newEnv(t)
	created := env.submit(t)
	statusPath := fmt.Sprintf("/complaints/%s/status", created.Complaint.ID)

	t.Run("operator moves it along", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, statusPath, operatorToken, map[string]string{"status": "IN_PROGRESS"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Complaint complaintBody `json:"complaint"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "IN_PROGRESS", resp.Complaint.Status)
		assert.Equal(t, 2, resp.Complaint.Version)
		assert.Nil(t, resp.Complaint.ResolvedAt)
	})

	t.Run("resolving stamps the resolution time", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, statusPath, operatorToken, map[string]string{"status": "RESOLVED"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Complaint complaintBody `json:"complaint"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "RESOLVED", resp.Complaint.Status)
		assert.NotNil(t, resp.Complaint.ResolvedAt)
	})

	t.Run("unknown status value", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, statusPath, operatorToken, map[string]string{"status": "FIXED"})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "invalid_input", resp.Error)
	})

	t.Run("citizens are forbidden", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, statusPath, citizenToken, map[string]string{"status": "IN_PROGRESS"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("another institution sees not found", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, statusPath, otherToken, map[string]string{"status": "IN_PROGRESS"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed complaint id", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/complaints/not-a-uuid/status", operatorToken, map[string]string{"status": "IN_PROGRESS"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateDeadline(t *testing.T) {
	env := newEnv(t)
	created := env.submit(t)
	deadlinePath := fmt.Sprintf("/complaints/%s/deadline", created.Complaint.ID)

	t.Run("future deadline is accepted", func(t *testing.T) {
		newDeadline := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
		rec := env.do(t, http.MethodPatch, deadlinePath, operatorToken, map[string]string{
			"deadline": newDeadline.Format(time.RFC3339),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Complaint complaintBody `json:"complaint"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Complaint.Deadline.Equal(newDeadline))
	})

	t.Run("past deadline is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, deadlinePath, operatorToken, map[string]string{
			"deadline": time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Description, "future")
	})

	t.Run("missing deadline is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, deadlinePath, operatorToken, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestForwardComplaint(t *testing.T) {
	env := newEnv(t)
	created := env.submit(t)
	forwardPath := fmt.Sprintf("/complaints/%s/forward", created.Complaint.ID)
	historyPath := fmt.Sprintf("/complaints/%s/forwardings", created.Complaint.ID)

	t.Run("hand-off to a district department", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, forwardPath, operatorToken, map[string]string{
			"department_id": env.departmentID,
			"note":          "Pothole repair crew needed.",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			Forwarding struct {
				ID           uuid.UUID `json:"id"`
				ToDepartment uuid.UUID `json:"to_department"`
				Note         string    `json:"note"`
			} `json:"forwarding"`
			Complaint complaintBody `json:"complaint"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, env.departmentID, resp.Forwarding.ToDepartment.String())
		assert.Equal(t, "Pothole repair crew needed.", resp.Forwarding.Note)
		assert.Equal(t, "IN_PROGRESS", resp.Complaint.Status)
	})

	t.Run("history is visible to the operator and the citizen", func(t *testing.T) {
		for _, token := range []string{operatorToken, citizenToken} {
			rec := env.do(t, http.MethodGet, historyPath, token, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp struct {
				Forwardings []struct {
					Note string `json:"note"`
				} `json:"forwardings"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			require.Len(t, resp.Forwardings, 1)
		}
	})

	t.Run("history is hidden from other institutions", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, historyPath, otherToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("history requires authentication", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, historyPath, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("cross-district department is rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, forwardPath, operatorToken, map[string]string{
			"department_id": env.foreignDeptID,
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "validation_error", resp.Error)
	})

	t.Run("unknown department is not found", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, forwardPath, operatorToken, map[string]string{
			"department_id": uuid.NewString(),
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("citizens cannot forward", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, forwardPath, citizenToken, map[string]string{
			"department_id": env.departmentID,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
