package handler

import (
	"strings"
	"time"

	dErrors "cityline/pkg/domain-errors"
)

// SubmitComplaintRequest is the intake payload. Contact fields are optional;
// without them the citizen simply receives no notifications.
type SubmitComplaintRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Province     string `json:"province"`
	District     string `json:"district"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (r *SubmitComplaintRequest) Prepare() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.Province = strings.TrimSpace(r.Province)
	r.District = strings.TrimSpace(r.District)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)

	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeValidation, "description is required")
	}
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if r.Province == "" {
		return dErrors.New(dErrors.CodeValidation, "province is required")
	}
	if r.District == "" {
		return dErrors.New(dErrors.CodeValidation, "district is required")
	}
	return nil
}

// UpdateStatusRequest moves a complaint to a new status, optionally
// replacing the deadline in the same call.
type UpdateStatusRequest struct {
	Status   string     `json:"status"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

func (r *UpdateStatusRequest) Prepare() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return dErrors.New(dErrors.CodeValidation, "status is required")
	}
	return nil
}

type UpdateDeadlineRequest struct {
	Deadline time.Time `json:"deadline"`
}

func (r *UpdateDeadlineRequest) Prepare() error {
	if r.Deadline.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "deadline is required")
	}
	return nil
}

type ForwardRequest struct {
	DepartmentID string `json:"department_id"`
	Note         string `json:"note"`
}

func (r *ForwardRequest) Prepare() error {
	r.DepartmentID = strings.TrimSpace(r.DepartmentID)
	r.Note = strings.TrimSpace(r.Note)
	if r.DepartmentID == "" {
		return dErrors.New(dErrors.CodeValidation, "department_id is required")
	}
	return nil
}
