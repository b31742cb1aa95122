package models

import (
	"strings"
	"time"

	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

// DistrictDepartment is a district-level unit a complaint can be forwarded
// to. A department belongs to exactly one district; forwarding across
// district lines is rejected at the service layer.
type DistrictDepartment struct {
	ID           domain.DepartmentID `json:"id"`
	Name         string              `json:"name"`
	District     string              `json:"district"`
	ContactEmail string              `json:"contact_email,omitempty"`
	ContactPhone string              `json:"contact_phone,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func NewDistrictDepartment(id domain.DepartmentID, name, district, contactEmail, contactPhone string, now time.Time) (*DistrictDepartment, error) {
	name = strings.TrimSpace(name)
	district = strings.TrimSpace(district)

	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "department name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "department name must be 128 characters or less")
	}
	if district == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "department district cannot be empty")
	}

	return &DistrictDepartment{
		ID:           id,
		Name:         name,
		District:     district,
		ContactEmail: strings.TrimSpace(contactEmail),
		ContactPhone: strings.TrimSpace(contactPhone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// SameDistrict reports whether the department serves the given district.
// District names are compared case-insensitively, matching store lookups.
func (d *DistrictDepartment) SameDistrict(district string) bool {
	return strings.EqualFold(d.District, strings.TrimSpace(district))
}
