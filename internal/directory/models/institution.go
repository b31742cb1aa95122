package models

import (
	"strings"
	"time"

	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

// Institution is a government body that receives and resolves complaints.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Province and District are non-empty
//   - CreatedAt is immutable after construction
//
// Routing matches on (Province, District) with a province-wide fallback, so
// the geographic fields are normalized once at construction and compared
// case-insensitively by the stores.
type Institution struct {
	ID           domain.InstitutionID `json:"id"`
	Name         string               `json:"name"`
	Province     string               `json:"province"`
	District     string               `json:"district"`
	ContactEmail string               `json:"contact_email,omitempty"`
	ContactPhone string               `json:"contact_phone,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

func NewInstitution(id domain.InstitutionID, name, province, district, contactEmail, contactPhone string, now time.Time) (*Institution, error) {
	name = strings.TrimSpace(name)
	province = strings.TrimSpace(province)
	district = strings.TrimSpace(district)

	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution name must be 128 characters or less")
	}
	if province == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution province cannot be empty")
	}
	if district == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "institution district cannot be empty")
	}

	return &Institution{
		ID:           id,
		Name:         name,
		Province:     province,
		District:     district,
		ContactEmail: strings.TrimSpace(contactEmail),
		ContactPhone: strings.TrimSpace(contactPhone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
