package handler

import (
	"strings"

	dErrors "cityline/pkg/domain-errors"
)

// CreateInstitutionRequest is the request body for registering an institution.
type CreateInstitutionRequest struct {
	Name         string `json:"name"`
	Province     string `json:"province"`
	District     string `json:"district"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

// Prepare trims every field and enforces the required ones. Deeper invariants
// (name length, uniqueness) belong to the model and store layers.
func (r *CreateInstitutionRequest) Prepare() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Province = strings.TrimSpace(r.Province)
	r.District = strings.TrimSpace(r.District)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)

	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.Province == "" {
		return dErrors.New(dErrors.CodeValidation, "province is required")
	}
	if r.District == "" {
		return dErrors.New(dErrors.CodeValidation, "district is required")
	}
	return nil
}

// CreateDepartmentRequest is the request body for registering a district
// department.
type CreateDepartmentRequest struct {
	Name         string `json:"name"`
	District     string `json:"district"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (r *CreateDepartmentRequest) Prepare() error {
	r.Name = strings.TrimSpace(r.Name)
	r.District = strings.TrimSpace(r.District)
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.ContactPhone = strings.TrimSpace(r.ContactPhone)

	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.District == "" {
		return dErrors.New(dErrors.CodeValidation, "district is required")
	}
	return nil
}
