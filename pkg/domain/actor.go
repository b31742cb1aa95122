package domain

import (
	"github.com/google/uuid"

	dErrors "cityline/pkg/domain-errors"
)

// Role classifies the acting party on a request.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries (JWT claims, seeds);
// direct casting bypasses validation.
type Role string

const (
	RoleCitizen     Role = "citizen"
	RoleInstitution Role = "institution"
	RoleAdmin       Role = "admin"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleCitizen:     true,
	RoleInstitution: true,
	RoleAdmin:       true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated party performing an operation. Auth middleware
// builds it from token claims; services check role and ownership against it
// and never see credentials.
//
// The subject uuid is role-dependent: for RoleInstitution it is the
// institution id, for RoleCitizen the citizen id.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// NewActor builds an Actor, rejecting nil subjects and unknown roles.
func NewActor(subject uuid.UUID, role Role) (Actor, error) {
	if subject == uuid.Nil {
		return Actor{}, dErrors.New(dErrors.CodeInvalidInput, "actor subject cannot be the nil UUID")
	}
	if !role.IsValid() {
		return Actor{}, dErrors.New(dErrors.CodeInvalidInput, "unsupported role")
	}
	return Actor{ID: subject, Role: role}, nil
}

// IsZero reports whether the actor is unset (no authenticated party).
func (a Actor) IsZero() bool {
	return a.ID == uuid.Nil && a.Role == ""
}

// AsCitizen returns the actor's subject as a CitizenID when the role matches.
func (a Actor) AsCitizen() (CitizenID, bool) {
	if a.Role != RoleCitizen {
		return CitizenID{}, false
	}
	return CitizenID(a.ID), true
}

// AsInstitution returns the actor's subject as an InstitutionID when the role matches.
func (a Actor) AsInstitution() (InstitutionID, bool) {
	if a.Role != RoleInstitution {
		return InstitutionID{}, false
	}
	return InstitutionID(a.ID), true
}
