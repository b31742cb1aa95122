// Package domain holds shared domain primitives: typed identifiers and the
// acting-party model. Typed IDs are uuid wrappers that make cross-entity
// assignment a compile error; construct them from external input through the
// ParseXxxID functions so validity is enforced at trust boundaries.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "cityline/pkg/domain-errors"
)

// CitizenID identifies the citizen who submitted a complaint.
type CitizenID uuid.UUID

// InstitutionID identifies a public institution handling complaints.
type InstitutionID uuid.UUID

// DepartmentID identifies a district department receiving forwarded complaints.
type DepartmentID uuid.UUID

// ComplaintID identifies a complaint record.
type ComplaintID uuid.UUID

// ForwardingID identifies one forwarding record.
type ForwardingID uuid.UUID

func parseUUID(s, what string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be the nil UUID")
	}
	return u, nil
}

// ParseCitizenID validates external input into a CitizenID.
func ParseCitizenID(s string) (CitizenID, error) {
	u, err := parseUUID(s, "citizen id")
	if err != nil {
		return CitizenID{}, err
	}
	return CitizenID(u), nil
}

// ParseInstitutionID validates external input into an InstitutionID.
func ParseInstitutionID(s string) (InstitutionID, error) {
	u, err := parseUUID(s, "institution id")
	if err != nil {
		return InstitutionID{}, err
	}
	return InstitutionID(u), nil
}

// ParseDepartmentID validates external input into a DepartmentID.
func ParseDepartmentID(s string) (DepartmentID, error) {
	u, err := parseUUID(s, "department id")
	if err != nil {
		return DepartmentID{}, err
	}
	return DepartmentID(u), nil
}

// ParseComplaintID validates external input into a ComplaintID.
func ParseComplaintID(s string) (ComplaintID, error) {
	u, err := parseUUID(s, "complaint id")
	if err != nil {
		return ComplaintID{}, err
	}
	return ComplaintID(u), nil
}

// ParseForwardingID validates external input into a ForwardingID.
func ParseForwardingID(s string) (ForwardingID, error) {
	u, err := parseUUID(s, "forwarding id")
	if err != nil {
		return ForwardingID{}, err
	}
	return ForwardingID(u), nil
}

func (id CitizenID) String() string     { return uuid.UUID(id).String() }
func (id InstitutionID) String() string { return uuid.UUID(id).String() }
func (id DepartmentID) String() string  { return uuid.UUID(id).String() }
func (id ComplaintID) String() string   { return uuid.UUID(id).String() }
func (id ForwardingID) String() string  { return uuid.UUID(id).String() }

func (id CitizenID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id InstitutionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DepartmentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ComplaintID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ForwardingID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewCitizenID returns a fresh random CitizenID.
func NewCitizenID() CitizenID { return CitizenID(uuid.New()) }

// NewInstitutionID returns a fresh random InstitutionID.
func NewInstitutionID() InstitutionID { return InstitutionID(uuid.New()) }

// NewDepartmentID returns a fresh random DepartmentID.
func NewDepartmentID() DepartmentID { return DepartmentID(uuid.New()) }

// NewComplaintID returns a fresh random ComplaintID.
func NewComplaintID() ComplaintID { return ComplaintID(uuid.New()) }

// NewForwardingID returns a fresh random ForwardingID.
func NewForwardingID() ForwardingID { return ForwardingID(uuid.New()) }

// MarshalText implements encoding.TextMarshaler so typed IDs serialize as
// their canonical UUID string in JSON payloads.
func (id CitizenID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id InstitutionID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id DepartmentID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ComplaintID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ForwardingID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }

// UnmarshalText accepts canonical UUID strings, rejecting the nil UUID.
func (id *CitizenID) UnmarshalText(b []byte) error {
	parsed, err := ParseCitizenID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *InstitutionID) UnmarshalText(b []byte) error {
	parsed, err := ParseInstitutionID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *DepartmentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDepartmentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ComplaintID) UnmarshalText(b []byte) error {
	parsed, err := ParseComplaintID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ForwardingID) UnmarshalText(b []byte) error {
	parsed, err := ParseForwardingID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
