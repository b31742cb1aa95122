package models

import (
	"strings"
	"time"

	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

const maxNoteLength = 2000

// ForwardingRecord is one escalation event: the owning institution handing a
// complaint to a district department. Records are append-only and never
// mutated or deleted once written.
type ForwardingRecord struct {
	ID              domain.ForwardingID  `json:"id"`
	ComplaintID     domain.ComplaintID   `json:"complaint_id"`
	FromInstitution domain.InstitutionID `json:"from_institution"`
	ToDepartment    domain.DepartmentID  `json:"to_department"`
	Note            string               `json:"note"`
	CreatedAt       time.Time            `json:"created_at"`
}

// NewForwardingRecord constructs an escalation record. The note is optional
// free text.
func NewForwardingRecord(
	id domain.ForwardingID,
	complaintID domain.ComplaintID,
	from domain.InstitutionID,
	to domain.DepartmentID,
	note string,
	now time.Time,
) (*ForwardingRecord, error) {
	note = strings.TrimSpace(note)
	if complaintID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "complaint id cannot be nil")
	}
	if from.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "source institution cannot be nil")
	}
	if to.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "destination department cannot be nil")
	}
	if len(note) > maxNoteLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "note must be 2000 characters or less")
	}
	return &ForwardingRecord{
		ID:              id,
		ComplaintID:     complaintID,
		FromInstitution: from,
		ToDepartment:    to,
		Note:            note,
		CreatedAt:       now,
	}, nil
}
