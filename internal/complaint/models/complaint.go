package models

import (
	"math"
	"strings"
	"time"

	"cityline/pkg/domain"
	dErrors "cityline/pkg/domain-errors"
)

// Status is the lifecycle state of a complaint. The literal values are
// identity: filters and aggregation keys compare them case-sensitively.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

var validStatuses = map[Status]bool{
	StatusPending:    true,
	StatusInProgress: true,
	StatusResolved:   true,
}

// ParseStatus constructs a Status from external input.
//
// Errors: returns CodeInvalidInput for anything outside the three states.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status must be one of PENDING, IN_PROGRESS, RESOLVED")
	}
	return st, nil
}

// IsValid checks if the status is one of the three lifecycle states.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Category classifies a complaint. The known values drive the deadline policy;
// unrecognized values are preserved as supplied (lowercased) and fall into the
// policy's default window rather than failing intake.
type Category string

const (
	CategoryWater        Category = "water"
	CategoryElectricity  Category = "electricity"
	CategoryPublicSafety Category = "public-safety"
	CategoryRoads        Category = "roads"
	CategorySanitation   Category = "sanitation"
	CategoryOther        Category = "other"
)

// ParseCategory normalizes free-form category input (trim + lowercase).
//
// Errors: returns CodeInvalidInput only when the value is empty.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category cannot be empty")
	}
	return c, nil
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// urgentWindowDays is the remaining-days threshold at or under which an open
// complaint counts as urgent.
const urgentWindowDays = 2

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// Complaint is the aggregate root of the lifecycle and routing engine.
//
// Invariants:
//   - Title, Description, Province, and District are non-empty
//   - CitizenID and AssignedTo are set at intake and immutable afterwards
//   - ResolvedAt is present if and only if Status == StatusResolved
//   - Deadline is strictly in the future at the moment it is set or updated
//   - AssignedDepartment is nil until the complaint is forwarded; once set it
//     refers to a department in the complaint's own district
type Complaint struct {
	ID                 domain.ComplaintID   `json:"id"`
	TrackingNumber     string               `json:"tracking_number"`
	Title              string               `json:"title"`
	Description        string               `json:"description"`
	Category           Category             `json:"category"`
	Province           string               `json:"province"`
	District           string               `json:"district"`
	CitizenID          domain.CitizenID     `json:"citizen_id"`
	ContactEmail       string               `json:"contact_email,omitempty"`
	ContactPhone       string               `json:"contact_phone,omitempty"`
	AssignedTo         domain.InstitutionID `json:"assigned_to"`
	AssignedDepartment *domain.DepartmentID `json:"assigned_department,omitempty"`
	Status             Status               `json:"status"`
	SubmittedAt        time.Time            `json:"submitted_at"`
	Deadline           time.Time            `json:"deadline"`
	ResolvedAt         *time.Time           `json:"resolved_at,omitempty"`
	Version            int                  `json:"version"`
}

// NewComplaintParams carries the intake inputs for constructing a Complaint.
type NewComplaintParams struct {
	ID             domain.ComplaintID
	TrackingNumber string
	Title          string
	Description    string
	Category       Category
	Province       string
	District       string
	CitizenID      domain.CitizenID
	ContactEmail   string
	ContactPhone   string
	AssignedTo     domain.InstitutionID
	SubmittedAt    time.Time
	Deadline       time.Time
}

// NewComplaint constructs a pending complaint at version 1.
func NewComplaint(p NewComplaintParams) (*Complaint, error) {
	title := strings.TrimSpace(p.Title)
	description := strings.TrimSpace(p.Description)
	province := strings.TrimSpace(p.Province)
	district := strings.TrimSpace(p.District)

	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title cannot be empty")
	}
	if len(title) > maxTitleLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title must be 200 characters or less")
	}
	if description == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "description cannot be empty")
	}
	if len(description) > maxDescriptionLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "description must be 5000 characters or less")
	}
	if province == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "province cannot be empty")
	}
	if district == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "district cannot be empty")
	}
	if p.Category == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "category cannot be empty")
	}
	if p.TrackingNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tracking number cannot be empty")
	}
	if p.CitizenID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "citizen id cannot be nil")
	}
	if p.AssignedTo.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "assigned institution cannot be nil")
	}
	if !p.Deadline.After(p.SubmittedAt) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "deadline must be after submission time")
	}

	return &Complaint{
		ID:             p.ID,
		TrackingNumber: p.TrackingNumber,
		Title:          title,
		Description:    description,
		Category:       p.Category,
		Province:       province,
		District:       district,
		CitizenID:      p.CitizenID,
		ContactEmail:   strings.TrimSpace(p.ContactEmail),
		ContactPhone:   strings.TrimSpace(p.ContactPhone),
		AssignedTo:     p.AssignedTo,
		Status:         StatusPending,
		SubmittedAt:    p.SubmittedAt,
		Deadline:       p.Deadline,
		Version:        1,
	}, nil
}

// IsOwnedBy reports whether the institution owns this complaint for handling.
func (c *Complaint) IsOwnedBy(inst domain.InstitutionID) bool {
	return c.AssignedTo == inst
}

// CanUpdateStatus checks the target state is one the lifecycle accepts. Any of
// the three states may be set from any other; re-resolving is allowed and is
// idempotent on the resolution timestamp.
func (c *Complaint) CanUpdateStatus(next Status) error {
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unsupported status")
	}
	return nil
}

// ApplyStatus moves the complaint to next while maintaining the ResolvedAt
// invariant: entering RESOLVED stamps the timestamp once, re-resolving keeps
// the original instant, leaving RESOLVED clears it.
// Must only be called after CanUpdateStatus returns nil.
func (c *Complaint) ApplyStatus(next Status, now time.Time) {
	switch {
	case next == StatusResolved && c.ResolvedAt == nil:
		t := now
		c.ResolvedAt = &t
	case next != StatusResolved:
		c.ResolvedAt = nil
	}
	c.Status = next
}

// CanSetDeadline rejects deadlines that are not strictly in the future at the
// moment of the update.
func (c *Complaint) CanSetDeadline(deadline, now time.Time) error {
	if !deadline.After(now) {
		return dErrors.New(dErrors.CodeInvariantViolation, "deadline must be in the future")
	}
	return nil
}

// ApplyDeadline sets the resolution deadline.
// Must only be called after CanSetDeadline returns nil.
func (c *Complaint) ApplyDeadline(deadline time.Time) {
	c.Deadline = deadline
}

// ApplyForward hands the complaint to a district department and forces it back
// into IN_PROGRESS. A resolved complaint loses its resolution timestamp here;
// forwarding reopens it.
func (c *Complaint) ApplyForward(department domain.DepartmentID) {
	d := department
	c.AssignedDepartment = &d
	c.Status = StatusInProgress
	c.ResolvedAt = nil
}

// ResolvedOnTime reports whether the complaint was resolved at or before its
// deadline.
func (c *Complaint) ResolvedOnTime() bool {
	return c.ResolvedAt != nil && !c.ResolvedAt.After(c.Deadline)
}

// Urgency is the point-in-time deadline countdown served on read endpoints.
// Derived only; never persisted.
type Urgency struct {
	DaysUntilDeadline int  `json:"days_until_deadline"`
	IsUrgent          bool `json:"is_urgent"`
}

// UrgencyAt computes the deadline countdown at now. Days are counted in whole
// 24h blocks rounded up, so an overdue complaint reports zero or negative
// days. Resolved complaints carry no urgency; callers receive nil.
func (c *Complaint) UrgencyAt(now time.Time) *Urgency {
	if c.Status == StatusResolved {
		return nil
	}
	days := int(math.Ceil(c.Deadline.Sub(now).Hours() / 24))
	return &Urgency{
		DaysUntilDeadline: days,
		IsUrgent:          days <= urgentWindowDays,
	}
}
