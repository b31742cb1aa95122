package audit

import "time"

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance for the
	// complaint trail: submission, resolution, forwarding. These require
	// tamper-evident storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to monitoring and forensics,
	// such as rejected ownership or cross-district forwarding attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and operational
	// visibility. These can be sampled with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	ActorID   string // who performed the action (actor uuid, empty for system)
	Subject   string // entity acted on (complaint id, institution id)
	Action    string
	Reason    string // free-form detail: note text, rejection reason
	RequestID string // correlation ID from HTTP request context
	Client    string // browser/OS summary derived from the User-Agent header
}

type EventKind string

const (
	// Complaint lifecycle events
	EventComplaintSubmitted     EventKind = "complaint_submitted"
	EventComplaintStatusChanged EventKind = "complaint_status_changed"
	EventComplaintResolved      EventKind = "complaint_resolved"
	EventComplaintReopened      EventKind = "complaint_reopened"
	EventDeadlineUpdated        EventKind = "complaint_deadline_updated"
	EventComplaintForwarded     EventKind = "complaint_forwarded"
	EventForwardRejected        EventKind = "complaint_forward_rejected"

	// Directory events
	EventInstitutionCreated EventKind = "institution_created"
	EventDepartmentCreated  EventKind = "department_created"
)

// eventCategories maps each audit event to its category.
// Compliance: the legal complaint trail. Security: rejected boundary
// crossings. Operations: routine registry and lifecycle noise.
var eventCategories = map[EventKind]EventCategory{
	EventComplaintSubmitted: CategoryCompliance,
	EventComplaintResolved:  CategoryCompliance,
	EventComplaintForwarded: CategoryCompliance,

	EventForwardRejected: CategorySecurity,

	EventComplaintStatusChanged: CategoryOperations,
	EventComplaintReopened:      CategoryOperations,
	EventDeadlineUpdated:        CategoryOperations,
	EventInstitutionCreated:     CategoryOperations,
	EventDepartmentCreated:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e EventKind) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
