// Package notify delivers best-effort citizen and department notifications.
// The manager is an asynchronous bounded queue with worker retries; enqueue
// outcome is all a caller ever learns, delivery results stay in logs and
// metrics.
package notify

// Kind names the lifecycle event a notification announces.
type Kind string

const (
	KindSubmitted   Kind = "SUBMITTED"
	KindResolved    Kind = "RESOLVED"
	KindDeadlineSet Kind = "DEADLINE_SET"
	KindForwarded   Kind = "COMPLAINT_FORWARDED"
)

// Recipient carries the contact channels for one notification. Empty fields
// mean the channel is unavailable for this recipient.
type Recipient struct {
	Email string
	Phone string
}

// Notification is one message to deliver. Subject is the citizen-facing
// reference (the tracking number); Payload carries the template values the
// senders render.
type Notification struct {
	Kind      Kind
	Recipient Recipient
	Subject   string
	Payload   map[string]string
}
