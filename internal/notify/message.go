package notify

import (
	"fmt"
	"time"
)

// Subject renders the one-line subject for a notification. The tracking
// number travels in n.Subject so citizens can match messages to complaints.
func Subject(n Notification) string {
	switch n.Kind {
	case KindSubmitted:
		return fmt.Sprintf("Complaint %s received", n.Subject)
	case KindResolved:
		return fmt.Sprintf("Complaint %s resolved", n.Subject)
	case KindDeadlineSet:
		return fmt.Sprintf("Complaint %s: resolution deadline updated", n.Subject)
	case KindForwarded:
		return fmt.Sprintf("Complaint %s forwarded to your department", n.Subject)
	default:
		return fmt.Sprintf("Complaint %s update", n.Subject)
	}
}

// Body renders the plain-text message body from the payload values.
func Body(n Notification) string {
	title := n.Payload["title"]
	switch n.Kind {
	case KindSubmitted:
		return fmt.Sprintf(
			"Your complaint %q has been received and assigned to %s. Expected resolution by %s. Track it with reference %s.",
			title, n.Payload["institution"], formatDeadline(n.Payload["deadline"]), n.Subject)
	case KindResolved:
		return fmt.Sprintf("Your complaint %q (reference %s) has been marked resolved.", title, n.Subject)
	case KindDeadlineSet:
		return fmt.Sprintf(
			"The expected resolution date for your complaint %q (reference %s) is now %s.",
			title, n.Subject, formatDeadline(n.Payload["deadline"]))
	case KindForwarded:
		body := fmt.Sprintf("Complaint %q (reference %s) was forwarded to %s for handling.",
			title, n.Subject, n.Payload["department"])
		if note := n.Payload["note"]; note != "" {
			body += " Note: " + note
		}
		return body
	default:
		return fmt.Sprintf("There is an update on complaint %s.", n.Subject)
	}
}

// formatDeadline turns the wire timestamp into a readable date, passing the
// raw value through when it does not parse.
func formatDeadline(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("2 January 2006")
}
