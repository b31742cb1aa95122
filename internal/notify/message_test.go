package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindSubmitted, "Complaint CL-20250610-A1B2C3 received"},
		{KindResolved, "Complaint CL-20250610-A1B2C3 resolved"},
		{KindDeadlineSet, "Complaint CL-20250610-A1B2C3: resolution deadline updated"},
		{KindForwarded, "Complaint CL-20250610-A1B2C3 forwarded to your department"},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			got := Subject(Notification{Kind: tc.kind, Subject: "CL-20250610-A1B2C3"})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBody(t *testing.T) {
	t.Run("submitted includes institution and readable deadline", func(t *testing.T) {
		body := Body(Notification{
			Kind:    KindSubmitted,
			Subject: "CL-20250610-A1B2C3",
			Payload: map[string]string{
				"title":       "Broken water main",
				"institution": "Colombo Municipal Council",
				"deadline":    "2025-06-13T09:30:00Z",
			},
		})
		assert.Contains(t, body, "Colombo Municipal Council")
		assert.Contains(t, body, "13 June 2025")
		assert.Contains(t, body, "CL-20250610-A1B2C3")
	})

	t.Run("forwarded appends the note when present", func(t *testing.T) {
		n := Notification{
			Kind:    KindForwarded,
			Subject: "CL-20250610-A1B2C3",
			Payload: map[string]string{
				"title":      "Garbage not collected",
				"department": "Road Maintenance",
				"note":       "Requires heavy equipment.",
			},
		}
		body := Body(n)
		assert.Contains(t, body, "Road Maintenance")
		assert.Contains(t, body, "Requires heavy equipment.")

		delete(n.Payload, "note")
		assert.NotContains(t, Body(n), "Note:")
	})

	t.Run("unparseable deadline passes through", func(t *testing.T) {
		body := Body(Notification{
			Kind:    KindDeadlineSet,
			Subject: "CL-20250610-A1B2C3",
			Payload: map[string]string{"title": "Pothole", "deadline": "soon"},
		})
		assert.Contains(t, body, "soon")
	})
}
