package complaint

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	PATCH(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetLastResponseBody() []byte
	GetResponseField(field string) (interface{}, error)
	Saved(name string) (string, error)
	SaveResponseField(field, name string) error
	AuthenticateSubject(subject, role string) error
}

// RegisterSteps registers complaint lifecycle and forwarding step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &complaintSteps{tc: tc}

	// Intake and tracking steps
	ctx.Step(`^I submit a complaint titled "([^"]*)" in category "([^"]*)" for "([^"]*)" province and "([^"]*)" district$`, steps.submitComplaint)
	ctx.Step(`^I save the complaint$`, steps.saveComplaint)
	ctx.Step(`^I track the complaint by its tracking number$`, steps.trackComplaint)
	ctx.Step(`^I track the complaint with tracking number "([^"]*)"$`, steps.trackByNumber)

	// Lifecycle steps
	ctx.Step(`^I am authenticated as the handling institution$`, steps.authenticateAsHandlingInstitution)
	ctx.Step(`^I update the complaint status to "([^"]*)"$`, steps.updateStatus)
	ctx.Step(`^I update the complaint status to "([^"]*)" with deadline "([^"]*)"$`, steps.updateStatusWithDeadline)
	ctx.Step(`^I update the complaint deadline to "([^"]*)"$`, steps.updateDeadline)

	// Forwarding steps
	ctx.Step(`^I forward the complaint to department "([^"]*)" with note "([^"]*)"$`, steps.forwardToDepartment)
	ctx.Step(`^I list the complaint's forwardings$`, steps.listForwardings)
	ctx.Step(`^the forwardings list should contain note "([^"]*)"$`, steps.forwardingsShouldContainNote)
}

type complaintSteps struct {
	tc TestContext
}

func (s *complaintSteps) submitComplaint(ctx context.Context, title, category, province, district string) error {
	body := map[string]interface{}{
		"title":         title,
		"description":   "Filed through the public portal during an end-to-end run.",
		"category":      category,
		"province":      province,
		"district":      district,
		"contact_email": "kasun.perera@example.lk",
	}
	return s.tc.POST("/complaints", body)
}

// saveComplaint captures the identifiers later steps need: the complaint id,
// its tracking number, and the institution it was routed to.
func (s *complaintSteps) saveComplaint(ctx context.Context) error {
	if err := s.tc.SaveResponseField("complaint.id", "complaint_id"); err != nil {
		return err
	}
	if err := s.tc.SaveResponseField("complaint.tracking_number", "tracking_number"); err != nil {
		return err
	}
	return s.tc.SaveResponseField("complaint.assigned_to", "assigned_institution")
}

func (s *complaintSteps) trackComplaint(ctx context.Context) error {
	trackingNumber, err := s.tc.Saved("tracking_number")
	if err != nil {
		return err
	}
	return s.trackByNumber(ctx, trackingNumber)
}

func (s *complaintSteps) trackByNumber(ctx context.Context, trackingNumber string) error {
	return s.tc.GET("/complaints/track/"+trackingNumber, nil)
}

func (s *complaintSteps) authenticateAsHandlingInstitution(ctx context.Context) error {
	institutionID, err := s.tc.Saved("assigned_institution")
	if err != nil {
		return err
	}
	return s.tc.AuthenticateSubject(institutionID, "institution")
}

func (s *complaintSteps) updateStatus(ctx context.Context, status string) error {
	id, err := s.tc.Saved("complaint_id")
	if err != nil {
		return err
	}
	return s.tc.PATCH("/complaints/"+id+"/status", map[string]interface{}{
		"status": status,
	})
}

func (s *complaintSteps) updateStatusWithDeadline(ctx context.Context, status, deadline string) error {
	id, err := s.tc.Saved("complaint_id")
	if err != nil {
		return err
	}
	return s.tc.PATCH("/complaints/"+id+"/status", map[string]interface{}{
		"status":   status,
		"deadline": deadline,
	})
}

func (s *complaintSteps) updateDeadline(ctx context.Context, deadline string) error {
	id, err := s.tc.Saved("complaint_id")
	if err != nil {
		return err
	}
	return s.tc.PATCH("/complaints/"+id+"/deadline", map[string]interface{}{
		"deadline": deadline,
	})
}

func (s *complaintSteps) forwardToDepartment(ctx context.Context, department, note string) error {
	id, err := s.tc.Saved("complaint_id")
	if err != nil {
		return err
	}
	departmentID, err := s.tc.Saved("department:" + department)
	if err != nil {
		return err
	}
	return s.tc.POST("/complaints/"+id+"/forward", map[string]interface{}{
		"department_id": departmentID,
		"note":          note,
	})
}

func (s *complaintSteps) listForwardings(ctx context.Context) error {
	id, err := s.tc.Saved("complaint_id")
	if err != nil {
		return err
	}
	return s.tc.GET("/complaints/"+id+"/forwardings", nil)
}

func (s *complaintSteps) forwardingsShouldContainNote(ctx context.Context, note string) error {
	value, err := s.tc.GetResponseField("forwardings")
	if err != nil {
		return err
	}
	entries, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("field \"forwardings\" is not a list")
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if entry["note"] == note {
			return nil
		}
	}
	return fmt.Errorf("no forwarding with note %q: %s", note, s.tc.GetLastResponseBody())
}
