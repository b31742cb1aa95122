package directory

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	GetResponseField(field string) (interface{}, error)
	Save(name, value string)
	SaveResponseField(field, name string) error
}

// RegisterSteps registers directory management step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &directorySteps{tc: tc}

	// Ensure-style givens: create the entry, or look it up when an earlier
	// scenario already registered it against the same running instance.
	ctx.Step(`^an institution "([^"]*)" covering "([^"]*)" province and "([^"]*)" district$`, steps.ensureInstitution)
	ctx.Step(`^a department "([^"]*)" serving "([^"]*)" district$`, steps.ensureDepartment)

	// Plain requests for asserting on the response itself
	ctx.Step(`^I register an institution named "([^"]*)" covering "([^"]*)" province and "([^"]*)" district$`, steps.registerInstitution)
	ctx.Step(`^I register a department named "([^"]*)" serving "([^"]*)" district$`, steps.registerDepartment)
	ctx.Step(`^I list the registered institutions$`, steps.listInstitutions)
	ctx.Step(`^I list the registered departments$`, steps.listDepartments)

	// Directory assertion steps
	ctx.Step(`^the institutions list should contain "([^"]*)"$`, steps.institutionsListShouldContain)
	ctx.Step(`^the departments list should contain "([^"]*)"$`, steps.departmentsListShouldContain)
}

type directorySteps struct {
	tc TestContext
}

func (s *directorySteps) ensureInstitution(ctx context.Context, name, province, district string) error {
	if err := s.registerInstitution(ctx, name, province, district); err != nil {
		return err
	}
	switch s.tc.GetLastResponseStatus() {
	case 201:
		return s.tc.SaveResponseField("id", "institution:"+name)
	case 409:
		return s.lookupByName("/admin/institutions", "institutions", name, "institution:"+name)
	default:
		return fmt.Errorf("could not ensure institution %q: status %d: %s",
			name, s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
}

func (s *directorySteps) ensureDepartment(ctx context.Context, name, district string) error {
	if err := s.registerDepartment(ctx, name, district); err != nil {
		return err
	}
	switch s.tc.GetLastResponseStatus() {
	case 201:
		return s.tc.SaveResponseField("id", "department:"+name)
	case 409:
		return s.lookupByName("/admin/departments", "departments", name, "department:"+name)
	default:
		return fmt.Errorf("could not ensure department %q: status %d: %s",
			name, s.tc.GetLastResponseStatus(), s.tc.GetLastResponseBody())
	}
}

func (s *directorySteps) registerInstitution(ctx context.Context, name, province, district string) error {
	body := map[string]interface{}{
		"name":          name,
		"province":      province,
		"district":      district,
		"contact_email": "desk@cityline.example",
	}
	return s.tc.POST("/admin/institutions", body)
}

func (s *directorySteps) registerDepartment(ctx context.Context, name, district string) error {
	body := map[string]interface{}{
		"name":          name,
		"district":      district,
		"contact_email": "crew@cityline.example",
	}
	return s.tc.POST("/admin/departments", body)
}

func (s *directorySteps) listInstitutions(ctx context.Context) error {
	return s.tc.GET("/admin/institutions", nil)
}

func (s *directorySteps) listDepartments(ctx context.Context) error {
	return s.tc.GET("/admin/departments", nil)
}

func (s *directorySteps) institutionsListShouldContain(ctx context.Context, name string) error {
	_, err := s.findInList("institutions", name)
	return err
}

func (s *directorySteps) departmentsListShouldContain(ctx context.Context, name string) error {
	_, err := s.findInList("departments", name)
	return err
}

// lookupByName lists the collection and saves the id of the entry with the
// given name.
func (s *directorySteps) lookupByName(path, listField, name, saveAs string) error {
	if err := s.tc.GET(path, nil); err != nil {
		return err
	}
	entry, err := s.findInList(listField, name)
	if err != nil {
		return err
	}
	id, ok := entry["id"].(string)
	if !ok {
		return fmt.Errorf("%s entry %q has no id", listField, name)
	}
	s.tc.Save(saveAs, id)
	return nil
}

func (s *directorySteps) findInList(listField, name string) (map[string]interface{}, error) {
	value, err := s.tc.GetResponseField(listField)
	if err != nil {
		return nil, err
	}
	entries, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q is not a list", listField)
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if entry["name"] == name {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("no %s entry named %q: %s", listField, name, s.tc.GetLastResponseBody())
}
