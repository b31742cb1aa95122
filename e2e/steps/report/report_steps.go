package report

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseBody() []byte
	GetResponseField(field string) (interface{}, error)
}

// RegisterSteps registers performance report step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &reportSteps{tc: tc}

	ctx.Step(`^I request the performance report$`, steps.requestReport)
	ctx.Step(`^I request the performance report for timeframe "([^"]*)"$`, steps.requestReportForTimeframe)
	ctx.Step(`^the report should include institution "([^"]*)"$`, steps.reportShouldIncludeInstitution)
	ctx.Step(`^the system total should be at least (\d+)$`, steps.systemTotalShouldBeAtLeast)
}

type reportSteps struct {
	tc TestContext
}

func (s *reportSteps) requestReport(ctx context.Context) error {
	return s.tc.GET("/reports/performance", nil)
}

func (s *reportSteps) requestReportForTimeframe(ctx context.Context, timeframe string) error {
	return s.tc.GET("/reports/performance?timeframe="+timeframe, nil)
}

func (s *reportSteps) reportShouldIncludeInstitution(ctx context.Context, name string) error {
	value, err := s.tc.GetResponseField("institutions")
	if err != nil {
		return err
	}
	entries, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("field \"institutions\" is not a list")
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if entry["institution_name"] == name {
			return nil
		}
	}
	return fmt.Errorf("institution %q not in report: %s", name, s.tc.GetLastResponseBody())
}

// The suite runs against a shared instance, so totals only ever grow; the
// assertion is a floor, not an exact count.
func (s *reportSteps) systemTotalShouldBeAtLeast(ctx context.Context, minimum int) error {
	value, err := s.tc.GetResponseField("system.total_complaints")
	if err != nil {
		return err
	}
	total, ok := value.(float64)
	if !ok {
		return fmt.Errorf("system.total_complaints is not a number (got %T)", value)
	}
	if int(total) < minimum {
		return fmt.Errorf("expected at least %d total complaints, got %d", minimum, int(total))
	}
	return nil
}
