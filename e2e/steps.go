package e2e

import (
	"github.com/cucumber/godog"

	"cityline/e2e/steps/common"
	"cityline/e2e/steps/complaint"
	"cityline/e2e/steps/directory"
	"cityline/e2e/steps/report"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (background, auth, generic assertions)
	common.RegisterSteps(ctx, tc)

	// Register directory management steps
	directory.RegisterSteps(ctx, tc)

	// Register complaint lifecycle and forwarding steps
	complaint.RegisterSteps(ctx, tc)

	// Register performance report steps
	report.RegisterSteps(ctx, tc)
}
