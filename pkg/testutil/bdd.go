package testutil

import "testing"

// Given, When and Then run fn as a named subtest so scenario-style tests read
// as a narrative in go test output. They are plain t.Run wrappers; real
// feature files live in the e2e module.
func Given(t *testing.T, desc string, fn func(t *testing.T)) { step(t, "Given", desc, fn) }

// When is the action step of a scenario subtest.
func When(t *testing.T, desc string, fn func(t *testing.T)) { step(t, "When", desc, fn) }

// Then is the assertion step of a scenario subtest.
func Then(t *testing.T, desc string, fn func(t *testing.T)) { step(t, "Then", desc, fn) }

func step(t *testing.T, word, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run(word+" "+desc, fn)
}
