package testutil

import (
	"os"
	"testing"
)

// RequireTestEnvironment fails the test immediately unless GO_ENV is set to
// "test". Integration suites wipe and reseed their database, so this guard
// keeps them away from a developer's real data.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("refusing to run: GO_ENV must be \"test\" (got %q)", env)
	}
}

// MustSetTestEnvironment forces GO_ENV=test for the current process. Call it
// from suite setup before loading configuration.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("failed to set GO_ENV=test: %v", err)
	}
}
