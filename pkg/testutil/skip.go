// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"testing"
)

// RequireIntegration skips tests that need external services. They run outside
// short mode, and in CI only when INTEGRATION_TESTS is set.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("INTEGRATION_TESTS") == "" && os.Getenv("CI") != "" {
		t.Skip("skipping integration test (set INTEGRATION_TESTS=1 to run)")
	}
}

// RequireDocker skips the test when no Docker daemon is reachable through the
// default socket or DOCKER_HOST.
func RequireDocker(t *testing.T) {
	t.Helper()
	if os.Getenv("DOCKER_HOST") != "" {
		return
	}
	if _, err := os.Stat("/var/run/docker.sock"); err != nil {
		t.Skip("skipping test: docker is not available")
	}
}
