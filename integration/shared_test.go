//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedPilotctlPath holds the path to a shared pilotctl binary built once for all tests.
	sharedPilotctlPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getPilotctlBinary returns the path to the pilotctl binary, building it once if needed.
func getPilotctlBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "pilotctl-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		pilotctlPath := filepath.Join(tempDir, "pilotctl")
		buildCmd := exec.Command("go", "build", "-o", pilotctlPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build pilotctl: %v", err))
		}

		sharedPilotctlPath = pilotctlPath
	})

	return sharedPilotctlPath
}

// runPilotctlCommand runs the shared binary and returns its combined output.
func runPilotctlCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	pilotctlPath := getPilotctlBinary()
	cmd := exec.Command(pilotctlPath, args...)
	cmd.Dir = tempDir // Keep stray files out of the project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return string(output), err
}
