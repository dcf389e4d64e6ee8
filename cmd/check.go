package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schemapilot/pilotctl/internal/contract"
)

// checkCmd verifies connectivity with the backend.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the backend is reachable and report its environment",
	Long: `Call the backend's environment-check endpoint and print the report.

Use this to:
- Confirm the configured base URL points at a live SchemaPilot server
- See which optional server-side features are enabled
- Debug connectivity before uploading data

Examples:
  # Check the default backend
  pilotctl check

  # Check a remote deployment
  PILOTCTL_API_BASE_URL=https://pilot.example.com pilotctl check`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		report, err := backend.EnvCheck(rootCtx)
		if err != nil {
			contract.LogFatal("Backend check failed", err)
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			contract.LogFatal("Cannot render report", err)
		}
		fmt.Println(string(data))
	},
}
