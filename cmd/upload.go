package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/controller"
	"github.com/schemapilot/pilotctl/schema"
)

// uploadCmd uploads tabular files into a run.
var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload tabular files into a new or existing run",
	Long: `Upload one or more local tabular files (CSV, Excel) to the backend.

Without --run-id a new run is created and its server-minted id printed.
With --run-id the files are added to the existing run. Pass --analyze to
immediately trigger schema inference and AI descriptions, which is the
same pipeline as 'pilotctl analyze'.

Examples:
  # Start a new run
  pilotctl upload orders.csv customers.csv

  # Add a file to an existing run and analyze everything
  pilotctl upload --run-id 3f9c01 --analyze refunds.csv`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		up := controller.NewUpload(backend)

		if runID := viper.GetString("run-id"); runID != "" {
			if err := up.SelectRun(rootCtx, runID); err != nil {
				contract.LogFatal("Cannot select run", err)
			}
		}
		if err := up.UploadFiles(rootCtx, args); err != nil {
			contract.LogFatal("Upload failed", err)
		}
		fmt.Printf("Uploaded %d files to run %s.\n", len(args), up.RunID)
		for _, t := range up.Tables {
			fmt.Printf("  table: %s\n", t.Name)
		}
		rememberRun(schema.RunRecord{
			RunID:         up.RunID,
			FilesUploaded: len(up.Tables),
			Analysis:      up.Analysis,
			LastSeen:      time.Now(),
		})

		if viper.GetBool("analyze") {
			analyzeRun(up)
		}
	},
}

// analyzeCmd runs the two-step analysis pipeline for a run.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [run-id]",
	Short: "Generate the schema analysis and AI field descriptions for a run",
	Long: `Run the server-side analysis pipeline: schema inference first, then
AI-generated field descriptions.

A schema-inference failure aborts the pipeline. A description failure is
tolerated: the schema analysis is kept, a warning is printed, and the run is
still explorable; descriptions are deliberately not re-requested because a
duplicate request would double the model spend.

Examples:
  pilotctl analyze 3f9c01
  pilotctl analyze   # active run`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID, err := resolveRunID()
		if err != nil {
			contract.LogFatal("Cannot resolve run", err)
		}
		up := controller.NewUpload(backend)
		if err := up.SelectRun(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot select run", err)
		}
		analyzeRun(up)
	},
}

// analyzeRun drives the analysis pipeline and reports the outcome.
func analyzeRun(up *controller.Upload) {
	fmt.Printf("Analyzing run %s (schema inference may take a few minutes)...\n", up.RunID)
	if err := up.Analyze(rootCtx); err != nil {
		contract.LogFatal("Analysis failed", err)
	}
	if up.DescriptionsFailed {
		fmt.Println("Schema analysis complete, but field descriptions failed; the run is still explorable.")
	} else {
		fmt.Println("Schema analysis and field descriptions complete.")
	}
	rememberRun(schema.RunRecord{
		RunID:         up.RunID,
		FilesUploaded: len(up.Tables),
		Analysis:      up.Analysis,
		LastSeen:      time.Now(),
	})
}
