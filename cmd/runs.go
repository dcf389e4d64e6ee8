package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/workstore"
	"github.com/schemapilot/pilotctl/schema"
)

// runsCmd groups run lifecycle management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List, inspect, and manage analysis runs",
	Long: `Manage the analysis runs held by the backend.

A run is one unit of uploaded files plus everything the server derived from
them: inferred schemas, AI descriptions, saved queries, and execution results.
Every run seen by this client is also recorded in the local workspace store,
so 'runs list --offline' works without a reachable backend.

Subcommands:
  list        - List runs (backend, or local store with --offline)
  info        - Show one run
  load        - Restore a run server-side and mark it active locally
  delete      - Remove a run and its artifacts
  delete-file - Remove one uploaded file from a run

Examples:
  # List runs with analysis flags
  pilotctl runs list

  # Activate a run so later commands can omit the run id
  pilotctl runs load 3f9c01

  # Inspect the currently active run
  pilotctl runs info`,
}

// runRecordToRun converts a stored run record for display.
func runRecordToRun(rec schema.RunRecord) schema.Run {
	return schema.Run{
		RunID:         rec.RunID,
		CreatedAt:     rec.CreatedAt,
		FilesUploaded: rec.FilesUploaded,
		Analysis:      rec.Analysis,
	}
}

// runToRecord converts a backend run for local bookkeeping.
func runToRecord(run schema.Run) schema.RunRecord {
	return schema.RunRecord{
		RunID:         run.RunID,
		CreatedAt:     run.CreatedAt,
		FilesUploaded: run.FilesUploaded,
		Analysis:      run.Analysis,
		LastSeen:      time.Now(),
	}
}

// runsListCmd lists runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List analysis runs with their schema-analysis flags",
	Long: `List the runs known to the backend, newest first.

Each run's schema-analysis flag is probed client-side and shown tri-state:
present, absent, or unknown when the probe itself failed. With --offline the
listing comes from the local workspace store instead of the backend.

Examples:
  # List backend runs
  pilotctl runs list

  # List locally recorded runs without touching the network
  pilotctl runs list --offline

  # Export the listing
  pilotctl runs list --output csv --output-file runs.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if cfg.Offline {
			store := workstore.Manager.GetWorkspaceStore()
			recs, err := store.ListRuns()
			if err != nil {
				contract.LogFatal("Cannot list local runs", err)
			}
			runs := make([]schema.Run, 0, len(recs))
			for _, rec := range recs {
				runs = append(runs, runRecordToRun(rec))
			}
			if err := outw.WriteRuns(runs, cfg); err != nil {
				contract.LogFatal("Cannot write runs", err)
			}
			return
		}

		runs := backend.GetRuns(rootCtx)
		for i := range runs {
			runs[i].Analysis = backend.ProbeAnalysis(rootCtx, runs[i].RunID)
			rememberRun(runToRecord(runs[i]))
		}
		if err := outw.WriteRuns(runs, cfg); err != nil {
			contract.LogFatal("Cannot write runs", err)
		}
	},
}

// runsInfoCmd shows one run.
var runsInfoCmd = &cobra.Command{
	Use:   "info [run-id]",
	Short: "Show one run's metadata and analysis flag",
	Long: `Fetch a single run and print it in the configured output format.

The run id may be omitted when an active run was set with 'runs load'.

Examples:
  pilotctl runs info 3f9c01
  pilotctl runs info --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID, err := resolveRunID()
		if err != nil {
			contract.LogFatal("Cannot resolve run", err)
		}
		run, err := backend.GetRunInfo(rootCtx, runID)
		if err != nil {
			contract.LogFatal("Cannot fetch run", err)
		}
		run.Analysis = backend.ProbeAnalysis(rootCtx, runID)
		rememberRun(runToRecord(*run))
		if err := outw.WriteRuns([]schema.Run{*run}, cfg); err != nil {
			contract.LogFatal("Cannot write run", err)
		}
	},
}

// runsLoadCmd restores a run and marks it active.
var runsLoadCmd = &cobra.Command{
	Use:   "load <run-id>",
	Short: "Restore a run server-side and mark it active locally",
	Long: `Restore a run's working state on the backend and record it as the
active run in the workspace store. Commands that take an optional run id
default to the active run afterwards.

Examples:
  pilotctl runs load 3f9c01
  pilotctl tables   # now implies run 3f9c01`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID := args[0]
		if err := backend.LoadRun(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		run, err := backend.GetRunInfo(rootCtx, runID)
		if err != nil {
			contract.LogFatal("Cannot fetch run", err)
		}
		run.Analysis = backend.ProbeAnalysis(rootCtx, runID)
		rememberRun(runToRecord(*run))
		if store := workstore.Manager.GetWorkspaceStore(); store != nil {
			if err := store.SetActiveRun(runID); err != nil {
				contract.LogWarn("could not mark run active locally", err)
			}
		}
		fmt.Printf("Run %s loaded and set active.\n", runID)
	},
}

// runsDeleteCmd deletes a run.
var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a run and all of its artifacts",
	Long: `Delete a run from the backend, including its uploaded files, schema
analysis, saved queries, and chat history. The local workspace record is
removed as well.

WARNING: This action cannot be undone.

Examples:
  pilotctl runs delete 3f9c01`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID := args[0]
		if err := backend.DeleteRun(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot delete run", err)
		}
		if store := workstore.Manager.GetWorkspaceStore(); store != nil {
			if err := store.DeleteRun(runID); err != nil {
				contract.LogWarn("could not remove local run record", err)
			}
		}
		fmt.Printf("Run %s deleted.\n", runID)
	},
}

// runsDeleteFileCmd removes one uploaded file from a run.
var runsDeleteFileCmd = &cobra.Command{
	Use:   "delete-file <run-id> <filename>",
	Short: "Remove one uploaded file from a run",
	Long: `Delete a single uploaded file from a run. Artifacts derived from the
file (its table, statistics, descriptions) are dropped by the backend.

Examples:
  pilotctl runs delete-file 3f9c01 orders.csv`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, filename := args[0], args[1]
		if err := backend.DeleteFile(rootCtx, runID, filename); err != nil {
			contract.LogFatal("Cannot delete file", err)
		}
		fmt.Printf("File %s removed from run %s.\n", filename, runID)
	},
}
