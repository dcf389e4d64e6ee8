package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/sqlfmt"
)

// queryCmd groups saved-query management.
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Save, execute, refine, and export SQL queries",
	Long: `Work with a run's saved queries directly, without the chat workflow.

Subcommands:
  save   - Persist SQL server-side and print its query id
  run    - Execute a saved query and print the results
  refine - Rewrite a saved query from a natural-language instruction
  list   - List the run's saved queries
  export - Fetch a result file and export it as CSV

Examples:
  pilotctl query save 3f9c01 "SELECT * FROM orders LIMIT 10"
  pilotctl query run 3f9c01 q-42
  pilotctl query refine 3f9c01 q-42 "only orders from 2026"`,
}

// querySaveCmd persists SQL server-side.
var querySaveCmd = &cobra.Command{
	Use:   "save <run-id> <sql>",
	Short: "Persist SQL server-side and print its query id",
	Long: `Save a SQL statement under the run. The returned id can be executed,
refined, or downloaded later.

Examples:
  pilotctl query save 3f9c01 "SELECT COUNT(*) FROM orders"`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, sqlText := args[0], args[1]
		queryID, err := backend.SaveQuery(rootCtx, runID, sqlText)
		if err != nil {
			contract.LogFatal("Cannot save query", err)
		}
		fmt.Printf("Saved query %s.\n", queryID)
	},
}

// queryRunCmd executes a saved query.
var queryRunCmd = &cobra.Command{
	Use:   "run <run-id> <query-id>",
	Short: "Execute a saved query and print the results",
	Long: `Execute a saved query server-side, fetch the result rows, and print
them in the configured output format.

Examples:
  pilotctl query run 3f9c01 q-42
  pilotctl query run 3f9c01 q-42 --output csv --output-file out.csv`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, queryID := args[0], args[1]
		exec, err := backend.ExecuteQuery(rootCtx, runID, queryID)
		if err != nil {
			contract.LogFatal("Cannot execute query", err)
		}
		result, err := backend.GetQueryResults(rootCtx, runID, exec.ResultFile)
		if err != nil {
			contract.LogFatal("Cannot fetch results", err)
		}
		if err := outw.WriteQueryResults(result, cfg); err != nil {
			contract.LogFatal("Cannot write results", err)
		}
		fmt.Printf("%d rows (result file %s)\n", len(result.Data), exec.ResultFile)
	},
}

// queryRefineCmd rewrites a saved query.
var queryRefineCmd = &cobra.Command{
	Use:   "refine <run-id> <query-id> <instruction>",
	Short: "Rewrite a saved query from a natural-language instruction",
	Long: `Ask the backend to modify a saved query. The rewritten SQL is printed
pretty-printed but not saved; pass it to 'query save' to keep it.

Examples:
  pilotctl query refine 3f9c01 q-42 "group by month instead of day"`,
	Args:    cobra.ExactArgs(3),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, queryID, instruction := args[0], args[1], args[2]
		modified, err := backend.ModifyQuery(rootCtx, runID, queryID, instruction)
		if err != nil {
			contract.LogFatal("Cannot refine query", err)
		}
		ex := sqlfmt.Extract(modified.ModifiedSQLQuery, modified.Commentary)
		fmt.Println(sqlfmt.Pretty(ex.SQL))
		if commentary := sqlfmt.CleanCommentary(ex.Commentary); commentary != "" {
			fmt.Printf("\n-- %s\n", commentary)
		}
	},
}

// queryListCmd lists saved queries.
var queryListCmd = &cobra.Command{
	Use:   "list [run-id]",
	Short: "List the run's saved queries",
	Long: `List the saved queries of a run with their ids and SQL.

Examples:
  pilotctl query list 3f9c01`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID, err := resolveRunID()
		if err != nil {
			contract.LogFatal("Cannot resolve run", err)
		}
		queries := backend.GetQueries(rootCtx, runID)
		if err := outw.WriteQueries(queries, cfg); err != nil {
			contract.LogFatal("Cannot write queries", err)
		}
	},
}

// queryExportCmd exports result rows through the server-side CSV renderer.
var queryExportCmd = &cobra.Command{
	Use:   "export <run-id> <result-file>",
	Short: "Fetch a result file and export it as CSV",
	Long: `Fetch the rows of a result file and have the backend render them as
CSV. The CSV is written to --output-file, or to query_results_<unix>.csv in
the current directory when no path is given.

Examples:
  pilotctl query export 3f9c01 result_42.json
  pilotctl query export 3f9c01 result_42.json --output-file revenue.csv`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, resultFile := args[0], args[1]
		result, err := backend.GetQueryResults(rootCtx, runID, resultFile)
		if err != nil {
			contract.LogFatal("Cannot fetch results", err)
		}

		outPath := cfg.OutputFile
		if outPath == "" {
			outPath = fmt.Sprintf("query_results_%d.csv", time.Now().Unix())
		}
		f, err := os.Create(outPath)
		if err != nil {
			contract.LogFatal("Cannot create export file", err)
		}
		defer func() { _ = f.Close() }()

		if err := backend.ExportResults(rootCtx, runID, result.Data, f); err != nil {
			contract.LogFatal("Cannot export results", err)
		}
		fmt.Printf("Exported %d rows to %s.\n", len(result.Data), outPath)
	},
}
