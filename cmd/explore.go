package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/controller"
	"github.com/schemapilot/pilotctl/schema"
)

// loadExplorer builds an explorer for the resolved run.
func loadExplorer() *controller.Explorer {
	runID, err := resolveRunID()
	if err != nil {
		contract.LogFatal("Cannot resolve run", err)
	}
	ex := controller.NewExplorer(backend, cfg.PreviewLimit)
	if err := ex.Load(rootCtx, runID); err != nil {
		contract.LogFatal("Cannot load run", err)
	}
	return ex
}

// tablesCmd lists a run's tables.
var tablesCmd = &cobra.Command{
	Use:   "tables [run-id]",
	Short: "List the tables uploaded to a run",
	Long: `List the tables of a run, with their description and selection flags.

Examples:
  pilotctl tables 3f9c01
  pilotctl tables --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ex := loadExplorer()
		if err := outw.WriteTables(ex.Tables, cfg); err != nil {
			contract.LogFatal("Cannot write tables", err)
		}
	},
}

// schemaCmd shows the schema analysis.
var schemaCmd = &cobra.Command{
	Use:   "schema [run-id]",
	Short: "Show per-column statistics for a run's tables",
	Long: `Show the inferred schema: per-column types, null and uniqueness
counts, numeric summaries, and AI descriptions.

By default all tables are printed. Use --table to restrict the view, and
--table plus --field for the single-field detail view including the value
distribution histogram.

Examples:
  # Full schema grid
  pilotctl schema 3f9c01

  # One table only
  pilotctl schema 3f9c01 --table orders

  # Field drill-down with histogram
  pilotctl schema 3f9c01 --table orders --field amount

  # Snapshot every column's statistics for analytics
  pilotctl schema 3f9c01 --output parquet --output-file stats.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ex := loadExplorer()
		tableName := viper.GetString("table")
		fieldName := viper.GetString("field")

		if fieldName != "" {
			if tableName == "" {
				contract.LogFatal("Cannot show field detail", fmt.Errorf("--field requires --table"))
			}
			if err := ex.SelectTable(tableName); err != nil {
				contract.LogFatal("Cannot select table", err)
			}
			fields := ex.SelectedFields()
			for i := range fields {
				if fields[i].ColumnName == fieldName {
					if err := outw.WriteFieldDetail(tableName, &fields[i], cfg); err != nil {
						contract.LogFatal("Cannot write field detail", err)
					}
					return
				}
			}
			contract.LogFatal("Cannot show field detail", fmt.Errorf("unknown field %s in table %s", fieldName, tableName))
		}

		analysis := ex.Analysis
		if tableName != "" {
			fields, ok := analysis.Tables[tableName]
			if !ok {
				contract.LogFatal("Cannot show schema", fmt.Errorf("no analysis for table %s", tableName))
			}
			analysis = &schema.SchemaAnalysis{
				RunID:  analysis.RunID,
				Tables: map[string][]schema.FieldStats{tableName: fields},
			}
		}
		if err := outw.WriteAnalysis(analysis, cfg); err != nil {
			contract.LogFatal("Cannot write schema", err)
		}
	},
}

// previewCmd shows raw table rows.
var previewCmd = &cobra.Command{
	Use:   "preview <run-id> <table>",
	Short: "Show a sample of raw rows from one table",
	Long: `Fetch up to --preview-limit raw rows of a table and print them.

Valid limits are 20, 50, 100, and 200 rows.

Examples:
  pilotctl preview 3f9c01 orders
  pilotctl preview 3f9c01 orders --preview-limit 200 --output csv`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, tableName := args[0], args[1]
		ex := controller.NewExplorer(backend, cfg.PreviewLimit)
		if err := ex.Load(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		if err := ex.SelectTable(tableName); err != nil {
			contract.LogFatal("Cannot select table", err)
		}
		preview, err := ex.Preview(rootCtx)
		if err != nil {
			contract.LogFatal("Cannot fetch preview", err)
		}
		if err := outw.WritePreview(tableName, preview, cfg); err != nil {
			contract.LogFatal("Cannot write preview", err)
		}
	},
}

// describeCmd edits one column description.
var describeCmd = &cobra.Command{
	Use:   "describe <run-id> <table> <field> <description>",
	Short: "Edit the description of one column",
	Long: `Replace the AI-generated description of a column with your own text.

Examples:
  pilotctl describe 3f9c01 orders amount "Order total in cents, pre-tax"`,
	Args:    cobra.ExactArgs(4),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		runID, tableName, fieldName, description := args[0], args[1], args[2], args[3]
		ex := controller.NewExplorer(backend, cfg.PreviewLimit)
		if err := ex.Load(rootCtx, runID); err != nil {
			contract.LogFatal("Cannot load run", err)
		}
		if err := ex.UpdateDescription(rootCtx, tableName, fieldName, description); err != nil {
			contract.LogFatal("Cannot update description", err)
		}
		fmt.Printf("Description updated for %s.%s.\n", tableName, fieldName)
	},
}

// descriptionsCmd lists description artifacts.
var descriptionsCmd = &cobra.Command{
	Use:   "descriptions [run-id]",
	Short: "List the AI description artifacts produced for a run",
	Long: `List the description files the backend generated for a run. Use
'pilotctl download description' to fetch one.

Examples:
  pilotctl descriptions 3f9c01`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID, err := resolveRunID()
		if err != nil {
			contract.LogFatal("Cannot resolve run", err)
		}
		files, err := backend.GetDescriptions(rootCtx, runID)
		if err != nil {
			contract.LogFatal("Cannot list descriptions", err)
		}
		if len(files) == 0 {
			fmt.Println("No description artifacts found.")
			return
		}
		for _, f := range files {
			fmt.Printf("%s (%d bytes)\n", f.Filename, f.Size)
		}
	},
}
