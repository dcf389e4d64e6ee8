// Package cmd defines the command-line interface for pilotctl.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(descriptionsCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(storeCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsInfoCmd)
	runsCmd.AddCommand(runsLoadCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsDeleteFileCmd)

	// Add the query subcommands to the parent query command
	queryCmd.AddCommand(querySaveCmd)
	queryCmd.AddCommand(queryRunCmd)
	queryCmd.AddCommand(queryRefineCmd)
	queryCmd.AddCommand(queryListCmd)
	queryCmd.AddCommand(queryExportCmd)

	// Add the chat subcommands to the parent chat command
	chatCmd.AddCommand(chatHistoryCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(chatRerunCmd)
	chatCmd.AddCommand(chatEditCmd)
	chatCmd.AddCommand(chatSaveQueryCmd)

	// Add the download subcommands to the parent download command
	downloadCmd.AddCommand(downloadDescriptionCmd)
	downloadCmd.AddCommand(downloadQueryCmd)
	downloadCmd.AddCommand(downloadResultCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("api-base-url", contract.DefaultAPIBaseURL, "Base URL of the SchemaPilot backend")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("timeout", 30, "Default request timeout in seconds")
	rootCmd.PersistentFlags().Int("retry-max", 3, "Maximum retries for retryable operations")
	rootCmd.PersistentFlags().Int("retry-delay-ms", 1000, "Base retry delay in milliseconds")
	rootCmd.PersistentFlags().Int("preview-limit", contract.DefaultPreviewLimit, "Preview row limit: 20, 50, 100 or 200")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Workspace store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Bool("offline", false, "Serve list reads from the workspace store instead of the backend")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of uploadCmd to Viper
	uploadCmd.Flags().String("run-id", "", "Existing run to add the files to (empty creates a new run)")
	uploadCmd.Flags().Bool("analyze", false, "Run schema inference and AI descriptions after the upload")
	if err := viper.BindPFlags(uploadCmd.Flags()); err != nil {
		contract.LogFatal("Error binding upload flags", err)
	}

	// Bind all flags of askCmd to Viper
	askCmd.Flags().Bool("execute", false, "Save and execute the generated SQL, then print the first result page")
	askCmd.Flags().String("tables", "", "Comma-separated table names to use as generation context (defaults to all)")
	askCmd.Flags().Int("page", 1, "Result page to print when executing")
	if err := viper.BindPFlags(askCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ask flags", err)
	}

	// Bind all flags of schemaCmd to Viper
	schemaCmd.Flags().String("table", "", "Restrict the view to one table")
	schemaCmd.Flags().String("field", "", "Show the single-field detail view (requires --table)")
	if err := viper.BindPFlags(schemaCmd.Flags()); err != nil {
		contract.LogFatal("Error binding schema flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
