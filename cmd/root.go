package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemapilot/pilotctl/internal/api"
	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/outwriter"
	"github.com/schemapilot/pilotctl/internal/workstore"
	"github.com/schemapilot/pilotctl/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// backend is the API client every command talks through.
var backend contract.Backend

// outw renders results in the configured output mode.
var outw = outwriter.NewOutWriter()

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "pilotctl",
	Short:              "Upload tabular data, explore inferred schemas, and query with natural language.",
	Long:               `Pilotctl is the terminal client for the SchemaPilot analysis backend.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".pilotctl") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("PILOTCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("api-base-url", contract.DefaultAPIBaseURL)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("output-file", "")
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("width", 0)
	viper.SetDefault("timeout", 30)
	viper.SetDefault("retry-max", 3)
	viper.SetDefault("retry-delay-ms", 1000)
	viper.SetDefault("preview-limit", contract.DefaultPreviewLimit)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
	viper.SetDefault("offline", false)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do). The first
	// positional argument of every online command is the run id.
	if len(args) > 0 {
		input.RunIDStr = args[0]
	}

	// 4. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 5. Initialize the workspace store with validated config
	if err := workstore.InitStores(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("failed to initialize workspace store: %w", err)
	}

	// 6. Build the API client unless a test already installed a backend.
	if backend == nil {
		backend = api.NewClient(cfg)
	}

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".pilotctl")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// resolveRunID returns the run id from the positional argument, falling back
// to the workspace store's active run when none was given.
func resolveRunID() (string, error) {
	if input.RunIDStr != "" {
		return input.RunIDStr, nil
	}
	if store := workstore.Manager.GetWorkspaceStore(); store != nil {
		active, err := store.GetActiveRun()
		if err == nil && active != "" {
			return active, nil
		}
	}
	return "", fmt.Errorf("no run id given and no active run recorded; pass a run id or use 'pilotctl runs load'")
}

// rememberRun mirrors a backend run into the workspace store, best effort.
func rememberRun(rec schema.RunRecord) {
	store := workstore.Manager.GetWorkspaceStore()
	if store == nil {
		return
	}
	if err := store.UpsertRun(rec); err != nil {
		contract.LogWarn("could not record run locally", err)
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetBackend overrides the API client. Used by tests.
func SetBackend(b contract.Backend) {
	backend = b
}
