package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemapilot/pilotctl/internal/contract"
	"github.com/schemapilot/pilotctl/internal/workstore"
	"github.com/schemapilot/pilotctl/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize the workspace store with the loaded config
	if err := workstore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize workspace store: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for migrate.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on workspace store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by backend commands. This avoids base-URL
// validation and client construction for purely local operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local workspace store",
	Long: `Manage the local workspace store that records runs seen, the active
run id, and an offline mirror of chat histories.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all stored data
  migrate - Run database schema migrations

Examples:
  # Check store status
  pilotctl store status

  # Wipe local records
  pilotctl store clear`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display workspace store statistics and connection details",
	Long: `Show detailed information about the local workspace store.

Displays:
- Backend type and connection status
- Recorded run and mirrored message counts
- The active run id
- Newest and oldest run timestamps
- Table sizes

Examples:
  # Check store status
  pilotctl store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := workstore.Manager.GetWorkspaceStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		workstore.PrintStoreStatus(status)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all locally recorded runs and chat mirrors",
	Long: `Delete all workspace store data: run records, the active run marker,
and mirrored chat messages. Nothing on the backend is touched.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the store tables

Examples:
  # Clear SQLite store (default)
  pilotctl store clear

  # Clear MySQL store (set connection string via env variable)
  PILOTCTL_STORE_BACKEND=mysql PILOTCTL_STORE_DB_CONNECT="..." pilotctl store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := workstore.ClearStore(cfg.StoreBackend, contract.GetStoreDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs schema migrations.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run workspace store schema migrations",
	Long: `Apply or roll back the embedded schema migrations for the workspace
store database.

Target versions:
  -1 - Migrate to the latest version (default)
   0 - Roll back to the initial empty state
   N - Migrate to version N exactly

Examples:
  # Migrate to latest
  pilotctl store migrate

  # Roll everything back
  pilotctl store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := workstore.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
