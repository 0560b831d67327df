package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prpulse/prpulse/internal/contract"
	"github.com/prpulse/prpulse/internal/iocache"
	"github.com/prpulse/prpulse/schema"
)

// runsSetup loads minimal configuration needed for run-history operations.
// This is used by commands that need run history without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize stores with the loaded config (no response cache for runs commands)
	if err := iocache.InitCaching(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run history: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on run-history management.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage historical analysis runs and exports",
	Long: `Manage the run history used for trend tracking and reporting.

When enabled, prpulse records every analysis run, storing:
- Run metadata (owner, scope, window, timestamps)
- Total and Copilot-assisted PR counts

This enables longitudinal adoption tracking and data export for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run-history statistics
  list    - Print recorded runs
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Check run history status
  prpulse runs status

  # Export for analysis in pandas/DuckDB
  prpulse runs export --output-file runs.parquet`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded analysis runs",
	Long: `Delete all stored run history.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  prpulse runs export --output-file backup.parquet
  prpulse runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run-history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run-history statistics and connection details",
	Long: `Show detailed information about recorded analysis runs.

Displays:
- Backend type and connection status
- Total number of runs stored

Examples:
  # Check run history status
  prpulse runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		iocache.PrintRunStoreStatus(status)
	},
}

// runsListCmd prints recorded runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all recorded analysis runs",
	Long: `List every recorded run with its window, timestamps and PR counts.

Examples:
  # Show run history
  prpulse runs list`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, err := iocache.Manager.GetRunStore().GetAllRuns()
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		iocache.PrintRunHistory(runs)
	},
}

// runsExportCmd exports run history to a Parquet file.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to Parquet format for use with analytics tools.

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Examples:
  # Export all runs
  prpulse runs export --output-file runs.parquet

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run-history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  prpulse runs migrate

  # Migrate to specific version
  prpulse runs migrate --target-version 1

  # Rollback to initial state
  prpulse runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
