package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/prpulse/prpulse/schema"
)

// Default values for configuration.
const (
	DefaultLookbackDays = 90
	MaxLookbackDays     = 730
	DefaultCacheTTL     = time.Hour
	DefaultMaxRetries   = 3
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	Token string // GitHub personal access token, never logged

	Owner string // User or organization whose PR history is analyzed
	Repo  string // Optional single repository; empty means all repositories

	StartTime time.Time // Inclusive lower bound of the analysis window
	EndTime   time.Time // Upper bound, normally "now"
	Lookback  time.Duration

	Output     schema.OutputMode
	OutputFile string

	OrgFilterFile string
	OrgFilter     *OrgFilter

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	MaxRetries int

	UseColors bool // Enable colored labels in table output
	Verbose   bool // Enable per-repository progress on stderr
	Width     int  // Terminal width override (0 = auto-detect)
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	OwnerStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Token          string `mapstructure:"token"`
	Repo           string `mapstructure:"repo"`
	Days           int    `mapstructure:"days"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	OrgFilterFile  string `mapstructure:"org-filter"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	MaxRetries     int    `mapstructure:"max-retries"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`
	Width          int    `mapstructure:"width"`
}

// Scope returns the repository scope label recorded with each run.
func (c *Config) Scope() string {
	if c.Repo == "" {
		return schema.AllRepositoriesScope
	}
	return c.Repo
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeWindow(cfg, input); err != nil {
		return err
	}
	if err := processOrgFilter(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run-history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Run-History Backend Validation ---
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
			return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
		}
		cfg.RunsDBConnect = input.RunsDBConnect
		if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
			return err
		}

		// Cache and run history must not share a database.
		if cfg.CacheBackend == cfg.RunsBackend && cfg.CacheBackend != schema.NoneBackend {
			if cfg.CacheBackend == schema.SQLiteBackend {
				cacheDBPath := cfg.CacheDBConnect
				if cacheDBPath == "" {
					cacheDBPath = GetCacheDBFilePath()
				}
				runsDBPath := cfg.RunsDBConnect
				if runsDBPath == "" {
					runsDBPath = GetRunsDBFilePath()
				}
				if cacheDBPath == runsDBPath {
					return fmt.Errorf("cache and run-history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
				}
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-window related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Repo = strings.TrimSpace(input.Repo)
	cfg.OutputFile = input.OutputFile
	cfg.OrgFilterFile = input.OrgFilterFile
	cfg.Verbose = input.Verbose
	cfg.Width = input.Width

	// --- 1. Owner and Token Validation ---
	cfg.Owner = strings.TrimSpace(input.OwnerStr)
	if cfg.Owner == "" {
		return fmt.Errorf("an owner (user or organization) argument is required")
	}
	cfg.Token = strings.TrimSpace(input.Token)
	if cfg.Token == "" {
		return fmt.Errorf("a GitHub token is required. Set GITHUB_TOKEN or pass --token")
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 2. Retry Validation ---
	if input.MaxRetries < 0 {
		return fmt.Errorf("max-retries cannot be negative (received %d)", input.MaxRetries)
	}
	cfg.MaxRetries = input.MaxRetries

	// --- 3. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, json, csv, markdown, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	// --- 4. Backend Validation ---
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}

	// --- 5. Cache TTL ---
	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl value: %w", err)
		}
		if ttl <= 0 {
			return fmt.Errorf("cache-ttl must be positive (received %s)", ttl)
		}
		cfg.CacheTTL = ttl
	}

	return nil
}

// processTimeWindow derives the analysis window from the lookback days.
func processTimeWindow(cfg *Config, input *ConfigRawInput) error {
	days := input.Days
	if days == 0 {
		days = DefaultLookbackDays
	}
	if days < 1 || days > MaxLookbackDays {
		return fmt.Errorf("days must be between 1 and %d (received %d)", MaxLookbackDays, input.Days)
	}

	cfg.Lookback = time.Duration(days) * 24 * time.Hour
	cfg.EndTime = time.Now().UTC()
	cfg.StartTime = cfg.EndTime.Add(-cfg.Lookback)
	return nil
}

// processOrgFilter loads and parses the optional org filter file.
func processOrgFilter(cfg *Config, input *ConfigRawInput) error {
	if cfg.OrgFilterFile == "" {
		cfg.OrgFilter = NewOrgFilter()
		return nil
	}
	filter, err := LoadOrgFilter(cfg.OrgFilterFile)
	if err != nil {
		return fmt.Errorf("cannot load org filter: %w", err)
	}
	cfg.OrgFilter = filter
	return nil
}
