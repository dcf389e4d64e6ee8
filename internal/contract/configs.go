package contract

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/schemapilot/pilotctl/schema"
)

// Default values for configuration.
const (
	DefaultAPIBaseURL   = "http://localhost:8000"
	DefaultTimeout      = 30 * time.Second
	DefaultPreviewLimit = 50
	DefaultPrecision    = 1
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for the client.
// This struct remains the "final, validated" config.
type Config struct {
	APIBaseURL string
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)

	// Timeout is the budget for operations without a dedicated one.
	Timeout time.Duration

	// Retry policy for operations marked for retry.
	RetryMax   uint64
	RetryDelay time.Duration

	PreviewLimit int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
	Offline   bool // Serve list reads from the workspace store
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RunIDStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	APIBaseURL     string `mapstructure:"api-base-url"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Precision      int    `mapstructure:"precision"`
	Width          int    `mapstructure:"width"`
	TimeoutSecs    int    `mapstructure:"timeout"`
	RetryMax       int    `mapstructure:"retry-max"`
	RetryDelayMS   int    `mapstructure:"retry-delay-ms"`
	PreviewLimit   int    `mapstructure:"preview-limit"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Color          string `mapstructure:"color"`
	Offline        bool   `mapstructure:"offline"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Base URL ---
	base := strings.TrimRight(strings.TrimSpace(input.APIBaseURL), "/")
	if base == "" {
		return fmt.Errorf("api-base-url must not be empty")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid api-base-url %q: expected scheme://host", input.APIBaseURL)
	}
	cfg.APIBaseURL = base

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision
	cfg.Width = input.Width

	// --- 3. Timeout and Retry ---
	if input.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout must be greater than 0 seconds (received %d)", input.TimeoutSecs)
	}
	cfg.Timeout = time.Duration(input.TimeoutSecs) * time.Second

	if input.RetryMax < 0 {
		return fmt.Errorf("retry-max must not be negative (received %d)", input.RetryMax)
	}
	cfg.RetryMax = uint64(input.RetryMax)

	if input.RetryDelayMS <= 0 {
		return fmt.Errorf("retry-delay-ms must be greater than 0 (received %d)", input.RetryDelayMS)
	}
	cfg.RetryDelay = time.Duration(input.RetryDelayMS) * time.Millisecond

	// --- 4. Preview limit ---
	if !slices.Contains(schema.PreviewLimits, input.PreviewLimit) {
		return fmt.Errorf("preview-limit must be one of %v (received %d)", schema.PreviewLimits, input.PreviewLimit)
	}
	cfg.PreviewLimit = input.PreviewLimit

	// --- 5. Store backend ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return err
	}

	// --- 6. Color flag ---
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors
	cfg.Offline = input.Offline

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
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
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
