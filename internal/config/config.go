package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Listing   ListingConfig   `yaml:"listing" envconfig:"LISTING"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Publish   PublishConfig   `yaml:"publish" envconfig:"PUBLISH"`
	Sheets    SheetsConfig    `yaml:"sheets" envconfig:"SHEETS"`
	Workbook  WorkbookConfig  `yaml:"workbook" envconfig:"WORKBOOK"`
	Postgres  PostgresConfig  `yaml:"postgres" envconfig:"POSTGRES"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`

	paths *Paths
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	// BaseDir anchors every relative path. Empty means the executable directory.
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// ListingConfig describes where the exchange listing spreadsheet comes from
// and how its header is discovered.
type ListingConfig struct {
	URL         string        `yaml:"url" envconfig:"URL" validate:"required"`
	Sheet       string        `yaml:"sheet" envconfig:"SHEET"`
	Mode        string        `yaml:"mode" envconfig:"MODE" validate:"oneof=codes full"`
	MaxScanRows int           `yaml:"max_scan_rows" envconfig:"MAX_SCAN_ROWS" validate:"min=0"`
	MaxBytes    int64         `yaml:"max_bytes" envconfig:"MAX_BYTES" validate:"min=1"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	OutputCSV   string        `yaml:"output_csv" envconfig:"OUTPUT_CSV"`
}

// IngestConfig controls the price fetch window and upstream source.
type IngestConfig struct {
	TickerListCSV  string        `yaml:"ticker_list_csv" envconfig:"TICKER_LIST_CSV"`
	DaysBack       int           `yaml:"days_back" envconfig:"DAYS_BACK" validate:"min=1"`
	Timezone       string        `yaml:"timezone" envconfig:"TIMEZONE" validate:"required"`
	FetchDelay     time.Duration `yaml:"fetch_delay" envconfig:"FETCH_DELAY" validate:"min=0"`
	SymbolSuffix   string        `yaml:"symbol_suffix" envconfig:"SYMBOL_SUFFIX"`
	SourceURL      string        `yaml:"source_url" envconfig:"SOURCE_URL" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	UserAgent      string        `yaml:"user_agent" envconfig:"USER_AGENT"`
	FailuresReport bool          `yaml:"failures_report" envconfig:"FAILURES_REPORT"`
}

// PublishConfig selects the destination and how the surface is laid out.
type PublishConfig struct {
	Destination string `yaml:"destination" envconfig:"DESTINATION" validate:"oneof=sheets workbook postgres memory"`
	SurfaceName string `yaml:"surface_name" envconfig:"SURFACE_NAME" validate:"required"`
	MinRows     int    `yaml:"min_rows" envconfig:"MIN_ROWS" validate:"min=1"`
	RowMargin   int    `yaml:"row_margin" envconfig:"ROW_MARGIN" validate:"min=0"`
	Columns     int    `yaml:"columns" envconfig:"COLUMNS" validate:"min=7"`
	HeaderStyle string `yaml:"header_style" envconfig:"HEADER_STYLE" validate:"oneof=en ja"`
}

// SheetsConfig contains Google Sheets destination settings
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" envconfig:"SPREADSHEET_ID"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	CredentialsJSON string `yaml:"-" envconfig:"CREDENTIALS_JSON"`
}

// WorkbookConfig contains local xlsx destination settings
type WorkbookConfig struct {
	Path string `yaml:"path" envconfig:"PATH"`
}

// PostgresConfig holds connection settings for the Postgres destination.
type PostgresConfig struct {
	URL      string `yaml:"url" envconfig:"URL"`
	Host     string `yaml:"host" envconfig:"HOST"`
	Port     int    `yaml:"port" envconfig:"PORT" validate:"min=0,max=65535"`
	Name     string `yaml:"name" envconfig:"NAME"`
	User     string `yaml:"user" envconfig:"USER"`
	Password string `yaml:"-" envconfig:"PASSWORD"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"SSL_MODE"`
	MinConns int    `yaml:"min_conns" envconfig:"MIN_CONNS" validate:"min=0"`
	MaxConns int    `yaml:"max_conns" envconfig:"MAX_CONNS" validate:"min=1"`
}

// TelemetryConfig contains metrics and tracing settings
type TelemetryConfig struct {
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	PushgatewayURL string  `yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL" validate:"omitempty,url"`
	JobName        string  `yaml:"job_name" envconfig:"JOB_NAME"`
}

// Load loads configuration from defaults, the config file and the environment,
// in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Env is processed last and only touches variables that are set, so file
	// values survive unless explicitly overridden.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths anchors relative paths on the base directory and fills the
// file locations left empty.
func (c *Config) resolvePaths() error {
	var (
		paths *Paths
		err   error
	)
	if c.Paths.BaseDir != "" {
		paths = NewPaths(c.Paths.BaseDir)
	} else {
		paths, err = GetPaths()
		if err != nil {
			return fmt.Errorf("failed to get paths: %w", err)
		}
	}
	c.paths = paths

	c.Listing.OutputCSV = paths.ResolveOr(c.Listing.OutputCSV, paths.TickerListCSV)
	c.Ingest.TickerListCSV = paths.ResolveOr(c.Ingest.TickerListCSV, paths.TickerListCSV)
	c.Workbook.Path = paths.ResolveOr(c.Workbook.Path, paths.WorkbookFile)
	c.Logging.FilePath = paths.ResolveOr(c.Logging.FilePath, paths.GetLogPath(DefaultLogFile))
	if c.Sheets.CredentialsFile != "" {
		c.Sheets.CredentialsFile = paths.Resolve(c.Sheets.CredentialsFile)
	}
	return nil
}

// ResolvedPaths returns the directory layout computed during Load.
func (c *Config) ResolvedPaths() *Paths {
	if c.paths == nil {
		return NewPaths(c.Paths.BaseDir)
	}
	return c.paths
}

// Validate checks field constraints and destination-specific requirements.
func (c *Config) Validate() error {
	// Always JSON, as in every other slog output of this tool.
	c.Logging.Format = "json"

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Ingest.Timezone); err != nil {
		return fmt.Errorf("invalid ingest timezone %q: %w", c.Ingest.Timezone, err)
	}

	switch c.Publish.Destination {
	case DestinationSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("sheets destination requires a spreadsheet id")
		}
	case DestinationWorkbook:
		if c.Workbook.Path == "" {
			return fmt.Errorf("workbook destination requires a file path")
		}
	case DestinationPostgres:
		if c.Postgres.URL == "" && c.Postgres.Host == "" {
			return fmt.Errorf("postgres destination requires a url or host")
		}
	}

	if c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("postgres min_conns (%d) exceeds max_conns (%d)", c.Postgres.MinConns, c.Postgres.MaxConns)
	}

	return nil
}

// Location returns the timezone used to compute the fetch window.
func (c IngestConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		filepath.Join("..", "configs", "config.yaml"),
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "both",
		},
		Listing: ListingConfig{
			URL:         DefaultListingURL,
			Mode:        ModeFull,
			MaxScanRows: DefaultMaxScanRows,
			MaxBytes:    DefaultListingMaxBytes,
			Timeout:     DefaultHTTPTimeout,
		},
		Ingest: IngestConfig{
			DaysBack:       DefaultDaysBack,
			Timezone:       DefaultTimezone,
			FetchDelay:     DefaultFetchDelay,
			SymbolSuffix:   DefaultSymbolSuffix,
			SourceURL:      DefaultSourceURL,
			RequestTimeout: DefaultHTTPTimeout,
			UserAgent:      DefaultUserAgent,
			FailuresReport: true,
		},
		Publish: PublishConfig{
			Destination: DestinationSheets,
			SurfaceName: DefaultSurfaceName,
			MinRows:     DefaultMinRows,
			RowMargin:   DefaultRowMargin,
			Columns:     DefaultColumns,
			HeaderStyle: HeaderStyleEnglish,
		},
		Postgres: PostgresConfig{
			Port:     5432,
			SSLMode:  "prefer",
			MinConns: 0,
			MaxConns: 4,
		},
		Telemetry: TelemetryConfig{
			EnableMetrics: true,
			TraceExporter: "none",
			SampleRatio:   1.0,
			Environment:   "production",
			JobName:       AppName,
		},
	}
}
