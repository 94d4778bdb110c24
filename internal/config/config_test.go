package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv clears every JPX_ variable for the duration of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		errContains string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with a spreadsheet id",
			env: map[string]string{
				"JPX_SHEETS_SPREADSHEET_ID": "sheet-123",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, ModeFull, cfg.Listing.Mode)
				assert.Equal(t, DefaultListingURL, cfg.Listing.URL)
				assert.Equal(t, 365, cfg.Ingest.DaysBack)
				assert.Equal(t, time.Second, cfg.Ingest.FetchDelay)
				assert.Equal(t, ".T", cfg.Ingest.SymbolSuffix)
				assert.Equal(t, DestinationSheets, cfg.Publish.Destination)
				assert.Equal(t, "RAW_v4", cfg.Publish.SurfaceName)
				assert.Equal(t, 1000, cfg.Publish.MinRows)
				assert.Equal(t, 10, cfg.Publish.RowMargin)
				assert.Equal(t, 8, cfg.Publish.Columns)
			},
		},
		{
			name: "file values are applied",
			file: `
listing:
  mode: codes
  max_scan_rows: 10
ingest:
  days_back: 30
  fetch_delay: 250ms
publish:
  destination: workbook
  surface_name: RAW
  header_style: ja
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, ModeCodes, cfg.Listing.Mode)
				assert.Equal(t, 10, cfg.Listing.MaxScanRows)
				assert.Equal(t, 30, cfg.Ingest.DaysBack)
				assert.Equal(t, 250*time.Millisecond, cfg.Ingest.FetchDelay)
				assert.Equal(t, DestinationWorkbook, cfg.Publish.Destination)
				assert.Equal(t, HeaderStyleJapanese, cfg.Publish.HeaderStyle)
				// Untouched sections keep their defaults.
				assert.Equal(t, DefaultTimezone, cfg.Ingest.Timezone)
			},
		},
		{
			name: "env overrides file",
			file: `
ingest:
  days_back: 30
publish:
  destination: memory
`,
			env: map[string]string{
				"JPX_INGEST_DAYS_BACK": "90",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90, cfg.Ingest.DaysBack)
				assert.Equal(t, DestinationMemory, cfg.Publish.Destination)
			},
		},
		{
			name:        "sheets destination without spreadsheet id",
			wantErr:     true,
			errContains: "spreadsheet id",
		},
		{
			name: "invalid mode",
			env: map[string]string{
				"JPX_LISTING_MODE":        "everything",
				"JPX_PUBLISH_DESTINATION": "memory",
			},
			wantErr:     true,
			errContains: "Mode",
		},
		{
			name: "invalid timezone",
			env: map[string]string{
				"JPX_INGEST_TIMEZONE":     "Mars/Olympus",
				"JPX_PUBLISH_DESTINATION": "memory",
			},
			wantErr:     true,
			errContains: "timezone",
		},
		{
			name: "postgres without host",
			env: map[string]string{
				"JPX_PUBLISH_DESTINATION": "postgres",
			},
			wantErr:     true,
			errContains: "postgres",
		},
		{
			name: "malformed duration",
			env: map[string]string{
				"JPX_INGEST_FETCH_DELAY":  "soon",
				"JPX_PUBLISH_DESTINATION": "memory",
			},
			wantErr:     true,
			errContains: "env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			base := t.TempDir()
			t.Setenv("JPX_PATHS_BASE_DIR", base)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			file := ""
			if tt.file != "" {
				file = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(file)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFrom_ResolvesPaths(t *testing.T) {
	isolateEnv(t)
	base := t.TempDir()
	t.Setenv("JPX_PATHS_BASE_DIR", base)
	t.Setenv("JPX_PUBLISH_DESTINATION", "workbook")
	t.Setenv("JPX_SHEETS_CREDENTIALS_FILE", "secrets/sa.json")

	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data", "ticker_list.csv"), cfg.Listing.OutputCSV)
	assert.Equal(t, cfg.Listing.OutputCSV, cfg.Ingest.TickerListCSV)
	assert.Equal(t, filepath.Join(base, "data", "prices.xlsx"), cfg.Workbook.Path)
	assert.Equal(t, filepath.Join(base, "logs", DefaultLogFile), cfg.Logging.FilePath)
	assert.Equal(t, filepath.Join(base, "secrets", "sa.json"), cfg.Sheets.CredentialsFile)
	assert.Equal(t, base, cfg.ResolvedPaths().BaseDir)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	isolateEnv(t)
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file")
}

func TestValidate_PoolBounds(t *testing.T) {
	cfg := Default()
	cfg.Publish.Destination = DestinationPostgres
	cfg.Postgres.Host = "localhost"
	cfg.Postgres.MinConns = 8
	cfg.Postgres.MaxConns = 2

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_conns")
}

func TestIngestConfig_Location(t *testing.T) {
	assert.Equal(t, "Asia/Tokyo", IngestConfig{Timezone: "Asia/Tokyo"}.Location().String())
	assert.Equal(t, time.UTC, IngestConfig{Timezone: "bogus/zone"}.Location())
}

func TestGetConfigFilePath_Env(t *testing.T) {
	t.Setenv("JPX_CONFIG_FILE", "/etc/jpxcli/config.yaml")
	assert.Equal(t, "/etc/jpxcli/config.yaml", getConfigFilePath())
}
