// Package config provides centralized configuration management for jpxcli.
// A Config value is built once per run by the commands and handed, section by
// section, to the components. Components never read the environment.
//
// # Configuration Sources
//
// Configuration is layered in order of increasing precedence:
//
//	1. Default values (Default)
//	2. YAML file (config.yaml, configs/config.yaml or JPX_CONFIG_FILE)
//	3. Environment variables prefixed with JPX_
//
// # Environment Variables
//
// Nested sections map to underscored names:
//
//	JPX_LISTING_MODE=codes
//	JPX_INGEST_DAYS_BACK=365
//	JPX_INGEST_FETCH_DELAY=1s
//	JPX_PUBLISH_DESTINATION=sheets
//	JPX_PUBLISH_SURFACE_NAME=RAW_v4
//	JPX_SHEETS_SPREADSHEET_ID=...
//	JPX_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths anchors every relative file location on a base directory, the
// executable directory unless JPX_PATHS_BASE_DIR is set:
//
//	paths := cfg.ResolvedPaths()
//	paths.EnsureDirectories()
//	report := paths.GetReportPath("fetch_failures.csv")
package config
