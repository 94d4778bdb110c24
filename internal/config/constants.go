package config

import "time"

// Application constants
const (
	AppName = "jpxcli"

	// EnvPrefix namespaces every environment variable, e.g. JPX_INGEST_DAYS_BACK.
	EnvPrefix = "JPX"

	DefaultLogFile = "jpxcli.log"

	// JPX "東証上場銘柄一覧" listing workbook.
	DefaultListingURL      = "https://www.jpx.co.jp/markets/statistics-equities/misc/tvdivq0000001vg2-att/data_j.xls"
	DefaultMaxScanRows     = 50
	DefaultListingMaxBytes = 32 << 20

	DefaultDaysBack     = 365
	DefaultTimezone     = "Asia/Tokyo"
	DefaultFetchDelay   = time.Second
	DefaultSymbolSuffix = ".T"
	DefaultSourceURL    = "https://query1.finance.yahoo.com"
	DefaultHTTPTimeout  = 30 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; jpxcli/1.0)"

	DefaultSurfaceName = "RAW_v4"
	DefaultMinRows     = 1000
	DefaultRowMargin   = 10
	DefaultColumns     = 8
)

// Listing modes
const (
	ModeCodes = "codes"
	ModeFull  = "full"
)

// Destinations
const (
	DestinationSheets   = "sheets"
	DestinationWorkbook = "workbook"
	DestinationPostgres = "postgres"
	DestinationMemory   = "memory"
)

// Header styles for the published table
const (
	HeaderStyleEnglish  = "en"
	HeaderStyleJapanese = "ja"
)
