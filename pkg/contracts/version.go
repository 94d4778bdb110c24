package contracts

import (
	"fmt"
	"runtime"
)

// Set during build using ldflags, see build.go.
var (
	// Version is the release version of the commands
	Version = "1.0.0"

	// BuildTime is set during build using ldflags
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags
	GitCommit = "unknown"
)

const (
	// TickerListFormatVersion is the layout version of ticker_list.csv
	TickerListFormatVersion = "v1"

	// PublishedFormatVersion is the layout version of the published OHLCV table
	PublishedFormatVersion = "v1"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	TickerList   string `json:"ticker_list_format"`
	Published    string `json:"published_format"`
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		TickerList:   TickerListFormatVersion,
		Published:    PublishedFormatVersion,
	}
}

// GetVersionString returns a short version string for command name
func GetVersionString(command string) string {
	return fmt.Sprintf("%s v%s", command, Version)
}

// GetFullVersionString returns a detailed version string
func GetFullVersionString(command string) string {
	info := GetVersionInfo()
	return fmt.Sprintf(
		"%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(command),
		info.BuildTime,
		info.GitCommit,
		info.GoVersion,
		info.OS,
		info.Architecture,
	)
}
