package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(exe), paths.BaseDir)
	assert.Equal(t, filepath.Join(paths.BaseDir, "data"), paths.DataDir)
}

func TestNewPaths_Layout(t *testing.T) {
	base := filepath.Join("srv", "jpx")
	paths := NewPaths(base)

	assert.Equal(t, filepath.Join(base, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(base, "data", "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, "logs"), paths.LogsDir)
	assert.Equal(t, filepath.Join(base, "data", "ticker_list.csv"), paths.TickerListCSV)
	assert.Equal(t, filepath.Join(base, "data", "prices.xlsx"), paths.WorkbookFile)
}

func TestEnsureDirectories(t *testing.T) {
	paths := NewPaths(t.TempDir())
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}

func TestPathHelperMethods(t *testing.T) {
	base := t.TempDir()
	paths := NewPaths(base)

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"report path", paths.GetReportPath("fetch_failures.csv"), filepath.Join(base, "data", "reports", "fetch_failures.csv")},
		{"data path", paths.GetDataPath("listing.xls"), filepath.Join(base, "data", "listing.xls")},
		{"log path", paths.GetLogPath("jpxcli.log"), filepath.Join(base, "logs", "jpxcli.log")},
		{"relative resolve", paths.Resolve("out/x.csv"), filepath.Join(base, "out", "x.csv")},
		{"absolute resolve", paths.Resolve(filepath.Join(base, "abs.csv")), filepath.Join(base, "abs.csv")},
		{"empty resolve", paths.Resolve(""), ""},
		{"fallback", paths.ResolveOr("", "default.csv"), "default.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "exists.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
}
