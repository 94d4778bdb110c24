// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a log-capturing slog handler so tests can
// assert on what a pipeline stage logged (progress lines, failure summaries)
// without parsing JSON output.
package shared
