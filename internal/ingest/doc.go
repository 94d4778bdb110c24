// Package ingest runs the per-instrument fetch loop and aggregates the
// outcomes into a single IngestResult.
//
// The loop is sequential. A fixed delay between upstream calls is enforced
// with a token bucket of burst 1 so the first call goes out immediately.
package ingest
