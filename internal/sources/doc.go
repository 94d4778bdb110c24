// Package sources fetches the raw bytes of the exchange listing from an
// http(s) URL or a local file.
package sources
