// Package prices fetches the daily history of one instrument and converts
// it into PriceBars.
//
// A Fetcher makes a single attempt per instrument. Every failure, whether
// transport, parsing, an empty result or a missing column, comes back as an
// Outcome carrying an InstrumentFetchError; Fetch never returns an error and
// never panics.
package prices
