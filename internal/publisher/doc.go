// Package publisher writes an ingest result to a tabular destination.
//
// Every destination is driven through the same sequence: make sure the
// surface exists (creating it sized for the data when absent), clear it,
// write the header at row 1, then write all data rows in one call starting
// at row 2. Running the sequence twice with the same bars leaves the same
// content behind. Two publishers against one surface are not coordinated.
package publisher
