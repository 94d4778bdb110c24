// Package schema locates the header row of an untyped listing grid and maps
// its columns onto the canonical instrument fields.
//
// Matching is two-tier everywhere: a cell equal to an alias is preferred, and
// substring containment is only considered when no exact match exists.
// Labels are compared after normalization (full-width folding, trimming,
// case folding), so "　Ｃｏｄｅ　" and "code" are the same label.
package schema
