package domain

// Row is one row of untyped cells. A cell is a string, a number, or nil.
type Row []any

// RawGrid is a spreadsheet read without any assumed schema.
type RawGrid []Row

// ColumnRef is the source column a canonical key resolved to.
type ColumnRef struct {
	Label string `json:"label"`
	Index int    `json:"index"`
}

// HeaderMapping maps canonical field keys to their source columns.
type HeaderMapping map[string]ColumnRef

// Cell returns the cell at col, or nil when the row is shorter.
func (r Row) Cell(col int) any {
	if col < 0 || col >= len(r) {
		return nil
	}
	return r[col]
}
