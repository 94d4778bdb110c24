package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "jpxcli/internal/errors"
	"jpxcli/internal/schema"
	"jpxcli/pkg/contracts/domain"
)

func codesOnly(idx int) domain.HeaderMapping {
	return domain.HeaderMapping{domain.FieldCode: {Label: "コード", Index: idx}}
}

func TestExtract_OrderingAndWidth(t *testing.T) {
	grid := domain.RawGrid{
		{"title"},
		{"日付", "コード"},
		{"20240101", float64(7203)},
		{"20240101", "42"},
		{"20240101", nil},
		{"20240101", "ETF"},
		{"20240101", float64(1301)},
		{"20240101", "0007"},
		{"20240101", float64(42)},
		{},
	}

	records, err := Extract(grid, 1, codesOnly(1))
	require.NoError(t, err)

	codes := make([]string, len(records))
	for i, r := range records {
		codes[i] = r.Code
		assert.Len(t, r.Code, domain.CodeWidth)
	}
	assert.Equal(t, []string{"0007", "0042", "1301", "7203"}, codes)
}

func TestExtract_OnlyRowsBelowHeader(t *testing.T) {
	grid := domain.RawGrid{
		{"9999"},
		{"Code"},
		{"0001"},
	}

	records, err := Extract(grid, 1, codesOnly(0))
	require.NoError(t, err)
	assert.Equal(t, []domain.InstrumentRecord{{Code: "0001"}}, records)
}

func TestExtract_DuplicateKeepsFirst(t *testing.T) {
	grid := domain.RawGrid{
		{"Code", "Name"},
		{"7203", "First"},
		{7203, "Second"},
	}
	mapping := domain.HeaderMapping{
		domain.FieldCode: {Label: "Code", Index: 0},
		domain.FieldName: {Label: "Name", Index: 1},
	}

	records, err := Extract(grid, 0, mapping)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "First", records[0].Name)
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract(domain.RawGrid{{"Code"}}, 3, codesOnly(0))
	assert.Error(t, err)

	_, err = Extract(domain.RawGrid{{"Name"}}, 0, domain.HeaderMapping{domain.FieldName: {Index: 0}})
	var missing *apperrors.MissingColumnsError
	assert.ErrorAs(t, err, &missing)
}

func TestExtract_EndToEndFiveRowGrid(t *testing.T) {
	grid := domain.RawGrid{
		{"東証上場銘柄一覧", nil, nil, nil, nil, nil},
		{"　コード　", "　Name", "Market　", "　Sector33　", "Sector17", "　　Scale"},
		{"0001", "Alpha Corp", "Prime", "20", "5", "Large"},
		{nil, nil, nil, nil, nil, nil},
		{"注記", "", "", "", "", ""},
	}

	aliases, err := schema.ForMode("full", schema.DefaultAliases())
	require.NoError(t, err)

	headerRow, err := schema.Locate(grid, aliases, 0)
	require.NoError(t, err)
	require.Equal(t, 1, headerRow)

	mapping, err := schema.MapColumns(grid[headerRow], aliases)
	require.NoError(t, err)

	records, err := Extract(grid, headerRow, mapping)
	require.NoError(t, err)
	assert.Equal(t, []domain.InstrumentRecord{{
		Code:     "0001",
		Name:     "Alpha Corp",
		Market:   "Prime",
		Sector33: "20",
		Sector17: "5",
		Scale:    "Large",
	}}, records)
}
