package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"plain", "Code", "Code"},
		{"ideographic padding", "　コード　", "コード"},
		{"ascii padding", "  Name\t", "Name"},
		{"full-width ascii", "Ｓｅｃｔｏｒ３３", "Sector33"},
		{"inner ideographic space", "市場　区分", "市場 区分"},
		{"integral float", float64(1301), "1301"},
		{"fractional float", 12.5, "12.5"},
		{"int", 7, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestCellTextKeepsFullWidth(t *testing.T) {
	assert.Equal(t, "プライム（内国株式）", CellText("　プライム（内国株式）　"))
	assert.Equal(t, "ｉＦｒｅｅ ＥＴＦ", CellText("ｉＦｒｅｅ　ＥＴＦ"))
	assert.Equal(t, "20", CellText(float64(20)))
}

func TestMatchFormIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, matchForm("CODE"), matchForm("ｃｏｄｅ"))
}
