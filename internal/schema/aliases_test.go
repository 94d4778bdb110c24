package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

func TestDefaultAliasesValidate(t *testing.T) {
	require.NoError(t, DefaultAliases().Validate())
}

func TestAliasTableValidate(t *testing.T) {
	tests := []struct {
		name  string
		table AliasTable
		want  string
	}{
		{"empty table", AliasTable{}, "alias table is empty"},
		{"key without aliases", AliasTable{domain.FieldCode: nil}, "no aliases for Code"},
		{"blank alias", AliasTable{domain.FieldCode: {"　"}}, "blank alias for Code"},
		{
			"shared alias",
			AliasTable{domain.FieldCode: {"Code"}, domain.FieldName: {"ＣＯＤＥ"}},
			"shared by Code and Name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
		})
	}
}

func TestForMode(t *testing.T) {
	codes, err := ForMode(config.ModeCodes, DefaultAliases())
	require.NoError(t, err)
	assert.Equal(t, []string{domain.FieldCode}, codes.Keys())

	full, err := ForMode(config.ModeFull, DefaultAliases())
	require.NoError(t, err)
	assert.Equal(t, domain.InstrumentFields, full.Keys())

	_, err = ForMode("partial", DefaultAliases())
	assert.Error(t, err)

	_, err = ForMode(config.ModeFull, AliasTable{domain.FieldCode: {"Code"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry for Name")
}

func TestKeysOrder(t *testing.T) {
	table := AliasTable{
		"Zeta":            {"z"},
		domain.FieldScale: {"Scale"},
		domain.FieldCode:  {"Code"},
		"Alpha":           {"a"},
	}
	assert.Equal(t, []string{domain.FieldCode, domain.FieldScale, "Alpha", "Zeta"}, table.Keys())
}
