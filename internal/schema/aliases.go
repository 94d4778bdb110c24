package schema

import (
	"fmt"
	"sort"
	"strings"

	"jpxcli/internal/config"
	apperrors "jpxcli/internal/errors"
	"jpxcli/pkg/contracts/domain"
)

// AliasTable maps each canonical key to the labels accepted for it.
type AliasTable map[string][]string

// DefaultAliases returns the label variants seen across JPX listing releases.
func DefaultAliases() AliasTable {
	return AliasTable{
		domain.FieldCode:     {"コード", "銘柄コード", "Code", "Local Code"},
		domain.FieldName:     {"銘柄名", "Name", "Company Name"},
		domain.FieldMarket:   {"市場・商品区分", "市場区分", "Market", "Market/Product Category"},
		domain.FieldSector33: {"33業種区分", "Sector33", "33 Sector"},
		domain.FieldSector17: {"17業種区分", "Sector17", "17 Sector"},
		domain.FieldScale:    {"規模区分", "Scale", "Size Category"},
	}
}

// ForMode returns the validated subset of aliases a listing mode requires.
func ForMode(mode string, table AliasTable) (AliasTable, error) {
	var keys []string
	switch mode {
	case config.ModeCodes:
		keys = []string{domain.FieldCode}
	case config.ModeFull:
		keys = domain.InstrumentFields
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown listing mode %q", mode), nil)
	}

	subset := make(AliasTable, len(keys))
	for _, k := range keys {
		aliases, ok := table[k]
		if !ok {
			return nil, apperrors.NewConfigError(fmt.Sprintf("alias table has no entry for %s", k), nil)
		}
		subset[k] = aliases
	}
	if err := subset.Validate(); err != nil {
		return nil, err
	}
	return subset, nil
}

// Keys returns the canonical keys in artifact column order, followed by any
// non-canonical keys sorted by name.
func (t AliasTable) Keys() []string {
	keys := make([]string, 0, len(t))
	seen := make(map[string]bool, len(t))
	for _, k := range domain.InstrumentFields {
		if _, ok := t[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var extra []string
	for k := range t {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}

// Validate checks that the table is usable: at least one key, every key has
// a non-blank alias, and no alias is claimed by two keys.
func (t AliasTable) Validate() error {
	if len(t) == 0 {
		return apperrors.NewConfigError("alias table is empty", nil)
	}
	owner := make(map[string]string)
	for _, key := range t.Keys() {
		aliases := t[key]
		if len(aliases) == 0 {
			return apperrors.NewConfigError(fmt.Sprintf("no aliases for %s", key), nil)
		}
		for _, a := range aliases {
			form := matchForm(a)
			if form == "" {
				return apperrors.NewConfigError(fmt.Sprintf("blank alias for %s", key), nil)
			}
			if prev, ok := owner[form]; ok && prev != key {
				return apperrors.NewConfigError(
					fmt.Sprintf("alias %q is shared by %s and %s", a, prev, key), nil)
			}
			owner[form] = key
		}
	}
	return nil
}

// searched returns a copy of the table for error reporting.
func (t AliasTable) searched() map[string][]string {
	out := make(map[string][]string, len(t))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// compiled holds the match forms of every alias, keyed like the table.
type compiled struct {
	keys    []string
	aliases map[string][]string
}

func (t AliasTable) compile() compiled {
	c := compiled{keys: t.Keys(), aliases: make(map[string][]string, len(t))}
	for k, v := range t {
		forms := make([]string, 0, len(v))
		for _, a := range v {
			if f := matchForm(a); f != "" {
				forms = append(forms, f)
			}
		}
		c.aliases[k] = forms
	}
	return c
}

func (c compiled) exact(key, label string) bool {
	if label == "" {
		return false
	}
	for _, a := range c.aliases[key] {
		if label == a {
			return true
		}
	}
	return false
}

func (c compiled) contains(key, label string) bool {
	if label == "" {
		return false
	}
	for _, a := range c.aliases[key] {
		if strings.Contains(label, a) {
			return true
		}
	}
	return false
}
