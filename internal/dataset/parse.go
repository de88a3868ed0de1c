// Package dataset loads and cleans the energy, GDP and region source tables.
package dataset

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, dup := m[key]; dup {
			continue // first occurrence wins
		}
		m[key] = i
	}
	return m
}

// getCol gets a column value by name from a CSV record, returning empty string if not found.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[strings.ToLower(strings.TrimSpace(name))]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// requireColumns fails with the first named column absent from the header.
func requireColumns(dataset string, colIdx map[string]int, names ...string) error {
	for _, name := range names {
		if _, ok := colIdx[strings.ToLower(strings.TrimSpace(name))]; !ok {
			return eris.Errorf("%s: missing required column %q", dataset, name)
		}
	}
	return nil
}

// isNullToken reports whether s is one of the placeholders the sources use for "no value".
func isNullToken(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "nan", "n/a", "..", "null":
		return true
	}
	return false
}

// parseNullFloat parses a measure cell. Placeholders become an invalid value; anything
// else that is not a number is an error.
func parseNullFloat(s string) (sql.NullFloat64, error) {
	if isNullToken(s) {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return sql.NullFloat64{}, eris.Wrapf(err, "parse number %q", s)
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

// parseYear parses a year cell. Spreadsheet exports sometimes write years as "1975.0".
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, eris.Errorf("parse year %q", s)
	}
	return int(f), nil
}

// yearColumn reports whether a header names a four-digit year column.
func yearColumn(header string) (int, bool) {
	h := strings.TrimSpace(header)
	if len(h) != 4 {
		return 0, false
	}
	y, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	return y, true
}
