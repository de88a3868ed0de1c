package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapColumns(t *testing.T) {
	header := []string{"Country Name", " Code ", "Year", "code"}
	m := mapColumns(header)

	assert.Equal(t, 0, m["country name"])
	assert.Equal(t, 1, m["code"], "first occurrence wins")
	assert.Equal(t, 2, m["year"])

	_, exists := m["nonexistent"]
	assert.False(t, exists)
}

func TestMapColumns_Empty(t *testing.T) {
	assert.Empty(t, mapColumns(nil))
}

func TestGetCol(t *testing.T) {
	colIdx := map[string]int{"code": 0, "year": 1, "renewables (% sub energy)": 2}
	row := []string{" USA ", "1975", "5.0"}

	assert.Equal(t, "USA", getCol(row, colIdx, "Code"))
	assert.Equal(t, "1975", getCol(row, colIdx, "YEAR"))
	assert.Equal(t, "5.0", getCol(row, colIdx, "Renewables (% sub energy)"))

	// Missing column
	assert.Equal(t, "", getCol(row, colIdx, "region"))

	// Index out of range (short row)
	colIdx["bad"] = 99
	assert.Equal(t, "", getCol(row, colIdx, "bad"))
}

func TestRequireColumns(t *testing.T) {
	colIdx := mapColumns([]string{"Code", "Year"})
	require.NoError(t, requireColumns("energy", colIdx, "code", "Year"))

	err := requireColumns("energy", colIdx, "Code", "Renewables (% sub energy)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `energy: missing required column "Renewables (% sub energy)"`)
}

func TestParseNullFloat(t *testing.T) {
	tests := []struct {
		name      string
		s         string
		want      float64
		wantValid bool
		wantErr   bool
	}{
		{"integer", "42", 42, true, false},
		{"float", "3.14", 3.14, true, false},
		{"scientific", "1.5e12", 1.5e12, true, false},
		{"with spaces", " 2.5 ", 2.5, true, false},
		{"zero", "0", 0, true, false},
		{"empty", "", 0, false, false},
		{"whitespace", "   ", 0, false, false},
		{"NA", "NA", 0, false, false},
		{"nan", "nan", 0, false, false},
		{"world bank dots", "..", 0, false, false},
		{"garbage", "abc", 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseNullFloat(tt.s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.InDelta(t, tt.want, got.Float64, 1e-9)
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    int
		wantErr bool
	}{
		{"plain", "1975", 1975, false},
		{"spaces", " 2019 ", 2019, false},
		{"float form", "1980.0", 1980, false},
		{"fractional", "1980.5", 0, true},
		{"empty", "", 0, true},
		{"text", "Year", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseYear(tt.s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYearColumn(t *testing.T) {
	tests := []struct {
		header string
		want   int
		ok     bool
	}{
		{"1960", 1960, true},
		{" 2020 ", 2020, true},
		{"Country Code", 0, false},
		{"Indicator Name", 0, false},
		{"", 0, false},
		{"Unnamed: 65", 0, false},
		{"196", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := yearColumn(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
