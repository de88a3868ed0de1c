package model

import (
	"database/sql"
	"fmt"
)

// WorldSentinel is the country code Our World in Data uses for its global rollup rows.
const WorldSentinel = "OWID_WRL"

// Key identifies one country-year observation.
type Key struct {
	CountryCode string `json:"country_code" yaml:"country_code"`
	Year        int    `json:"year" yaml:"year"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.CountryCode, k.Year)
}

// EnergyRecord is one row of the energy-mix dataset projected to the columns we use.
type EnergyRecord struct {
	CountryCode  string          `json:"country_code"`
	Year         int             `json:"year"`
	RenewablePct sql.NullFloat64 `json:"renewable_pct"`
}

// Key returns the (code, year) join key.
func (r EnergyRecord) Key() Key {
	return Key{CountryCode: r.CountryCode, Year: r.Year}
}

// GDPWideRow is one country row of a World Bank indicator file: one value per year column.
// Values holds only the year columns that parsed as integers; blank cells are invalid.
type GDPWideRow struct {
	CountryName string
	CountryCode string
	Values      map[int]sql.NullFloat64
}

// GDPRecord is the tall form of a GDP observation. GDP is never null; missing values are 0.
type GDPRecord struct {
	CountryName string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	Year        int     `json:"year"`
	GDP         float64 `json:"gdp"`
}

// Key returns the (code, year) join key.
func (r GDPRecord) Key() Key {
	return Key{CountryCode: r.CountryCode, Year: r.Year}
}

// RegionRecord maps a country to the region it is reported under.
type RegionRecord struct {
	CountryCode string `json:"country_code"`
	Region      string `json:"region"`
}

// JoinedRecord is one row of the analytical table.
type JoinedRecord struct {
	CountryName  string          `json:"country_name"`
	CountryCode  string          `json:"country_code"`
	Year         int             `json:"year"`
	GDP          float64         `json:"gdp"`
	RenewablePct sql.NullFloat64 `json:"renewable_pct"`
	Region       string          `json:"region,omitempty"`
}

// Key returns the (code, year) join key.
func (r JoinedRecord) Key() Key {
	return Key{CountryCode: r.CountryCode, Year: r.Year}
}

// YearlyMean is the unweighted mean of a metric over all countries with data in Year.
type YearlyMean struct {
	Year int     `json:"year"`
	Mean float64 `json:"mean"`
	N    int     `json:"n"`
}

// RegionYearMatrix is a year × region pivot of a per-group mean.
// Cells[i][j] belongs to Years[i] and Regions[j]; an invalid cell means no country in
// that region had a value that year.
type RegionYearMatrix struct {
	Years   []int
	Regions []string
	Cells   [][]sql.NullFloat64
}

// Value returns the cell for (year, region) and whether it is present.
func (m RegionYearMatrix) Value(year int, region string) (float64, bool) {
	i := indexOfInt(m.Years, year)
	j := indexOfString(m.Regions, region)
	if i < 0 || j < 0 {
		return 0, false
	}
	c := m.Cells[i][j]
	return c.Float64, c.Valid
}

// Column returns the cells of one region in year order, or nil if the region is unknown.
func (m RegionYearMatrix) Column(region string) []sql.NullFloat64 {
	j := indexOfString(m.Regions, region)
	if j < 0 {
		return nil
	}
	col := make([]sql.NullFloat64, len(m.Years))
	for i := range m.Years {
		col[i] = m.Cells[i][j]
	}
	return col
}

// Present returns the non-absent values of one region in year order.
func (m RegionYearMatrix) Present(region string) []float64 {
	var out []float64
	for _, c := range m.Column(region) {
		if c.Valid {
			out = append(out, c.Float64)
		}
	}
	return out
}

func indexOfInt(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

func indexOfString(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
