package transform

import (
	"database/sql"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/energy-gdp/internal/model"
)

// Metric selects the value of a joined row that is averaged. An invalid result is skipped.
type Metric func(model.JoinedRecord) sql.NullFloat64

// GDP averages the zero-filled GDP column.
func GDP(r model.JoinedRecord) sql.NullFloat64 {
	return sql.NullFloat64{Float64: r.GDP, Valid: true}
}

// RenewablePct averages the renewable share; rows without a share do not count.
func RenewablePct(r model.JoinedRecord) sql.NullFloat64 {
	return r.RenewablePct
}

// MeanRenewableByYear averages the renewable share of all countries per year.
func MeanRenewableByYear(energy []model.EnergyRecord) []model.YearlyMean {
	groups := make(map[int][]float64)
	for _, r := range energy {
		if !r.RenewablePct.Valid {
			continue
		}
		groups[r.Year] = append(groups[r.Year], r.RenewablePct.Float64)
	}
	return yearlyMeans(groups)
}

// MeanGDPByYear averages GDP of all countries per year. Zero-filled cells count as zero.
func MeanGDPByYear(gdp []model.GDPRecord) []model.YearlyMean {
	groups := make(map[int][]float64)
	for _, r := range gdp {
		groups[r.Year] = append(groups[r.Year], r.GDP)
	}
	return yearlyMeans(groups)
}

func yearlyMeans(groups map[int][]float64) []model.YearlyMean {
	out := make([]model.YearlyMean, 0, len(groups))
	for year, vals := range groups {
		out = append(out, model.YearlyMean{Year: year, Mean: stat.Mean(vals, nil), N: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

type yearRegion struct {
	year   int
	region string
}

// MeanByYearRegion averages metric per (year, region) and pivots the result into a
// matrix with ascending years and regions. A year or region appears when at least one
// row carries it; cells with no contributing value stay invalid.
func MeanByYearRegion(joined []model.JoinedRecord, metric Metric) model.RegionYearMatrix {
	groups := make(map[yearRegion][]float64)
	years := make(map[int]struct{})
	regions := make(map[string]struct{})

	for _, r := range joined {
		years[r.Year] = struct{}{}
		regions[r.Region] = struct{}{}
		v := metric(r)
		if !v.Valid {
			continue
		}
		k := yearRegion{year: r.Year, region: r.Region}
		groups[k] = append(groups[k], v.Float64)
	}

	m := model.RegionYearMatrix{
		Years:   sortedInts(years),
		Regions: sortedStrings(regions),
	}
	m.Cells = make([][]sql.NullFloat64, len(m.Years))
	for i, y := range m.Years {
		m.Cells[i] = make([]sql.NullFloat64, len(m.Regions))
		for j, reg := range m.Regions {
			if vals, ok := groups[yearRegion{year: y, region: reg}]; ok {
				m.Cells[i][j] = sql.NullFloat64{Float64: stat.Mean(vals, nil), Valid: true}
			}
		}
	}
	return m
}

func sortedInts(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
