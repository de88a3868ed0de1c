package dataset

import (
	"context"
	"database/sql"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/energy-gdp/internal/fetcher"
	"github.com/sells-group/energy-gdp/internal/model"
)

// GDPColumns names the identity headers of a World Bank indicator file.
type GDPColumns struct {
	CountryName string
	CountryCode string
}

// LoadGDP reads a World Bank wide-format CSV. skipRows is the number of preamble
// lines above the header ("Data Source", "Last Updated Date" and blanks).
func LoadGDP(ctx context.Context, path string, skipRows int, cols GDPColumns) ([]model.GDPWideRow, error) {
	tbl, err := fetcher.ReadCSVFile(ctx, path, fetcher.CSVOptions{
		SkipRows:   skipRows,
		LazyQuotes: true,
		TrimSpace:  true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "gdp: load")
	}

	rows, err := ParseGDPWide(tbl, cols)
	if err != nil {
		return nil, eris.Wrapf(err, "gdp: load %s", path)
	}

	zap.L().Debug("loaded gdp table",
		zap.String("path", path),
		zap.Int("countries", len(rows)),
	)
	return rows, nil
}

// ParseGDPWide converts raw rows into wide GDP rows. Only headers that are four-digit
// years become values; "Indicator Name", "Indicator Code" and trailing blank columns
// are ignored.
func ParseGDPWide(tbl *fetcher.Table, cols GDPColumns) ([]model.GDPWideRow, error) {
	colIdx := mapColumns(tbl.Header)
	if err := requireColumns("gdp", colIdx, cols.CountryName, cols.CountryCode); err != nil {
		return nil, err
	}

	yearIdx := make(map[int]int)
	for i, h := range tbl.Header {
		if y, ok := yearColumn(h); ok {
			if _, dup := yearIdx[y]; !dup {
				yearIdx[y] = i
			}
		}
	}
	if len(yearIdx) == 0 {
		return nil, eris.New("gdp: no year columns in header")
	}

	rows := make([]model.GDPWideRow, 0, len(tbl.Rows))
	for i, record := range tbl.Rows {
		values := make(map[int]sql.NullFloat64, len(yearIdx))
		for y, idx := range yearIdx {
			var cell string
			if idx < len(record) {
				cell = record[idx]
			}
			v, err := parseNullFloat(cell)
			if err != nil {
				return nil, eris.Wrapf(err, "gdp: row %d year %d", i+2, y)
			}
			values[y] = v
		}

		rows = append(rows, model.GDPWideRow{
			CountryName: getCol(record, colIdx, cols.CountryName),
			CountryCode: getCol(record, colIdx, cols.CountryCode),
			Values:      values,
		})
	}

	return rows, nil
}

// ReshapeGDP turns wide rows into one record per (country, year) for years in
// [minYear, maxYear]. Missing values become 0; the number filled is returned.
func ReshapeGDP(wide []model.GDPWideRow, minYear, maxYear int) ([]model.GDPRecord, int) {
	var (
		out    []model.GDPRecord
		filled int
	)
	for _, row := range wide {
		years := make([]int, 0, len(row.Values))
		for y := range row.Values {
			if y >= minYear && y <= maxYear {
				years = append(years, y)
			}
		}
		sort.Ints(years)

		for _, y := range years {
			v := row.Values[y]
			if !v.Valid {
				filled++
			}
			out = append(out, model.GDPRecord{
				CountryName: row.CountryName,
				CountryCode: row.CountryCode,
				Year:        y,
				GDP:         v.Float64, // zero when invalid
			})
		}
	}
	return out, filled
}

// CleanGDP keeps records whose code is in codes and whose year is in [minYear, maxYear],
// sorted by (code, year). Running it on its own output is a no-op.
func CleanGDP(records []model.GDPRecord, codes []string, minYear, maxYear int) []model.GDPRecord {
	keep := make(map[string]bool, len(codes))
	for _, c := range codes {
		if c != "" {
			keep[c] = true
		}
	}

	out := make([]model.GDPRecord, 0, len(records))
	for _, r := range records {
		if !keep[r.CountryCode] || r.Year < minYear || r.Year > maxYear {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CountryCode != out[j].CountryCode {
			return out[i].CountryCode < out[j].CountryCode
		}
		return out[i].Year < out[j].Year
	})

	return out
}
