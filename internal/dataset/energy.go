package dataset

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/energy-gdp/internal/fetcher"
	"github.com/sells-group/energy-gdp/internal/model"
)

// EnergyColumns names the energy-mix headers the loader projects to.
type EnergyColumns struct {
	Code      string
	Year      string
	Renewable string
}

// EnergyFilter holds the cleaning rules for the energy table.
type EnergyFilter struct {
	MinYear       int
	WorldSentinel string
}

// LoadEnergy reads the energy-mix CSV and projects it to code, year and renewable share.
func LoadEnergy(ctx context.Context, path string, cols EnergyColumns) ([]model.EnergyRecord, error) {
	tbl, err := fetcher.ReadCSVFile(ctx, path, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	if err != nil {
		return nil, eris.Wrap(err, "energy: load")
	}

	records, err := ParseEnergy(tbl, cols)
	if err != nil {
		return nil, eris.Wrapf(err, "energy: load %s", path)
	}

	zap.L().Debug("loaded energy table",
		zap.String("path", path),
		zap.Int("rows", len(records)),
	)
	return records, nil
}

// ParseEnergy converts raw rows into energy records. Every row is kept; filtering
// happens in CleanEnergy.
func ParseEnergy(tbl *fetcher.Table, cols EnergyColumns) ([]model.EnergyRecord, error) {
	colIdx := mapColumns(tbl.Header)
	if err := requireColumns("energy", colIdx, cols.Code, cols.Year, cols.Renewable); err != nil {
		return nil, err
	}

	records := make([]model.EnergyRecord, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		year, err := parseYear(getCol(row, colIdx, cols.Year))
		if err != nil {
			return nil, eris.Wrapf(err, "energy: row %d", i+2)
		}
		pct, err := parseNullFloat(getCol(row, colIdx, cols.Renewable))
		if err != nil {
			return nil, eris.Wrapf(err, "energy: row %d", i+2)
		}

		records = append(records, model.EnergyRecord{
			CountryCode:  getCol(row, colIdx, cols.Code),
			Year:         year,
			RenewablePct: pct,
		})
	}

	return records, nil
}

// CleanEnergy keeps rows from MinYear on, drops the world rollup and rows without a
// country code, and sorts by (code, year). Running it on its own output is a no-op.
func CleanEnergy(records []model.EnergyRecord, f EnergyFilter) []model.EnergyRecord {
	out := make([]model.EnergyRecord, 0, len(records))
	for _, r := range records {
		if r.Year < f.MinYear {
			continue
		}
		if r.CountryCode == "" || r.CountryCode == f.WorldSentinel {
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

// DistinctCodes returns the non-empty country codes of records in first-seen order.
func DistinctCodes(records []model.EnergyRecord) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range records {
		if r.CountryCode == "" || seen[r.CountryCode] {
			continue
		}
		seen[r.CountryCode] = true
		codes = append(codes, r.CountryCode)
	}
	return codes
}
