package dataset

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/energy-gdp/internal/fetcher"
	"github.com/sells-group/energy-gdp/internal/model"
)

// RegionColumns names the headers of the region mapping.
type RegionColumns struct {
	Code   string
	Region string
}

// LoadRegions reads the country-to-region mapping from a CSV file, or from the first
// sheet of an XLSX workbook when path ends in .xlsx.
func LoadRegions(ctx context.Context, path string, cols RegionColumns) ([]model.RegionRecord, error) {
	var (
		tbl *fetcher.Table
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		tbl, err = fetcher.ReadXLSXTable(path, fetcher.XLSXOptions{TrimSpace: true})
	} else {
		tbl, err = fetcher.ReadCSVFile(ctx, path, fetcher.CSVOptions{LazyQuotes: true, TrimSpace: true})
	}
	if err != nil {
		return nil, eris.Wrap(err, "regions: load")
	}

	records, err := ParseRegions(tbl, cols)
	if err != nil {
		return nil, eris.Wrapf(err, "regions: load %s", path)
	}

	zap.L().Debug("loaded region table",
		zap.String("path", path),
		zap.Int("rows", len(records)),
	)
	return records, nil
}

// ParseRegions converts raw rows into region records. Rows without a code or a region
// carry no assignment and are skipped.
func ParseRegions(tbl *fetcher.Table, cols RegionColumns) ([]model.RegionRecord, error) {
	colIdx := mapColumns(tbl.Header)
	if err := requireColumns("regions", colIdx, cols.Code, cols.Region); err != nil {
		return nil, err
	}

	records := make([]model.RegionRecord, 0, len(tbl.Rows))
	skipped := 0
	for _, row := range tbl.Rows {
		code := getCol(row, colIdx, cols.Code)
		region := getCol(row, colIdx, cols.Region)
		if code == "" || isNullToken(region) {
			skipped++
			continue
		}
		records = append(records, model.RegionRecord{CountryCode: code, Region: region})
	}

	if skipped > 0 {
		zap.L().Warn("regions: skipped rows without code or region", zap.Int("rows", skipped))
	}
	return records, nil
}
