// Package export writes optional snapshots of a run: an XLSX workbook, a SQLite database
// and a Parquet file of the joined table.
package export

import (
	"time"

	"github.com/sells-group/energy-gdp/internal/model"
)

// Tables is everything a run can export.
type Tables struct {
	RunID              string
	StartedAt          time.Time
	Joined             []model.JoinedRecord
	EnergyByYear       []model.YearlyMean
	GDPByYear          []model.YearlyMean
	GDPByRegion        model.RegionYearMatrix
	RenewablesByRegion model.RegionYearMatrix
	// Report is stored as JSON alongside the run row.
	Report any
}

var joinedHeader = []string{"country_name", "country_code", "year", "gdp", "renewable_pct", "region"}
