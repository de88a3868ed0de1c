// Package transform joins the cleaned tables and computes the aggregates behind the charts.
package transform

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/energy-gdp/internal/model"
)

// JoinEnergyGDP inner-joins GDP and energy rows on (country code, year). Output follows GDP
// order, then energy match order. Duplicate keys on either side fan out.
func JoinEnergyGDP(gdp []model.GDPRecord, energy []model.EnergyRecord) []model.JoinedRecord {
	byKey := make(map[model.Key][]model.EnergyRecord, len(energy))
	for _, e := range energy {
		byKey[e.Key()] = append(byKey[e.Key()], e)
	}

	out := make([]model.JoinedRecord, 0, len(gdp))
	for _, g := range gdp {
		for _, e := range byKey[g.Key()] {
			out = append(out, model.JoinedRecord{
				CountryName:  g.CountryName,
				CountryCode:  g.CountryCode,
				Year:         g.Year,
				GDP:          g.GDP,
				RenewablePct: e.RenewablePct,
			})
		}
	}
	return out
}

// JoinRegions attaches a region to every joined row. Rows whose code has no region are
// dropped; a code mapped to several regions yields one row per region.
func JoinRegions(joined []model.JoinedRecord, regions []model.RegionRecord) []model.JoinedRecord {
	byCode := make(map[string][]string, len(regions))
	for _, r := range regions {
		byCode[r.CountryCode] = append(byCode[r.CountryCode], r.Region)
	}

	out := make([]model.JoinedRecord, 0, len(joined))
	for _, j := range joined {
		for _, region := range byCode[j.CountryCode] {
			row := j
			row.Region = region
			out = append(out, row)
		}
	}
	return out
}

// ErrEmptyJoin is returned when no row survives both joins.
var ErrEmptyJoin = eris.New("transform: empty join result")

// JoinResult is the output of Join.
type JoinResult struct {
	Rows       []model.JoinedRecord
	EnergyGDP  int      // rows after the (code, year) join, before regions
	Regionless []string // codes dropped for lack of a region
}

// Join runs both joins. The result is filled in even when it returns ErrEmptyJoin, so
// callers can still report how far the rows got.
func Join(gdp []model.GDPRecord, energy []model.EnergyRecord, regions []model.RegionRecord) (JoinResult, error) {
	pairs := JoinEnergyGDP(gdp, energy)
	res := JoinResult{
		Rows:       JoinRegions(pairs, regions),
		EnergyGDP:  len(pairs),
		Regionless: RegionlessCodes(pairs, regions),
	}
	if len(res.Rows) == 0 {
		return res, ErrEmptyJoin
	}
	return res, nil
}

// RegionlessCodes lists the distinct codes of rows that have no region assignment, in
// first-seen order.
func RegionlessCodes(joined []model.JoinedRecord, regions []model.RegionRecord) []string {
	known := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		known[r.CountryCode] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, j := range joined {
		if _, ok := known[j.CountryCode]; ok {
			continue
		}
		if _, ok := seen[j.CountryCode]; ok {
			continue
		}
		seen[j.CountryCode] = struct{}{}
		out = append(out, j.CountryCode)
	}
	return out
}
