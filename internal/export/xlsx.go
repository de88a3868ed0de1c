package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/energy-gdp/internal/model"
)

// Sheet names of the exported workbook, in order.
const (
	SheetJoined             = "joined"
	SheetEnergyByYear       = "energy_by_year"
	SheetGDPByYear          = "gdp_by_year"
	SheetGDPByRegion        = "gdp_by_region"
	SheetRenewablesByRegion = "renewables_by_region"
)

// WriteXLSX writes the joined table and the aggregates to a workbook at path. Null values
// become empty cells.
func WriteXLSX(path string, t Tables) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(SheetJoined)
	if err != nil {
		return eris.Wrap(err, "xlsx: add joined sheet")
	}
	addStringRow(sheet, joinedHeader)
	for _, r := range t.Joined {
		row := sheet.AddRow()
		row.AddCell().SetString(r.CountryName)
		row.AddCell().SetString(r.CountryCode)
		row.AddCell().SetInt(r.Year)
		row.AddCell().SetFloat(r.GDP)
		addNullFloat(row, r.RenewablePct.Float64, r.RenewablePct.Valid)
		row.AddCell().SetString(r.Region)
	}

	for _, s := range []struct {
		name  string
		means []model.YearlyMean
	}{
		{SheetEnergyByYear, t.EnergyByYear},
		{SheetGDPByYear, t.GDPByYear},
	} {
		if err := addYearlySheet(f, s.name, s.means); err != nil {
			return err
		}
	}

	for _, s := range []struct {
		name string
		m    model.RegionYearMatrix
	}{
		{SheetGDPByRegion, t.GDPByRegion},
		{SheetRenewablesByRegion, t.RenewablesByRegion},
	} {
		if err := addMatrixSheet(f, s.name, s.m); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addYearlySheet(f *xlsx.File, name string, means []model.YearlyMean) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add %s sheet", name)
	}
	addStringRow(sheet, []string{"year", "mean", "n"})
	for _, m := range means {
		row := sheet.AddRow()
		row.AddCell().SetInt(m.Year)
		row.AddCell().SetFloat(m.Mean)
		row.AddCell().SetInt(m.N)
	}
	return nil
}

// addMatrixSheet lays a region matrix out the way it is pivoted: one row per year, one
// column per region.
func addMatrixSheet(f *xlsx.File, name string, m model.RegionYearMatrix) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "xlsx: add %s sheet", name)
	}
	addStringRow(sheet, append([]string{"year"}, m.Regions...))
	for i, year := range m.Years {
		row := sheet.AddRow()
		row.AddCell().SetInt(year)
		for _, c := range m.Cells[i] {
			addNullFloat(row, c.Float64, c.Valid)
		}
	}
	return nil
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func addNullFloat(row *xlsx.Row, v float64, valid bool) {
	cell := row.AddCell()
	if valid {
		cell.SetFloat(v)
	}
}
