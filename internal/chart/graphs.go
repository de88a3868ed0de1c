package chart

import (
	"image/color"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/energy-gdp/internal/model"
)

// RegionOrder is the fixed box order of the regional renewables chart.
var RegionOrder = []string{
	"Africa",
	"Asia",
	"Europe",
	"Middle East",
	"North America",
	"Oceania",
	"South America",
}

const (
	yearLabel      = "Year"
	renewableLabel = "Renewable Energy Percentage"
	gdpLabel       = "GDP in Billions"
)

func trendLine(means []model.YearlyMean, c color.Color) (*plotter.Line, error) {
	if len(means) == 0 {
		return nil, eris.New("chart: no yearly means to plot")
	}
	l, err := plotter.NewLine(yearlyXYs(means))
	if err != nil {
		return nil, eris.Wrap(err, "chart: line")
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(3)
	return l, nil
}

// energyTrend is Graph_1: mean renewable share by year.
func energyTrend(d Data) (figure, error) {
	l, err := trendLine(d.EnergyByYear, blue)
	if err != nil {
		return figure{}, err
	}

	p := plot.New()
	p.Title.Text = "Renewable Energy Percentage from 1970 to 2018"
	p.X.Label.Text = yearLabel
	p.Y.Label.Text = renewableLabel
	p.Add(l)
	return figure{plot: p}, nil
}

// gdpTrend is Graph_2: mean GDP by year with ticks in billions.
func gdpTrend(d Data) (figure, error) {
	l, err := trendLine(d.GDPByYear, red)
	if err != nil {
		return figure{}, err
	}

	p := plot.New()
	p.Title.Text = "GDP in Billions from 1970 to 2018"
	p.X.Label.Text = yearLabel
	p.Y.Label.Text = gdpLabel
	p.Add(l)
	p.Y.Min = math.Min(0, p.Y.Min)
	p.Y.Tick.Marker = DefaultBillions
	return figure{plot: p}, nil
}

// energyVsGDP is Graph_3: renewable share on the left axis, GDP on the right axis.
func energyVsGDP(d Data) (figure, error) {
	energy, err := trendLine(d.EnergyByYear, blue)
	if err != nil {
		return figure{}, err
	}
	if len(d.GDPByYear) == 0 {
		return figure{}, eris.New("chart: no yearly GDP means to plot")
	}

	p := plot.New()
	p.Title.Text = "Compare GDP/Energy over time"
	p.X.Label.Text = yearLabel
	p.Y.Label.Text = renewableLabel
	energy.LineStyle.Width = vg.Points(1.5)
	p.Add(energy)

	pmin, pmax := primaryRange(p)
	scale := twinScale{pmin: pmin, pmax: pmax}
	for _, m := range d.GDPByYear {
		scale.min = math.Min(scale.min, m.Mean)
		scale.max = math.Max(scale.max, m.Mean)
	}

	pts := yearlyXYs(d.GDPByYear)
	for i := range pts {
		pts[i].Y = scale.toPrimary(pts[i].Y)
	}
	gdp, err := plotter.NewLine(pts)
	if err != nil {
		return figure{}, eris.Wrap(err, "chart: gdp line")
	}
	gdp.LineStyle.Color = red
	gdp.LineStyle.Width = vg.Points(1.5)
	p.Add(gdp)

	axis := newRightAxis(p, scale, gdpLabel, DefaultBillions)
	p.Add(axis)

	p.Legend.Add("Energy", energy)
	p.Legend.Top = true
	p.Legend.Left = true

	right := plot.NewLegend()
	right.Add("GDP", gdp)
	right.Top = true
	p.Add(&cornerLegend{legend: right})

	return figure{plot: p, margin: axis.width()}, nil
}

// regionalCoMovement is Graph_4: mean GDP per region (solid, left axis) against mean
// renewable share per region (dashed, right axis). Tick values are hidden on both axes.
func regionalCoMovement(d Data) (figure, error) {
	gdp, renew := d.GDPByRegion, d.RenewablesByRegion
	if _, _, ok := matrixRange(gdp); !ok {
		return figure{}, eris.New("chart: no regional GDP means to plot")
	}

	p := plot.New()
	p.Title.Text = "GDP and Energy increases per region"
	p.X.Label.Text = yearLabel
	p.Y.Label.Text = "GDP"
	p.Y.Tick.Marker = hiddenTicks{Ticker: plot.DefaultTicks{}}
	p.Legend.Add("Legend")
	p.Legend.Top = true
	p.Legend.Left = true

	solid := make(map[string]*plotter.Line, len(gdp.Regions))
	for i, region := range gdp.Regions {
		for _, seg := range segments(gdp.Years, gdp.Column(region), identity) {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return figure{}, eris.Wrapf(err, "chart: gdp line %s", region)
			}
			l.LineStyle.Color = plotutil.Color(i)
			p.Add(l)
			if solid[region] == nil {
				solid[region] = l
				p.Legend.Add(region, l)
			}
		}
	}

	pmin, pmax := primaryRange(p)
	scale := twinScale{pmin: pmin, pmax: pmax}
	if lo, hi, ok := matrixRange(renew); ok {
		scale.min, scale.max = lo, hi
	}

	for _, region := range renew.Regions {
		i := indexOf(gdp.Regions, region)
		if i < 0 {
			zap.L().Warn("chart: region has renewables but no GDP", zap.String("region", region))
			continue
		}
		for _, seg := range segments(renew.Years, renew.Column(region), scale.toPrimary) {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return figure{}, eris.Wrapf(err, "chart: renewables line %s", region)
			}
			l.LineStyle.Color = plotutil.Color(i)
			l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(l)
		}
	}

	axis := newRightAxis(p, scale, renewableLabel, hiddenTicks{Ticker: plot.DefaultTicks{}})
	p.Add(axis)
	return figure{plot: p, margin: axis.width()}, nil
}

// regionalRenewables is Graph_5: the distribution across years of each region's mean
// renewable share, one box per region in RegionOrder.
func regionalRenewables(d Data) (figure, error) {
	boxes, err := regionBoxes(d.RenewablesByRegion)
	if err != nil {
		return figure{}, err
	}

	p := plot.New()
	p.Title.Text = "Renewable Energy Per Region"
	p.X.Label.Text = "Region"
	p.Y.Label.Text = renewableLabel
	for _, b := range boxes {
		p.Add(b)
	}

	p.NominalX(RegionOrder...)
	p.X.Min = -0.5
	p.X.Max = float64(len(RegionOrder)) - 0.5
	p.X.Tick.Label.Font.Size = vg.Points(8)
	return figure{plot: p}, nil
}

// regionBoxes builds one box per region of RegionOrder that has data, located at the
// region's index. Regions outside RegionOrder are logged and skipped.
func regionBoxes(m model.RegionYearMatrix) ([]*plotter.BoxPlot, error) {
	for _, region := range m.Regions {
		if indexOf(RegionOrder, region) < 0 {
			zap.L().Warn("chart: region not in box plot order, skipped", zap.String("region", region))
		}
	}

	var boxes []*plotter.BoxPlot
	for i, region := range RegionOrder {
		vals := m.Present(region)
		if len(vals) == 0 {
			zap.L().Debug("chart: no data for region", zap.String("region", region))
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), plotter.Values(vals))
		if err != nil {
			return nil, eris.Wrapf(err, "chart: box %s", region)
		}
		boxes = append(boxes, b)
	}
	if len(boxes) == 0 {
		return nil, eris.New("chart: no regional renewables to plot")
	}
	return boxes, nil
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
