package chart

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// twinScale maps a secondary series onto the primary Y range so both share one data canvas.
type twinScale struct {
	min, max   float64 // secondary data range
	pmin, pmax float64 // primary range it is drawn into
}

func (s twinScale) toPrimary(v float64) float64 {
	if s.max == s.min {
		return (s.pmin + s.pmax) / 2
	}
	return s.pmin + (v-s.min)/(s.max-s.min)*(s.pmax-s.pmin)
}

// primaryRange reads the Y range of the plotters added so far, widening a flat range.
func primaryRange(p *plot.Plot) (float64, float64) {
	if p.Y.Min == p.Y.Max {
		p.Y.Min--
		p.Y.Max++
	}
	return p.Y.Min, p.Y.Max
}

// rightAxis draws a secondary Y axis along the right edge of the data canvas. The plot must
// be drawn with at least width() of free space to the right of it.
type rightAxis struct {
	scale     twinScale
	label     string
	ticker    plot.Ticker
	line      draw.LineStyle
	tickLen   vg.Length
	tickStyle draw.TextStyle
	textStyle draw.TextStyle
	pad       vg.Length
}

func newRightAxis(p *plot.Plot, scale twinScale, label string, ticker plot.Ticker) *rightAxis {
	text := p.Y.Label.TextStyle
	text.Rotation = math.Pi / 2
	text.XAlign = draw.XCenter
	text.YAlign = draw.YTop

	tick := p.Y.Tick.Label
	tick.Rotation = 0
	tick.XAlign = draw.XLeft
	tick.YAlign = draw.YCenter

	return &rightAxis{
		scale:     scale,
		label:     label,
		ticker:    ticker,
		line:      p.Y.LineStyle,
		tickLen:   p.Y.Tick.Length,
		tickStyle: tick,
		textStyle: text,
		pad:       vg.Points(4),
	}
}

func (a *rightAxis) labelWidth() vg.Length {
	var w vg.Length
	for _, t := range a.ticker.Ticks(a.scale.min, a.scale.max) {
		if t.Label == "" {
			continue
		}
		if tw := a.tickStyle.Width(t.Label); tw > w {
			w = tw
		}
	}
	return w
}

// width is the space the axis needs right of the data canvas.
func (a *rightAxis) width() vg.Length {
	w := a.tickLen + a.pad + a.labelWidth() + a.pad
	if a.label != "" {
		w += a.textStyle.Height(a.label) + a.pad
	}
	return w
}

// Plot implements plot.Plotter.
func (a *rightAxis) Plot(c draw.Canvas, p *plot.Plot) {
	_, trY := p.Transforms(&c)
	x := c.Max.X
	c.StrokeLine2(a.line, x, c.Min.Y, x, c.Max.Y)

	for _, t := range a.ticker.Ticks(a.scale.min, a.scale.max) {
		y := trY(a.scale.toPrimary(t.Value))
		if y < c.Min.Y || y > c.Max.Y {
			continue
		}
		c.StrokeLine2(a.line, x, y, x+a.tickLen, y)
		if t.Label != "" {
			c.FillText(a.tickStyle, vg.Point{X: x + a.tickLen + a.pad, Y: y}, t.Label)
		}
	}

	if a.label != "" {
		lx := x + a.tickLen + a.pad + a.labelWidth() + a.pad
		c.FillText(a.textStyle, vg.Point{X: lx, Y: (c.Min.Y + c.Max.Y) / 2}, a.label)
	}
}

// cornerLegend draws an extra legend inside the data canvas, next to the plot's own.
type cornerLegend struct {
	legend plot.Legend
}

// Plot implements plot.Plotter.
func (l *cornerLegend) Plot(c draw.Canvas, _ *plot.Plot) {
	l.legend.Draw(c)
}
