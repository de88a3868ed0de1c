package chart

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/plot"
)

const billion = 1e9

// BillionsTicker places major ticks on multiples of Step and labels them in billions with
// thousands separators ("200B", "1,000B"). The step doubles until at most MaxTicks majors fit,
// and on short ranges it steps down 1-2-5 until at least minTicks do.
type BillionsTicker struct {
	Step     float64
	MaxTicks int
}

// DefaultBillions ticks every 200 billion.
var DefaultBillions = BillionsTicker{Step: 200 * billion, MaxTicks: 10}

const minTicks = 3

// Ticks implements plot.Ticker.
func (t BillionsTicker) Ticks(min, max float64) []plot.Tick {
	step := t.Step
	if step <= 0 {
		step = DefaultBillions.Step
	}
	limit := t.MaxTicks
	if limit <= 0 {
		limit = DefaultBillions.MaxTicks
	}
	if max < min {
		min, max = max, min
	}
	for (max-min)/step > float64(limit) {
		step *= 2
	}
	for i := 0; max > min && tickCount(min, max, step) < minTicks && i < 64; i++ {
		step = finerStep(step)
	}

	// Sub-billion steps need decimals.
	decimals := 0
	if step < billion {
		decimals = int(math.Ceil(-math.Log10(step/billion) - 1e-9))
	}

	p := message.NewPrinter(language.English)
	var ticks []plot.Tick
	for i := math.Ceil(min / step); i <= math.Floor(max/step); i++ {
		v := i * step
		label := p.Sprintf("%dB", int64(math.Round(v/billion)))
		if decimals > 0 {
			label = p.Sprintf("%.*fB", decimals, v/billion)
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: label})
	}
	return ticks
}

func tickCount(min, max, step float64) int {
	return int(math.Floor(max/step)-math.Ceil(min/step)) + 1
}

// finerStep returns the next smaller step in the 1-2-5 sequence.
func finerStep(step float64) float64 {
	base := math.Pow(10, math.Floor(math.Log10(step)))
	m := step / base
	if m >= 10-1e-6 {
		base *= 10
		m /= 10
	}
	const eps = 1e-6
	switch {
	case m > 5+eps:
		return 5 * base
	case m > 2+eps:
		return 2 * base
	case m > 1+eps:
		return base
	default:
		return base / 2
	}
}

// hiddenTicks keeps the tick marks of the wrapped ticker and drops every label.
type hiddenTicks struct {
	plot.Ticker
}

func (h hiddenTicks) Ticks(min, max float64) []plot.Tick {
	ticks := h.Ticker.Ticks(min, max)
	for i := range ticks {
		ticks[i].Label = ""
	}
	return ticks
}
