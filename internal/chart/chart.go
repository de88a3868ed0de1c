// Package chart renders the five JPEG charts from the aggregated views.
package chart

import (
	"context"
	"database/sql"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/sells-group/energy-gdp/internal/model"
)

const dpi = 100

var (
	blue = color.RGBA{B: 255, A: 255}
	red  = color.RGBA{R: 255, A: 255}
)

// Options controls where and how large the charts are written.
type Options struct {
	OutDir string
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions writes 6.4x4.8 inch charts into the working directory.
func DefaultOptions() Options {
	return Options{OutDir: ".", Width: 6.4 * vg.Inch, Height: 4.8 * vg.Inch}
}

// Data holds the aggregates the charts draw.
type Data struct {
	EnergyByYear       []model.YearlyMean
	GDPByYear          []model.YearlyMean
	GDPByRegion        model.RegionYearMatrix
	RenewablesByRegion model.RegionYearMatrix
}

// figure is a built plot plus the space its right-hand axis needs outside the plot box.
type figure struct {
	plot   *plot.Plot
	margin vg.Length
}

type builder func(Data) (figure, error)

// Builders in output order; the i-th writes Graph_<i+1>.jpg.
var builders = []builder{
	energyTrend,
	gdpTrend,
	energyVsGDP,
	regionalCoMovement,
	regionalRenewables,
}

// FileName returns the fixed file name of the n-th chart, counting from 1.
func FileName(n int) string {
	return fmt.Sprintf("Graph_%d.jpg", n)
}

// RenderAll writes Graph_1.jpg through Graph_5.jpg into opts.OutDir, overwriting existing
// files, and returns the written paths.
func RenderAll(ctx context.Context, d Data, opts Options) ([]string, error) {
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		def := DefaultOptions()
		opts.Width, opts.Height = def.Width, def.Height
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "chart: create %s", opts.OutDir)
	}

	log := zap.L().With(zap.String("stage", "render"))
	paths := make([]string, 0, len(builders))
	for i, build := range builders {
		if err := ctx.Err(); err != nil {
			return paths, eris.Wrap(err, "chart: render")
		}

		fig, err := build(d)
		if err != nil {
			return paths, eris.Wrapf(err, "chart: build %s", FileName(i+1))
		}

		path := filepath.Join(opts.OutDir, FileName(i+1))
		if err := save(fig, path, opts.Width, opts.Height); err != nil {
			return paths, err
		}
		log.Info("chart written", zap.String("path", path))
		paths = append(paths, path)
	}
	return paths, nil
}

func save(fig figure, path string, w, h vg.Length) error {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	dc := draw.New(img)
	fig.plot.Draw(draw.Crop(dc, 0, -fig.margin, 0, 0))

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "chart: create %s", path)
	}
	jpg := vgimg.JpegCanvas{Canvas: img}
	if _, err := jpg.WriteTo(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "chart: write %s", path)
	}
	return eris.Wrapf(f.Close(), "chart: close %s", path)
}

func yearlyXYs(means []model.YearlyMean) plotter.XYs {
	pts := make(plotter.XYs, len(means))
	for i, m := range means {
		pts[i].X = float64(m.Year)
		pts[i].Y = m.Mean
	}
	return pts
}

// segments splits a column into runs of present cells so absent years break the line.
func segments(years []int, col []sql.NullFloat64, scale func(float64) float64) []plotter.XYs {
	var (
		out []plotter.XYs
		cur plotter.XYs
	)
	for i, c := range col {
		if !c.Valid {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: float64(years[i]), Y: scale(c.Float64)})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// matrixRange returns the smallest and largest present cell and false when none is present.
func matrixRange(m model.RegionYearMatrix) (float64, float64, bool) {
	var (
		lo, hi float64
		found  bool
	)
	for _, row := range m.Cells {
		for _, c := range row {
			if !c.Valid {
				continue
			}
			if !found || c.Float64 < lo {
				lo = c.Float64
			}
			if !found || c.Float64 > hi {
				hi = c.Float64
			}
			found = true
		}
	}
	return lo, hi, found
}

func identity(v float64) float64 { return v }
