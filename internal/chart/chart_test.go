package chart

import (
	"context"
	"database/sql"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/sells-group/energy-gdp/internal/model"
)

func valid(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }

func testData() Data {
	years := []int{1970, 1971, 1972, 1973}
	return Data{
		EnergyByYear: []model.YearlyMean{
			{Year: 1970, Mean: 8.1, N: 3},
			{Year: 1971, Mean: 8.4, N: 3},
			{Year: 1972, Mean: 9.0, N: 3},
			{Year: 1973, Mean: 9.2, N: 3},
		},
		GDPByYear: []model.YearlyMean{
			{Year: 1970, Mean: 1.2e11, N: 3},
			{Year: 1971, Mean: 1.9e11, N: 3},
			{Year: 1972, Mean: 4.5e11, N: 3},
			{Year: 1973, Mean: 1.1e12, N: 3},
		},
		GDPByRegion: model.RegionYearMatrix{
			Years:   years,
			Regions: []string{"Africa", "Europe", "North America"},
			Cells: [][]sql.NullFloat64{
				{valid(2e10), valid(3e11), valid(1e12)},
				{valid(2.2e10), {}, valid(1.1e12)},
				{valid(2.5e10), valid(3.4e11), valid(1.3e12)},
				{valid(2.6e10), valid(3.6e11), valid(1.4e12)},
			},
		},
		RenewablesByRegion: model.RegionYearMatrix{
			Years:   years,
			Regions: []string{"Africa", "Europe", "North America"},
			Cells: [][]sql.NullFloat64{
				{valid(60), valid(10), valid(6)},
				{valid(61), {}, valid(6.5)},
				{valid(59), valid(11), {}},
				{valid(62), valid(12), valid(7)},
			},
		},
	}
}

func TestRenderAll(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutDir = dir

	// Existing files are overwritten.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Graph_1.jpg"), []byte("stale"), 0o644))

	paths, err := RenderAll(context.Background(), testData(), opts)
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for i, path := range paths {
		assert.Equal(t, filepath.Join(dir, FileName(i+1)), path)

		f, err := os.Open(path)
		require.NoError(t, err)
		cfg, err := jpeg.DecodeConfig(f)
		_ = f.Close()
		require.NoError(t, err, path)
		assert.Equal(t, 640, cfg.Width)
		assert.Equal(t, 480, cfg.Height)
	}
}

func TestRenderAll_CreatesOutDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts", "nested")
	opts := Options{OutDir: dir}

	paths, err := RenderAll(context.Background(), testData(), opts)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
	assert.FileExists(t, filepath.Join(dir, "Graph_5.jpg"))
}

func TestRenderAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := RenderAll(ctx, testData(), Options{OutDir: t.TempDir()})
	require.Error(t, err)
	assert.Empty(t, paths)
}

func TestRenderAll_NoData(t *testing.T) {
	_, err := RenderAll(context.Background(), Data{}, Options{OutDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Graph_1.jpg")
}

func TestRegionBoxes_MissingAndUnknownRegions(t *testing.T) {
	m := model.RegionYearMatrix{
		Years:   []int{1970, 1971},
		Regions: []string{"Antarctica", "Asia"},
		Cells: [][]sql.NullFloat64{
			{valid(1), valid(20)},
			{valid(2), valid(22)},
		},
	}

	boxes, err := regionBoxes(m)
	require.NoError(t, err)
	require.Len(t, boxes, 1)
	assert.InDelta(t, 1.0, boxes[0].Location, 0, "Asia sits at its fixed slot")

	fig, err := regionalRenewables(Data{RenewablesByRegion: m})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, fig.plot.X.Min, 0)
	assert.InDelta(t, 6.5, fig.plot.X.Max, 0, "every fixed region keeps its tick")
}

func TestRegionBoxes_NoKnownRegion(t *testing.T) {
	m := model.RegionYearMatrix{
		Years:   []int{1970},
		Regions: []string{"Antarctica"},
		Cells:   [][]sql.NullFloat64{{valid(1)}},
	}
	_, err := regionBoxes(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no regional renewables")
}

func TestBillionsTicker(t *testing.T) {
	ticks := DefaultBillions.Ticks(0, 1.1e12)

	labels := make([]string, len(ticks))
	for i, tk := range ticks {
		labels[i] = tk.Label
	}
	assert.Equal(t, []string{"0B", "200B", "400B", "600B", "800B", "1,000B"}, labels)
	assert.InDelta(t, 1e12, ticks[5].Value, 1)
}

func TestBillionsTicker_WidensStep(t *testing.T) {
	ticks := DefaultBillions.Ticks(0, 2e13)
	assert.LessOrEqual(t, len(ticks), 11)
	require.GreaterOrEqual(t, len(ticks), 2)
	assert.Equal(t, "0B", ticks[0].Label)
	assert.Equal(t, "3,200B", ticks[1].Label)
}

func TestBillionsTicker_NarrowsStep(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     []string
	}{
		{"small economies", 0, 5e9, []string{"0B", "2B", "4B"}},
		{"sub-billion", 0, 3e8, []string{"0.0B", "0.1B", "0.2B", "0.3B"}},
		{"offset range", 1.2e11, 1.6e11, []string{"120B", "140B", "160B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticks := DefaultBillions.Ticks(tt.min, tt.max)
			labels := make([]string, len(ticks))
			for i, tk := range ticks {
				labels[i] = tk.Label
			}
			assert.Equal(t, tt.want, labels)
		})
	}
}

func TestHiddenTicks(t *testing.T) {
	ticks := hiddenTicks{Ticker: plot.DefaultTicks{}}.Ticks(0, 100)
	require.NotEmpty(t, ticks)
	for _, tk := range ticks {
		assert.Empty(t, tk.Label)
	}
}

func TestTwinScale(t *testing.T) {
	s := twinScale{min: 0, max: 1e12, pmin: 5, pmax: 15}
	assert.InDelta(t, 5.0, s.toPrimary(0), 1e-9)
	assert.InDelta(t, 10.0, s.toPrimary(5e11), 1e-9)
	assert.InDelta(t, 15.0, s.toPrimary(1e12), 1e-9)

	flat := twinScale{min: 3, max: 3, pmin: 0, pmax: 10}
	assert.InDelta(t, 5.0, flat.toPrimary(3), 1e-9)
}

func TestSegments(t *testing.T) {
	years := []int{1970, 1971, 1972, 1973, 1974}
	col := []sql.NullFloat64{valid(1), valid(2), {}, valid(4), {}}

	got := segments(years, col, func(v float64) float64 { return v * 10 })

	require.Len(t, got, 2, "absent cells break the line")
	assert.Equal(t, plotter.XYs{{X: 1970, Y: 10}, {X: 1971, Y: 20}}, got[0])
	assert.Equal(t, plotter.XYs{{X: 1973, Y: 40}}, got[1])
	assert.Empty(t, segments(years, make([]sql.NullFloat64, len(years)), identity))
}

func TestMatrixRange(t *testing.T) {
	lo, hi, ok := matrixRange(testData().RenewablesByRegion)
	require.True(t, ok)
	assert.InDelta(t, 6.0, lo, 0)
	assert.InDelta(t, 62.0, hi, 0)

	_, _, ok = matrixRange(model.RegionYearMatrix{})
	assert.False(t, ok)
}
