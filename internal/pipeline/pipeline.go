// Package pipeline runs the load, clean, join, aggregate, render and export stages.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/sells-group/energy-gdp/internal/chart"
	"github.com/sells-group/energy-gdp/internal/config"
	"github.com/sells-group/energy-gdp/internal/dataset"
	"github.com/sells-group/energy-gdp/internal/model"
	"github.com/sells-group/energy-gdp/internal/transform"
)

// Result holds every table a run produced.
type Result struct {
	Energy  []model.EnergyRecord
	GDP     []model.GDPRecord
	Regions []model.RegionRecord
	Joined  []model.JoinedRecord

	EnergyByYear       []model.YearlyMean
	GDPByYear          []model.YearlyMean
	GDPByRegion        model.RegionYearMatrix
	RenewablesByRegion model.RegionYearMatrix

	// Artifacts lists the files written, charts first.
	Artifacts []string
	Report    Report
}

// Pipeline orchestrates one run over the configured inputs.
type Pipeline struct {
	cfg *config.Config
}

// New creates a Pipeline for cfg.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes the full pipeline: it writes the five charts and any enabled exports.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	return New(cfg).Run(ctx)
}

// Run executes every stage and returns the result, including the partial report on error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.Check(ctx)
	if err != nil {
		return res, err
	}
	log := zap.L().With(zap.String("run_id", res.Report.RunID))

	if err := p.track(res, "render", func() (map[string]any, error) {
		paths, renderErr := chart.RenderAll(ctx, chart.Data{
			EnergyByYear:       res.EnergyByYear,
			GDPByYear:          res.GDPByYear,
			GDPByRegion:        res.GDPByRegion,
			RenewablesByRegion: res.RenewablesByRegion,
		}, p.chartOptions())
		res.Artifacts = append(res.Artifacts, paths...)
		return map[string]any{"charts": len(paths)}, renderErr
	}); err != nil {
		return res, err
	}

	if e := p.cfg.Export; e.XLSX == "" && e.SQLite == "" && e.Parquet == "" {
		p.skip(res, "export")
	} else if err := p.track(res, "export", func() (map[string]any, error) {
		paths, exportErr := p.writeExports(ctx, res)
		res.Artifacts = append(res.Artifacts, paths...)
		return map[string]any{"files": len(paths)}, exportErr
	}); err != nil {
		return res, err
	}

	log.Info("pipeline: complete", zap.Strings("artifacts", res.Artifacts))
	return res, nil
}

// Check loads, cleans, joins and aggregates without writing anything.
func (p *Pipeline) Check(ctx context.Context) (*Result, error) {
	res := &Result{Report: Report{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}}
	log := zap.L().With(zap.String("run_id", res.Report.RunID))
	log.Info("pipeline: starting",
		zap.String("energy", p.cfg.Inputs.Energy),
		zap.String("gdp", p.cfg.Inputs.GDP),
		zap.String("regions", p.cfg.Inputs.Regions),
	)

	var (
		rawEnergy []model.EnergyRecord
		wideGDP   []model.GDPWideRow
	)
	if err := p.track(res, "load", func() (map[string]any, error) {
		var loadErr error
		rawEnergy, wideGDP, res.Regions, loadErr = p.load(ctx)
		return map[string]any{
			"energy_rows":   len(rawEnergy),
			"gdp_countries": len(wideGDP),
			"region_rows":   len(res.Regions),
		}, loadErr
	}); err != nil {
		return res, err
	}
	res.Report.Counts.EnergyRaw = len(rawEnergy)
	res.Report.Counts.GDPCountries = len(wideGDP)
	res.Report.Counts.Regions = len(res.Regions)

	if err := p.track(res, "clean", func() (map[string]any, error) {
		pc := p.cfg.Pipeline
		res.Energy = dataset.CleanEnergy(rawEnergy, dataset.EnergyFilter{
			MinYear:       pc.EnergyMinYear,
			WorldSentinel: pc.WorldSentinel,
		})
		reshaped, filled := dataset.ReshapeGDP(wideGDP, pc.GDPMinYear, pc.GDPMaxYear)
		res.GDP = dataset.CleanGDP(reshaped, dataset.DistinctCodes(res.Energy), pc.GDPMinYear, pc.GDPMaxYear)

		res.Report.Counts.EnergyClean = len(res.Energy)
		res.Report.Counts.GDPReshaped = len(reshaped)
		res.Report.Counts.GDPClean = len(res.GDP)
		res.Report.FilledGDPNulls = filled
		return map[string]any{
			"energy_rows":      len(res.Energy),
			"gdp_rows":         len(res.GDP),
			"gdp_nulls_filled": filled,
		}, nil
	}); err != nil {
		return res, err
	}

	if err := p.track(res, "keys", func() (map[string]any, error) {
		return p.checkKeys(res)
	}); err != nil {
		return res, err
	}

	if err := p.track(res, "join", func() (map[string]any, error) {
		joined, joinErr := transform.Join(res.GDP, res.Energy, res.Regions)
		res.Joined = joined.Rows
		res.Report.RegionlessCountries = joined.Regionless

		res.Report.Counts.JoinedEnergyGDP = joined.EnergyGDP
		res.Report.Counts.Joined = len(res.Joined)
		meta := map[string]any{
			"energy_gdp_rows": joined.EnergyGDP,
			"joined_rows":     len(res.Joined),
			"regionless":      len(res.Report.RegionlessCountries),
		}
		if len(res.Report.RegionlessCountries) > 0 {
			log.Info("pipeline: countries without region dropped",
				zap.Strings("codes", sample(res.Report.RegionlessCountries)),
				zap.Int("count", len(res.Report.RegionlessCountries)),
			)
		}
		return meta, joinErr
	}); err != nil {
		return res, err
	}

	if err := p.track(res, "aggregate", func() (map[string]any, error) {
		res.EnergyByYear = transform.MeanRenewableByYear(res.Energy)
		res.GDPByYear = transform.MeanGDPByYear(res.GDP)
		res.GDPByRegion = transform.MeanByYearRegion(res.Joined, transform.GDP)
		res.RenewablesByRegion = transform.MeanByYearRegion(res.Joined, transform.RenewablePct)

		res.Report.Counts.Years = len(res.GDPByRegion.Years)
		res.Report.RegionNames = res.GDPByRegion.Regions
		return map[string]any{
			"energy_years": len(res.EnergyByYear),
			"gdp_years":    len(res.GDPByYear),
			"regions":      len(res.GDPByRegion.Regions),
		}, nil
	}); err != nil {
		return res, err
	}

	return res, nil
}

// load reads energy, GDP and regions in that order and stops at the first failure.
func (p *Pipeline) load(ctx context.Context) ([]model.EnergyRecord, []model.GDPWideRow, []model.RegionRecord, error) {
	cols := p.cfg.Columns

	energy, err := dataset.LoadEnergy(ctx, p.cfg.Inputs.Energy, dataset.EnergyColumns{
		Code:      cols.EnergyCode,
		Year:      cols.EnergyYear,
		Renewable: cols.EnergyRenewable,
	})
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "pipeline: load")
	}

	gdp, err := dataset.LoadGDP(ctx, p.cfg.Inputs.GDP, p.cfg.Inputs.GDPSkipRows, dataset.GDPColumns{
		CountryName: cols.GDPCountryName,
		CountryCode: cols.GDPCountryCode,
	})
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "pipeline: load")
	}

	regions, err := dataset.LoadRegions(ctx, p.cfg.Inputs.Regions, dataset.RegionColumns{
		Code:   cols.RegionCode,
		Region: cols.RegionName,
	})
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "pipeline: load")
	}
	return energy, gdp, regions, nil
}

// checkKeys records duplicate join keys. They fan out in the join; in strict mode they
// fail the run instead.
func (p *Pipeline) checkKeys(res *Result) (map[string]any, error) {
	r := &res.Report
	r.DuplicateEnergyKeys = keyStrings(dataset.DuplicateKeys(res.Energy))
	r.DuplicateGDPKeys = keyStrings(dataset.DuplicateKeys(res.GDP))
	r.DuplicateRegionCodes = dataset.DuplicateRegionCodes(res.Regions)

	meta := map[string]any{
		"energy": len(r.DuplicateEnergyKeys),
		"gdp":    len(r.DuplicateGDPKeys),
		"region": len(r.DuplicateRegionCodes),
	}
	if !r.HasDuplicates() {
		return meta, nil
	}

	zap.L().Warn("pipeline: duplicate join keys",
		zap.Int("energy", len(r.DuplicateEnergyKeys)),
		zap.Strings("energy_sample", sample(r.DuplicateEnergyKeys)),
		zap.Int("gdp", len(r.DuplicateGDPKeys)),
		zap.Strings("gdp_sample", sample(r.DuplicateGDPKeys)),
		zap.Int("region", len(r.DuplicateRegionCodes)),
		zap.Strings("region_sample", sample(r.DuplicateRegionCodes)),
	)
	if p.cfg.Pipeline.StrictKeys {
		return meta, eris.Errorf("pipeline: duplicate keys (energy=%d gdp=%d region=%d)",
			len(r.DuplicateEnergyKeys), len(r.DuplicateGDPKeys), len(r.DuplicateRegionCodes))
	}
	return meta, nil
}

// track runs fn as a named stage and records its outcome in the report.
func (p *Pipeline) track(res *Result, name string, fn func() (map[string]any, error)) error {
	start := time.Now()
	meta, err := fn()
	duration := time.Since(start).Milliseconds()

	phase := model.PhaseResult{Name: name, Duration: duration, Metadata: meta}
	if err != nil {
		phase.Status = model.PhaseStatusFailed
		phase.Error = err.Error()
		zap.L().Error("pipeline: phase failed",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
	} else {
		phase.Status = model.PhaseStatusComplete
		zap.L().Info("pipeline: phase complete",
			zap.String("phase", name),
			zap.Int64("duration_ms", duration),
			zap.Any("metadata", meta),
		)
	}

	res.Report.Phases = append(res.Report.Phases, phase)
	return err
}

// skip records a stage that had nothing to do.
func (p *Pipeline) skip(res *Result, name string) {
	zap.L().Debug("pipeline: phase skipped", zap.String("phase", name))
	res.Report.Phases = append(res.Report.Phases, model.PhaseResult{Name: name, Status: model.PhaseStatusSkipped})
}

func (p *Pipeline) chartOptions() chart.Options {
	c := p.cfg.Chart
	return chart.Options{
		OutDir: c.OutDir,
		Width:  vg.Length(c.WidthIn) * vg.Inch,
		Height: vg.Length(c.HeightIn) * vg.Inch,
	}
}

func keyStrings(keys []model.Key) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

const sampleSize = 5

// sample trims a list for log output.
func sample(xs []string) []string {
	if len(xs) <= sampleSize {
		return xs
	}
	return append(xs[:sampleSize:sampleSize], "...")
}
