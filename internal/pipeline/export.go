package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/energy-gdp/internal/export"
	"github.com/sells-group/energy-gdp/internal/resilience"
)

// writeExports writes the enabled snapshots and returns their paths.
func (p *Pipeline) writeExports(ctx context.Context, res *Result) ([]string, error) {
	cfg := p.cfg.Export
	tables := export.Tables{
		RunID:              res.Report.RunID,
		StartedAt:          res.Report.StartedAt,
		Joined:             res.Joined,
		EnergyByYear:       res.EnergyByYear,
		GDPByYear:          res.GDPByYear,
		GDPByRegion:        res.GDPByRegion,
		RenewablesByRegion: res.RenewablesByRegion,
		Report:             res.Report,
	}

	var paths []string
	if cfg.XLSX != "" {
		if err := export.WriteXLSX(cfg.XLSX, tables); err != nil {
			return paths, err
		}
		zap.L().Info("export: wrote workbook", zap.String("path", cfg.XLSX))
		paths = append(paths, cfg.XLSX)
	}
	if cfg.SQLite != "" {
		retry := resilience.DefaultRetryConfig()
		retry.MaxAttempts = cfg.SQLiteAttempts
		retry.OnRetry = resilience.RetryLogger(cfg.SQLite, "sqlite export")
		runID, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
			return export.WriteSQLite(ctx, cfg.SQLite, tables, export.SQLiteOptions{
				BusyTimeout: time.Duration(cfg.SQLiteBusyMS) * time.Millisecond,
			})
		})
		if err != nil {
			return paths, err
		}
		zap.L().Info("export: wrote sqlite snapshot", zap.String("path", cfg.SQLite), zap.String("run_id", runID))
		paths = append(paths, cfg.SQLite)
	}
	if cfg.Parquet != "" {
		if err := export.WriteParquet(cfg.Parquet, res.Joined); err != nil {
			return paths, err
		}
		zap.L().Info("export: wrote parquet", zap.String("path", cfg.Parquet))
		paths = append(paths, cfg.Parquet)
	}
	return paths, nil
}
