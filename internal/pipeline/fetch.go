package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/energy-gdp/internal/config"
	"github.com/sells-group/energy-gdp/internal/fetcher"
)

// Sources lists the inputs that have a download URL configured, in energy, GDP, regions order.
func Sources(cfg *config.Config) []fetcher.Source {
	var out []fetcher.Source
	if cfg.Sources.EnergyURL != "" {
		out = append(out, fetcher.Source{Name: "energy", URL: cfg.Sources.EnergyURL, Dest: cfg.Inputs.Energy})
	}
	if cfg.Sources.GDPURL != "" {
		out = append(out, fetcher.Source{
			Name:   "gdp",
			URL:    cfg.Sources.GDPURL,
			Member: cfg.Sources.GDPMember,
			Dest:   cfg.Inputs.GDP,
		})
	}
	if cfg.Sources.RegionsURL != "" {
		out = append(out, fetcher.Source{Name: "regions", URL: cfg.Sources.RegionsURL, Dest: cfg.Inputs.Regions})
	}
	return out
}

// Fetch downloads every configured source to its input path concurrently. Results keep the
// order of Sources; a source that failed leaves a zero FetchResult.
func Fetch(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, force bool) ([]fetcher.FetchResult, error) {
	sources := Sources(cfg)
	results := make([]fetcher.FetchResult, len(sources))

	g, gCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res, err := fetcher.FetchSource(gCtx, f, src, force)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	return results, g.Wait()
}

// NewFetcher builds the HTTP fetcher described by the sources configuration.
func NewFetcher(cfg config.SourcesConfig) *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.UserAgent,
		Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
		MaxRetries: cfg.MaxRetries,
		Rate:       rate.Limit(cfg.RatePerSec),
	})
}
