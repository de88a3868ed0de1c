package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Primary-energy-consumption-from-fossilfuels-nuclear-renewables.csv", cfg.Inputs.Energy)
	assert.Equal(t, "API_NY.GDP.MKTP.CD_DS2_en_csv_v2_3263806.csv", cfg.Inputs.GDP)
	assert.Equal(t, "regions.csv", cfg.Inputs.Regions)
	assert.Equal(t, 4, cfg.Inputs.GDPSkipRows)
	assert.Equal(t, "Code", cfg.Columns.EnergyCode)
	assert.Equal(t, "Renewables (% sub energy)", cfg.Columns.EnergyRenewable)
	assert.Equal(t, "Country Code", cfg.Columns.GDPCountryCode)
	assert.Equal(t, "Region", cfg.Columns.RegionName)
	assert.Equal(t, 1970, cfg.Pipeline.EnergyMinYear)
	assert.Equal(t, 1970, cfg.Pipeline.GDPMinYear)
	assert.Equal(t, 2019, cfg.Pipeline.GDPMaxYear)
	assert.Equal(t, "OWID_WRL", cfg.Pipeline.WorldSentinel)
	assert.False(t, cfg.Pipeline.StrictKeys)
	assert.Equal(t, ".", cfg.Chart.OutDir)
	assert.InDelta(t, 6.4, cfg.Chart.WidthIn, 0.001)
	assert.InDelta(t, 4.8, cfg.Chart.HeightIn, 0.001)
	assert.Empty(t, cfg.Export.XLSX)
	assert.Empty(t, cfg.Export.SQLite)
	assert.Equal(t, 3, cfg.Export.SQLiteAttempts)
	assert.Equal(t, 5000, cfg.Export.SQLiteBusyMS)
	assert.Empty(t, cfg.Sources.EnergyURL)
	assert.Contains(t, cfg.Sources.GDPURL, "api.worldbank.org")
	assert.Equal(t, "API_NY.GDP.MKTP.CD_DS2_*.csv", cfg.Sources.GDPMember)
	assert.Equal(t, 120, cfg.Sources.TimeoutSecs)
	assert.InDelta(t, 2.0, cfg.Sources.RatePerSec, 0.001)
	assert.Empty(t, cfg.Export.Parquet)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
inputs:
  regions: regions.xlsx
pipeline:
  gdp_max_year: 2015
  strict_keys: true
chart:
  out_dir: charts
export:
  xlsx: tables.xlsx
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "regions.xlsx", cfg.Inputs.Regions)
	assert.Equal(t, 2015, cfg.Pipeline.GDPMaxYear)
	assert.True(t, cfg.Pipeline.StrictKeys)
	assert.Equal(t, "charts", cfg.Chart.OutDir)
	assert.Equal(t, "tables.xlsx", cfg.Export.XLSX)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 1970, cfg.Pipeline.GDPMinYear)
	assert.Equal(t, "Primary-energy-consumption-from-fossilfuels-nuclear-renewables.csv", cfg.Inputs.Energy)
	assert.Equal(t, 4, cfg.Inputs.GDPSkipRows)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
pipeline:
  world_sentinel: WORLD
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ENERGYGDP_LOG_LEVEL", "warn")
	t.Setenv("ENERGYGDP_PIPELINE_WORLD_SENTINEL", "OWID_WRL")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "OWID_WRL", cfg.Pipeline.WorldSentinel)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ENERGYGDP_CHART_OUT_DIR", "/tmp/out")
	t.Setenv("ENERGYGDP_PIPELINE_ENERGY_MIN_YEAR", "1980")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", cfg.Chart.OutDir)
	assert.Equal(t, 1980, cfg.Pipeline.EnergyMinYear)
}

func TestLoadRejectsInvertedYears(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
pipeline:
  gdp_min_year: 2000
  gdp_max_year: 1990
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gdp_min_year")
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("inputs: [unterminated"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Inputs.Energy = "energy.csv"
	cfg.Inputs.GDP = "gdp.csv"
	cfg.Inputs.Regions = "regions.csv"
	cfg.Inputs.GDPSkipRows = 4
	cfg.Pipeline.GDPMinYear = 1970
	cfg.Pipeline.GDPMaxYear = 2019
	cfg.Chart.WidthIn = 6.4
	cfg.Chart.HeightIn = 4.8
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing energy", func(c *Config) { c.Inputs.Energy = "" }, "inputs.energy"},
		{"missing regions", func(c *Config) { c.Inputs.Regions = "" }, "inputs.regions"},
		{"negative skip rows", func(c *Config) { c.Inputs.GDPSkipRows = -1 }, "gdp_skip_rows"},
		{"inverted years", func(c *Config) { c.Pipeline.GDPMinYear = 2020 }, "gdp_min_year"},
		{"single year", func(c *Config) { c.Pipeline.GDPMinYear = 2019 }, ""},
		{"negative retries", func(c *Config) { c.Sources.MaxRetries = -1 }, "max_retries"},
		{"zero width", func(c *Config) { c.Chart.WidthIn = 0 }, "width_in"},
		{"negative height", func(c *Config) { c.Chart.HeightIn = -1 }, "height_in"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
