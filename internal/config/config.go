package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Inputs   InputsConfig   `yaml:"inputs" mapstructure:"inputs"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Columns  ColumnsConfig  `yaml:"columns" mapstructure:"columns"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Chart    ChartConfig    `yaml:"chart" mapstructure:"chart"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// InputsConfig names the three source files.
type InputsConfig struct {
	Energy      string `yaml:"energy" mapstructure:"energy"`
	GDP         string `yaml:"gdp" mapstructure:"gdp"`
	Regions     string `yaml:"regions" mapstructure:"regions"`
	GDPSkipRows int    `yaml:"gdp_skip_rows" mapstructure:"gdp_skip_rows"`
}

// SourcesConfig holds the download locations used by the fetch command. An empty URL
// leaves the matching input untouched.
type SourcesConfig struct {
	EnergyURL   string  `yaml:"energy_url" mapstructure:"energy_url"`
	GDPURL      string  `yaml:"gdp_url" mapstructure:"gdp_url"`
	GDPMember   string  `yaml:"gdp_member" mapstructure:"gdp_member"`
	RegionsURL  string  `yaml:"regions_url" mapstructure:"regions_url"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ColumnsConfig holds the header names looked up in each source file.
type ColumnsConfig struct {
	EnergyCode      string `yaml:"energy_code" mapstructure:"energy_code"`
	EnergyYear      string `yaml:"energy_year" mapstructure:"energy_year"`
	EnergyRenewable string `yaml:"energy_renewable" mapstructure:"energy_renewable"`
	GDPCountryName  string `yaml:"gdp_country_name" mapstructure:"gdp_country_name"`
	GDPCountryCode  string `yaml:"gdp_country_code" mapstructure:"gdp_country_code"`
	RegionCode      string `yaml:"region_code" mapstructure:"region_code"`
	RegionName      string `yaml:"region_name" mapstructure:"region_name"`
}

// PipelineConfig configures cleaning and joining.
type PipelineConfig struct {
	EnergyMinYear int    `yaml:"energy_min_year" mapstructure:"energy_min_year"`
	GDPMinYear    int    `yaml:"gdp_min_year" mapstructure:"gdp_min_year"`
	GDPMaxYear    int    `yaml:"gdp_max_year" mapstructure:"gdp_max_year"`
	WorldSentinel string `yaml:"world_sentinel" mapstructure:"world_sentinel"`
	StrictKeys    bool   `yaml:"strict_keys" mapstructure:"strict_keys"`
}

// ChartConfig configures the rendered images.
type ChartConfig struct {
	OutDir   string  `yaml:"out_dir" mapstructure:"out_dir"`
	WidthIn  float64 `yaml:"width_in" mapstructure:"width_in"`
	HeightIn float64 `yaml:"height_in" mapstructure:"height_in"`
}

// ExportConfig enables optional table exports. Empty paths disable an export.
type ExportConfig struct {
	XLSX    string `yaml:"xlsx" mapstructure:"xlsx"`
	SQLite  string `yaml:"sqlite" mapstructure:"sqlite"`
	Parquet string `yaml:"parquet" mapstructure:"parquet"`

	// SQLiteAttempts bounds writes to a database another process holds locked.
	SQLiteAttempts int `yaml:"sqlite_attempts" mapstructure:"sqlite_attempts"`
	// SQLiteBusyMS is how long one attempt waits on a lock before it fails.
	SQLiteBusyMS int `yaml:"sqlite_busy_ms" mapstructure:"sqlite_busy_ms"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ENERGYGDP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("inputs.energy", "Primary-energy-consumption-from-fossilfuels-nuclear-renewables.csv")
	v.SetDefault("inputs.gdp", "API_NY.GDP.MKTP.CD_DS2_en_csv_v2_3263806.csv")
	v.SetDefault("inputs.regions", "regions.csv")
	v.SetDefault("inputs.gdp_skip_rows", 4)
	v.SetDefault("sources.energy_url", "")
	v.SetDefault("sources.gdp_url", "https://api.worldbank.org/v2/en/indicator/NY.GDP.MKTP.CD?downloadformat=csv")
	v.SetDefault("sources.gdp_member", "API_NY.GDP.MKTP.CD_DS2_*.csv")
	v.SetDefault("sources.regions_url", "")
	v.SetDefault("sources.user_agent", "energy-gdp/1.0")
	v.SetDefault("sources.timeout_secs", 120)
	v.SetDefault("sources.max_retries", 3)
	v.SetDefault("sources.rate_per_sec", 2.0)
	v.SetDefault("columns.energy_code", "Code")
	v.SetDefault("columns.energy_year", "Year")
	v.SetDefault("columns.energy_renewable", "Renewables (% sub energy)")
	v.SetDefault("columns.gdp_country_name", "Country Name")
	v.SetDefault("columns.gdp_country_code", "Country Code")
	v.SetDefault("columns.region_code", "Country Code")
	v.SetDefault("columns.region_name", "Region")
	v.SetDefault("pipeline.energy_min_year", 1970)
	v.SetDefault("pipeline.gdp_min_year", 1970)
	v.SetDefault("pipeline.gdp_max_year", 2019)
	v.SetDefault("pipeline.world_sentinel", "OWID_WRL")
	v.SetDefault("pipeline.strict_keys", false)
	v.SetDefault("chart.out_dir", ".")
	v.SetDefault("chart.width_in", 6.4)
	v.SetDefault("chart.height_in", 4.8)
	v.SetDefault("export.xlsx", "")
	v.SetDefault("export.sqlite", "")
	v.SetDefault("export.parquet", "")
	v.SetDefault("export.sqlite_attempts", 3)
	v.SetDefault("export.sqlite_busy_ms", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the year bounds and required input paths.
func (c *Config) Validate() error {
	if c.Inputs.Energy == "" || c.Inputs.GDP == "" || c.Inputs.Regions == "" {
		return eris.New("config: inputs.energy, inputs.gdp and inputs.regions are required")
	}
	if c.Inputs.GDPSkipRows < 0 {
		return eris.Errorf("config: inputs.gdp_skip_rows must be >= 0, got %d", c.Inputs.GDPSkipRows)
	}
	if c.Pipeline.GDPMinYear > c.Pipeline.GDPMaxYear {
		return eris.Errorf("config: pipeline.gdp_min_year %d is after gdp_max_year %d",
			c.Pipeline.GDPMinYear, c.Pipeline.GDPMaxYear)
	}
	if c.Sources.TimeoutSecs < 0 || c.Sources.MaxRetries < 0 || c.Sources.RatePerSec < 0 {
		return eris.New("config: sources.timeout_secs, max_retries and rate_per_sec must be >= 0")
	}
	if c.Chart.WidthIn <= 0 || c.Chart.HeightIn <= 0 {
		return eris.New("config: chart.width_in and chart.height_in must be positive")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
