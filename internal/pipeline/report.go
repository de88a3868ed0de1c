package pipeline

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/energy-gdp/internal/model"
)

// Counts are the row counts after each stage.
type Counts struct {
	EnergyRaw       int `json:"energy_raw" yaml:"energy_raw"`
	EnergyClean     int `json:"energy_clean" yaml:"energy_clean"`
	GDPCountries    int `json:"gdp_countries" yaml:"gdp_countries"`
	GDPReshaped     int `json:"gdp_reshaped" yaml:"gdp_reshaped"`
	GDPClean        int `json:"gdp_clean" yaml:"gdp_clean"`
	Regions         int `json:"regions" yaml:"regions"`
	JoinedEnergyGDP int `json:"joined_energy_gdp" yaml:"joined_energy_gdp"`
	Joined          int `json:"joined" yaml:"joined"`
	Years           int `json:"years" yaml:"years"`
}

// Report summarizes a run for logs, the check command and the SQLite export.
type Report struct {
	RunID                string              `json:"run_id" yaml:"run_id"`
	StartedAt            time.Time           `json:"started_at" yaml:"started_at"`
	Counts               Counts              `json:"counts" yaml:"counts"`
	FilledGDPNulls       int                 `json:"filled_gdp_nulls" yaml:"filled_gdp_nulls"`
	DuplicateEnergyKeys  []string            `json:"duplicate_energy_keys,omitempty" yaml:"duplicate_energy_keys,omitempty"`
	DuplicateGDPKeys     []string            `json:"duplicate_gdp_keys,omitempty" yaml:"duplicate_gdp_keys,omitempty"`
	DuplicateRegionCodes []string            `json:"duplicate_region_codes,omitempty" yaml:"duplicate_region_codes,omitempty"`
	RegionlessCountries  []string            `json:"regionless_countries,omitempty" yaml:"regionless_countries,omitempty"`
	RegionNames          []string            `json:"region_names,omitempty" yaml:"region_names,omitempty"`
	Phases               []model.PhaseResult `json:"phases" yaml:"phases"`
}

// HasDuplicates reports whether any input carried a repeated join key.
func (r Report) HasDuplicates() bool {
	return len(r.DuplicateEnergyKeys) > 0 || len(r.DuplicateGDPKeys) > 0 || len(r.DuplicateRegionCodes) > 0
}

// WriteYAML encodes the report to w.
func (r Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	return eris.Wrap(enc.Close(), "report: flush yaml")
}
