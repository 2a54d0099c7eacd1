// Package scenario drives reproducible instrumentation workloads from a
// configuration file: it parses and validates the scenario config, runs
// the workloads against the recording engine, and evaluates pass/fail
// checks over the resulting JSON report.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of a scenario file.
type Config struct {
	// Name of the run (for the console header).
	Name string `json:"name" yaml:"name"`

	// Pin locks each worker goroutine to an OS thread for counter
	// stability.
	Pin bool `json:"pin,omitempty" yaml:"pin,omitempty"`

	// Scenarios are executed sequentially; each scenario's workers
	// run concurrently.
	Scenarios []ScenarioConfig `json:"scenarios" yaml:"scenarios"`

	// Report controls the rendered output.
	Report ReportConfig `json:"report,omitempty" yaml:"report,omitempty"`

	// Checks are evaluated against the JSON report after the run.
	Checks []Check `json:"checks,omitempty" yaml:"checks,omitempty"`
}

// ScenarioConfig describes one workload.
type ScenarioConfig struct {
	// Name doubles as the component name in the report.
	Name string `json:"name" yaml:"name"`

	// Workload is one of "spin", "sleep" or "chase".
	Workload string `json:"workload" yaml:"workload"`

	// Mode selects the timestamp source: "fast", "mid" or "hard".
	// Defaults to fast.
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Iterations per worker. Defaults to 1000.
	Iterations int `json:"iterations,omitempty" yaml:"iterations,omitempty"`

	// Workers is the number of concurrent goroutines. Defaults to 1.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`

	// Pulse additionally records inter-iteration deltas with Pulse
	// under the same component. The scoped Start/Stop durations are
	// still recorded, so the component's samples mix both kinds.
	Pulse bool `json:"pulse,omitempty" yaml:"pulse,omitempty"`

	// SpinKernel is the inner loop length of the spin workload.
	// Defaults to 32.
	SpinKernel int `json:"spinKernel,omitempty" yaml:"spinKernel,omitempty"`

	// Sleep is the per-iteration sleep of the sleep workload, as a Go
	// duration string. Defaults to "10us".
	Sleep string `json:"sleep,omitempty" yaml:"sleep,omitempty"`

	// ChaseNodes is the linked-list length of the chase workload.
	// Defaults to 4096.
	ChaseNodes int `json:"chaseNodes,omitempty" yaml:"chaseNodes,omitempty"`
}

// ReportConfig controls the output rendered after the run.
type ReportConfig struct {
	// Unit is "cycles" or "time". Defaults to time.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Data is "raw" or "calibrated". Defaults to calibrated.
	Data string `json:"data,omitempty" yaml:"data,omitempty"`

	// Percentiles appends the HDR percentile summary.
	Percentiles bool `json:"percentiles,omitempty" yaml:"percentiles,omitempty"`
}

// Check is one assertion over the JSON report, addressed with a gjson
// path (e.g. `components.#(name=="spin").samples`).
type Check struct {
	Path  string  `json:"path" yaml:"path"`
	Op    string  `json:"op" yaml:"op"`
	Value float64 `json:"value" yaml:"value"`
}

// Load reads, validates and parses a scenario file. Format follows the
// extension: .json is JSON, everything else is treated as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse validates data against the embedded schema and unmarshals it.
func Parse(data []byte, ext string) (*Config, error) {
	jsonData := data
	if strings.ToLower(ext) != ".json" {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML scenario: %w", err)
		}
		jsonData, _ = json.Marshal(doc)
	}

	if err := validateSchema(jsonData); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Report.Unit == "" {
		c.Report.Unit = "time"
	}
	if c.Report.Data == "" {
		c.Report.Data = "calibrated"
	}
	for i := range c.Scenarios {
		sc := &c.Scenarios[i]
		if sc.Mode == "" {
			sc.Mode = "fast"
		}
		if sc.Iterations == 0 {
			sc.Iterations = 1000
		}
		if sc.Workers == 0 {
			sc.Workers = 1
		}
		if sc.SpinKernel == 0 {
			sc.SpinKernel = 32
		}
		if sc.Sleep == "" {
			sc.Sleep = "10us"
		}
		if sc.ChaseNodes == 0 {
			sc.ChaseNodes = 4096
		}
	}
}

// validate covers the constraints the structural schema cannot express.
func (c *Config) validate() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("scenario config needs at least one scenario")
	}
	seen := make(map[string]bool)
	for _, sc := range c.Scenarios {
		if seen[sc.Name] {
			return fmt.Errorf("duplicate scenario name %q", sc.Name)
		}
		seen[sc.Name] = true
		if _, err := time.ParseDuration(sc.Sleep); err != nil {
			return fmt.Errorf("scenario %q: bad sleep duration %q: %w", sc.Name, sc.Sleep, err)
		}
	}
	for _, ch := range c.Checks {
		switch ch.Op {
		case "eq", "ne", "gt", "ge", "lt", "le":
		default:
			return fmt.Errorf("check %q: unknown op %q", ch.Path, ch.Op)
		}
	}
	return nil
}
