package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultValueColumn   = 1
	DefaultMaxIterations = 5000
	DefaultTolerance     = 1e-12
	DefaultMaxCandidates = 200
)

type Config struct {
	DataFile  string `yaml:"data_file"`
	ParamFile string `yaml:"param_file"`
	Model     string `yaml:"model"`
	// ValueColumn selects the overtone column in the data file;
	// column 0 is always time.
	ValueColumn int             `yaml:"value_column"`
	FitWindow   WindowConfig    `yaml:"fit_window"`
	PlotWindow  WindowConfig    `yaml:"plot_window"`
	OnsetScan   ScanConfig      `yaml:"onset_scan"`
	Optimizer   OptimizerConfig `yaml:"optimizer"`
	Saturation  AuxConfig       `yaml:"saturation"`
	Output      OutputConfig    `yaml:"output"`
	DataDir     string          `yaml:"data_dir"`
}

// WindowConfig bounds a time window. Zero values mean "whole series".
type WindowConfig struct {
	Left  float64 `yaml:"left"`
	Right float64 `yaml:"right"`
}

// Unset reports whether the window was left at its zero value.
func (w WindowConfig) Unset() bool { return w.Left == 0 && w.Right == 0 }

// ScanConfig controls the onset-time sweep for models that have one.
type ScanConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Min           float64 `yaml:"min"`
	Max           float64 `yaml:"max"`
	MaxCandidates int     `yaml:"max_candidates"`
}

type OptimizerConfig struct {
	MaxIterations int     `yaml:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"`
}

// AuxConfig carries the saturation model's experiment constants.
type AuxConfig struct {
	Onset       float64 `yaml:"onset"`
	Baseline    float64 `yaml:"baseline"`
	SwitchScale float64 `yaml:"switch_scale"`
	SwitchRate  float64 `yaml:"switch_rate"`
}

type OutputConfig struct {
	ParamsFile string `yaml:"params_file"`
	TraceFile  string `yaml:"trace_file"`
	PlotFile   string `yaml:"plot_file"`
	SVGFile    string `yaml:"svg_file"`
}

func DefaultConfig() *Config {
	return &Config{
		DataFile:    "data.csv",
		ParamFile:   "parameters.csv",
		Model:       "saturation",
		ValueColumn: DefaultValueColumn,
		OnsetScan: ScanConfig{
			Enabled:       true,
			MaxCandidates: DefaultMaxCandidates,
		},
		Optimizer: OptimizerConfig{
			MaxIterations: DefaultMaxIterations,
			Tolerance:     DefaultTolerance,
		},
		Saturation: AuxConfig{
			SwitchScale: 1.0,
			SwitchRate:  1.0,
		},
		Output: OutputConfig{
			ParamsFile: "fitted_parameters.csv",
			TraceFile:  "loss_trace.csv",
			PlotFile:   "fit.png",
			SVGFile:    "",
		},
		DataDir: ".kinfit",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the cross-field constraints a fit run relies on.
func (c *Config) Validate() error {
	if c.DataFile == "" || c.ParamFile == "" {
		return fmt.Errorf("data_file and param_file are required")
	}
	if c.ValueColumn < 1 {
		return fmt.Errorf("value_column must be >= 1, got %d", c.ValueColumn)
	}
	if c.Optimizer.MaxIterations < 1 {
		return fmt.Errorf("optimizer.max_iterations must be >= 1, got %d", c.Optimizer.MaxIterations)
	}
	if !c.FitWindow.Unset() && c.FitWindow.Left > c.FitWindow.Right {
		return fmt.Errorf("fit_window: left %g above right %g", c.FitWindow.Left, c.FitWindow.Right)
	}
	if c.OnsetScan.Enabled && c.OnsetScan.Min > c.OnsetScan.Max {
		return fmt.Errorf("onset_scan: min %g above max %g", c.OnsetScan.Min, c.OnsetScan.Max)
	}
	return nil
}
