package config

// Presets are starting configurations per model variant, keyed by
// variant then preset name.
var Presets = map[string]map[string]*Config{
	"saturation": {
		// Slow film build-up: gentle switch, scan the whole pre-plateau span.
		"slow-film": {
			Model: "saturation",
			OnsetScan: ScanConfig{
				Enabled:       true,
				MaxCandidates: DefaultMaxCandidates,
			},
			Saturation: AuxConfig{SwitchScale: 1.0, SwitchRate: 0.1},
			Optimizer:  OptimizerConfig{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance},
		},
		// Sharp adsorption step: steep switch, short scan.
		"step": {
			Model: "saturation",
			OnsetScan: ScanConfig{
				Enabled:       true,
				MaxCandidates: 50,
			},
			Saturation: AuxConfig{SwitchScale: 1.0, SwitchRate: 2.0},
			Optimizer:  OptimizerConfig{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance},
		},
	},
	"langmuir": {
		"association": {
			Model:     "langmuir",
			OnsetScan: ScanConfig{Enabled: false},
			Optimizer: OptimizerConfig{MaxIterations: DefaultMaxIterations, Tolerance: DefaultTolerance},
		},
	},
	"biexp": {
		"two-site": {
			Model:     "biexp",
			OnsetScan: ScanConfig{Enabled: false},
			Optimizer: OptimizerConfig{MaxIterations: 10000, Tolerance: DefaultTolerance},
		},
	},
}

// GetPreset returns the named preset for a model, or nil.
func GetPreset(model, name string) *Config {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	return presets[name]
}

// ListPresets returns the preset names for a model, or nil.
func ListPresets(model string) []string {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
