package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func fitCommand(t *testing.T) *cobra.Command {
	t.Helper()
	// Rebuilding the command tree re-registers the flags, which resets
	// the bound globals to their defaults between tests.
	root := newRootCmd()
	for _, c := range root.Commands() {
		if c.Name() == "fit" {
			return c
		}
	}
	t.Fatal("fit command not registered")
	return nil
}

func writeRunConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	body := "data_file: d.csv\nparam_file: p.csv\ndata_dir: custom-runs\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigDataDirSurvivesWithoutFlag(t *testing.T) {
	fit := fitCommand(t)
	if err := fit.ParseFlags([]string{"--config", writeRunConfig(t)}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(fit)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "custom-runs" {
		t.Errorf("data_dir = %q, want custom-runs", cfg.DataDir)
	}
}

func TestDataFlagOverridesConfigDataDir(t *testing.T) {
	fit := fitCommand(t)
	if err := fit.ParseFlags([]string{"--config", writeRunConfig(t), "--data", "elsewhere"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(fit)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "elsewhere" {
		t.Errorf("data_dir = %q, want elsewhere", cfg.DataDir)
	}
}

func TestFlagOverridesConfigFile(t *testing.T) {
	fit := fitCommand(t)
	if err := fit.ParseFlags([]string{"--config", writeRunConfig(t), "--max-iter", "42"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(fit)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Optimizer.MaxIterations != 42 {
		t.Errorf("max iterations = %d, want 42", cfg.Optimizer.MaxIterations)
	}
	if cfg.DataFile != "d.csv" {
		t.Errorf("data file = %q, want d.csv", cfg.DataFile)
	}
}
