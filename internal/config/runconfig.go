package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RunSpec is one named build-and-run scenario in a driver run config,
// grounded on eval_harness.BenchmarkSpec shape (an ID,
// a description, an entry point, and an expected result) generalized
// from "benchmark a prompt against an LLM" to "build and run a naml
// program, optionally checking its stdout".
type RunSpec struct {
	ID             string   `yaml:"id"`
	Description    string   `yaml:"description"`
	Entry          string   `yaml:"entry"`
	Files          []string `yaml:"files"`
	Unsafe         bool     `yaml:"unsafe_mode"`
	ExpectedStdout string   `yaml:"expected_stdout"`
}

// RunConfig is a named collection of RunSpecs plus which one runs by
// default, the way eval_harness.ModelsConfig names a
// default model alongside its full catalog.
type RunConfig struct {
	Runs    map[string]RunSpec `yaml:"runs"`
	Default string             `yaml:"default"`
}

// LoadRunConfig loads a driver run config from a YAML file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config %s: %w", path, err)
	}
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse run config %s: %w", path, err)
	}
	if len(cfg.Runs) == 0 {
		return nil, fmt.Errorf("run config %s: missing required field runs", path)
	}
	if cfg.Default != "" {
		if _, ok := cfg.Runs[cfg.Default]; !ok {
			return nil, fmt.Errorf("run config %s: default %q is not a defined run", path, cfg.Default)
		}
	}
	return &cfg, nil
}

// Selected resolves a run name, falling back to the config's default
// when name is empty.
func (c *RunConfig) Selected(name string) (RunSpec, bool) {
	if name == "" {
		name = c.Default
	}
	spec, ok := c.Runs[name]
	return spec, ok
}
