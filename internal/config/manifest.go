// Package config loads the two configuration surfaces a namlc build
// needs outside the driver's compile(files, options) contract: a
// project's naml.toml build manifest, and YAML run configs for
// scripted multi-scenario builds. Both follow the same decode-into-
// struct shape, with required-field validation after decoding; no
// default values are filled in for missing fields.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/naml-lang/namlc/internal/driver"
)

// Manifest is the decoded form of a project's naml.toml: what files make
// up the build unit, which function is the entry point, and which
// compile(files, options) flags to pass.
type Manifest struct {
	Package PackageSection `toml:"package"`
	Build   BuildSection   `toml:"build"`
}

// PackageSection names the build unit.
type PackageSection struct {
	Name  string `toml:"name"`
	Entry string `toml:"entry"`
}

// BuildSection lists the source files and compile options, mirroring
// driver.Options' field set so a manifest can set every knob the
// driver's core contract accepts.
type BuildSection struct {
	Files      []string `toml:"files"`
	Release    bool     `toml:"release"`
	Unsafe     bool     `toml:"unsafe_mode"`
	AOT        bool     `toml:"aot"`
	TargetName string   `toml:"target_name"`
}

// LoadManifest reads and decodes a naml.toml file.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("manifest %s: missing required field package.name", path)
	}
	if len(m.Build.Files) == 0 {
		return nil, fmt.Errorf("manifest %s: missing required field build.files", path)
	}
	return &m, nil
}

// Options converts the manifest's build section into driver.Options.
func (m *Manifest) Options() driver.Options {
	return driver.Options{
		Release:    m.Build.Release,
		Unsafe:     m.Build.Unsafe,
		AOT:        m.Build.AOT,
		TargetName: m.Build.TargetName,
	}
}

// Sources reads every file the manifest lists, resolving relative paths
// against the manifest's own directory.
func (m *Manifest) Sources(manifestPath string) ([]driver.Source, error) {
	base := filepath.Dir(manifestPath)
	sources := make([]driver.Source, 0, len(m.Build.Files))
	for _, f := range m.Build.Files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, f)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read source %s: %w", path, err)
		}
		sources = append(sources, driver.Source{Path: path, Text: string(data)})
	}
	return sources, nil
}
