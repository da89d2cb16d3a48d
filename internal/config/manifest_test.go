package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "naml.toml")
	content := `[package]
name = "hello"
entry = "main"

[build]
files = ["main.nm"]
release = true
unsafe_mode = true
`
	if err := os.WriteFile(manifestPath, []byte(content), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "main.nm"), []byte(`fn main() { print(1); }`), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	m, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Package.Name != "hello" {
		t.Errorf("Package.Name = %q, want hello", m.Package.Name)
	}
	if !m.Build.Release || !m.Build.Unsafe {
		t.Errorf("Build flags not decoded: %+v", m.Build)
	}

	opts := m.Options()
	if !opts.Release || !opts.Unsafe {
		t.Errorf("Options() = %+v, want Release/Unsafe set", opts)
	}

	sources, err := m.Sources(manifestPath)
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(sources) != 1 || sources[0].Text != `fn main() { print(1); }` {
		t.Errorf("Sources() = %+v", sources)
	}
}

func TestLoadManifestMissingRequired(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "naml.toml")
	if err := os.WriteFile(manifestPath, []byte(`[package]
name = "hello"
`), 0644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	if _, err := LoadManifest(manifestPath); err == nil {
		t.Fatal("expected error for missing build.files, got nil")
	}
}
