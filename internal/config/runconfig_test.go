package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRunConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.yaml")
	content := `default: smoke
runs:
  smoke:
    id: smoke
    description: "basic arithmetic"
    entry: main
    files: ["main.nm"]
    expected_stdout: "14\n"
  unsafe:
    id: unsafe
    description: "unsafe refcounting"
    entry: main
    files: ["main.nm"]
    unsafe_mode: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write run config: %v", err)
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}
	if len(cfg.Runs) != 2 {
		t.Errorf("len(Runs) = %d, want 2", len(cfg.Runs))
	}

	spec, ok := cfg.Selected("")
	if !ok || spec.ID != "smoke" {
		t.Errorf("Selected(\"\") = %+v, %v, want the smoke default", spec, ok)
	}

	spec, ok = cfg.Selected("unsafe")
	if !ok || !spec.Unsafe {
		t.Errorf("Selected(\"unsafe\") = %+v, %v, want Unsafe=true", spec, ok)
	}

	if _, ok := cfg.Selected("missing"); ok {
		t.Error("Selected(\"missing\") should report not found")
	}
}

func TestLoadRunConfigBadDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runs.yaml")
	content := `default: nope
runs:
  smoke:
    id: smoke
    entry: main
    files: ["main.nm"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write run config: %v", err)
	}

	if _, err := LoadRunConfig(path); err == nil {
		t.Fatal("expected error for default naming an undefined run, got nil")
	}
}
