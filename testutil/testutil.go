// Package testutil provides shared helpers for compiling and running naml
// source in tests, grounded on testutil/golden.go
// (structural-diff helpers backed by go-cmp) and internal/parser/testutil.go
// (golden-file comparison gated by an update flag) — generalized here to
// gate on the UPDATE_GOLDENS env var root-level testutil
// package uses, rather than re-adding a package-local -update flag.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/naml-lang/namlc/internal/driver"
)

// UpdateGoldens mirrors root testutil package: set
// UPDATE_GOLDENS=true go test ./... to regenerate golden files instead of
// comparing against them.
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// RunSource compiles and runs a single-file naml program, returning
// whatever it printed to stdout. Fails the test via require if
// compilation produced any error diagnostic.
func RunSource(t *testing.T, src string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	res, err := driver.Run([]driver.Source{{Path: "test.nm", Text: src}}, driver.Options{Stdout: &buf})
	require.NotNil(t, res)
	require.Falsef(t, res.Diags.HasErrors(), "unexpected diagnostics: %v", renderDiags(res))
	return buf.String(), err
}

// CompileOnly runs just the compile() pipeline (no execution), for tests
// that only care about diagnostics or the annotated AST.
func CompileOnly(t *testing.T, src string) *driver.Result {
	t.Helper()
	res := driver.Compile([]driver.Source{{Path: "test.nm", Text: src}}, driver.Options{})
	require.NotNil(t, res)
	return res
}

func renderDiags(res *driver.Result) []string {
	var out []string
	for _, d := range res.Diags.Items() {
		out = append(out, res.Diags.Format(d))
	}
	return out
}

// GoldenPath returns the conventional location for a golden file under
// testdata/<feature>/<name>.golden.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// CompareGolden diffs got against the golden file for (feature, name),
// or writes it when UpdateGoldens is set (an env var shared across every
// package's tests, rather than a per-package -update flag).
func CompareGolden(t *testing.T, feature, name, got string) {
	t.Helper()
	path := GoldenPath(feature, name)

	if UpdateGoldens {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(got), 0o644))
		t.Logf("updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	require.NoErrorf(t, err, "golden file missing: %s (run with UPDATE_GOLDENS=true)", path)
	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s (-want +got):\n%s", name, diff)
	}
}
