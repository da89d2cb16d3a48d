package driver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScenario1ArithmeticAndPrint checks that `var x = 2 + 3 * 4; print(x);` prints "14".
func TestScenario1ArithmeticAndPrint(t *testing.T) {
	var out bytes.Buffer
	_, err := Run([]Source{{Path: "main.nm", Text: `fn main() { var x = 2 + 3 * 4; print(x); }`}}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, "14\n", out.String())
}

// TestScenario2OptionElseShortCircuits checks that an out-of-bounds array index under `else { return; }` takes the else
// branch and prints nothing.
func TestScenario2OptionElseShortCircuits(t *testing.T) {
	var out bytes.Buffer
	_, err := Run([]Source{{Path: "main.nm", Text: `fn main() { var a = [1,2,3]; var x = a[5] else { return; }; print(x); }`}}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, "", out.String())
}

// TestScenario3GenericMonomorphization checks that calling a generic identity function at two different concrete types
// records two distinct monomorphizations and prints both results.
func TestScenario3GenericMonomorphization(t *testing.T) {
	var out bytes.Buffer
	res, err := Run([]Source{{Path: "main.nm", Text: `fn id<T>(x: T) -> T { return x; } fn main() { print(id(7)); print(id("hi")); }`}}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, "7\nhi\n", out.String())
	require.Len(t, res.Checked.Mono.Items, 2)
}

// TestScenario4ThrowCatchRoundTrip checks that a declared exception thrown
// from a function with `throws` is caught at the call site, leaving the
// exception slot clear afterward.
func TestScenario4ThrowCatchRoundTrip(t *testing.T) {
	var out bytes.Buffer
	src := `exception E { reason: string }
fn f() throws E { throw E { reason: "bad" } }
fn main() { var v = f() catch e { print(e.reason); return; }; }`
	_, err := Run([]Source{{Path: "main.nm", Text: src}}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, "bad\n", out.String())
}

// TestScenario5SpawnAndWaitAll checks that 20 spawned tasks each add 1 to a shared atomic_int
// counter and wait_all blocks until every one has run.
func TestScenario5SpawnAndWaitAll(t *testing.T) {
	var out bytes.Buffer
	src := `fn main() {
  var count = atomic_int(0);
  var i = 0;
  while (i < 20) {
    spawn { count.add(1); }
    i = i + 1;
  }
  wait_all();
  print(count.load());
}`
	_, err := Run([]Source{{Path: "main.nm", Text: src}}, Options{Stdout: &out})
	require.NoError(t, err)
	require.Equal(t, "20\n", out.String())
}

func TestUnsafeModeOptionAccepted(t *testing.T) {
	var out bytes.Buffer
	_, err := Run([]Source{{Path: "main.nm", Text: `fn main() { print(1); }`}}, Options{Stdout: &out, Unsafe: true})
	require.NoError(t, err)
	require.Equal(t, "1\n", out.String())
}

func TestCompileReportsDiagnosticsOnError(t *testing.T) {
	res := Compile([]Source{{Path: "main.nm", Text: `fn main() { var x = ; }`}}, Options{})
	require.False(t, res.Ok())
	require.True(t, res.Diags.HasErrors())
}
