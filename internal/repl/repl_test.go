package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestREPLAccumulatesStatementsAcrossTurns exercises the session model:
// each accepted statement joins a growing main() body, and only the
// output the newest statement produced is printed.
func TestREPLAccumulatesStatementsAcrossTurns(t *testing.T) {
	r := New()
	var out strings.Builder

	r.evalStatement(`print(1);`, &out)
	require.Equal(t, "1\n", out.String())

	r.evalStatement(`print(2);`, &out)
	require.Equal(t, "1\n2\n", out.String())
}

func TestREPLRollsBackFailingStatement(t *testing.T) {
	r := New()
	var out strings.Builder

	r.evalStatement(`var x = 1; print(x);`, &out)
	require.Equal(t, "1\n", out.String())

	r.evalStatement(`print(y);`, &out) // y is undefined
	require.NotContains(t, r.stmts, `print(y);`)
	require.Contains(t, out.String(), "1\n") // prior output unaffected

	// A subsequent good statement still works, proving the failing one
	// never stuck around in the accumulated session.
	r.evalStatement(`print(x + 1);`, &out)
	require.Contains(t, out.String(), "2\n")
}

func TestREPLCommandsResetAndHistory(t *testing.T) {
	r := New()
	var out strings.Builder

	r.evalStatement(`print(1);`, &out)
	r.handleCommand(":history", &out)
	require.Contains(t, out.String(), "print(1);")

	r.handleCommand(":reset", &out)
	require.Empty(t, r.stmts)
	require.Equal(t, 0, r.outputLen)
}

func TestREPLUnsafeToggle(t *testing.T) {
	r := New()
	var out strings.Builder
	require.False(t, r.config.Unsafe)
	r.handleCommand(":unsafe", &out)
	require.True(t, r.config.Unsafe)
}
