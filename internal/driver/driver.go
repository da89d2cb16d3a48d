// Package driver implements the unified compilation pipeline: compile(files,
// options) -> Result. It wires source → lexer → parser → type checker →
// typed-AST annotation → codegen Module behind an Options struct,
// a Source/Result pair, and phase timings recorded for driver-level
// diagnostics.
package driver

import (
	"context"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naml-lang/namlc/internal/ast"
	"github.com/naml-lang/namlc/internal/builtins"
	"github.com/naml-lang/namlc/internal/codegen"
	"github.com/naml-lang/namlc/internal/diag"
	"github.com/naml-lang/namlc/internal/heap"
	"github.com/naml-lang/namlc/internal/intern"
	"github.com/naml-lang/namlc/internal/lexer"
	"github.com/naml-lang/namlc/internal/parser"
	"github.com/naml-lang/namlc/internal/source"
	"github.com/naml-lang/namlc/internal/typedast"
	"github.com/naml-lang/namlc/internal/types"
)

// Options holds the Release/Unsafe/AOT toggles plus an output name for
// object-file targets. The machine-code
// backend this pack implements as a tree-walking interpreter (see
// internal/codegen's package docs) has no separate optimization pass or
// object-file writer, so Release and AOT/TargetName are accepted but
// not read by Compile or Run; Unsafe selects the heap package's non-atomic
// refcount fast path.
type Options struct {
	Release    bool
	Unsafe     bool
	AOT        bool
	TargetName string

	// Stdout receives the program's print() output. Defaults to os.Stdout.
	Stdout io.Writer
}

// stringWriter adapts any io.Writer to the WriteString-shaped interface
// codegen.Module.Stdout expects (codegen/module.go's print builtin calls
// WriteString directly rather than taking an io.Writer, matching the
// bufio.Writer-flavored output convention used elsewhere in this codebase).
type stringWriter struct{ w io.Writer }

func (s stringWriter) WriteString(str string) (int, error) { return io.WriteString(s.w, str) }

// Source is one named unit of program text.
type Source struct {
	Path string
	Text string
}

// Result is what compile() produces: either a ready-to-run Module or a
// diagnostic list with at least one error.
type Result struct {
	Files *source.Map
	Diags *diag.List

	AST     *ast.File
	Checked *types.Result
	Annot   *typedast.Table
	Module  *codegen.Module

	PhaseTimings map[string]time.Duration
}

// Ok reports whether compilation produced a runnable Module.
func (r *Result) Ok() bool { return r.Module != nil && !r.Diags.HasErrors() }

// Compile runs the full pipeline over files, producing one concatenated
// AST.File. The driver resolves nothing beyond source order: package
// resolution is out of scope, so files are accepted as a flat, already-
// ordered list with stable file-ids assigned up front.
//
// Lexing and parsing are independent per file (each gets its own arena and
// token stream), so that phase fans out one goroutine per file via
// errgroup and joins before merging, instead of lexing and parsing files
// one at a time. Diagnostics and the shared Interner are safe for
// concurrent use from that fan-out; the merge step itself walks files back
// in their original order so output is deterministic regardless of
// goroutine scheduling.
func Compile(files []Source, opts Options) *Result {
	fileMap := source.NewMap()
	diags := diag.NewList(fileMap)
	res := &Result{Files: fileMap, Diags: diags, PhaseTimings: make(map[string]time.Duration)}

	in := intern.New()
	merged := &ast.File{}

	t0 := time.Now()

	ids := make([]source.FileID, len(files))
	normalized := make([][]byte, len(files))
	for i, f := range files {
		normalized[i] = lexer.Normalize([]byte(f.Text))
		ids[i] = fileMap.Add(f.Path, string(normalized[i]))
	}

	parsed := make([]*ast.File, len(files))
	g, _ := errgroup.WithContext(context.Background())
	for i := range files {
		i := i
		g.Go(func() error {
			arena := ast.NewArena(ids[i], in)
			toks := lexer.New(ids[i], string(normalized[i]), in).Lex()
			for _, tok := range toks {
				if tok.Kind == lexer.ILLEGAL {
					diags.Errorf(diag.KindInvalidByte, tok.Span, "invalid token in %s", files[i].Path)
				}
			}
			parsed[i] = parser.Parse(toks, arena, diags, ids[i])
			return nil
		})
	}
	g.Wait()

	for _, pf := range parsed {
		if pf == nil {
			continue
		}
		if merged.ModuleDecl == nil {
			merged.ModuleDecl = pf.ModuleDecl
		}
		merged.Uses = append(merged.Uses, pf.Uses...)
		merged.Items = append(merged.Items, pf.Items...)
	}
	res.AST = merged
	res.PhaseTimings["parse"] = time.Since(t0)

	if diags.HasErrors() {
		return res
	}

	t1 := time.Now()
	checker := types.NewChecker(diags)
	checked := checker.Check(merged)
	res.Checked = checked
	res.PhaseTimings["typecheck"] = time.Since(t1)

	if diags.HasErrors() {
		return res
	}

	t2 := time.Now()
	res.Annot = typedast.Annotate(merged, checked)
	res.PhaseTimings["annotate"] = time.Since(t2)

	t3 := time.Now()
	heap.SetUnsafeMode(opts.Unsafe)
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	reg := builtins.NewRegistry()
	mod := codegen.NewModule(merged, checked, res.Annot, reg, nil, stringWriter{out})
	res.Module = mod
	res.PhaseTimings["codegen"] = time.Since(t3)

	return res
}

// Run compiles files and, if compilation succeeded, runs the resulting
// module's `main` through a generated trampoline that initializes the
// runtime, invokes main, and tears it down. Returns the compile Result
// regardless of outcome so callers can render diagnostics either way.
func Run(files []Source, opts Options) (*Result, error) {
	res := Compile(files, opts)
	if !res.Ok() {
		return res, nil
	}
	exec := codegen.NewExec(res.Module)
	return res, exec.Run()
}
