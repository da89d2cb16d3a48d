// Package repl implements an interactive read-eval-print loop for naml,
// grounded on internal/repl/repl.go (liner-backed line
// editing, color-coded output, a persistent history file, `:`-prefixed
// commands) adapted to this pipeline's "recompile the accumulated
// session" evaluation model: naml's compile(files, options) contract
// has no notion of evaluating one expression against a
// live environment, so each accepted statement is appended to a
// growing `main` body and the whole session is recompiled and rerun,
// printing only the output the newest statement added.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/naml-lang/namlc/internal/driver"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// Config holds REPL configuration.
type Config struct {
	Unsafe   bool
	DumpAST  bool
	DumpType bool
}

// REPL is a read-eval-print loop session over the namlc driver.
type REPL struct {
	config    *Config
	history   []string
	stmts     []string // accumulated statement source, one main() body
	outputLen int      // bytes of stdout already shown to the user
	version   string
	buildTime string
}

// New creates a REPL with default configuration.
func New() *REPL {
	return NewWithVersion("", "")
}

// NewWithVersion creates a REPL tagging its banner with version info.
func NewWithVersion(version, buildTime string) *REPL {
	if version == "" {
		version = "dev"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return &REPL{
		config:    &Config{},
		history:   []string{},
		version:   version,
		buildTime: buildTime,
	}
}

// EnableUnsafe turns on unsafe (non-atomic) refcounting for subsequent
// evaluations.
func (r *REPL) EnableUnsafe() {
	r.config.Unsafe = true
}

func (r *REPL) getPrompt() string {
	if r.config.Unsafe {
		return "naml[unsafe]> "
	}
	return "naml> "
}

// Start runs the REPL loop against in/out until EOF or :quit.
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".naml_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("naml"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":reset", ":history", ":dump-ast", ":dump-typed", ":unsafe"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		prompt := r.getPrompt()
		input, err := line.Prompt(prompt)
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		needsContinuation := !strings.HasSuffix(input, ";") && !strings.HasSuffix(input, "}") && !strings.HasPrefix(input, ":")
		if needsContinuation {
			var lines []string
			lines = append(lines, input)
			for needsContinuation {
				cont, err := line.Prompt("... ")
				if err == io.EOF {
					fmt.Fprintln(out, red("\nIncomplete statement"))
					break
				}
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
					break
				}
				lines = append(lines, cont)
				trimmed := strings.TrimSpace(cont)
				needsContinuation = trimmed != "" && !strings.HasSuffix(trimmed, ";") && !strings.HasSuffix(trimmed, "}")
			}
			input = strings.Join(lines, "\n")
		}

		line.AppendHistory(input)

		if strings.HasPrefix(input, ":") {
			if strings.HasPrefix(input, ":quit") || strings.HasPrefix(input, ":q") || strings.HasPrefix(input, ":exit") {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.handleCommand(input, out)
			continue
		}

		r.evalStatement(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// handleCommand dispatches a `:`-prefixed REPL command.
func (r *REPL) handleCommand(input string, out io.Writer) {
	switch {
	case strings.HasPrefix(input, ":help"):
		fmt.Fprintln(out, cyan("Commands:"))
		fmt.Fprintln(out, "  :help         show this message")
		fmt.Fprintln(out, "  :quit         exit the REPL")
		fmt.Fprintln(out, "  :reset        clear the accumulated session")
		fmt.Fprintln(out, "  :history      show statement history")
		fmt.Fprintln(out, "  :dump-ast     print the parsed AST after each statement")
		fmt.Fprintln(out, "  :dump-typed   print the typed-AST table after each statement")
		fmt.Fprintln(out, "  :unsafe       toggle non-atomic refcounting")
	case strings.HasPrefix(input, ":reset"):
		r.stmts = nil
		r.outputLen = 0
		fmt.Fprintln(out, yellow("session reset"))
	case strings.HasPrefix(input, ":history"):
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
	case strings.HasPrefix(input, ":dump-ast"):
		r.config.DumpAST = !r.config.DumpAST
		fmt.Fprintf(out, "dump-ast: %v\n", r.config.DumpAST)
	case strings.HasPrefix(input, ":dump-typed"):
		r.config.DumpType = !r.config.DumpType
		fmt.Fprintf(out, "dump-typed: %v\n", r.config.DumpType)
	case strings.HasPrefix(input, ":unsafe"):
		r.config.Unsafe = !r.config.Unsafe
		fmt.Fprintf(out, "unsafe_mode: %v\n", r.config.Unsafe)
	default:
		fmt.Fprintf(out, "%s: unknown command %s\n", red("Error"), input)
	}
}

// evalStatement appends input to the session body, recompiles the
// whole session, and prints only the newest output. A statement that
// fails to compile or run is rolled back rather than left in the
// session, so a typo doesn't permanently break every later evaluation.
func (r *REPL) evalStatement(input string, out io.Writer) {
	r.history = append(r.history, input)
	candidate := append(append([]string{}, r.stmts...), input)
	src := "fn main() {\n" + strings.Join(candidate, "\n") + "\n}\n"

	var buf strings.Builder
	res, err := driver.Run([]driver.Source{{Path: "<repl>", Text: src}}, driver.Options{Unsafe: r.config.Unsafe, Stdout: &buf})
	if res != nil && res.Diags.HasErrors() {
		for _, d := range res.Diags.Items() {
			fmt.Fprintf(out, "%s: %s\n", red("error"), res.Diags.Format(d))
		}
		return
	}
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("runtime error"), err)
		return
	}

	r.stmts = candidate
	full := buf.String()
	if len(full) > r.outputLen {
		fmt.Fprint(out, full[r.outputLen:])
	}
	r.outputLen = len(full)

	if r.config.DumpAST && res.AST != nil {
		fmt.Fprintf(out, "%s %+v\n", dim("ast:"), res.AST)
	}
	if r.config.DumpType && res.Annot != nil {
		fmt.Fprintf(out, "%s %+v\n", dim("typed:"), res.Annot)
	}
}
