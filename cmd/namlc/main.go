// Command namlc is the naml compiler/runtime driver CLI: run, check,
// build (naml.toml manifests), and repl verbs over internal/driver's
// compile(files, options) contract. Uses flag-based command dispatch and
// colored output, with a version/help pair, trimmed down to the verbs this
// core actually supports.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/naml-lang/namlc/internal/config"
	"github.com/naml-lang/namlc/internal/driver"
	"github.com/naml-lang/namlc/internal/repl"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "print version information")
		helpFlag    = flag.Bool("help", false, "show help")
		releaseFlag = flag.Bool("release", false, "compile with release optimizations")
		unsafeFlag  = flag.Bool("unsafe", false, "use non-atomic refcounting")
		aotFlag     = flag.Bool("aot", false, "ahead-of-time compile instead of running immediately")
		targetFlag  = flag.String("target", "", "target name for an AOT build")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	opts := driver.Options{
		Release:    *releaseFlag,
		Unsafe:     *unsafeFlag,
		AOT:        *aotFlag,
		TargetName: *targetFlag,
		Stdout:     os.Stdout,
	}

	switch command := flag.Arg(0); command {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: namlc run <file.nm>")
			os.Exit(1)
		}
		runFiles(flag.Args()[1:], opts)

	case "check":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: namlc check <file.nm>")
			os.Exit(1)
		}
		checkFiles(flag.Args()[1:], opts)

	case "build":
		path := "naml.toml"
		if flag.NArg() >= 2 {
			path = flag.Arg(1)
		}
		buildManifest(path, opts)

	case "repl":
		runREPL(opts.Unsafe)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("namlc %s\n", bold(Version))
	if Commit != "unknown" {
		fmt.Printf("Commit: %s\n", Commit)
	}
	if BuildTime != "unknown" {
		fmt.Printf("Built:  %s\n", BuildTime)
	}
}

func printHelp() {
	fmt.Println(bold("namlc - the naml compiler and runtime"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  namlc <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <files>     Compile and run naml source files\n", cyan("run"))
	fmt.Printf("  %s <files>   Type-check source files without running them\n", cyan("check"))
	fmt.Printf("  %s [naml.toml]  Build a project from its manifest\n", cyan("build"))
	fmt.Printf("  %s              Start the interactive REPL\n", cyan("repl"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version      Print version information")
	fmt.Println("  --help         Show this help message")
	fmt.Println("  --release      Compile with release optimizations")
	fmt.Println("  --unsafe       Use non-atomic refcounting")
	fmt.Println("  --aot          Ahead-of-time compile instead of running immediately")
	fmt.Println("  --target <name>  Target name for an AOT build")
}

func readSources(paths []string) ([]driver.Source, bool) {
	sources := make([]driver.Source, 0, len(paths))
	for _, p := range paths {
		if !strings.HasSuffix(p, ".nm") {
			fmt.Fprintf(os.Stderr, "%s: file %q does not have a .nm extension\n", yellow("Warning"), p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read file %q: %v\n", red("Error"), p, err)
			return nil, false
		}
		sources = append(sources, driver.Source{Path: p, Text: string(data)})
	}
	return sources, true
}

func runFiles(paths []string, opts driver.Options) {
	sources, ok := readSources(paths)
	if !ok {
		os.Exit(1)
	}
	res, err := driver.Run(sources, opts)
	if res != nil && res.Diags.HasErrors() {
		printDiagnostics(res)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Runtime error"), err)
		os.Exit(1)
	}
	if res != nil {
		printTimings(res)
	}
}

func checkFiles(paths []string, opts driver.Options) {
	sources, ok := readSources(paths)
	if !ok {
		os.Exit(1)
	}
	res := driver.Compile(sources, opts)
	if res.Diags.HasErrors() {
		printDiagnostics(res)
		os.Exit(1)
	}
	fmt.Printf("%s No errors found\n", green("check:"))
}

func buildManifest(path string, cliOpts driver.Options) {
	m, err := config.LoadManifest(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	sources, err := m.Sources(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
	opts := m.Options()
	opts.Stdout = os.Stdout
	// CLI flags override the manifest's own settings.
	if cliOpts.Unsafe {
		opts.Unsafe = true
	}
	if cliOpts.Release {
		opts.Release = true
	}

	fmt.Printf("%s Building %s (%s)\n", cyan("→"), m.Package.Name, path)
	res, err := driver.Run(sources, opts)
	if res != nil && res.Diags.HasErrors() {
		printDiagnostics(res)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Runtime error"), err)
		os.Exit(1)
	}
}

func runREPL(unsafe bool) {
	r := repl.NewWithVersion(Version, BuildTime)
	if unsafe {
		r.EnableUnsafe()
	}
	r.Start(os.Stdin, os.Stdout)
}

func printDiagnostics(res *driver.Result) {
	for _, d := range res.Diags.Items() {
		fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), res.Diags.Format(d))
	}
}

func printTimings(res *driver.Result) {
	if os.Getenv("NAMLC_TRACE_TIMINGS") == "" {
		return
	}
	for phase, d := range res.PhaseTimings {
		fmt.Fprintf(os.Stderr, "  %s %s: %s\n", yellow("⏱"), phase, d)
	}
}
