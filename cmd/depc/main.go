package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/raffopazzo/depc-sub002/internal/analyzer"
	"github.com/raffopazzo/depc-sub002/internal/config"
	"github.com/raffopazzo/depc-sub002/internal/diagnostics"
	"github.com/raffopazzo/depc-sub002/internal/lexer"
	"github.com/raffopazzo/depc-sub002/internal/parser"
	"github.com/raffopazzo/depc-sub002/internal/pipeline"
	"github.com/raffopazzo/depc-sub002/internal/prettyprinter"
)

const usageText = `Usage: depc <command> [flags] [files...]

Commands:
  check   typecheck source files
  fmt     print source files in canonical form
  repl    check declarations and infer expressions interactively
  help    show this message
`

func usage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(cmdCheck(os.Args[2:]))
	case "fmt":
		os.Exit(cmdFmt(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "-h", "--help", "help":
		fmt.Print(usageText)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

// commonFlags are shared by every command that typechecks.
type commonFlags struct {
	configPath string
	verbose    bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "path to "+config.SettingsFileName+" (default: search from the working directory)")
	fs.BoolVar(&f.verbose, "v", false, "log typechecking and proof search")
}

func (f *commonFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// settings loads the -config file, or the nearest depc.yaml, or the defaults.
func (f *commonFlags) settings() (config.Settings, error) {
	path := f.configPath
	if path == "" {
		found, err := config.FindSettings(".")
		if err != nil {
			return config.Settings{}, err
		}
		if found == "" {
			return config.DefaultSettings(), nil
		}
		path = found
	}
	return config.LoadSettings(path)
}

// -----------------------------------------------------------------------------
// check
// -----------------------------------------------------------------------------

func cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	var flags commonFlags
	flags.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "check: no input files")
		return 2
	}
	settings, err := flags.settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}
	logger := flags.logger()

	// Files are independent: each one gets its own session.
	files := fs.Args()
	results := make([]*pipeline.PipelineContext, len(files))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			results[i] = checkSource(string(src), path, settings, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 1
	}

	color := useColor(settings.Diagnostics.Color, os.Stderr)
	failed := false
	for _, res := range results {
		if printErrors(os.Stderr, res.Errors, color) {
			failed = true
		}
	}
	if failed {
		return 1
	}
	return 0
}

func checkSource(src, path string, settings config.Settings, logger *slog.Logger) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(src)
	ctx.FilePath = path
	p := pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.SemanticAnalyzerProcessor{Settings: settings, Logger: logger.With("file", path)},
	)
	return p.Run(ctx)
}

// -----------------------------------------------------------------------------
// fmt
// -----------------------------------------------------------------------------

func cmdFmt(args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "fmt: no input files")
		return 2
	}
	color := useColor(config.ColorAuto, os.Stderr)
	status := 0
	for _, path := range fs.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			status = 1
			continue
		}
		out, errs := formatSource(string(src), path)
		if printErrors(os.Stderr, errs, color) {
			status = 1
			continue
		}
		fmt.Print(out)
	}
	return status
}

// formatSource parses src and prints it back in canonical form.
func formatSource(src, path string) (string, []*diagnostics.Error) {
	ctx := pipeline.NewPipelineContext(src)
	ctx.FilePath = path
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if ctx.HasErrors() {
		return "", ctx.Errors
	}
	return prettyprinter.Module(ctx.Module), nil
}

// -----------------------------------------------------------------------------
// diagnostics output
// -----------------------------------------------------------------------------

func useColor(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func gray(s string) string { return "\x1b[90m" + s + "\x1b[0m" }

// printErrors writes errs with their reasons indented below the headline,
// and reports whether there were any.
func printErrors(w io.Writer, errs []*diagnostics.Error, color bool) bool {
	for _, e := range errs {
		if !color {
			fmt.Fprintln(w, e.Error())
			continue
		}
		lines := strings.Split(e.Error(), "\n")
		fmt.Fprintln(w, red(lines[0]))
		for _, l := range lines[1:] {
			fmt.Fprintln(w, gray(l))
		}
	}
	return len(errs) > 0
}
