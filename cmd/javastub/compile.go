package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/compiler"
	"github.com/javastub/javastub/internal/config"
	"github.com/javastub/javastub/internal/diagnostic"
	"github.com/javastub/javastub/internal/index"
	"github.com/javastub/javastub/internal/orchestrator"
	"github.com/javastub/javastub/internal/parser"
	"github.com/javastub/javastub/internal/reporter"
)

// compileFlags holds the parsed flags for the compile subcommand, mirroring
// the teacher's buildFlags-plus-parseBuildArgs shape: a single value struct
// filled in by a linear flag scan, no third-party flag library (the teacher
// hand-rolls its own argument parsing the same way).
type compileFlags struct {
	SourceRoot      string
	ClassBinaryName string
	Method          string
	Descriptor      string
	ConfigPath      string
	WorkDir         string
	ExtraClasspath  []string
	TimeoutSec      int
	IterationBudget int
	Ambiguity       string
	DepMode         string
	Quiet           bool
}

func parseCompileArgs(args []string) compileFlags {
	f := compileFlags{}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}
		switch arg {
		case "--source-root":
			f.SourceRoot = next()
		case "--class":
			f.ClassBinaryName = next()
		case "--method":
			f.Method = next()
		case "--descriptor":
			f.Descriptor = next()
		case "--config":
			f.ConfigPath = next()
		case "--work-dir":
			f.WorkDir = next()
		case "--extra-classpath":
			f.ExtraClasspath = append(f.ExtraClasspath, next())
		case "--timeout":
			f.TimeoutSec, _ = strconv.Atoi(next())
		case "--iteration-budget":
			f.IterationBudget, _ = strconv.Atoi(next())
		case "--ambiguity":
			f.Ambiguity = next()
		case "--dep-mode":
			f.DepMode = next()
		case "--quiet":
			f.Quiet = true
		}
	}
	return f
}

func runCompile(args []string) int {
	flags := parseCompileArgs(args)
	if flags.SourceRoot == "" || flags.ClassBinaryName == "" || flags.Method == "" {
		fmt.Fprintln(os.Stderr, "compile: --source-root, --class, and --method are required")
		return 1
	}

	opts, err := resolveOptions(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		return 1
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		return 1
	}

	diag := diagnostic.NewCollector(opts.Quiet)

	ctx := context.Background()
	idx, err := index.Build(ctx, []string{flags.SourceRoot}, diag)
	if err != nil {
		return printResult(reporter.Result{Status: reporter.StatusInternalError, Notes: err.Error()})
	}

	sliceDir := filepath.Join(opts.WorkDir, "slice")
	slice, err := loadSlice(sliceDir)
	if err != nil {
		return printResult(reporter.Result{Status: reporter.StatusFailedParse, Notes: err.Error()})
	}

	target := orchestrator.Target{
		OwnerFQN:   binaryNameToFQN(flags.ClassBinaryName),
		Name:       flags.Method,
		Descriptor: flags.Descriptor,
	}

	outcome := orchestrator.Execute(ctx, orchestrator.Run{
		Idx:    idx,
		Slice:  slice,
		Opts:   opts,
		Target: target,
		Driver: compiler.NewExecDriver(),
		Diag:   diag,
	})

	if len(diag.Notes()) > 0 && outcome.Result.Notes == "" {
		outcome.Result.Notes = strings.Join(diag.Notes(), "; ")
	}
	// The Output Contract's `notes` field stays a compact one-line summary;
	// FormatAll's multi-line rendering goes to stderr for a human reading the
	// run, not into the JSON a caller parses.
	if !opts.Quiet {
		if full := diag.FormatAll(); full != "" {
			fmt.Fprint(os.Stderr, full)
		}
	}
	return printResult(outcome.Result)
}

func resolveOptions(flags compileFlags) (config.Options, error) {
	opts := config.Default()
	if flags.ConfigPath != "" {
		loaded, err := config.Load(flags.ConfigPath)
		if err != nil {
			return config.Options{}, err
		}
		opts = loaded
	} else if p := config.Discover(flags.SourceRoot); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return config.Options{}, err
		}
		opts = loaded
	}

	if flags.WorkDir != "" {
		abs, err := filepath.Abs(flags.WorkDir)
		if err != nil {
			return config.Options{}, err
		}
		opts.WorkDir = abs
	}
	if len(flags.ExtraClasspath) > 0 {
		opts.ExtraClasspath = flags.ExtraClasspath
	}
	if flags.TimeoutSec > 0 {
		opts.TimeoutSec = flags.TimeoutSec
	}
	if flags.IterationBudget > 0 {
		opts.IterationBudget = flags.IterationBudget
	}
	if flags.Ambiguity != "" {
		opts.AmbiguityPolicy = config.AmbiguityPolicy(flags.Ambiguity)
	}
	if flags.DepMode != "" {
		opts.DepMode = config.DepMode(flags.DepMode)
	}
	if flags.Quiet {
		opts.Quiet = true
	}
	return opts, nil
}

// loadSlice parses every .java file directly under sliceDir (the slicer's
// output, an out-of-scope external collaborator per spec.md §1) into the
// ast.File values the collector consumes.
func loadSlice(sliceDir string) ([]*ast.File, error) {
	entries, err := os.ReadDir(sliceDir)
	if err != nil {
		return nil, fmt.Errorf("reading slice dir %q: %w", sliceDir, err)
	}
	var files []*ast.File
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".java" {
			continue
		}
		path := filepath.Join(sliceDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		file, err := parser.Parse(path, string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		files = append(files, file)
	}
	return files, nil
}

// binaryNameToFQN converts the Input Contract's '/'-package, '$'-nested
// binaryClassName (spec.md §6) into this module's internal dotted/$
// convention.
func binaryNameToFQN(binaryName string) string {
	return strings.ReplaceAll(binaryName, "/", ".")
}

func printResult(res reporter.Result) int {
	data, err := json.Marshal(res)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: marshaling result: %v\n", err)
		return 1
	}
	fmt.Println(string(data))
	if res.Status == reporter.StatusOK {
		return 0
	}
	return 1
}
