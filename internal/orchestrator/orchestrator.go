// Package orchestrator implements the Repair Loop Orchestrator (C7, spec.md
// §4.7): the COLLECT -> MATERIALIZE -> COMPILE -> (VERIFY | EXTRACT) state
// machine that drives a single target method's partial compilation to a
// fixed point or a classified failure. Grounded on the teacher's
// cmd/tsgonest/pipeline.go TimingReport (a phase-duration struct, not an
// interface, kept for the same reason: the alternative is an
// eleven-parameter function signature) and its loadOrDiscoverConfig-style
// "thread one Options value through every phase" shape.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/collector"
	"github.com/javastub/javastub/internal/compiler"
	"github.com/javastub/javastub/internal/config"
	"github.com/javastub/javastub/internal/diagnostic"
	"github.com/javastub/javastub/internal/extractor"
	"github.com/javastub/javastub/internal/index"
	"github.com/javastub/javastub/internal/javatype"
	"github.com/javastub/javastub/internal/materializer"
	"github.com/javastub/javastub/internal/reporter"
	"github.com/javastub/javastub/internal/stubplan"
)

// FailReason names why the loop terminated without success, per spec.md
// §4.7's four termination conditions (the fourth, success, carries no
// reason since Run's Result.Status speaks for itself).
type FailReason string

const (
	ReasonNone            FailReason = ""
	ReasonStalled         FailReason = "stalled"
	ReasonIterationBudget FailReason = "iteration-budget"
	ReasonTimeout         FailReason = "timeout"
)

// TimingReport collects timing data for each repair-loop phase, across every
// iteration run. Mirrors the teacher's TimingReport: a struct instead of an
// ever-growing parameter list, printed only on request.
type TimingReport struct {
	Collect     time.Duration
	Materialize time.Duration
	Compile     time.Duration
	Extract     time.Duration
	Verify      time.Duration
	Total       time.Duration
	Iterations  int
}

// Target identifies the single method this run is trying to partially
// compile, by owner FQN + name + descriptor (spec.md §4.8).
type Target struct {
	OwnerFQN   string
	Name       string
	Descriptor string
}

// Run holds everything one repair-loop invocation needs: the already-built
// index, the slice compilation unit(s) to collect from, and the options
// threaded through every phase.
type Run struct {
	Idx    *index.ContextIndex
	Slice  []*ast.File
	Opts   config.Options
	Target Target
	Driver compiler.Driver

	Diag *diagnostic.Collector
}

// Outcome is everything Run produces: the reporter's Result plus the timing
// breakdown and fail reason (empty on success).
type Outcome struct {
	Result reporter.Result
	Timing TimingReport
	Reason FailReason
}

// Execute runs the state machine to completion, honoring Opts.IterationBudget
// and Opts.TimeoutSec (spec.md §4.7's budget and wall-clock termination
// conditions) alongside the stalled/success conditions.
func Execute(ctx context.Context, r Run) Outcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.Opts.TimeoutSec)*time.Second)
	defer cancel()

	timing := TimingReport{}
	plan := stubplan.New()

	// COLLECT: initial plan from the slice alone, no diagnostics yet.
	collectStart := time.Now()
	col := collector.New(r.Idx, r.Opts, r.Diag)
	for _, file := range r.Slice {
		col.Collect(file)
	}
	plan.Merge(col.Plan())
	timing.Collect = time.Since(collectStart)

	if r.Diag.HasErrors() {
		// A STRICT-policy ambiguous reference during COLLECT (spec.md §7
		// RESOLVE_FAIL) aborts before a single compile is attempted — there
		// is no point materializing or compiling against an unresolved name.
		timing.Total = time.Since(start)
		return Outcome{
			Result: reporter.Result{
				Status:    reporter.StatusFailedResolve,
				Notes:     strings.Join(r.Diag.Notes(), "; "),
				ElapsedMs: timing.Total.Milliseconds(),
			},
			Timing: timing,
		}
	}

	ext := extractor.New(r.Idx, r.Opts)
	mat := materializer.New(r.Idx)

	genRoot := filepath.Join(r.Opts.WorkDir, "gen")
	sliceRoot := filepath.Join(r.Opts.WorkDir, "slice")
	outDir := filepath.Join(r.Opts.WorkDir, "classes")

	sliceDeclared := make(map[string]bool, len(r.Slice))
	for _, file := range r.Slice {
		for _, td := range file.Types {
			sliceDeclared[javaFQN(file.Package, td.Name)] = true
		}
	}
	declared := func(fqn string) bool {
		if sliceDeclared[fqn] {
			return true
		}
		if _, ok := plan.Types[fqn]; ok {
			return true
		}
		_, ok := r.Idx.Lookup(fqn)
		return ok
	}

	for iteration := 1; ; iteration++ {
		timing.Iterations = iteration

		if ctx.Err() != nil {
			return failOutcome(timing, start, ReasonTimeout)
		}
		if iteration > r.Opts.IterationBudget {
			return failOutcome(timing, start, ReasonIterationBudget)
		}

		// MATERIALIZE
		matStart := time.Now()
		files := mat.Materialize(plan)
		if err := writeGenFiles(genRoot, files); err != nil {
			timing.Materialize += time.Since(matStart)
			return Outcome{
				Result: reporter.Result{Status: reporter.StatusInternalError, Notes: err.Error()},
				Timing: timing,
			}
		}
		timing.Materialize += time.Since(matStart)

		// Import cleanup (spec.md §4.4): drop static imports whose owner no
		// longer resolves anywhere, add imports for cross-package synthetic
		// types the slice now references, dedupe. Re-run every iteration
		// since the plan keeps growing until the loop converges.
		for _, file := range r.Slice {
			materializer.CleanupSliceImports(file, declared, usedSyntheticFor(file, plan))
			if err := materializer.WriteCleanedImports(file); err != nil {
				return Outcome{
					Result: reporter.Result{Status: reporter.StatusInternalError, Notes: err.Error()},
					Timing: timing,
				}
			}
		}

		// COMPILE
		compileStart := time.Now()
		req := compiler.Request{
			SourceRoots:    []string{sliceRoot, genRoot},
			ExtraClasspath: r.Opts.ExtraClasspath,
			OutDir:         outDir,
		}
		result, err := r.Driver.Compile(ctx, req)
		timing.Compile += time.Since(compileStart)

		if ctx.Err() != nil {
			return failOutcome(timing, start, ReasonTimeout)
		}
		if err != nil && len(result.Diagnostics) == 0 {
			return Outcome{
				Result: reporter.Result{Status: reporter.StatusFailedCompile, Notes: err.Error()},
				Timing: timing,
			}
		}

		if result.Success {
			// VERIFY
			verifyStart := time.Now()
			res := reporter.Report(outDir, r.Target.OwnerFQN, r.Target.Name, r.Target.Descriptor, result.EmittedClasses, plan.Size() > 0)
			timing.Verify += time.Since(verifyStart)
			timing.Total = time.Since(start)
			res.ElapsedMs = timing.Total.Milliseconds()
			return Outcome{Result: res, Timing: timing}
		}

		// EXTRACT
		extractStart := time.Now()
		if r.Opts.DepMode == config.DepModeProvided {
			// spec.md §7 DEP_MISSING: under depMode=provided, an unresolved
			// symbol is assumed to live on the caller's extraClasspath, not
			// something this loop should fabricate a stub for. A remaining
			// "cannot find symbol" here means the classpath didn't actually
			// carry it, i.e. the symbol cannot be stubbed: report it as a
			// missing dependency instead of looping or masking it with a
			// synthetic member.
			if hasCannotFindSymbol(result.Diagnostics) {
				timing.Extract += time.Since(extractStart)
				timing.Total = time.Since(start)
				return Outcome{
					Result: reporter.Result{
						Status:    reporter.StatusMissingDep,
						Notes:     firstErrorNote(result.Diagnostics),
						ElapsedMs: timing.Total.Milliseconds(),
					},
					Timing: timing,
				}
			}
			timing.Extract += time.Since(extractStart)
			return failOutcomeWithNotes(timing, start, ReasonStalled, firstErrorNote(result.Diagnostics))
		}

		extracted := ext.Extract(result.Diagnostics)
		added := plan.Merge(extracted)
		timing.Extract += time.Since(extractStart)

		if added == 0 {
			return failOutcomeWithNotes(timing, start, ReasonStalled, firstErrorNote(result.Diagnostics))
		}
	}
}

func failOutcome(timing TimingReport, start time.Time, reason FailReason) Outcome {
	timing.Total = time.Since(start)
	status := reporter.StatusFailedCompile
	if reason == ReasonTimeout {
		status = reporter.StatusTimeout
	}
	return Outcome{
		Result: reporter.Result{Status: status, Notes: string(reason), ElapsedMs: timing.Total.Milliseconds()},
		Timing: timing,
		Reason: reason,
	}
}

func failOutcomeWithNotes(timing TimingReport, start time.Time, reason FailReason, notes string) Outcome {
	timing.Total = time.Since(start)
	return Outcome{
		Result: reporter.Result{
			Status:    reporter.StatusFailedCompile,
			Notes:     fmt.Sprintf("%s: %s", reason, notes),
			ElapsedMs: timing.Total.Milliseconds(),
		},
		Timing: timing,
		Reason: reason,
	}
}

// usedSyntheticFor approximates "synthetic types this unit references" by
// checking whether the unit's source mentions a cross-package stub's simple
// name at all. An over-broad match only adds a harmless unused import, never
// a compile error, so a plain substring check is good enough here.
func usedSyntheticFor(file *ast.File, plan *stubplan.Plan) []string {
	src, err := os.ReadFile(file.Path)
	if err != nil {
		return nil
	}
	text := string(src)

	var used []string
	for fqn := range plan.Types {
		pkg := javatype.PackageOf(fqn)
		if pkg == "" || pkg == file.Package {
			continue
		}
		if strings.Contains(text, javatype.SimpleName(fqn)) {
			used = append(used, fqn)
		}
	}
	return used
}

func javaFQN(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func hasCannotFindSymbol(diags []compiler.Diagnostic) bool {
	for _, d := range diags {
		if d.IsCannotFindSymbol() {
			return true
		}
	}
	return false
}

func firstErrorNote(diags []compiler.Diagnostic) string {
	for _, d := range diags {
		if d.Kind == compiler.KindError {
			return d.String()
		}
	}
	return "no error diagnostics reported"
}

func writeGenFiles(root string, files []materializer.File) error {
	for _, f := range files {
		path := filepath.Join(root, f.RelPath)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("orchestrator: creating %q: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.Source), 0o644); err != nil {
			return fmt.Errorf("orchestrator: writing %q: %w", path, err)
		}
	}
	return nil
}
