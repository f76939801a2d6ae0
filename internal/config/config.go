// Package config holds the per-run Options the orchestrator threads through
// every component, plus the on-disk config file it can be discovered and
// loaded from. Discover/Load mirror the teacher's config-discovery shape;
// unlike the teacher, there is no TypeScript config format to shell out to,
// so only JSON is supported.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-json-experiment/json"
)

// DepMode controls how the repair loop (internal/orchestrator) treats symbols
// the compiler still cannot find: stub them locally (none), or assume they're
// on the supplied classpath and report a missing dependency instead of
// stubbing (provided). "fetched" is accepted and validated; the loop handles
// it the same as none.
type DepMode string

const (
	DepModeNone     DepMode = "none"
	DepModeProvided DepMode = "provided"
	DepModeFetched  DepMode = "fetched"
)

// SliceMode controls how much of the owning class the slicer is expected to
// have kept; the core itself never slices. The value is validated and
// carried on Options, but no component outside this package reads it.
type SliceMode string

const (
	SliceModeMethod SliceMode = "method"
	SliceModeClass  SliceMode = "class"
)

// AmbiguityPolicy controls step (iv) of the collector's disambiguation order
// (spec.md §4.2): fail outright, or deterministically pick a winner.
type AmbiguityPolicy string

const (
	AmbiguityStrict  AmbiguityPolicy = "strict"
	AmbiguityLenient AmbiguityPolicy = "lenient"
)

// Options is the per-call configuration the orchestrator, collector, and
// materializer all read from. It corresponds to spec.md §6's `options`
// input plus the ambient knobs (iteration budget, nested-type heuristics)
// needed to run the loop end to end.
type Options struct {
	DepMode         DepMode         `json:"depMode"`
	SliceMode       SliceMode       `json:"sliceMode"`
	AmbiguityPolicy AmbiguityPolicy `json:"ambiguityPolicy"`
	TimeoutSec      int             `json:"timeoutSec"`
	IterationBudget int             `json:"iterationBudget"`
	ExtraClasspath  []string        `json:"extraClasspath,omitempty"`
	WorkDir         string          `json:"workDir"`

	// NestedTypePatterns biases the top-level-vs-nested decision (spec.md
	// §4.6) toward nesting a synthesized type under a named enclosing type
	// when the unresolved simple name matches one of these glob-ish suffix
	// patterns (e.g. "*Builder", "*Entry").
	NestedTypePatterns []string `json:"nestedTypePatterns,omitempty"`

	// Quiet suppresses info/warning diagnostics from the ambient collector;
	// errors are always kept.
	Quiet bool `json:"quiet,omitempty"`
}

// Default returns the conservative defaults a bare invocation should use
// when no config file and no explicit options were supplied.
func Default() Options {
	return Options{
		DepMode:         DepModeNone,
		SliceMode:       SliceModeMethod,
		AmbiguityPolicy: AmbiguityLenient,
		TimeoutSec:      30,
		IterationBudget: 6,
	}
}

// Validate rejects combinations the rest of the pipeline cannot act on.
func (o Options) Validate() error {
	switch o.DepMode {
	case DepModeNone, DepModeProvided, DepModeFetched:
	default:
		return fmt.Errorf("config: invalid depMode %q", o.DepMode)
	}
	switch o.SliceMode {
	case SliceModeMethod, SliceModeClass:
	default:
		return fmt.Errorf("config: invalid sliceMode %q", o.SliceMode)
	}
	switch o.AmbiguityPolicy {
	case AmbiguityStrict, AmbiguityLenient:
	default:
		return fmt.Errorf("config: invalid ambiguityPolicy %q", o.AmbiguityPolicy)
	}
	if o.TimeoutSec <= 0 {
		return fmt.Errorf("config: timeoutSec must be positive, got %d", o.TimeoutSec)
	}
	if o.IterationBudget <= 0 {
		return fmt.Errorf("config: iterationBudget must be positive, got %d", o.IterationBudget)
	}
	if o.WorkDir == "" {
		return fmt.Errorf("config: workDir is required")
	}
	if !filepath.IsAbs(o.WorkDir) {
		return fmt.Errorf("config: workDir must be absolute, got %q", o.WorkDir)
	}
	return nil
}

// Discover looks for a javastub.config.json in dir, returning its path or ""
// if none is present.
func Discover(dir string) string {
	candidate := filepath.Join(dir, "javastub.config.json")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

// Load reads and validates a JSON options file, starting from Default() so
// the file only needs to override what it cares about.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: reading %q: %w", path, err)
	}
	opts := Default()
	if err := json.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return opts, nil
}
