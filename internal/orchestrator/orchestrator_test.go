package orchestrator

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/compiler"
	"github.com/javastub/javastub/internal/config"
	"github.com/javastub/javastub/internal/diagnostic"
	"github.com/javastub/javastub/internal/index"
	"github.com/javastub/javastub/internal/parser"
	"github.com/javastub/javastub/internal/reporter"
)

// writeMinimalClassfile assembles just enough of a JVM classfile (a single
// method with a non-empty Code attribute) for the reporter's verification
// step to find, without a real javac ever having run.
func writeMinimalClassfile(t *testing.T, path, methodName, descriptor string) {
	t.Helper()
	var buf bytes.Buffer
	u2 := func(v uint16) { binary.Write(&buf, binary.BigEndian, v) }
	u4 := func(v uint32) { binary.Write(&buf, binary.BigEndian, v) }
	utf8 := func(s string) {
		u2(uint16(len(s)))
		buf.WriteString(s)
	}

	u4(0xCAFEBABE)
	u2(0)
	u2(52)

	u2(8) // constant_pool_count
	buf.WriteByte(1)
	utf8("Foo") // #1 UTF8
	buf.WriteByte(7)
	u2(1) // #2 Class -> #1
	buf.WriteByte(1)
	utf8("java/lang/Object") // #3 UTF8
	buf.WriteByte(7)
	u2(3) // #4 Class -> #3
	buf.WriteByte(1)
	utf8(methodName) // #5 UTF8
	buf.WriteByte(1)
	utf8(descriptor) // #6 UTF8
	buf.WriteByte(1)
	utf8("Code") // #7 UTF8

	u2(0x0021) // access_flags
	u2(2)      // this_class
	u2(4)      // super_class
	u2(0)      // interfaces_count
	u2(0)      // fields_count

	u2(1)      // methods_count
	u2(0x0001) // access_flags
	u2(5)      // name_index
	u2(6)      // descriptor_index
	u2(1)      // attributes_count
	u2(7)      // "Code"
	u4(1)      // attribute_length
	buf.WriteByte(0xB1)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// scriptedDriver replays a fixed sequence of compiler.Result values, one per
// Compile call, so the state machine can be exercised without a real javac.
type scriptedDriver struct {
	results []compiler.Result
	calls   int
}

func (d *scriptedDriver) Compile(ctx context.Context, req compiler.Request) (compiler.Result, error) {
	if d.calls >= len(d.results) {
		return d.results[len(d.results)-1], nil
	}
	r := d.results[d.calls]
	d.calls++
	return r, nil
}

func emptyIndex(t *testing.T) *index.ContextIndex {
	t.Helper()
	idx, err := index.Build(context.Background(), []string{t.TempDir()}, diagnostic.NewCollector(true))
	if err != nil {
		t.Fatalf("index.Build: %v", err)
	}
	return idx
}

func baseOpts(t *testing.T) config.Options {
	o := config.Default()
	o.WorkDir = t.TempDir()
	o.TimeoutSec = 5
	o.IterationBudget = 3
	return o
}

func TestExecuteSucceedsOnFirstCleanCompile(t *testing.T) {
	driver := &scriptedDriver{results: []compiler.Result{
		{Success: true, EmittedClasses: []string{"foo.Foo"}},
	}}

	opts := baseOpts(t)
	classFile := filepath.Join(opts.WorkDir, "classes", "foo", "Foo.class")
	writeMinimalClassfile(t, classFile, "bar", "()V")

	run := Run{
		Idx:    emptyIndex(t),
		Slice:  nil,
		Opts:   opts,
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diagnostic.NewCollector(true),
	}

	outcome := Execute(context.Background(), run)
	if outcome.Reason != ReasonNone {
		t.Fatalf("expected no fail reason, got %q", outcome.Reason)
	}
	if driver.calls != 1 {
		t.Errorf("expected exactly 1 compile invocation, got %d", driver.calls)
	}
	if outcome.Result.Status != reporter.StatusOK {
		t.Errorf("expected OK, got %s (%s)", outcome.Result.Status, outcome.Result.Notes)
	}
}

func TestExecuteStallsWhenExtractAddsNothing(t *testing.T) {
	driver := &scriptedDriver{results: []compiler.Result{
		{Success: false, Diagnostics: []compiler.Diagnostic{
			{Kind: compiler.KindError, Message: "incompatible types"},
		}},
	}}

	run := Run{
		Idx:    emptyIndex(t),
		Opts:   baseOpts(t),
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diagnostic.NewCollector(true),
	}

	outcome := Execute(context.Background(), run)
	if outcome.Reason != ReasonStalled {
		t.Fatalf("expected stalled, got %q (status %s)", outcome.Reason, outcome.Result.Status)
	}
}

func TestExecuteExhaustsIterationBudget(t *testing.T) {
	// Each call must add a genuinely new stub, or the loop would stall
	// before exhausting the budget instead of running it out.
	driver := &scriptedDriver{results: []compiler.Result{
		{Success: false, Diagnostics: []compiler.Diagnostic{mkDiag("frobnicate1")}},
		{Success: false, Diagnostics: []compiler.Diagnostic{mkDiag("frobnicate2")}},
		{Success: false, Diagnostics: []compiler.Diagnostic{mkDiag("frobnicate3")}},
		{Success: false, Diagnostics: []compiler.Diagnostic{mkDiag("frobnicate4")}},
	}}

	opts := baseOpts(t)
	opts.IterationBudget = 3

	run := Run{
		Idx:    emptyIndex(t),
		Opts:   opts,
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diagnostic.NewCollector(true),
	}

	outcome := Execute(context.Background(), run)
	if outcome.Reason != ReasonIterationBudget {
		t.Fatalf("expected iteration-budget, got %q", outcome.Reason)
	}
}

func mkDiag(name string) compiler.Diagnostic {
	return compiler.Diagnostic{
		Kind:    compiler.KindError,
		Path:    "Foo.java",
		Line:    1,
		Message: "cannot find symbol\n  symbol:   method " + name + "()\n  location: class foo.Foo",
	}
}

func TestExecuteStrictAmbiguityShortCircuitsBeforeCompile(t *testing.T) {
	// A diagnostic collector that already carries a STRICT-policy ambiguity
	// error, as the collector would leave it after COLLECT.
	diag := diagnostic.NewCollector(false)
	diag.Error(diagnostic.CategoryAmbiguous, "", 0, "ambiguous reference to %q", "Widget")

	driver := &scriptedDriver{}
	run := Run{
		Idx:    emptyIndex(t),
		Slice:  []*ast.File{{Package: "foo"}},
		Opts:   baseOpts(t),
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diag,
	}

	outcome := Execute(context.Background(), run)
	if outcome.Result.Status != reporter.StatusFailedResolve {
		t.Fatalf("expected FAILED_RESOLVE, got %s", outcome.Result.Status)
	}
	if driver.calls != 0 {
		t.Errorf("expected the ambiguity short-circuit to skip compilation entirely, got %d calls", driver.calls)
	}
}

func TestExecuteCleansDeadStaticImportOnDisk(t *testing.T) {
	opts := baseOpts(t)
	sliceDir := filepath.Join(opts.WorkDir, "slice")
	if err := os.MkdirAll(sliceDir, 0o755); err != nil {
		t.Fatal(err)
	}
	srcPath := filepath.Join(sliceDir, "Foo.java")
	src := "package foo;\n\nimport static bar.Ghost.thing;\n\nclass Foo {\n    void f() { int x = 1; }\n}\n"
	if err := os.WriteFile(srcPath, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	file, err := parser.Parse(srcPath, src)
	if err != nil {
		t.Fatalf("parser.Parse: %v", err)
	}

	driver := &scriptedDriver{results: []compiler.Result{
		{Success: true, EmittedClasses: []string{"foo.Foo"}},
	}}
	classFile := filepath.Join(opts.WorkDir, "classes", "foo", "Foo.class")
	writeMinimalClassfile(t, classFile, "bar", "()V")

	run := Run{
		Idx:    emptyIndex(t),
		Slice:  []*ast.File{file},
		Opts:   opts,
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diagnostic.NewCollector(true),
	}

	Execute(context.Background(), run)

	got, err := os.ReadFile(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(got), "bar.Ghost") {
		t.Errorf("expected the dead static import to have been rewritten away, got:\n%s", got)
	}
}

func TestExecuteDepModeProvidedReportsMissingDep(t *testing.T) {
	driver := &scriptedDriver{results: []compiler.Result{
		{Success: false, Diagnostics: []compiler.Diagnostic{mkDiag("frobnicate")}},
	}}

	opts := baseOpts(t)
	opts.DepMode = config.DepModeProvided

	run := Run{
		Idx:    emptyIndex(t),
		Opts:   opts,
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diagnostic.NewCollector(true),
	}

	outcome := Execute(context.Background(), run)
	if outcome.Result.Status != reporter.StatusMissingDep {
		t.Fatalf("expected MISSING_DEP, got %s (%s)", outcome.Result.Status, outcome.Result.Notes)
	}
	if driver.calls != 1 {
		t.Errorf("expected depMode=provided to short-circuit after the first compile, got %d calls", driver.calls)
	}
}

func TestExecuteDepModeProvidedStallsOnNonSymbolError(t *testing.T) {
	driver := &scriptedDriver{results: []compiler.Result{
		{Success: false, Diagnostics: []compiler.Diagnostic{
			{Kind: compiler.KindError, Message: "incompatible types"},
		}},
	}}

	opts := baseOpts(t)
	opts.DepMode = config.DepModeProvided

	run := Run{
		Idx:    emptyIndex(t),
		Opts:   opts,
		Target: Target{OwnerFQN: "foo.Foo", Name: "bar", Descriptor: "()V"},
		Driver: driver,
		Diag:   diagnostic.NewCollector(true),
	}

	outcome := Execute(context.Background(), run)
	if outcome.Reason != ReasonStalled {
		t.Fatalf("expected a non-symbol compile error under depMode=provided to stall, got %q (status %s)", outcome.Reason, outcome.Result.Status)
	}
}
