package materializer

import (
	"strings"
	"testing"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/javatype"
	"github.com/javastub/javastub/internal/stubplan"
)

func ref(fqn string) javatype.TypeRef { return javatype.NewReference(fqn, nil, 0) }

type importFixture struct {
	path   string
	static bool
}

func astFileFixture(pkg string, imports []importFixture) *ast.File {
	f := &ast.File{Package: pkg}
	for _, imp := range imports {
		f.Imports = append(f.Imports, ast.Import{Path: imp.path, Static: imp.static})
	}
	return f
}

func TestMaterializeZeroValueBodies(t *testing.T) {
	plan := stubplan.New()
	plan.AddType(stubplan.TypeStub{FQN: "foo.Foo", Kind: stubplan.KindClass})
	plan.AddMethod(stubplan.MethodStub{
		Owner:  ref("foo.Foo"),
		Name:   "count",
		Return: javatype.NewPrimitive("int", 0),
	})
	plan.AddMethod(stubplan.MethodStub{
		Owner:  ref("foo.Foo"),
		Name:   "name",
		Return: ref("java.lang.String"),
	})
	plan.AddMethod(stubplan.MethodStub{
		Owner:  ref("foo.Foo"),
		Name:   "reset",
		Return: javatype.Void,
	})

	m := New(nil)
	files := m.Materialize(plan)
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	src := files[0].Source
	if !strings.Contains(src, "return 0;") {
		t.Errorf("expected int zero value, source:\n%s", src)
	}
	if !strings.Contains(src, "return null;") {
		t.Errorf("expected reference zero value, source:\n%s", src)
	}
	if strings.Contains(src, "void reset() {\n        return") {
		t.Errorf("void method should not return a value, source:\n%s", src)
	}
}

func TestMaterializeInterfaceHasNoBodies(t *testing.T) {
	plan := stubplan.New()
	plan.AddType(stubplan.TypeStub{FQN: "foo.Bar", Kind: stubplan.KindInterface})
	plan.AddMethod(stubplan.MethodStub{
		Owner:  ref("foo.Bar"),
		Name:   "doIt",
		Return: javatype.Void,
	})
	plan.AddMethod(stubplan.MethodStub{
		Owner:              ref("foo.Bar"),
		Name:               "doItDefault",
		Return:             javatype.Void,
		DefaultOnInterface: true,
	})

	m := New(nil)
	files := m.Materialize(plan)
	src := files[0].Source
	if !strings.Contains(src, "void doIt();") {
		t.Errorf("expected abstract no-body method, source:\n%s", src)
	}
	if !strings.Contains(src, "default void doItDefault()") {
		t.Errorf("expected default method to keep a body, source:\n%s", src)
	}
}

func TestMaterializeFinalFieldGetsZeroValueInitializer(t *testing.T) {
	plan := stubplan.New()
	plan.AddType(stubplan.TypeStub{FQN: "foo.Foo", Kind: stubplan.KindClass})
	plan.AddField(stubplan.FieldStub{
		Owner:   ref("foo.Foo"),
		Name:    "x",
		Field:   javatype.NewPrimitive("int", 0),
		Mutable: false,
	})

	m := New(nil)
	files := m.Materialize(plan)
	src := files[0].Source
	if !strings.Contains(src, "final int x = 0;") {
		t.Errorf("expected final initialized field, source:\n%s", src)
	}
}

func TestMaterializeMutableFieldHasNoInitializer(t *testing.T) {
	plan := stubplan.New()
	plan.AddType(stubplan.TypeStub{FQN: "foo.Foo", Kind: stubplan.KindClass})
	plan.AddField(stubplan.FieldStub{
		Owner:   ref("foo.Foo"),
		Name:    "x",
		Field:   javatype.NewPrimitive("int", 0),
		Mutable: true,
	})

	m := New(nil)
	files := m.Materialize(plan)
	src := files[0].Source
	if !strings.Contains(src, "int x;") {
		t.Errorf("expected uninitialized mutable field, source:\n%s", src)
	}
	if strings.Contains(src, "int x = 0;") {
		t.Errorf("mutable field should not be initialized, source:\n%s", src)
	}
}

func TestMaterializeNestedTypeRenderedInsideOwner(t *testing.T) {
	plan := stubplan.New()
	plan.AddType(stubplan.TypeStub{FQN: "foo.Outer", Kind: stubplan.KindClass})
	plan.AddType(stubplan.TypeStub{FQN: "foo.Outer$Inner", Kind: stubplan.KindClass, OuterFQN: "foo.Outer", NonStaticInner: true})

	m := New(nil)
	files := m.Materialize(plan)
	if len(files) != 1 {
		t.Fatalf("expected nested type to share its outer's file, got %d files", len(files))
	}
	if !strings.Contains(files[0].Source, "class Inner") {
		t.Errorf("expected nested class rendered inside outer, source:\n%s", files[0].Source)
	}
}

func TestMaterializeDollarNameFallbackWhenOuterNotInPlan(t *testing.T) {
	plan := stubplan.New()
	plan.AddType(stubplan.TypeStub{FQN: "foo.Outer$Inner", Kind: stubplan.KindClass, OuterFQN: "foo.Outer", NonStaticInner: true})

	m := New(nil)
	files := m.Materialize(plan)
	if len(files) != 1 {
		t.Fatalf("expected 1 top-level fallback file, got %d", len(files))
	}
	if !strings.Contains(files[0].Source, "class Outer$Inner") {
		t.Errorf("expected dollar-joined class name fallback, source:\n%s", files[0].Source)
	}
}

func TestCleanupSliceImportsDropsDeadStaticImport(t *testing.T) {
	file := astFileFixture("foo", []importFixture{
		{path: "bar.Baz.helper", static: true},
		{path: "bar.Qux", static: false},
	})
	declared := func(fqn string) bool { return fqn != "bar.Baz" }

	CleanupSliceImports(file, declared, nil)

	for _, imp := range file.Imports {
		if imp.Path == "bar.Baz.helper" {
			t.Errorf("expected dead static import to be dropped, got %v", file.Imports)
		}
	}
}

func TestCleanupSliceImportsAddsSyntheticCrossPackageImport(t *testing.T) {
	file := astFileFixture("foo", nil)
	CleanupSliceImports(file, func(string) bool { return true }, []string{"other.Stub"})

	found := false
	for _, imp := range file.Imports {
		if imp.Path == "other.Stub" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected import for other.Stub, got %v", file.Imports)
	}
}

func TestCleanupSliceImportsSkipsSamePackageSynthetic(t *testing.T) {
	file := astFileFixture("foo", nil)
	CleanupSliceImports(file, func(string) bool { return true }, []string{"foo.Stub"})

	for _, imp := range file.Imports {
		if imp.Path == "foo.Stub" {
			t.Errorf("same-package synthetic type should not get an import, got %v", file.Imports)
		}
	}
}

func TestCleanupSliceImportsDedupes(t *testing.T) {
	file := astFileFixture("foo", []importFixture{
		{path: "bar.Baz"},
		{path: "bar.Baz"},
	})
	CleanupSliceImports(file, func(string) bool { return true }, nil)

	count := 0
	for _, imp := range file.Imports {
		if imp.Path == "bar.Baz" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected dedup to 1 entry, got %d", count)
	}
}
