package javatype

import "testing"

func TestValidStubName(t *testing.T) {
	cases := []struct {
		name string
		fqn  string
		want bool
	}{
		{"plain class", "foo.Bar", true},
		{"nested class", "foo.Bar$Baz", true},
		{"array type rejected", "foo.Bar[]", false},
		{"primitive rejected", "int", false},
		{"void rejected", "void", false},
		{"trailing dash rejected", "foo.Bar-", false},
		{"trailing underscore rejected", "foo.Bar_", false},
		{"trailing dot rejected", "foo.Bar.", false},
		{"empty rejected", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ValidStubName(c.fqn); got != c.want {
				t.Errorf("ValidStubName(%q) = %v, want %v", c.fqn, got, c.want)
			}
		})
	}
}

func TestDotToDollarForNested(t *testing.T) {
	got := DotToDollarForNested("a.b.Outer", "Inner")
	want := "a.b.Outer$Inner"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSimpleName(t *testing.T) {
	cases := map[string]string{
		"a.b.Outer$Inner": "Inner",
		"a.b.Outer":        "Outer",
		"Outer":            "Outer",
	}
	for fqn, want := range cases {
		if got := SimpleName(fqn); got != want {
			t.Errorf("SimpleName(%q) = %q, want %q", fqn, got, want)
		}
	}
}

func TestPackageOf(t *testing.T) {
	cases := map[string]string{
		"a.b.Outer$Inner": "a.b",
		"a.b.Outer":        "a.b",
		"Outer":            "",
	}
	for fqn, want := range cases {
		if got := PackageOf(fqn); got != want {
			t.Errorf("PackageOf(%q) = %q, want %q", fqn, got, want)
		}
	}
}

func TestOuterOfAndIsNested(t *testing.T) {
	if OuterOf("a.b.Outer") != "" {
		t.Error("top-level type should have empty OuterOf")
	}
	if OuterOf("a.b.Outer$Inner") != "a.b.Outer" {
		t.Errorf("got %q", OuterOf("a.b.Outer$Inner"))
	}
	if IsNested("a.b.Outer") {
		t.Error("top-level type reported as nested")
	}
	if !IsNested("a.b.Outer$Inner") {
		t.Error("nested type not reported as nested")
	}
}

func TestNewPrimitiveAndVoid(t *testing.T) {
	p := NewPrimitive("int", 0)
	if !p.IsPrimitive() || p.IsVoid() || p.IsArray() {
		t.Errorf("unexpected flags on primitive: %+v", p)
	}
	arr := NewPrimitive("int", 2)
	if !arr.IsArray() {
		t.Error("expected array-of-primitive to report IsArray")
	}
	if !Void.IsVoid() {
		t.Error("Void.IsVoid() should be true")
	}
}

func TestTypeRefString(t *testing.T) {
	ref := NewReference("java.util.List", []TypeRef{NewReference("java.lang.String", nil, 0)}, 1)
	got := ref.String()
	want := "java.util.List<java.lang.String>[]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
