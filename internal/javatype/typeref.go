// Package javatype models language-independent type references for the
// target curly-brace, class-based language (binary names, `$`-nested types,
// array dimensions, primitives) as described in spec.md §3.
package javatype

import "strings"

// Kind discriminates a primitive/void TypeRef from a reference type.
type Kind int

const (
	// KindReference is any class/interface/annotation/enum/record type.
	KindReference Kind = iota
	KindPrimitive
	KindVoid
)

// TypeRef is a canonical, immutable reference to a type: a dot-separated
// package-qualified name with `$`-separated nested segments, an ordered list
// of type arguments, an array-dimension count, and a primitive/void flag.
//
// Invariant: primitive and void TypeRefs carry empty TypeArgs and zero Dims
// unless they represent an array of that primitive (Dims > 0 is legal on a
// primitive TypeRef; TypeArgs is never legal on one).
type TypeRef struct {
	Name      string // canonical FQN, "." for packages, "$" for nesting
	TypeArgs  []TypeRef
	Dims      int
	Kind      Kind
}

// primitiveNames is the closed set of primitive keyword spellings.
var primitiveNames = map[string]bool{
	"boolean": true, "byte": true, "short": true, "char": true,
	"int": true, "long": true, "float": true, "double": true,
}

// NewReference builds a reference TypeRef for a class/interface/etc.
func NewReference(fqn string, typeArgs []TypeRef, dims int) TypeRef {
	return TypeRef{Name: fqn, TypeArgs: typeArgs, Dims: dims, Kind: KindReference}
}

// NewPrimitive builds a primitive TypeRef (or an array of one, when dims>0).
func NewPrimitive(name string, dims int) TypeRef {
	return TypeRef{Name: name, Dims: dims, Kind: KindPrimitive}
}

// Void is the TypeRef for the `void` return type.
var Void = TypeRef{Name: "void", Kind: KindVoid}

// IsPrimitiveName reports whether name is one of the language's primitive
// keywords (not including "void").
func IsPrimitiveName(name string) bool {
	return primitiveNames[name]
}

// IsVoid reports whether the type is `void` and not an array-of-void (which
// cannot exist; Dims on a KindVoid TypeRef is always invalid and ignored).
func (t TypeRef) IsVoid() bool {
	return t.Kind == KindVoid
}

// IsPrimitive reports whether t names a primitive (array-of-primitive still
// reports true; use Dims to test for array-ness).
func (t TypeRef) IsPrimitive() bool {
	return t.Kind == KindPrimitive
}

// IsArray reports whether t has at least one array dimension.
func (t TypeRef) IsArray() bool {
	return t.Dims > 0
}

// BareFQN strips type arguments and array dimensions, returning just the
// canonical declaration name. This is `stripTypeArgsAndArrays` from spec.md
// §4.3 — the canonicalization helper the Stub Plan Model exposes.
func (t TypeRef) BareFQN() string {
	return t.Name
}

// String renders a debug form: pkg.Outer$Inner<Arg1,Arg2>[][] style.
func (t TypeRef) String() string {
	var sb strings.Builder
	sb.WriteString(t.Name)
	if len(t.TypeArgs) > 0 {
		sb.WriteByte('<')
		for i, a := range t.TypeArgs {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	}
	for i := 0; i < t.Dims; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// DotToDollarForNested joins an outer FQN and an inner simple name with the
// nested-type separator, per spec.md §4.2 rule 2 / §4.3.
func DotToDollarForNested(outerFQN, innerSimpleName string) string {
	return outerFQN + "$" + innerSimpleName
}

// SimpleName returns the last `.`- or `$`-separated segment of an FQN.
func SimpleName(fqn string) string {
	idx := strings.LastIndexAny(fqn, ".$")
	if idx < 0 {
		return fqn
	}
	return fqn[idx+1:]
}

// PackageOf returns the dot-separated package prefix of a top-level FQN (the
// portion before the first `$`, with its own trailing simple name removed).
func PackageOf(fqn string) string {
	if idx := strings.IndexByte(fqn, '$'); idx >= 0 {
		fqn = fqn[:idx]
	}
	idx := strings.LastIndexByte(fqn, '.')
	if idx < 0 {
		return ""
	}
	return fqn[:idx]
}

// OuterOf returns the enclosing FQN of a nested type, or "" if fqn is
// top-level (contains no `$`).
func OuterOf(fqn string) string {
	idx := strings.LastIndexByte(fqn, '$')
	if idx < 0 {
		return ""
	}
	return fqn[:idx]
}

// IsNested reports whether fqn names a nested type.
func IsNested(fqn string) bool {
	return strings.IndexByte(fqn, '$') >= 0
}
