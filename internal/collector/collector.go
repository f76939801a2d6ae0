// Package collector implements the Symbol Collector (C2, spec.md §4.2): it
// walks a sliced compilation unit against a built ContextIndex, classifies
// every reference the index cannot already account for, and emits a
// StubPlan recording what would need to be synthesized to make the slice
// compile. Nothing here talks to a compiler; the Collector only reasons
// about what the source text itself says.
package collector

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/config"
	"github.com/javastub/javastub/internal/diagnostic"
	"github.com/javastub/javastub/internal/index"
	"github.com/javastub/javastub/internal/javatype"
	"github.com/javastub/javastub/internal/stubplan"
)

// Collector holds the read-only inputs (index, options, diagnostics) for one
// collection pass and accumulates a Plan across however many files it's
// asked to walk.
type Collector struct {
	idx  *index.ContextIndex
	opts config.Options
	diag *diagnostic.Collector
	plan *stubplan.Plan

	collator *collate.Collator
}

// New returns a Collector backed by idx, ready to walk one or more sliced
// files into a shared Plan.
func New(idx *index.ContextIndex, opts config.Options, diag *diagnostic.Collector) *Collector {
	return &Collector{
		idx:      idx,
		opts:     opts,
		diag:     diag,
		plan:     stubplan.New(),
		collator: collate.New(language.Und),
	}
}

// Plan returns the Plan accumulated so far.
func (c *Collector) Plan() *stubplan.Plan { return c.plan }

// Collect walks every declared type in file, classifying unresolved
// references per spec.md §4.2's six ordered rules, and folds the results
// into the Collector's running Plan.
func (c *Collector) Collect(file *ast.File) *stubplan.Plan {
	imp := buildImportIndex(file)
	for _, td := range file.Types {
		c.collectTypeDecl(file, imp, td, "")
	}
	return c.plan
}

// stubKindHint records the syntactic position a type reference was found in,
// which spec.md §4.2 rule 1 uses to infer the synthesized type's kind.
type stubKindHint int

const (
	hintClass stubKindHint = iota
	hintInterface
	hintAnnotation
)

func stubKindFor(h stubKindHint) stubplan.TypeKind {
	switch h {
	case hintInterface:
		return stubplan.KindInterface
	case hintAnnotation:
		return stubplan.KindAnnotation
	default:
		return stubplan.KindClass
	}
}

// importIndex is the per-file view of its import declarations, split into
// the four buckets the disambiguation order (spec.md §4.2) consults.
type importIndex struct {
	explicit       map[string]string // simple type name -> FQN
	wildcard       []string          // package prefixes
	staticExplicit map[string]string // bare member name -> owner FQN
	staticWildcard []string          // owner FQNs
}

func buildImportIndex(file *ast.File) *importIndex {
	ii := &importIndex{
		explicit:       make(map[string]string),
		staticExplicit: make(map[string]string),
	}
	for _, imp := range file.Imports {
		path := strings.TrimSuffix(imp.Path, ".*")
		if imp.Static {
			if imp.Wildcard {
				ii.staticWildcard = append(ii.staticWildcard, path)
				continue
			}
			idx := strings.LastIndexByte(imp.Path, '.')
			if idx < 0 {
				continue
			}
			ii.staticExplicit[imp.Path[idx+1:]] = imp.Path[:idx]
			continue
		}
		if imp.Wildcard {
			ii.wildcard = append(ii.wildcard, path)
			continue
		}
		ii.explicit[javatype.SimpleName(imp.Path)] = imp.Path
	}
	return ii
}

// javaLangImplicit shortcuts the common java.lang names every compilation
// unit sees without an import, so the collector doesn't synthesize noisy
// stubs for the JDK's own core types.
var javaLangImplicit = map[string]string{
	"Object": "java.lang.Object", "String": "java.lang.String",
	"Integer": "java.lang.Integer", "Long": "java.lang.Long",
	"Double": "java.lang.Double", "Float": "java.lang.Float",
	"Boolean": "java.lang.Boolean", "Byte": "java.lang.Byte",
	"Short": "java.lang.Short", "Character": "java.lang.Character",
	"Void": "java.lang.Void", "Number": "java.lang.Number",
	"Math": "java.lang.Math", "System": "java.lang.System",
	"Thread": "java.lang.Thread", "Runnable": "java.lang.Runnable",
	"Exception": "java.lang.Exception", "RuntimeException": "java.lang.RuntimeException",
	"Throwable": "java.lang.Throwable", "Error": "java.lang.Error",
	"Iterable": "java.lang.Iterable", "Comparable": "java.lang.Comparable",
	"CharSequence": "java.lang.CharSequence", "StringBuilder": "java.lang.StringBuilder",
	"StringBuffer": "java.lang.StringBuffer", "Class": "java.lang.Class",
	"Override": "java.lang.Override", "Deprecated": "java.lang.Deprecated",
	"SuppressWarnings": "java.lang.SuppressWarnings", "FunctionalInterface": "java.lang.FunctionalInterface",
	"SafeVarargs": "java.lang.SafeVarargs", "Enum": "java.lang.Enum",
	"Iterator": "java.util.Iterator",
}

func isWellKnownExternalPackage(pkg string) bool {
	return strings.HasPrefix(pkg, "java.") || strings.HasPrefix(pkg, "javax.") ||
		strings.HasPrefix(pkg, "jakarta.") || strings.HasPrefix(pkg, "kotlin.") ||
		strings.HasPrefix(pkg, "scala.")
}

// collectTypeDecl walks one declared type (and recurses into its nested
// types), resolving its header (extends/implements/annotations) and every
// member, then descending into method/constructor bodies.
func (c *Collector) collectTypeDecl(file *ast.File, imp *importIndex, td *ast.TypeDecl, outerFQN string) {
	fqn := td.Name
	if outerFQN != "" {
		fqn = outerFQN + "$" + td.Name
	} else if file.Package != "" {
		fqn = file.Package + "." + td.Name
	}
	isInterface := td.Kind == ast.DeclInterface

	for _, e := range td.Extends {
		hint := hintClass
		if isInterface {
			hint = hintInterface
		}
		c.resolveTypeRef(e, file, imp, hint)
	}
	for _, im := range td.Implements {
		c.resolveTypeRef(im, file, imp, hintInterface)
	}
	c.collectAnnotations(td.Modifiers.Annotations, file, imp, fqn, nil)

	root := newScope()
	for _, f := range td.Fields {
		root.define(f.Name, f.Type)
	}

	for _, f := range td.Fields {
		c.resolveTypeRef(f.Type, file, imp, hintClass)
		c.collectAnnotations(f.Modifiers.Annotations, file, imp, fqn, root)
		if f.Init != nil {
			c.collectExpr(f.Init, file, imp, fqn, root, false)
		}
	}

	for _, m := range td.Methods {
		c.resolveTypeRef(m.Return, file, imp, hintClass)
		for _, p := range m.Params {
			c.resolveTypeRef(p.Type, file, imp, hintClass)
		}
		for _, th := range m.Throws {
			c.resolveTypeRef(th, file, imp, hintClass)
		}
		c.collectAnnotations(m.Modifiers.Annotations, file, imp, fqn, root)
		if m.Body != nil {
			mscope := root.child()
			for _, p := range m.Params {
				mscope.define(p.Name, p.Type)
			}
			c.collectStmt(m.Body, file, imp, fqn, mscope)
		}
	}

	for _, ctor := range td.Ctors {
		for _, p := range ctor.Params {
			c.resolveTypeRef(p.Type, file, imp, hintClass)
		}
		for _, th := range ctor.Throws {
			c.resolveTypeRef(th, file, imp, hintClass)
		}
		if ctor.Body != nil {
			cscope := root.child()
			for _, p := range ctor.Params {
				cscope.define(p.Name, p.Type)
			}
			c.collectStmt(ctor.Body, file, imp, fqn, cscope)
		}
	}

	for _, nested := range td.Nested {
		c.collectTypeDecl(file, imp, nested, fqn)
	}
}

// collectAnnotations resolves every `@Name(...)` usage (rule 1, annotation
// position) and, for each named element actually supplied, treats it as a
// zero-arg method invocation on the annotation type (rule 6).
func (c *Collector) collectAnnotations(uses []ast.AnnotationUse, file *ast.File, imp *importIndex, ownerFQN string, sc *scope) {
	for _, au := range uses {
		ownerRef := c.resolveTypeRef(au.Type, file, imp, hintAnnotation)
		for _, elem := range au.Elements {
			if _, known := c.idx.Lookup(ownerRef.Name); !known || !c.idx.HasMethod(ownerRef.Name, elem.Name, 0) {
				if javatype.ValidStubName(ownerRef.Name) {
					c.plan.AddMethod(stubplan.MethodStub{
						Owner:      ownerRef,
						Name:       elem.Name,
						Return:     javatype.NewReference("java.lang.String", nil, 0),
						Visibility: stubplan.Public,
					})
				}
			}
			if elem.Value != nil && sc != nil {
				c.collectExpr(elem.Value, file, imp, ownerFQN, sc, false)
			}
		}
	}
}

// resolveSimpleTypeName applies the disambiguation order from spec.md §4.2:
// same-package, explicit import, wildcard import, then STRICT-fail or
// lenient lexicographically-smallest pick.
func (c *Collector) resolveSimpleTypeName(simple string, file *ast.File, imp *importIndex) (string, bool) {
	if file.Package != "" {
		candidate := file.Package + "." + simple
		if _, ok := c.idx.Lookup(candidate); ok {
			return candidate, true
		}
	}
	if fqn, ok := imp.explicit[simple]; ok {
		return fqn, true
	}
	var wildcardMatches []string
	for _, pkg := range imp.wildcard {
		candidate := pkg + "." + simple
		if _, ok := c.idx.Lookup(candidate); ok {
			wildcardMatches = append(wildcardMatches, candidate)
		}
	}
	if len(wildcardMatches) == 1 {
		return wildcardMatches[0], true
	}
	if len(wildcardMatches) > 1 {
		return c.disambiguate(simple, wildcardMatches)
	}

	candidates := c.idx.Candidates(simple)
	if len(candidates) == 1 {
		return candidates[0], true
	}
	if len(candidates) > 1 {
		return c.disambiguate(simple, candidates)
	}

	if fqn, ok := javaLangImplicit[simple]; ok {
		return fqn, true
	}
	return "", false
}

// disambiguate implements step (iv) of the order: strict policy fails and
// records an error; lenient policy deterministically picks the
// lexicographically smallest candidate (collate.Collator keeps this
// consistent with how a locale-aware UI would present the same list).
func (c *Collector) disambiguate(simple string, candidates []string) (string, bool) {
	sorted := append([]string(nil), candidates...)
	sort.Slice(sorted, func(i, j int) bool { return c.collator.CompareString(sorted[i], sorted[j]) < 0 })

	if c.opts.AmbiguityPolicy == config.AmbiguityStrict {
		c.diag.Error(diagnostic.CategoryAmbiguous, "", 0,
			"ambiguous reference to %q: candidates %s", simple, strings.Join(sorted, ", "))
		return "", false
	}
	c.diag.Warn(diagnostic.CategoryAmbiguous, "", 0,
		"ambiguous reference to %q resolved to %s (lexicographically smallest of %d)", simple, sorted[0], len(sorted))
	return sorted[0], true
}

// resolveQualifiedTypeName resolves a dotted name written directly in a type
// position. Only the first segment is resolved as a type name (falling back
// to the file's package); every later segment that starts with an uppercase
// letter is appended as a `$`-nested type, and lowercase segments are joined
// with '.'. Longer prefixes are not tried against the index.
func (c *Collector) resolveQualifiedTypeName(dotted string, file *ast.File, imp *importIndex) string {
	segs := strings.Split(dotted, ".")
	first := segs[0]
	resolvedFirst, ok := c.resolveSimpleTypeName(first, file, imp)
	if !ok {
		resolvedFirst = firstGuessPackageFQN(file, first)
	}
	fqn := resolvedFirst
	for _, seg := range segs[1:] {
		if len(seg) == 0 || !unicode.IsUpper(rune(seg[0])) {
			fqn = fqn + "." + seg
			continue
		}
		fqn = javatype.DotToDollarForNested(fqn, seg)
	}
	return fqn
}

func firstGuessPackageFQN(file *ast.File, name string) string {
	if file.Package != "" {
		return file.Package + "." + name
	}
	return name
}

// resolveTypeRef resolves a syntactic TypeNode to a javatype.TypeRef,
// recursing into type arguments, and synthesizes a TypeStub (rule 1) when
// the resolved FQN isn't already indexed.
func (c *Collector) resolveTypeRef(tn ast.TypeNode, file *ast.File, imp *importIndex, hint stubKindHint) javatype.TypeRef {
	if tn.Void {
		return javatype.Void
	}
	if tn.Primitive {
		return javatype.NewPrimitive(tn.Name, tn.Dims)
	}
	if tn.Name == "?" {
		return javatype.NewReference("java.lang.Object", nil, 0)
	}

	fqn := c.fqnForTypeNodeName(tn.Name, file, imp)

	typeArgs := make([]javatype.TypeRef, 0, len(tn.TypeArgs))
	for _, ta := range tn.TypeArgs {
		typeArgs = append(typeArgs, c.resolveTypeRef(ta, file, imp, hintClass))
	}
	ref := javatype.NewReference(fqn, typeArgs, tn.Dims)
	c.maybeEmitTypeStub(fqn, hint, file)
	return ref
}

// typeRefFromNode is resolveTypeRef without the stub-emission side effect,
// for converting an already-processed declared type (e.g. a scope variable)
// back into a TypeRef.
func (c *Collector) typeRefFromNode(tn ast.TypeNode, file *ast.File, imp *importIndex) javatype.TypeRef {
	if tn.Void {
		return javatype.Void
	}
	if tn.Primitive {
		return javatype.NewPrimitive(tn.Name, tn.Dims)
	}
	return javatype.NewReference(c.fqnForTypeNodeName(tn.Name, file, imp), nil, tn.Dims)
}

func (c *Collector) fqnForTypeNodeName(name string, file *ast.File, imp *importIndex) string {
	if strings.Contains(name, ".") {
		return c.resolveQualifiedTypeName(name, file, imp)
	}
	if fqn, ok := c.resolveSimpleTypeName(name, file, imp); ok {
		return fqn
	}
	return firstGuessPackageFQN(file, name)
}

func (c *Collector) maybeEmitTypeStub(fqn string, hint stubKindHint, file *ast.File) {
	if _, known := c.idx.Lookup(fqn); known {
		return
	}
	if !javatype.ValidStubName(fqn) {
		return
	}
	pkg := javatype.PackageOf(fqn)
	if pkg != "" && pkg != file.Package && !c.idx.PackageExists(pkg) && isWellKnownExternalPackage(pkg) {
		return
	}
	ts := stubplan.TypeStub{FQN: fqn, Kind: stubKindFor(hint)}
	if outer := javatype.OuterOf(fqn); outer != "" {
		ts.OuterFQN = outer
		ts.NonStaticInner = true
	}
	c.plan.AddType(ts)
}
