// Package materializer implements the Stub Materializer (C4, spec.md §4.4):
// it consumes a StubPlan and writes one synthetic compilation unit per
// top-level synthesized type (nested types rendered as nested declarations)
// under the stub output directory.
package materializer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/javastub/javastub/internal/index"
	"github.com/javastub/javastub/internal/javatype"
	"github.com/javastub/javastub/internal/stubplan"
)

// Materializer renders a StubPlan into source files.
type Materializer struct {
	idx *index.ContextIndex
}

// New returns a Materializer. idx is stored but not consulted: whether a
// nested TypeStub is rendered inside its outer or under a dollar-joined
// top-level name depends only on whether the outer is in the plan.
func New(idx *index.ContextIndex) *Materializer {
	return &Materializer{idx: idx}
}

// File is one rendered compilation unit.
type File struct {
	// RelPath is relative to the stub output directory, package-derived.
	RelPath string
	Source  string
}

// genType is one rendered declaration (top-level or nested) with its
// attached members.
type genType struct {
	stub     stubplan.TypeStub
	fqn      string
	children []*genType
	methods  []stubplan.MethodStub
	fields   []stubplan.FieldStub
	ctors    []stubplan.CtorStub

	// dollarName is set when this type's real outer is not itself part of
	// the plan (either it's a genuinely real, already-compiled type, or
	// absent entirely): rather than failing to nest into a file this
	// materializer doesn't own, it's rendered as its own top-level
	// compilation unit whose class name is the literal dollar-joined
	// nested name (legal: '$' is a valid identifier character), which
	// reproduces the same binary name the nested form would have had.
	dollarName string
}

// Materialize renders every TypeStub in plan (plus its attached
// methods/fields/ctors) into one File per top-level-rendered declaration.
func (m *Materializer) Materialize(plan *stubplan.Plan) []File {
	byFQN := make(map[string]*genType, len(plan.Types))
	for fqn, ts := range plan.Types {
		byFQN[fqn] = &genType{stub: ts, fqn: fqn}
	}
	for _, ms := range plan.Methods {
		if g, ok := byFQN[ms.Owner.BareFQN()]; ok {
			g.methods = append(g.methods, ms)
		}
	}
	for _, fs := range plan.Fields {
		if g, ok := byFQN[fs.Owner.BareFQN()]; ok {
			g.fields = append(g.fields, fs)
		}
	}
	for _, cs := range plan.Ctors {
		if g, ok := byFQN[cs.Owner.BareFQN()]; ok {
			g.ctors = append(g.ctors, cs)
		}
	}

	var roots []*genType
	for fqn, g := range byFQN {
		outer := g.stub.OuterFQN
		if outer == "" {
			roots = append(roots, g)
			continue
		}
		if og, ok := byFQN[outer]; ok {
			og.children = append(og.children, g)
			continue
		}
		g.dollarName = dollarClassName(fqn)
		roots = append(roots, g)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].fqn < roots[j].fqn })
	for _, g := range byFQN {
		sort.Slice(g.children, func(i, j int) bool { return g.children[i].fqn < g.children[j].fqn })
	}

	var files []File
	for _, root := range roots {
		files = append(files, m.renderCompilationUnit(root))
	}
	return files
}

// collectTypeRefs gathers every TypeRef (recursively through type
// arguments) mentioned anywhere in g or its nested children — import
// statements live once at the top of the whole compilation unit, shared by
// every nested declaration inside it.
func collectTypeRefs(g *genType) []javatype.TypeRef {
	var refs []javatype.TypeRef
	if g.stub.Superclass != nil {
		refs = append(refs, *g.stub.Superclass)
	}
	refs = append(refs, g.stub.Interfaces...)
	for _, f := range g.fields {
		refs = append(refs, f.Field)
	}
	for _, c := range g.ctors {
		refs = append(refs, c.Params...)
	}
	for _, meth := range g.methods {
		refs = append(refs, meth.Return)
		refs = append(refs, meth.Params...)
		refs = append(refs, meth.Thrown...)
	}
	for _, child := range g.children {
		refs = append(refs, collectTypeRefs(child)...)
	}

	var flat []javatype.TypeRef
	var flatten func(t javatype.TypeRef)
	flatten = func(t javatype.TypeRef) {
		flat = append(flat, t)
		for _, a := range t.TypeArgs {
			flatten(a)
		}
	}
	for _, r := range refs {
		flatten(r)
	}
	return flat
}

// importLines renders one `import X.Y;` per distinct referenced type whose
// package differs from pkg, sorted for determinism.
func importLines(pkg string, refs []javatype.TypeRef) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, r := range refs {
		if r.Kind != javatype.KindReference || r.Name == "" {
			continue
		}
		refPkg := javatype.PackageOf(r.Name)
		if refPkg == "" || refPkg == pkg {
			continue
		}
		path := strings.ReplaceAll(r.Name, "$", ".")
		if seen[path] {
			continue
		}
		seen[path] = true
		paths = append(paths, path)
	}
	sort.Strings(paths)
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = "import " + p + ";"
	}
	return lines
}

func dollarClassName(fqn string) string {
	pkg := javatype.PackageOf(fqn)
	if pkg == "" {
		return fqn
	}
	return fqn[len(pkg)+1:]
}

func (m *Materializer) renderCompilationUnit(root *genType) File {
	pkg := javatype.PackageOf(root.fqn)
	className := root.dollarName
	if className == "" {
		className = javatype.SimpleName(root.fqn)
	}

	e := newEmitter()
	if pkg != "" {
		e.Line("package %s;", pkg)
		e.Blank()
	}

	refs := collectTypeRefs(root)
	for _, imp := range importLines(pkg, refs) {
		e.Line("%s", imp)
	}
	if len(refs) > 0 {
		e.Blank()
	}

	m.renderType(e, root, className)

	relPath := filepath.Join(filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")), className+".java")
	return File{RelPath: relPath, Source: e.String()}
}

func (m *Materializer) renderType(e *emitter, g *genType, name string) {
	header := typeHeader(g.stub, name)
	e.Block("%s", header)

	for _, f := range sortedFields(g.fields) {
		e.Line("%s", renderField(f))
	}
	if len(g.fields) > 0 {
		e.Blank()
	}

	for _, c := range sortedCtors(g.ctors, name) {
		e.Line("%s", c)
	}

	isInterfaceLike := g.stub.Kind == stubplan.KindInterface || g.stub.Kind == stubplan.KindAnnotation
	for _, meth := range sortedMethods(g.methods) {
		renderMethod(e, meth, isInterfaceLike)
	}

	for _, child := range g.children {
		childName := javatype.SimpleName(child.fqn)
		m.renderType(e, child, childName)
	}

	e.EndBlock()
}

func typeHeader(ts stubplan.TypeStub, name string) string {
	var kw string
	switch ts.Kind {
	case stubplan.KindInterface:
		kw = "interface"
	case stubplan.KindAnnotation:
		kw = "@interface"
	case stubplan.KindEnum:
		kw = "enum"
	case stubplan.KindRecord:
		kw = "record"
	default:
		kw = "class"
	}

	vis := "public "
	if ts.NonStaticInner {
		vis = "public "
	}

	decl := vis + kw + " " + name
	if len(ts.TypeParams) > 0 {
		decl += "<" + strings.Join(ts.TypeParams, ", ") + ">"
	}
	if ts.Superclass != nil {
		decl += " extends " + renderTypeRef(*ts.Superclass)
	}
	if len(ts.Interfaces) > 0 {
		kwList := "implements "
		if ts.Kind == stubplan.KindInterface {
			kwList = "extends "
		}
		names := make([]string, len(ts.Interfaces))
		for i, it := range ts.Interfaces {
			names[i] = renderTypeRef(it)
		}
		decl += " " + kwList + strings.Join(names, ", ")
	}
	return decl
}

func renderField(f stubplan.FieldStub) string {
	vis := visibilityKeyword(f.Visibility)
	mods := vis
	if f.IsStatic {
		mods += "static "
	}
	if !f.Mutable {
		mods += "final "
	}
	decl := fmt.Sprintf("%s%s %s", mods, renderTypeRef(f.Field), f.Name)
	if !f.Mutable {
		decl += " = " + zeroValue(f.Field)
	}
	return decl + ";"
}

func renderMethod(e *emitter, m stubplan.MethodStub, ownerIsInterfaceLike bool) {
	vis := visibilityKeyword(m.Visibility)
	mods := vis
	if m.IsStatic {
		mods += "static "
	}
	if ownerIsInterfaceLike && m.DefaultOnInterface {
		mods += "default "
	}

	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		if m.Varargs && i == len(m.Params)-1 {
			params[i] = fmt.Sprintf("%s... arg%d", renderTypeRef(stripOneDim(p)), i)
			continue
		}
		params[i] = fmt.Sprintf("%s arg%d", renderTypeRef(p), i)
	}

	sig := fmt.Sprintf("%s%s %s(%s)", mods, renderTypeRef(m.Return), m.Name, strings.Join(params, ", "))
	if len(m.Thrown) > 0 {
		names := make([]string, len(m.Thrown))
		for i, t := range m.Thrown {
			names[i] = renderTypeRef(t)
		}
		sig += " throws " + strings.Join(names, ", ")
	}

	noBody := ownerIsInterfaceLike && !m.IsStatic && !m.DefaultOnInterface
	if noBody {
		e.Line("%s;", sig)
		return
	}

	e.Block("%s", sig)
	if !m.Return.IsVoid() {
		e.Line("return %s;", zeroValue(m.Return))
	}
	e.EndBlock()
}

func stripOneDim(t javatype.TypeRef) javatype.TypeRef {
	if t.Dims <= 0 {
		return t
	}
	out := t
	out.Dims--
	return out
}

func renderCtor(name string, c stubplan.CtorStub) string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = fmt.Sprintf("%s arg%d", renderTypeRef(p), i)
	}
	return fmt.Sprintf("public %s(%s) {\n    }", name, strings.Join(params, ", "))
}

func visibilityKeyword(v stubplan.Visibility) string {
	switch v {
	case stubplan.Protected:
		return "protected "
	case stubplan.Package:
		return ""
	case stubplan.Private:
		return "private "
	default:
		return "public "
	}
}

// zeroValue renders the type-appropriate zero value spec.md §4.4 requires.
func zeroValue(t javatype.TypeRef) string {
	if t.Dims > 0 {
		return "null"
	}
	if !t.IsPrimitive() {
		return "null"
	}
	switch t.Name {
	case "boolean":
		return "false"
	case "char":
		return "'\\0'"
	case "float":
		return "0.0f"
	case "double":
		return "0.0"
	default:
		return "0"
	}
}

func renderTypeRef(t javatype.TypeRef) string {
	var sb strings.Builder
	sb.WriteString(strings.ReplaceAll(t.Name, "$", "."))
	if len(t.TypeArgs) > 0 {
		sb.WriteByte('<')
		for i, a := range t.TypeArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(renderTypeRef(a))
		}
		sb.WriteByte('>')
	}
	for i := 0; i < t.Dims; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func sortedFields(fields []stubplan.FieldStub) []stubplan.FieldStub {
	out := append([]stubplan.FieldStub(nil), fields...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedMethods(methods []stubplan.MethodStub) []stubplan.MethodStub {
	out := append([]stubplan.MethodStub(nil), methods...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return len(out[i].Params) < len(out[j].Params)
	})
	return out
}

func sortedCtors(ctors []stubplan.CtorStub, name string) []string {
	sortable := append([]stubplan.CtorStub(nil), ctors...)
	sort.Slice(sortable, func(i, j int) bool { return len(sortable[i].Params) < len(sortable[j].Params) })
	rendered := make([]string, len(sortable))
	for i, c := range sortable {
		rendered[i] = renderCtor(name, c)
	}
	return rendered
}
