// Package extractor implements the Diagnostics Plan Extractor (C6, spec.md
// §4.6): it turns "cannot find symbol" compiler diagnostics into additional
// stubplan entries the orchestrator (C7) merges back in for the next repair
// iteration. Grounded on internal/collector's classification shape (the same
// ValidStubName filter, with no PackageExists check; the same
// add-if-not-already-known policy) but working from a compiler diagnostic stream and raw source text
// instead of a parsed AST, since by this point in the loop the slice may
// still fail to parse cleanly around the very symbol that's missing.
package extractor

import (
	"strings"

	"github.com/javastub/javastub/internal/compiler"
	"github.com/javastub/javastub/internal/config"
	"github.com/javastub/javastub/internal/index"
	"github.com/javastub/javastub/internal/javatype"
	"github.com/javastub/javastub/internal/stubplan"
)

// Extractor holds the seen-set (spec.md §4.6 "Dedup") across one Extract
// call; construct a fresh one per repair iteration call site, or reuse it
// across iterations to keep the seen-set cumulative — the orchestrator
// decides which by how long it keeps an instance alive.
type Extractor struct {
	idx      *index.ContextIndex
	seen     map[seenKey]bool
	patterns []string // nested-name suffixes: built-ins plus config.Options.NestedTypePatterns
}

type seenKey struct {
	kind     string
	ownerFQN string
	name     string
	arity    int // -1 when arity has no meaning (field, class)
}

// New returns an Extractor backed by idx, used to avoid re-stubbing members
// or types the index already knows to be declared. opts.NestedTypePatterns
// (spec.md §4.6's naming-pattern heuristic, user-extensible per config.go)
// is merged in on top of the built-in nestedNamePatterns list.
func New(idx *index.ContextIndex, opts config.Options) *Extractor {
	return &Extractor{idx: idx, seen: make(map[seenKey]bool), patterns: nestedSuffixes(opts)}
}

// Extract walks diags, reconstructing a plan entry for every "cannot find
// symbol" ERROR per spec.md §4.6, and returns a fresh Plan containing only
// what this call newly derived (the orchestrator merges it into the running
// plan and uses the merge's added-count to detect a fixed point).
func (e *Extractor) Extract(diags []compiler.Diagnostic) *stubplan.Plan {
	plan := stubplan.New()
	for _, d := range diags {
		if !d.IsCannotFindSymbol() {
			continue
		}
		e.extractOne(d, plan)
	}
	return plan
}

func (e *Extractor) extractOne(d compiler.Diagnostic, plan *stubplan.Plan) {
	owner, ok := resolveOwnerFromSource(d.Path, d.Line)
	if !ok {
		owner, ok = resolveOwnerFromLocation(d.Message)
	}
	if !ok {
		return // spec.md §4.6 (iii): skip if neither owner strategy succeeds
	}

	sym, ok := classifySymbol(d.Message)
	if !ok {
		return
	}

	switch sym.kind {
	case symbolVariable:
		e.extractField(owner, sym, plan)
	case symbolMethod:
		e.extractMethod(owner, d, sym, plan)
	case symbolClass:
		e.extractClass(owner, d, sym, plan)
	}
}

func (e *Extractor) extractField(owner string, sym symbolInfo, plan *stubplan.Plan) {
	if e.idx.HasField(owner, sym.name) {
		return
	}
	key := seenKey{kind: "field", ownerFQN: owner, name: sym.name, arity: -1}
	if e.seen[key] {
		return
	}
	e.seen[key] = true

	fieldType := javatype.NewReference(objectFQN, nil, 0)
	if looksLikeBitField(sym.name) {
		fieldType = javatype.NewPrimitive("int", 0)
	}

	e.ensureOwnerType(owner, plan)
	plan.AddField(stubplan.FieldStub{
		Owner:      ownerRef(owner),
		Name:       sym.name,
		Field:      fieldType,
		Mutable:    true,
		Visibility: stubplan.Public,
	})
}

func (e *Extractor) extractMethod(owner string, d compiler.Diagnostic, sym symbolInfo, plan *stubplan.Plan) {
	arity := len(sym.argTypes)
	if e.idx.HasMethod(owner, sym.name, arity) {
		return
	}
	key := seenKey{kind: "method", ownerFQN: owner, name: sym.name, arity: arity}
	if e.seen[key] {
		return
	}
	e.seen[key] = true

	line := readSourceLine(d.Path, d.Line)
	ret := inferReturnType(line)

	params := make([]javatype.TypeRef, arity)
	for i := range params {
		params[i] = javatype.NewReference(objectFQN, nil, 0)
	}

	e.ensureOwnerType(owner, plan)
	plan.AddMethod(stubplan.MethodStub{
		Owner:      ownerRef(owner),
		Name:       sym.name,
		Return:     ret,
		Params:     params,
		Visibility: stubplan.Public,
	})

	// Mirror duplicate (spec.md §4.2/§4.4): tolerate call sites whose true
	// receiver the collector (or, here, the diagnostic) could not pin down.
	mirrorOwner := "unknown." + javatype.SimpleName(owner)
	mirrorKey := seenKey{kind: "method", ownerFQN: mirrorOwner, name: sym.name, arity: arity}
	if !e.seen[mirrorKey] {
		e.seen[mirrorKey] = true
		e.ensureOwnerType(mirrorOwner, plan)
		plan.AddMethod(stubplan.MethodStub{
			Owner:      ownerRef(mirrorOwner),
			Name:       sym.name,
			Return:     ret,
			Params:     params,
			Visibility: stubplan.Public,
			MirrorOf:   owner,
		})
	}
}

func (e *Extractor) extractClass(owner string, d compiler.Diagnostic, sym symbolInfo, plan *stubplan.Plan) {
	fqn := e.resolveClassFQN(owner, d, sym.name)
	if !javatype.ValidStubName(fqn) {
		return
	}
	if _, known := e.idx.Lookup(fqn); known {
		return
	}
	key := seenKey{kind: "class", ownerFQN: fqn, name: "", arity: -1}
	if e.seen[key] {
		return
	}
	e.seen[key] = true

	ts := stubplan.TypeStub{FQN: fqn, Kind: stubplan.KindClass}
	if outer := javatype.OuterOf(fqn); outer != "" {
		ts.OuterFQN = outer
		ts.NonStaticInner = true
	}
	plan.AddType(ts)
}

// resolveClassFQN implements spec.md §4.6's "Top-level vs nested for
// missing class Y" decision.
func (e *Extractor) resolveClassFQN(owner string, d compiler.Diagnostic, y string) string {
	imports := scanImports(d.Path)

	if explicitFQN, ok := imports.explicit[y]; ok {
		return canonicalizeFQN(explicitFQN)
	}

	for _, wildcardPkg := range imports.wildcard {
		candidate := wildcardPkg + "." + y
		if _, ok := e.idx.Lookup(candidate); ok {
			return candidate
		}
	}

	candidates := e.idx.Candidates(y)
	if len(candidates) == 1 {
		return candidates[0]
	}

	line := readSourceLine(d.Path, d.Line)
	ownerSimple := javatype.SimpleName(owner)
	if looksLikeNestedName(y, e.patterns) || usedAsOwnerDotY(line, ownerSimple, y) {
		return javatype.DotToDollarForNested(owner, y)
	}

	// Conservative fallback: still nested under the diagnostic's owner.
	return javatype.DotToDollarForNested(owner, y)
}

// ensureOwnerType seeds a placeholder TypeStub for owner if the index
// doesn't already know it — mirrors internal/collector's emit* helpers,
// which never add a member to a plan without also guaranteeing the owner
// type itself exists somewhere (real or synthetic).
func (e *Extractor) ensureOwnerType(owner string, plan *stubplan.Plan) {
	if _, ok := e.idx.Lookup(owner); ok {
		return
	}
	if _, ok := plan.Types[owner]; ok {
		return
	}
	ts := stubplan.TypeStub{FQN: owner, Kind: stubplan.KindClass}
	if outer := javatype.OuterOf(owner); outer != "" {
		ts.OuterFQN = outer
		ts.NonStaticInner = true
	}
	plan.AddType(ts)
}

func ownerRef(fqn string) javatype.TypeRef {
	return javatype.NewReference(fqn, nil, 0)
}

// canonicalizeFQN implements spec.md §4.6's "Canonicalization": a dotted
// name with a trailing uppercase-leading segment right after a segment that
// already resolves to a known type is rewritten to join that suffix with
// `$` instead of `.`. Array/primitive/void names are rejected by the caller
// via javatype.ValidStubName, not here.
func canonicalizeFQN(dotted string) string {
	segments := strings.Split(dotted, ".")
	if len(segments) <= 1 {
		return dotted
	}
	out := segments[0]
	joinedRest := false
	for _, seg := range segments[1:] {
		if joinedRest || (len(seg) > 0 && seg[0] >= 'A' && seg[0] <= 'Z' && looksLikeResolvedPrefix(out)) {
			out += "$" + seg
			joinedRest = true
			continue
		}
		out += "." + seg
	}
	return out
}

// looksLikeResolvedPrefix is a purely syntactic stand-in for "resolves to a
// known type": once the prefix itself starts with an uppercase letter (the
// convention every pack example and this domain both follow for type
// names), later uppercase segments are nested types rather than
// sub-packages, since packages are lowercase by convention.
func looksLikeResolvedPrefix(prefix string) bool {
	simple := javatype.SimpleName(prefix)
	return len(simple) > 0 && simple[0] >= 'A' && simple[0] <= 'Z'
}
