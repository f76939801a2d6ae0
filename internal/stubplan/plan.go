// Package stubplan holds the immutable value types that describe everything
// a repair iteration has decided to synthesize (spec.md §3 StubPlan, §4.3
// Stub Plan Model). No resolution logic lives here — only the plan shape,
// identity keys, and the canonicalization/dedup helpers the collector,
// extractor, and materializer all share.
package stubplan

import (
	"sort"

	"github.com/javastub/javastub/internal/javatype"
	"github.com/zeebo/xxh3"
)

// TypeKind is the closed set of synthesizable type declarations.
type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindAnnotation
	KindEnum
	KindRecord
)

// Visibility mirrors the language's member-visibility modifiers.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Package
	Private
)

// TypeStub describes a synthetic type declaration.
type TypeStub struct {
	FQN             string
	Kind            TypeKind
	OuterFQN        string // "" for top-level
	NonStaticInner  bool
	TypeParams      []string // declared generic parameter names, in order
	Superclass      *javatype.TypeRef
	Interfaces      []javatype.TypeRef
}

// TypeKey is the identity key for a TypeStub: its FQN alone (spec.md §3:
// `types: map FQN → TypeStub`).
func (t TypeStub) TypeKey() string { return t.FQN }

// MethodStub describes a synthetic method or interface abstract/default
// member.
type MethodStub struct {
	Owner             javatype.TypeRef
	Name              string
	Return            javatype.TypeRef
	Params            []javatype.TypeRef
	IsStatic          bool
	Visibility        Visibility
	Thrown            []javatype.TypeRef
	DefaultOnInterface bool
	Varargs           bool
	// MirrorOf, when non-empty, names the catch-all `unknown.*` owner FQN
	// this stub is a mirror duplicate for (spec.md §4.4 "Mirror duplication").
	MirrorOf string
}

// MethodKey is `(ownerFqn, name, arity)` per spec.md §3.
type MethodKey struct {
	OwnerFQN string
	Name     string
	Arity    int
}

func (m MethodStub) Key() MethodKey {
	return MethodKey{OwnerFQN: m.Owner.BareFQN(), Name: m.Name, Arity: len(m.Params)}
}

// PreciseKey additionally encodes normalized parameter simple names, for the
// finer dedup spec.md §3 calls for "when parameter information is available".
type PreciseMethodKey struct {
	MethodKey
	ParamSimpleNames string
}

func (m MethodStub) PreciseKey() PreciseMethodKey {
	return PreciseMethodKey{MethodKey: m.Key(), ParamSimpleNames: normalizedParamNames(m.Params)}
}

func normalizedParamNames(params []javatype.TypeRef) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = javatype.SimpleName(p.BareFQN())
	}
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}

// FieldStub describes a synthetic field.
type FieldStub struct {
	Owner      javatype.TypeRef
	Name       string
	Field      javatype.TypeRef
	IsStatic   bool
	Mutable    bool // default true; assignment-target fields force this true
	Visibility Visibility
}

// FieldKey is `(ownerFqn, name)` — arity has no meaning for fields, so the
// multiset key spec.md §3 describes collapses to name identity.
type FieldKey struct {
	OwnerFQN string
	Name     string
}

func (f FieldStub) Key() FieldKey {
	return FieldKey{OwnerFQN: f.Owner.BareFQN(), Name: f.Name}
}

// CtorStub describes a synthetic constructor.
type CtorStub struct {
	Owner  javatype.TypeRef
	Params []javatype.TypeRef
}

// CtorKey is `(ownerFqn, arity)`.
type CtorKey struct {
	OwnerFQN string
	Arity    int
}

func (c CtorStub) Key() CtorKey {
	return CtorKey{OwnerFQN: c.Owner.BareFQN(), Arity: len(c.Params)}
}

// Plan aggregates the four closed stub kinds, deduplicated by identity key
// (P1: "emitted methods/fields/ctors are unique by their identity keys").
// Entries are only ever added, never removed (P6: monotone repair).
type Plan struct {
	Types   map[string]TypeStub
	Methods map[MethodKey]MethodStub
	Fields  map[FieldKey]FieldStub
	Ctors   map[CtorKey]CtorStub
}

// New returns an empty Plan ready for incremental merges.
func New() *Plan {
	return &Plan{
		Types:   make(map[string]TypeStub),
		Methods: make(map[MethodKey]MethodStub),
		Fields:  make(map[FieldKey]FieldStub),
		Ctors:   make(map[CtorKey]CtorStub),
	}
}

// AddType inserts a TypeStub if its key is new. Returns true if it was added.
func (p *Plan) AddType(t TypeStub) bool {
	if _, ok := p.Types[t.TypeKey()]; ok {
		return false
	}
	p.Types[t.TypeKey()] = t
	return true
}

// AddMethod inserts a MethodStub if its key is new.
func (p *Plan) AddMethod(m MethodStub) bool {
	k := m.Key()
	if _, ok := p.Methods[k]; ok {
		return false
	}
	p.Methods[k] = m
	return true
}

// AddField inserts a FieldStub if its key is new.
func (p *Plan) AddField(f FieldStub) bool {
	k := f.Key()
	if existing, ok := p.Fields[k]; ok {
		// Assignment targets widen an existing stub to mutable rather than
		// being rejected outright — the merge policy from spec.md §4.4.
		if f.Mutable && !existing.Mutable {
			existing.Mutable = true
			p.Fields[k] = existing
		}
		return false
	}
	p.Fields[k] = f
	return true
}

// AddCtor inserts a CtorStub if its key is new.
func (p *Plan) AddCtor(c CtorStub) bool {
	k := c.Key()
	if _, ok := p.Ctors[k]; ok {
		return false
	}
	p.Ctors[k] = c
	return true
}

// Merge folds other into p, returning the number of genuinely new entries
// added across all four kinds. Used by the repair loop orchestrator (C7) to
// fold extractor output back into the running plan.
func (p *Plan) Merge(other *Plan) int {
	added := 0
	for _, t := range other.Types {
		if p.AddType(t) {
			added++
		}
	}
	for _, m := range other.Methods {
		if p.AddMethod(m) {
			added++
		}
	}
	for _, f := range other.Fields {
		if p.AddField(f) {
			added++
		}
	}
	for _, c := range other.Ctors {
		if p.AddCtor(c) {
			added++
		}
	}
	return added
}

// Size returns the total entry count across all four kinds.
func (p *Plan) Size() int {
	return len(p.Types) + len(p.Methods) + len(p.Fields) + len(p.Ctors)
}

// Hash returns a stable xxh3 hash of the plan's sorted identity keys (plus
// each type's kind), equal for plans with the same entries. Nothing in the
// repair loop or the materializer calls it.
func (p *Plan) Hash() uint64 {
	h := xxh3.New()
	for _, fqn := range sortedKeys(p.Types) {
		h.WriteString(fqn)
		t := p.Types[fqn]
		h.WriteString(string(rune('0' + t.Kind)))
	}
	for _, mk := range sortedMethodKeys(p.Methods) {
		h.WriteString(mk.OwnerFQN)
		h.WriteString(mk.Name)
		h.WriteByte(byte(mk.Arity))
	}
	for _, fk := range sortedFieldKeys(p.Fields) {
		h.WriteString(fk.OwnerFQN)
		h.WriteString(fk.Name)
	}
	for _, ck := range sortedCtorKeys(p.Ctors) {
		h.WriteString(ck.OwnerFQN)
		h.WriteByte(byte(ck.Arity))
	}
	return h.Sum64()
}

func sortedKeys(m map[string]TypeStub) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMethodKeys(m map[MethodKey]MethodStub) []MethodKey {
	keys := make([]MethodKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].OwnerFQN != keys[j].OwnerFQN {
			return keys[i].OwnerFQN < keys[j].OwnerFQN
		}
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Arity < keys[j].Arity
	})
	return keys
}

func sortedFieldKeys(m map[FieldKey]FieldStub) []FieldKey {
	keys := make([]FieldKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].OwnerFQN != keys[j].OwnerFQN {
			return keys[i].OwnerFQN < keys[j].OwnerFQN
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

func sortedCtorKeys(m map[CtorKey]CtorStub) []CtorKey {
	keys := make([]CtorKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].OwnerFQN != keys[j].OwnerFQN {
			return keys[i].OwnerFQN < keys[j].OwnerFQN
		}
		return keys[i].Arity < keys[j].Arity
	})
	return keys
}
