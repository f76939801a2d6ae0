// Package index implements the Source Root Scanner & Context Index (spec.md
// §4.1): it walks one or more source roots, best-effort-parses every file,
// and records a read-only, concurrency-safe map from simple names to
// candidate FQNs plus enough per-type metadata (superclass/interfaces as
// written, declared members) to drive disambiguation and the lazy
// superclass-chain walk. Nothing here resolves anything beyond same-package
// defaulting; full disambiguation is the collector's job (internal/collector).
package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/diagnostic"
	"github.com/javastub/javastub/internal/parser"
	"github.com/javastub/javastub/internal/stubplan"
)

// sourceExt is the file extension the scanner treats as source. The
// slicer/compiler ahead of the core are out-of-scope external collaborators
// (spec.md §1), but the scanner still needs to know what a source file looks
// like to walk the repository on its own.
const sourceExt = ".java"

// skipFileNames are declaration-only files with no types worth indexing.
var skipFileNames = map[string]bool{
	"package-info.java": true,
	"module-info.java":  true,
}

// MethodSig is a declared method's identity as observed by the scanner:
// enough to answer "does fqn already declare a method named X with arity N"
// and the finer "...with these parameter simple names" questions the
// collector and extractor need per spec.md §3.
type MethodSig struct {
	Name             string
	Arity            int
	ParamSimpleNames string
}

// TypeInfo is everything the scanner recorded for one declared type.
type TypeInfo struct {
	FQN               string
	Kind              stubplan.TypeKind
	Package           string
	OuterFQN          string // "" for top-level
	SuperclassWritten string // as written in source; "" if none
	InterfacesWritten []string
	TypeParams        []string
	Methods           map[MethodSig]bool
	Fields            map[string]bool
}

// ContextIndex is the read-only, concurrency-safe index built once per
// repository per session (spec.md §3 "ContextIndex"). Every field is
// populated during Build and never mutated afterward, so concurrent reads
// from multiple per-method workers need no locking.
type ContextIndex struct {
	bySimpleName map[string][]string
	types        map[string]*TypeInfo
	packages     map[string]bool
}

func declKindToStub(k ast.TypeDeclKind) stubplan.TypeKind {
	switch k {
	case ast.DeclInterface:
		return stubplan.KindInterface
	case ast.DeclAnnotation:
		return stubplan.KindAnnotation
	case ast.DeclEnum:
		return stubplan.KindEnum
	case ast.DeclRecord:
		return stubplan.KindRecord
	default:
		return stubplan.KindClass
	}
}

// Build scans every root (after FilterSourceRoots pruning), best-effort
// parsing each source file with bounded concurrency, and returns the
// resulting ContextIndex. Parse failures are recorded on diag and otherwise
// silently skipped, per spec.md §4.1.
func Build(ctx context.Context, roots []string, diag *diagnostic.Collector) (*ContextIndex, error) {
	roots = FilterSourceRoots(roots)

	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if isTestSegment(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != sourceExt {
				return nil
			}
			if skipFileNames[filepath.Base(path)] {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("index: walking root %q: %w", root, err)
		}
	}
	sort.Strings(files)

	results := make([][]*TypeInfo, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			data, err := os.ReadFile(path)
			if err != nil {
				diag.Warn(diagnostic.CategoryParseSkipped, path, 0, "unreadable: %v", err)
				return nil
			}
			file, err := parser.Parse(path, string(data))
			if err != nil {
				diag.Warn(diagnostic.CategoryParseSkipped, path, 0, "parse failed: %v", err)
				return nil
			}
			results[i] = collectTypeInfos(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	ci := &ContextIndex{
		bySimpleName: make(map[string][]string),
		types:        make(map[string]*TypeInfo),
		packages:     make(map[string]bool),
	}
	for _, infos := range results {
		for _, info := range infos {
			if _, exists := ci.types[info.FQN]; exists {
				continue // first declaration wins; duplicates are rare and non-fatal
			}
			ci.types[info.FQN] = info
			ci.packages[info.Package] = true
			simple := simpleNameOf(info.FQN)
			ci.bySimpleName[simple] = append(ci.bySimpleName[simple], info.FQN)
		}
	}
	for k := range ci.bySimpleName {
		sort.Strings(ci.bySimpleName[k])
	}
	return ci, nil
}

func simpleNameOf(fqn string) string {
	idx := strings.LastIndexAny(fqn, ".$")
	if idx < 0 {
		return fqn
	}
	return fqn[idx+1:]
}

// collectTypeInfos walks every top-level and nested TypeDecl in file and
// returns one TypeInfo per declaration.
func collectTypeInfos(file *ast.File) []*TypeInfo {
	var out []*TypeInfo
	var walk func(td *ast.TypeDecl, outerFQN string)
	walk = func(td *ast.TypeDecl, outerFQN string) {
		fqn := td.Name
		if outerFQN != "" {
			fqn = outerFQN + "$" + td.Name
		} else if file.Package != "" {
			fqn = file.Package + "." + td.Name
		}

		info := &TypeInfo{
			FQN:        fqn,
			Kind:       declKindToStub(td.Kind),
			Package:    file.Package,
			OuterFQN:   outerFQN,
			TypeParams: td.TypeParams,
			Methods:    make(map[MethodSig]bool),
			Fields:     make(map[string]bool),
		}
		if len(td.Extends) > 0 {
			info.SuperclassWritten = typeNodeName(td.Extends[0])
			// interfaces additionally extending interfaces: model every
			// further Extends entry as an interface edge too.
			for _, e := range td.Extends[1:] {
				info.InterfacesWritten = append(info.InterfacesWritten, typeNodeName(e))
			}
		}
		for _, im := range td.Implements {
			info.InterfacesWritten = append(info.InterfacesWritten, typeNodeName(im))
		}
		for _, m := range td.Methods {
			info.Methods[MethodSig{Name: m.Name, Arity: len(m.Params), ParamSimpleNames: paramSimpleNames(m.Params)}] = true
		}
		for _, f := range td.Fields {
			info.Fields[f.Name] = true
		}
		out = append(out, info)

		for _, nested := range td.Nested {
			walk(nested, fqn)
		}
	}
	for _, td := range file.Types {
		walk(td, "")
	}
	return out
}

func typeNodeName(tn ast.TypeNode) string { return tn.Name }

func paramSimpleNames(params []ast.Param) string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = simpleNameOf(p.Type.Name)
	}
	return strings.Join(names, ",")
}

// Candidates returns every FQN indexed under simpleName, sorted
// lexicographically (the order the collector's lenient-ambiguity tiebreak
// relies on).
func (ci *ContextIndex) Candidates(simpleName string) []string {
	return ci.bySimpleName[simpleName]
}

// Lookup returns the TypeInfo for a known FQN.
func (ci *ContextIndex) Lookup(fqn string) (*TypeInfo, bool) {
	info, ok := ci.types[fqn]
	return info, ok
}

// PackageExists reports whether pkg was observed as a declaring package of
// at least one indexed type — the scanner-backed half of the stub-name
// filter spec.md §4.2 describes ("packaged prefix must exist as a
// directory").
func (ci *ContextIndex) PackageExists(pkg string) bool {
	return ci.packages[pkg]
}

// HasMethod reports whether fqn declares a method of the given name/arity.
func (ci *ContextIndex) HasMethod(fqn, name string, arity int) bool {
	info, ok := ci.types[fqn]
	if !ok {
		return false
	}
	for sig := range info.Methods {
		if sig.Name == name && sig.Arity == arity {
			return true
		}
	}
	return false
}

// HasField reports whether fqn declares a field of the given name.
func (ci *ContextIndex) HasField(fqn, name string) bool {
	info, ok := ci.types[fqn]
	if !ok {
		return false
	}
	return info.Fields[name]
}

// TypeKind returns the declared kind of fqn, if indexed.
func (ci *ContextIndex) TypeKind(fqn string) (stubplan.TypeKind, bool) {
	info, ok := ci.types[fqn]
	if !ok {
		return 0, false
	}
	return info.Kind, true
}
