package materializer

import (
	"sort"
	"strings"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/javatype"
)

// CleanupSliceImports rewrites one slice compilation unit's import list per
// spec.md §4.4: drop static imports whose owner no longer resolves anywhere
// in the union of slice, stubs, and index; add imports for synthetic types
// referenced from a different package; dedupe. declared answers "does this
// FQN exist in slice ∪ stubs ∪ index" for a static import's owner.
func CleanupSliceImports(file *ast.File, declared func(fqn string) bool, usedSynthetic []string) {
	var kept []ast.Import
	for _, imp := range file.Imports {
		if imp.Static && !imp.Wildcard {
			if idx := strings.LastIndexByte(imp.Path, '.'); idx >= 0 {
				owner := imp.Path[:idx]
				if !declared(owner) {
					continue // dead static import: the referenced owner no longer exists
				}
			}
		}
		kept = append(kept, imp)
	}

	existing := make(map[string]bool, len(kept))
	for _, imp := range kept {
		existing[imp.Path] = true
	}

	for _, fqn := range usedSynthetic {
		pkg := javatype.PackageOf(fqn)
		if pkg == "" || pkg == file.Package {
			continue
		}
		importPath := strings.ReplaceAll(fqn, "$", ".")
		if existing[importPath] {
			continue
		}
		existing[importPath] = true
		kept = append(kept, ast.Import{Path: importPath})
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Path < kept[j].Path })
	file.Imports = dedupeImports(kept)
}

func dedupeImports(imports []ast.Import) []ast.Import {
	seen := make(map[string]bool, len(imports))
	out := make([]ast.Import, 0, len(imports))
	for _, imp := range imports {
		key := imp.Path
		if imp.Static {
			key = "static:" + key
		}
		if imp.Wildcard {
			key += ":*"
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, imp)
	}
	return out
}
