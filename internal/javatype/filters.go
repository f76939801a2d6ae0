package javatype

import "strings"

// ValidStubName reports whether fqn may legally become a synthetic type's
// canonical name, applying the filters from spec.md §4.2:
//   - reject names containing "[]" (array dimensions are not identity)
//   - reject primitives and "void"
//   - reject names ending in "-", "_", or "." (incomplete parse artifacts)
//
// The fourth filter ("packaged prefix must exist as a directory when the
// prefix is claimed to be a package") is index-dependent and is not applied
// here. ContextIndex.PackageExists answers it; the collector consults it only
// for type references into well-known external packages, and the extractor
// does not consult it.
func ValidStubName(fqn string) bool {
	if fqn == "" {
		return false
	}
	if strings.Contains(fqn, "[]") || strings.Contains(fqn, "[") {
		return false
	}
	if fqn == "void" || IsPrimitiveName(fqn) {
		return false
	}
	last := fqn[len(fqn)-1]
	if last == '-' || last == '_' || last == '.' {
		return false
	}
	return true
}
