package index

import "strings"

// resolveWritten best-effort resolves a superclass/interface name exactly as
// written in source (possibly simple, possibly already dotted) against the
// index, from the perspective of a type declared in fromPackage. This is
// deliberately simpler than the collector's full disambiguation order
// (spec.md §4.2): same-package first, then sole-candidate, then the
// lexicographically smallest of several — there is no import list available
// at this layer, only the index.
func (ci *ContextIndex) resolveWritten(written, fromPackage string) (string, bool) {
	if written == "" {
		return "", false
	}
	if strings.ContainsAny(written, ".$") {
		if _, ok := ci.types[written]; ok {
			return written, true
		}
		// Might be a simple name that happens to contain no separator after
		// stripping generics the caller already dropped; fall through to the
		// simple-name path using its last segment.
	}
	simple := simpleNameOf(written)

	if fromPackage != "" {
		samePkg := fromPackage + "." + simple
		if _, ok := ci.types[samePkg]; ok {
			return samePkg, true
		}
	}

	candidates := ci.bySimpleName[simple]
	switch len(candidates) {
	case 0:
		return "", false
	case 1:
		return candidates[0], true
	default:
		return candidates[0], true // already sorted; lexicographically smallest
	}
}

// SuperTypeChain returns the superclass chain (one FQN per ancestor) followed
// by the breadth-first interface closure, both depth-capped at 20 and
// cycle-safe via a visited set, per spec.md §3/§4.1.
func (ci *ContextIndex) SuperTypeChain(fqn string) []string {
	var chain []string

	visited := map[string]bool{fqn: true}
	cur := fqn
	for depth := 0; depth < 20; depth++ {
		info, ok := ci.types[cur]
		if !ok || info.SuperclassWritten == "" {
			break
		}
		resolved, ok := ci.resolveWritten(info.SuperclassWritten, info.Package)
		if !ok || visited[resolved] {
			break
		}
		visited[resolved] = true
		chain = append(chain, resolved)
		cur = resolved
	}

	ifaceVisited := map[string]bool{}
	queue := []string{fqn}
	for depth := 0; depth < 20 && len(queue) > 0; depth++ {
		var next []string
		for _, q := range queue {
			info, ok := ci.types[q]
			if !ok {
				continue
			}
			for _, written := range info.InterfacesWritten {
				resolved, ok := ci.resolveWritten(written, info.Package)
				if !ok || ifaceVisited[resolved] {
					continue
				}
				ifaceVisited[resolved] = true
				chain = append(chain, resolved)
				next = append(next, resolved)
			}
		}
		queue = next
	}

	return chain
}
