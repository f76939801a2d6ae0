package index

import (
	"path/filepath"
	"sort"
	"strings"
)

// isTestSegment reports whether a path segment looks like a test directory,
// always excluded regardless of which priority bucket a root falls into.
func isTestSegment(seg string) bool {
	s := strings.ToLower(seg)
	return s == "test" || s == "tests" || s == "androidtest" || s == "testfixtures"
}

func hasTestSegment(root string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(root), "/") {
		if isTestSegment(seg) {
			return true
		}
	}
	return false
}

// FilterSourceRoots implements the multi-module filtering heuristic from
// spec.md §4.1: when more than a handful of candidate roots are discovered,
// prune to a preferred set using a fixed priority list, falling back to the
// five shortest paths if nothing matches. Test directories are always
// excluded first.
func FilterSourceRoots(candidates []string) []string {
	var roots []string
	for _, c := range candidates {
		if !hasTestSegment(c) {
			roots = append(roots, c)
		}
	}
	if len(roots) <= 3 {
		return roots
	}

	buckets := []func(string) bool{
		func(r string) bool {
			// "src/main/<langdir>": a root ending in .../src/main/<one dir>,
			// e.g. .../src/main/java.
			segs := strings.Split(filepath.ToSlash(r), "/")
			if len(segs) < 3 {
				return false
			}
			return segs[len(segs)-3] == "src" && segs[len(segs)-2] == "main"
		},
		func(r string) bool {
			slash := filepath.ToSlash(r)
			return strings.Contains(slash, "/library/src") || strings.Contains(slash, "/app/src") ||
				strings.HasPrefix(slash, "library/src") || strings.HasPrefix(slash, "app/src")
		},
		func(r string) bool {
			return filepath.Base(r) == "src"
		},
		func(r string) bool {
			slash := "/" + filepath.ToSlash(r) + "/"
			return strings.Contains(slash, "/core/") || strings.Contains(slash, "/main/") || strings.Contains(slash, "/api/")
		},
	}

	for _, match := range buckets {
		var picked []string
		for _, r := range roots {
			if match(r) {
				picked = append(picked, r)
			}
		}
		if len(picked) > 0 {
			return picked
		}
	}

	sort.Slice(roots, func(i, j int) bool { return len(roots[i]) < len(roots[j]) })
	if len(roots) > 5 {
		roots = roots[:5]
	}
	return roots
}
