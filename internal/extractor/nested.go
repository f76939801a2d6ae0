package extractor

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/javastub/javastub/internal/config"
)

// importLineRe matches both "import X.Y;" and "import static X.Y;" lines,
// capturing the static keyword and the dotted path.
var importLineRe = regexp.MustCompile(`^\s*import\s+(static\s+)?([A-Za-z_$][A-Za-z0-9_$.]*)(\.\*)?\s*;`)

// fileImports is the subset of a compilation unit's import list the
// top-level-vs-nested decision needs, scanned straight from source text
// rather than a full parse (the extractor only ever sees diagnostics plus
// file paths, never a parsed AST).
type fileImports struct {
	explicit map[string]string // simple name -> dotted FQN
	wildcard []string          // wildcard-imported package prefixes, ".*" stripped
}

func scanImports(path string) fileImports {
	fi := fileImports{explicit: make(map[string]string)}
	f, err := os.Open(path)
	if err != nil {
		return fi
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := importLineRe.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		dotted := m[2]
		if m[3] != "" {
			fi.wildcard = append(fi.wildcard, dotted)
			continue
		}
		if idx := strings.LastIndexByte(dotted, '.'); idx >= 0 {
			fi.explicit[dotted[idx+1:]] = dotted
		}
	}
	return fi
}

// nestedNamePatterns is the ecosystem heuristic spec.md §9 flags as an open
// question: names matching one of these are treated as nested-type-shaped
// even with no index evidence either way.
var nestedNamePatterns = []string{"Builder", "OrBuilder", "Impl", "Internal", "Default"}

// nestedSuffixes merges the built-in heuristic with the caller-supplied
// config.Options.NestedTypePatterns, which arrive glob-ish ("*Builder",
// "*Entry") per that field's doc comment; only the literal suffix after the
// leading '*' is used, matching how nestedNamePatterns is written.
func nestedSuffixes(opts config.Options) []string {
	suffixes := append([]string(nil), nestedNamePatterns...)
	for _, p := range opts.NestedTypePatterns {
		suffixes = append(suffixes, strings.TrimPrefix(p, "*"))
	}
	return suffixes
}

func looksLikeNestedName(simple string, patterns []string) bool {
	for _, suffix := range patterns {
		if suffix != "" && strings.HasSuffix(simple, suffix) {
			return true
		}
	}
	return false
}

// readSourceLine returns the 1-based lineNo line of path, or "" if it can't
// be read or the file is shorter than lineNo.
func readSourceLine(path string, lineNo int) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		if n == lineNo {
			return scanner.Text()
		}
	}
	return ""
}

// usedAsOwnerDotY reports whether the source line uses "owner.y" (the
// qualified-usage evidence spec.md §4.6's nested decision's fourth branch
// names alongside the naming-pattern heuristic).
func usedAsOwnerDotY(line, ownerSimple, y string) bool {
	return strings.Contains(line, ownerSimple+"."+y)
}
