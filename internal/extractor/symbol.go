package extractor

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// symbolKind discriminates the three "cannot find symbol" shapes spec.md
// §4.6 names.
type symbolKind int

const (
	symbolUnknown symbolKind = iota
	symbolVariable
	symbolMethod
	symbolClass
)

// These patterns lean on regexp2 for its named-group captures over javac's
// "symbol: <kind> <name>(<args>)" message body — a backreference-free
// pattern regexp could express too, but the extractor's job is picking
// sub-patterns apart by name rather than by submatch index, which is the
// seam regexp2 actually helps with (internal/compiler's parse.go stays on
// stdlib regexp for the surrounding fixed, line-oriented javac syntax).
var (
	variableRe = regexp2.MustCompile(`symbol:\s*variable\s+(?<name>[A-Za-z_$][A-Za-z0-9_$]*)`, regexp2.None)
	methodRe   = regexp2.MustCompile(`symbol:\s*method\s+(?<name>[A-Za-z_$][A-Za-z0-9_$]*)\((?<args>[^)]*)\)`, regexp2.None)
	classRe    = regexp2.MustCompile(`symbol:\s*class\s+(?<name>[A-Za-z_$][A-Za-z0-9_$]*)`, regexp2.None)
)

// symbolInfo holds whatever the message body yielded.
type symbolInfo struct {
	kind     symbolKind
	name     string
	argTypes []string // raw, comma-split, trimmed; method kind only
}

// classifySymbol implements spec.md §4.6's "Symbol kind" discrimination.
func classifySymbol(message string) (symbolInfo, bool) {
	if m, ok := matchNamed(methodRe, message); ok {
		args := splitArgs(m["args"])
		return symbolInfo{kind: symbolMethod, name: m["name"], argTypes: args}, true
	}
	if m, ok := matchNamed(variableRe, message); ok {
		return symbolInfo{kind: symbolVariable, name: m["name"]}, true
	}
	if m, ok := matchNamed(classRe, message); ok {
		return symbolInfo{kind: symbolClass, name: m["name"]}, true
	}
	return symbolInfo{}, false
}

func matchNamed(re *regexp2.Regexp, s string) (map[string]string, bool) {
	m, err := re.FindStringMatch(s)
	if err != nil || m == nil {
		return nil, false
	}
	out := make(map[string]string)
	for _, g := range m.Groups() {
		if g.Name != "" && g.Name != "0" {
			out[g.Name] = g.String()
		}
	}
	return out, true
}

func splitArgs(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// looksLikeBitField matches the "bitField0_", "bitField12_" naming convention
// spec.md §4.6 calls out as the integer-primitive heuristic for inferred
// variable stubs (a protobuf-lite code-generation idiom).
var bitFieldNameSuffix = "_"

func looksLikeBitField(name string) bool {
	if !strings.HasPrefix(name, "bitField") {
		return false
	}
	rest := strings.TrimPrefix(name, "bitField")
	if !strings.HasSuffix(rest, bitFieldNameSuffix) {
		return false
	}
	digits := strings.TrimSuffix(rest, bitFieldNameSuffix)
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
