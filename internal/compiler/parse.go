package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headerRe  = regexp.MustCompile(`^(.+\.java):(\d+): (error|warning): (.*)$`)
	caretRe   = regexp.MustCompile(`^(\s*)\^\s*$`)
	summaryRe = regexp.MustCompile(`^\d+ (error|errors|warning|warnings)$`)
)

// ParseJavacOutput turns javac's stderr stream into a Diagnostic slice.
// javac's own diagnostic syntax has no library in the pack to lean on — it
// is fixed, line-oriented, and not worth a regex engine heavier than the
// standard library's; internal/extractor reaches for regexp2 instead, for
// the "symbol: variable x" style message-body sub-patterns with named
// groups (its "location: class Y" capture stays on the standard library).
func ParseJavacOutput(output string) []Diagnostic {
	var diags []Diagnostic
	var cur *Diagnostic

	flush := func() {
		if cur != nil {
			diags = append(diags, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(output, "\n") {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			kind := KindError
			if m[3] == "warning" {
				kind = KindWarning
			}
			lineNo, _ := strconv.Atoi(m[2])
			cur = &Diagnostic{Kind: kind, Path: m[1], Line: lineNo, Message: m[4]}
			continue
		}
		if cur == nil {
			continue
		}
		if m := caretRe.FindStringSubmatch(line); m != nil {
			cur.Column = len(m[1]) + 1
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "symbol:") || strings.HasPrefix(trimmed, "location:") {
			cur.Message += "\n" + trimmed
			continue
		}
		if summaryRe.MatchString(trimmed) {
			flush()
		}
	}
	flush()
	return diags
}
