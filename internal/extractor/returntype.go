package extractor

import (
	"regexp"
	"strings"

	"github.com/javastub/javastub/internal/javatype"
)

// objectFQN is the top type every "otherwise" fallback in this package
// stubs toward, per spec.md's "top type" shorthand for java.lang.Object.
const objectFQN = "java.lang.Object"

// assignRe matches rule 3: "<Type> <ident> = ... <call> ...".
var assignRe = regexp.MustCompile(`^\s*(?:final\s+)?([A-Za-z_$][A-Za-z0-9_$.<>\[\],\s]*?)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=`)

// knownSimpleTypes maps common simple names to their java.lang/java.util FQN,
// mirroring the collector's javaLangImplicit table for the subset return
// types actually show up as.
var knownSimpleTypes = map[string]string{
	"String": "java.lang.String", "Object": "java.lang.Object",
	"Integer": "java.lang.Integer", "Long": "java.lang.Long",
	"Double": "java.lang.Double", "Float": "java.lang.Float",
	"Boolean": "java.lang.Boolean", "Byte": "java.lang.Byte",
	"Short": "java.lang.Short", "Character": "java.lang.Character",
	"List": "java.util.List", "Map": "java.util.Map", "Set": "java.util.Set",
	"Collection": "java.util.Collection", "Iterator": "java.util.Iterator",
}

// inferReturnType implements spec.md §4.6's "Return-type inference from
// source context", applied to the single trimmed line at diag.line.
func inferReturnType(line string) javatype.TypeRef {
	trimmed := strings.TrimSpace(line)

	// Rule 1: ends with ';' at top level (no open brace on the line) and is
	// not a rule-3 declaration → void.
	if strings.HasSuffix(trimmed, ";") && !strings.Contains(trimmed, "{") && !assignRe.MatchString(trimmed) {
		return javatype.Void
	}

	// Rule 2: appears inside an `if (...)` condition → boolean.
	if strings.HasPrefix(trimmed, "if") || strings.HasPrefix(trimmed, "if(") ||
		strings.Contains(trimmed, "if (") || strings.Contains(trimmed, "if(") ||
		strings.Contains(trimmed, "while (") || strings.Contains(trimmed, "while(") {
		return javatype.NewPrimitive("boolean", 0)
	}

	// Rule 3: "<Type> <ident> = ... <call> ...".
	if m := assignRe.FindStringSubmatch(trimmed); m != nil {
		return resolveDeclaredType(strings.TrimSpace(m[1]))
	}

	// Rule 4: otherwise, top type.
	return javatype.NewReference(objectFQN, nil, 0)
}

func resolveDeclaredType(raw string) javatype.TypeRef {
	dims := strings.Count(raw, "[]")
	raw = strings.ReplaceAll(raw, "[]", "")
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexByte(raw, '<'); idx >= 0 {
		raw = raw[:idx]
	}
	raw = strings.TrimSpace(raw)

	if javatype.IsPrimitiveName(raw) {
		return javatype.NewPrimitive(raw, dims)
	}
	if fqn, ok := knownSimpleTypes[raw]; ok {
		return javatype.NewReference(fqn, nil, dims)
	}
	// Anything else is "left as a TypeRef to be stubbed" per spec.md — the
	// caller still has to resolve it against an import list to get a real
	// FQN; here we only have the bare written name.
	return javatype.NewReference(raw, nil, dims)
}
