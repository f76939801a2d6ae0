package materializer

import (
	"fmt"
	"os"
	"strings"

	"github.com/javastub/javastub/internal/ast"
)

// WriteCleanedImports rewrites file's on-disk import block to match
// file.Imports, which CleanupSliceImports has already edited in memory.
// The slicer hands the orchestrator real source files on disk (spec.md §1);
// only the import block is rewritten, everything else is left verbatim so
// bodies, comments, and formatting the slicer produced survive untouched.
func WriteCleanedImports(file *ast.File) error {
	if file.Path == "" {
		return nil // no backing file to rewrite (e.g. an in-memory-only unit)
	}
	original, err := os.ReadFile(file.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("materializer: reading %q for import rewrite: %w", file.Path, err)
	}
	rewritten := rewriteImportBlock(string(original), file.Imports)
	if rewritten == string(original) {
		return nil
	}
	if err := os.WriteFile(file.Path, []byte(rewritten), 0o644); err != nil {
		return fmt.Errorf("materializer: writing %q for import rewrite: %w", file.Path, err)
	}
	return nil
}

// rewriteImportBlock drops every "import ..." line from src and reinserts
// imports rendered fresh from the given list right after the package
// declaration (or at the top, for a default-package file).
func rewriteImportBlock(src string, imports []ast.Import) string {
	lines := strings.Split(src, "\n")
	kept := make([]string, 0, len(lines))
	packageIdx := -1
	for _, ln := range lines {
		trimmed := strings.TrimSpace(ln)
		if strings.HasPrefix(trimmed, "import ") {
			continue
		}
		kept = append(kept, ln)
		if packageIdx == -1 && strings.HasPrefix(trimmed, "package ") {
			packageIdx = len(kept) - 1
		}
	}

	if len(imports) == 0 {
		return strings.Join(kept, "\n")
	}

	importLines := make([]string, 0, len(imports))
	for _, imp := range imports {
		stmt := "import "
		if imp.Static {
			stmt += "static "
		}
		stmt += imp.Path + ";"
		importLines = append(importLines, stmt)
	}

	insertAt := packageIdx + 1
	out := make([]string, 0, len(kept)+len(importLines)+2)
	out = append(out, kept[:insertAt]...)
	if insertAt > 0 {
		out = append(out, "")
	}
	out = append(out, importLines...)
	out = append(out, "")
	out = append(out, kept[insertAt:]...)
	return strings.Join(out, "\n")
}
