// Package reporter implements the Result Reporter (C8, spec.md §4.8): given
// a successful compile, it locates the target method inside the emitted
// classfile set by binary name and descriptor, confirms it carries a body,
// and produces the status record the Output Contract (spec.md §6) names.
package reporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/javastub/javastub/internal/javatype"
)

// Status is the closed set spec.md §4.8 names.
type Status string

const (
	StatusOK                    Status = "OK"
	StatusFailedParse           Status = "FAILED_PARSE"
	StatusFailedResolve         Status = "FAILED_RESOLVE"
	StatusFailedCompile         Status = "FAILED_COMPILE"
	StatusMissingDep            Status = "MISSING_DEP"
	StatusTimeout               Status = "TIMEOUT"
	StatusTargetMethodNotEmitted Status = "TARGET_METHOD_NOT_EMITTED"
	StatusInternalError         Status = "INTERNAL_ERROR"
)

// Result is the Output Contract record (spec.md §6).
type Result struct {
	Status          Status
	ClassesOutDir   string
	TargetClass     string
	EmittedClasses  []string
	TargetClassFile string // relative under ClassesOutDir, "" if not found
	TargetHasCode   bool
	UsedStubs       bool
	DepsResolved    bool
	ElapsedMs       int64
	Notes           string
}

// Report locates ownerFQN/name/descriptor among emittedClasses under outDir
// and produces a Result. emittedClasses and ownerFQN both use this module's
// canonical dotted-with-$-nesting FQN form (spec.md's "binary name" using
// '/' is an I/O-boundary convention explicitly out of scope per spec.md §1;
// this package works entirely in the dotted form the rest of the module
// already uses).
func Report(outDir, ownerFQN, name, descriptor string, emittedClasses []string, usedStubs bool) Result {
	res := Result{
		ClassesOutDir:  outDir,
		TargetClass:    ownerFQN,
		EmittedClasses: emittedClasses,
		UsedStubs:      usedStubs,
		DepsResolved:   true,
	}

	if !containsFQN(emittedClasses, ownerFQN) {
		res.Status = StatusTargetMethodNotEmitted
		res.Notes = fmt.Sprintf("target class %s not among emitted classes", ownerFQN)
		return res
	}

	relPath := classfileRelPath(ownerFQN)
	res.TargetClassFile = relPath

	cf, err := parseClassfile(filepath.Join(outDir, relPath))
	if err != nil {
		res.Status = StatusInternalError
		res.Notes = err.Error()
		return res
	}

	hasCode, found := cf.findMethod(name, descriptor)
	if !found {
		if foundDesc, ok := cf.firstDescriptor(name); ok {
			res.Status = StatusTargetMethodNotEmitted
			res.Notes = fmt.Sprintf("descriptor mismatch: found %s%s, wanted %s%s", name, foundDesc, name, descriptor)
		} else {
			res.Status = StatusTargetMethodNotEmitted
			res.Notes = fmt.Sprintf("no method named %s found in %s", name, ownerFQN)
		}
		return res
	}
	if !hasCode {
		res.Status = StatusTargetMethodNotEmitted
		res.Notes = fmt.Sprintf("method %s%s has no body", name, descriptor)
		return res
	}

	res.Status = StatusOK
	res.TargetHasCode = true
	return res
}

func containsFQN(classes []string, fqn string) bool {
	for _, c := range classes {
		if c == fqn {
			return true
		}
	}
	return false
}

// classfileRelPath converts a dotted/$ FQN into its path under a classes
// output directory: package segments become directories, and the top-level
// simple name plus any `$`-nested suffix becomes the filename (javac never
// gives a nested type its own directory — spec.md §6 "Nested types never
// appear as their own files").
func classfileRelPath(fqn string) string {
	pkg := javatype.PackageOf(fqn)
	remainder := fqn
	if pkg != "" {
		remainder = strings.TrimPrefix(fqn, pkg+".")
	}
	dir := strings.ReplaceAll(pkg, ".", string(filepath.Separator))
	return filepath.Join(dir, remainder+".class")
}
