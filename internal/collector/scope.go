package collector

import "github.com/javastub/javastub/internal/ast"

// scope is a lexical chain of declared-name → declared-type bindings
// (parameters, locals, catch variables, for-each variables, and the
// enclosing type's own fields) used to answer "is r's static type known"
// for method/field resolution (spec.md §4.2 rules 3-4).
type scope struct {
	parent *scope
	vars   map[string]ast.TypeNode
}

func newScope() *scope {
	return &scope{vars: make(map[string]ast.TypeNode)}
}

func (s *scope) child() *scope {
	return &scope{parent: s, vars: make(map[string]ast.TypeNode)}
}

func (s *scope) define(name string, t ast.TypeNode) {
	s.vars[name] = t
}

func (s *scope) lookup(name string) (ast.TypeNode, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return ast.TypeNode{}, false
}
