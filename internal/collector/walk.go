package collector

import (
	"sort"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/javatype"
	"github.com/javastub/javastub/internal/stubplan"
)

// collectStmt walks one statement, recursing into nested blocks with a
// child scope so locals declared inside an inner block don't leak out.
func (c *Collector) collectStmt(s ast.Stmt, file *ast.File, imp *importIndex, ownerFQN string, sc *scope) {
	switch v := s.(type) {
	case *ast.Block:
		child := sc.child()
		for _, st := range v.Stmts {
			c.collectStmt(st, file, imp, ownerFQN, child)
		}
	case *ast.ExprStmt:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
	case *ast.LocalVarDecl:
		c.resolveTypeRef(v.Type, file, imp, hintClass)
		sc.define(v.Name, v.Type)
		if v.Init != nil {
			c.collectExpr(v.Init, file, imp, ownerFQN, sc, false)
		}
	case *ast.ReturnStmt:
		if v.X != nil {
			c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
		}
	case *ast.IfStmt:
		c.collectExpr(v.Cond, file, imp, ownerFQN, sc, false)
		c.collectStmt(v.Then, file, imp, ownerFQN, sc)
		if v.Else != nil {
			c.collectStmt(v.Else, file, imp, ownerFQN, sc)
		}
	case *ast.ForStmt:
		child := sc.child()
		if v.ElemType != nil {
			c.resolveTypeRef(*v.ElemType, file, imp, hintClass)
			child.define(v.ElemName, *v.ElemType)
		}
		if v.Init != nil {
			c.collectStmt(v.Init, file, imp, ownerFQN, child)
		}
		if v.Cond != nil {
			c.collectExpr(v.Cond, file, imp, ownerFQN, child, false)
		}
		if v.Post != nil {
			c.collectExpr(v.Post, file, imp, ownerFQN, child, false)
		}
		if v.Iterable != nil {
			c.collectExpr(v.Iterable, file, imp, ownerFQN, child, false)
		}
		c.collectStmt(v.Body, file, imp, ownerFQN, child)
	case *ast.WhileStmt:
		c.collectExpr(v.Cond, file, imp, ownerFQN, sc, false)
		c.collectStmt(v.Body, file, imp, ownerFQN, sc)
	case *ast.TryStmt:
		c.collectStmt(v.Body, file, imp, ownerFQN, sc)
		for _, cc := range v.Catches {
			child := sc.child()
			for _, t := range cc.Types {
				c.resolveTypeRef(t, file, imp, hintClass)
			}
			if len(cc.Types) > 0 {
				child.define(cc.Name, cc.Types[0])
			}
			c.collectStmt(cc.Body, file, imp, ownerFQN, child)
		}
		if v.Finally != nil {
			c.collectStmt(v.Finally, file, imp, ownerFQN, sc)
		}
	case *ast.ThrowStmt:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
	case *ast.SwitchStmt:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
		for _, sw := range v.Cases {
			for _, val := range sw.Values {
				c.collectExpr(val, file, imp, ownerFQN, sc, false)
			}
			child := sc.child()
			for _, st := range sw.Stmts {
				c.collectStmt(st, file, imp, ownerFQN, child)
			}
		}
	case *ast.Skip:
		for _, inner := range v.Inner {
			c.collectStmt(inner, file, imp, ownerFQN, sc)
		}
		for _, e := range v.Exprs {
			c.collectExpr(e, file, imp, ownerFQN, sc, false)
		}
	}
}

// collectExpr walks one expression, classifying every sub-expression that
// looks like a reference the index can't already account for.
func (c *Collector) collectExpr(e ast.Expr, file *ast.File, imp *importIndex, ownerFQN string, sc *scope, asAssignTarget bool) {
	switch v := e.(type) {
	case *ast.Ident:
		if _, ok := sc.lookup(v.Name); ok {
			return
		}
		if ownerFQN != "" && c.ownerHasField(ownerFQN, v.Name) {
			return
		}
		c.emitFieldStub(ownerFQN, v.Name, asAssignTarget)
	case *ast.QualName:
		c.collectQualName(v, file, imp, ownerFQN, sc)
	case *ast.Select:
		c.collectSelect(v, file, imp, ownerFQN, sc, asAssignTarget)
	case *ast.Call:
		c.collectCall(v, file, imp, ownerFQN, sc)
	case *ast.NewExpr:
		c.resolveTypeRef(v.Type, file, imp, hintClass)
		for _, a := range v.Args {
			c.collectExpr(a, file, imp, ownerFQN, sc, false)
		}
		for _, d := range v.ArrayLen {
			c.collectExpr(d, file, imp, ownerFQN, sc, false)
		}
		if v.ArrayLen == nil {
			c.emitCtorStub(v.Type, len(v.Args), file, imp)
		}
	case *ast.Assign:
		c.collectExpr(v.Target, file, imp, ownerFQN, sc, true)
		c.collectExpr(v.Value, file, imp, ownerFQN, sc, false)
	case *ast.InstanceOf:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
		c.resolveTypeRef(v.Type, file, imp, hintClass)
	case *ast.Cast:
		c.resolveTypeRef(v.Type, file, imp, hintClass)
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
	case *ast.ClassLiteral:
		c.resolveTypeRef(v.Type, file, imp, hintClass)
	case *ast.Binary:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
		c.collectExpr(v.Y, file, imp, ownerFQN, sc, false)
	case *ast.Unary:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, asAssignTarget)
	case *ast.Paren:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, asAssignTarget)
	case *ast.Index:
		c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
		c.collectExpr(v.Y, file, imp, ownerFQN, sc, false)
	case *ast.Ternary:
		c.collectExpr(v.Cond, file, imp, ownerFQN, sc, false)
		c.collectExpr(v.Then, file, imp, ownerFQN, sc, false)
		c.collectExpr(v.Else, file, imp, ownerFQN, sc, false)
	}
}

// collectQualName applies rule 2 to a flat dotted-identifier chain: its root
// may be a local variable, a field, or a type name, with everything after a
// resolved type treated as nested-type segments (uppercase-leading) or a
// trailing static member access (lowercase).
func (c *Collector) collectQualName(v *ast.QualName, file *ast.File, imp *importIndex, ownerFQN string, sc *scope) {
	if len(v.Parts) == 0 {
		return
	}
	first := v.Parts[0]

	if tn, ok := sc.lookup(first); ok {
		recv := c.typeRefFromNode(tn, file, imp)
		if len(v.Parts) > 1 {
			c.emitFieldStubTypeRef(recv, v.Parts[1], false)
		}
		return
	}
	if ownerFQN != "" && c.ownerHasField(ownerFQN, first) {
		return
	}

	resolvedFirst, ok := c.resolveSimpleTypeName(first, file, imp)
	if !ok {
		resolvedFirst = firstGuessPackageFQN(file, first)
	}
	fqn := resolvedFirst
	i := 1
	for ; i < len(v.Parts); i++ {
		seg := v.Parts[i]
		if len(seg) == 0 || !isUpperFirst(seg) {
			break
		}
		fqn = javatype.DotToDollarForNested(fqn, seg)
	}
	c.maybeEmitTypeStub(fqn, hintClass, file)

	if i < len(v.Parts) {
		c.emitFieldStubTypeRef(javatype.NewReference(fqn, nil, 0), v.Parts[i], false)
	}
}

func isUpperFirst(s string) bool {
	r := []rune(s)[0]
	return r >= 'A' && r <= 'Z'
}

// collectSelect applies rule 4 (field access) to `X.Name` where X is itself
// a full expression (this/super/call/paren/index — anything a flat QualName
// couldn't represent).
func (c *Collector) collectSelect(v *ast.Select, file *ast.File, imp *importIndex, ownerFQN string, sc *scope, isAssignTarget bool) {
	c.collectExpr(v.X, file, imp, ownerFQN, sc, false)
	if recv, ok := c.staticTypeOf(v.X, file, imp, ownerFQN, sc); ok {
		c.emitFieldStubTypeRef(recv, v.Name, isAssignTarget)
		return
	}
	c.emitFieldStub(ownerFQN, v.Name, isAssignTarget)
}

// staticTypeOf best-effort infers the declared type of a receiver
// expression, the information rule 3/4 need to pick the right owner instead
// of defaulting to the enclosing class.
func (c *Collector) staticTypeOf(x ast.Expr, file *ast.File, imp *importIndex, ownerFQN string, sc *scope) (javatype.TypeRef, bool) {
	switch v := x.(type) {
	case *ast.This:
		if ownerFQN == "" {
			return javatype.TypeRef{}, false
		}
		return javatype.NewReference(ownerFQN, nil, 0), true
	case *ast.Super:
		chain := c.idx.SuperTypeChain(ownerFQN)
		if len(chain) == 0 {
			return javatype.TypeRef{}, false
		}
		return javatype.NewReference(chain[0], nil, 0), true
	case *ast.Ident:
		if tn, ok := sc.lookup(v.Name); ok {
			return c.typeRefFromNode(tn, file, imp), true
		}
		if fqn, ok := c.resolveSimpleTypeName(v.Name, file, imp); ok {
			return javatype.NewReference(fqn, nil, 0), true
		}
		return javatype.TypeRef{}, false
	case *ast.QualName:
		if len(v.Parts) == 0 {
			return javatype.TypeRef{}, false
		}
		if _, ok := sc.lookup(v.Parts[0]); ok {
			return javatype.TypeRef{}, false
		}
		resolved, ok := c.resolveSimpleTypeName(v.Parts[0], file, imp)
		if !ok {
			return javatype.TypeRef{}, false
		}
		fqn := resolved
		for _, seg := range v.Parts[1:] {
			if !isUpperFirst(seg) {
				return javatype.TypeRef{}, false
			}
			fqn = javatype.DotToDollarForNested(fqn, seg)
		}
		return javatype.NewReference(fqn, nil, 0), true
	case *ast.Paren:
		return c.staticTypeOf(v.X, file, imp, ownerFQN, sc)
	case *ast.NewExpr:
		if v.ArrayLen != nil || !javatype.ValidStubName(v.Type.Name) {
			return javatype.TypeRef{}, false
		}
		return c.typeRefFromNode(v.Type, file, imp), true
	default:
		return javatype.TypeRef{}, false
	}
}

// collectCall applies rule 3 (method invocation) and always emits a mirror
// duplicate under a catch-all `unknown.*` owner, tolerating the common case
// where the best-effort receiver-type guess is simply wrong.
func (c *Collector) collectCall(v *ast.Call, file *ast.File, imp *importIndex, ownerFQN string, sc *scope) {
	for _, a := range v.Args {
		c.collectExpr(a, file, imp, ownerFQN, sc, false)
	}
	arity := len(v.Args)

	switch callee := v.Callee.(type) {
	case *ast.Ident:
		name := callee.Name
		var owner javatype.TypeRef
		isStatic := false
		if staticOwner, ok := imp.staticExplicit[name]; ok {
			owner = javatype.NewReference(staticOwner, nil, 0)
			isStatic = true
		} else if len(imp.staticWildcard) > 0 {
			owners := append([]string(nil), imp.staticWildcard...)
			sort.Strings(owners)
			owner = javatype.NewReference(owners[0], nil, 0)
			isStatic = true
		} else {
			owner = javatype.NewReference(ownerFQN, nil, 0)
		}
		c.emitMethodStub(owner, name, arity, isStatic)
		c.emitMirrorMethod(owner.Name, name, arity)

	case *ast.Select:
		c.collectExpr(callee.X, file, imp, ownerFQN, sc, false)
		var owner javatype.TypeRef
		if recv, ok := c.staticTypeOf(callee.X, file, imp, ownerFQN, sc); ok {
			owner = recv
		} else {
			owner = javatype.NewReference(ownerFQN, nil, 0)
		}
		isStaticCall := false
		if id, isIdent := callee.X.(*ast.Ident); isIdent {
			if _, isVar := sc.lookup(id.Name); !isVar {
				isStaticCall = true
			}
		}
		c.emitMethodStub(owner, callee.Name, arity, isStaticCall)
		c.emitMirrorMethod(owner.Name, callee.Name, arity)

	case *ast.This:
		// explicit this(...) constructor delegation; nothing further to stub.
	case *ast.Super:
		chain := c.idx.SuperTypeChain(ownerFQN)
		if len(chain) > 0 {
			c.emitCtorStubFQN(chain[0], arity)
		}
	default:
		c.collectExpr(v.Callee, file, imp, ownerFQN, sc, false)
	}
}

func (c *Collector) ownerHasField(ownerFQN, name string) bool {
	if c.idx.HasField(ownerFQN, name) {
		return true
	}
	for _, anc := range c.idx.SuperTypeChain(ownerFQN) {
		if c.idx.HasField(anc, name) {
			return true
		}
	}
	return false
}

func (c *Collector) ownerHasMethod(ownerFQN, name string, arity int) bool {
	if c.idx.HasMethod(ownerFQN, name, arity) {
		return true
	}
	for _, anc := range c.idx.SuperTypeChain(ownerFQN) {
		if c.idx.HasMethod(anc, name, arity) {
			return true
		}
	}
	return false
}

func placeholderParams(arity int) []javatype.TypeRef {
	params := make([]javatype.TypeRef, arity)
	obj := javatype.NewReference("java.lang.Object", nil, 0)
	for i := range params {
		params[i] = obj
	}
	return params
}

func (c *Collector) emitMethodStub(owner javatype.TypeRef, name string, arity int, isStatic bool) {
	if owner.Name == "" || !javatype.ValidStubName(owner.Name) {
		return
	}
	if _, known := c.idx.Lookup(owner.Name); known {
		if c.ownerHasMethod(owner.Name, name, arity) {
			return
		}
	} else {
		c.plan.AddType(stubplan.TypeStub{FQN: owner.Name, Kind: stubplan.KindClass})
	}
	c.plan.AddMethod(stubplan.MethodStub{
		Owner:      owner,
		Name:       name,
		Return:     javatype.NewReference("java.lang.Object", nil, 0),
		Params:     placeholderParams(arity),
		IsStatic:   isStatic,
		Visibility: stubplan.Public,
	})
}

// emitMirrorMethod files an identically-signed method under the catch-all
// `unknown.<lastSegment>` owner (spec.md §4.2/§4.4), tolerating calls whose
// true receiver the collector could not pin down.
func (c *Collector) emitMirrorMethod(guessedOwnerFQN, name string, arity int) {
	lastSeg := javatype.SimpleName(guessedOwnerFQN)
	if lastSeg == "" {
		lastSeg = "Unknown"
	}
	unknownOwner := "unknown." + lastSeg
	c.plan.AddType(stubplan.TypeStub{FQN: unknownOwner, Kind: stubplan.KindClass})
	c.plan.AddMethod(stubplan.MethodStub{
		Owner:      javatype.NewReference(unknownOwner, nil, 0),
		Name:       name,
		Return:     javatype.NewReference("java.lang.Object", nil, 0),
		Params:     placeholderParams(arity),
		Visibility: stubplan.Public,
		MirrorOf:   guessedOwnerFQN,
	})
}

func (c *Collector) emitFieldStub(ownerFQN, name string, isAssignTarget bool) {
	if ownerFQN == "" {
		return
	}
	c.emitFieldStubTypeRef(javatype.NewReference(ownerFQN, nil, 0), name, isAssignTarget)
}

func (c *Collector) emitFieldStubTypeRef(owner javatype.TypeRef, name string, isAssignTarget bool) {
	if owner.Name == "" || !javatype.ValidStubName(owner.Name) {
		return
	}
	if _, known := c.idx.Lookup(owner.Name); known {
		if c.ownerHasField(owner.Name, name) {
			return
		}
	} else {
		c.plan.AddType(stubplan.TypeStub{FQN: owner.Name, Kind: stubplan.KindClass})
	}
	c.plan.AddField(stubplan.FieldStub{
		Owner:      owner,
		Name:       name,
		Field:      javatype.NewReference("java.lang.Object", nil, 0),
		Mutable:    true,
		Visibility: stubplan.Public,
	})
}

func (c *Collector) emitCtorStub(tn ast.TypeNode, arity int, file *ast.File, imp *importIndex) {
	fqn := c.fqnForTypeNodeName(tn.Name, file, imp)
	c.emitCtorStubFQN(fqn, arity)
}

func (c *Collector) emitCtorStubFQN(fqn string, arity int) {
	if _, known := c.idx.Lookup(fqn); known {
		return
	}
	if !javatype.ValidStubName(fqn) {
		return
	}
	c.plan.AddType(stubplan.TypeStub{FQN: fqn, Kind: stubplan.KindClass})
	c.plan.AddCtor(stubplan.CtorStub{Owner: javatype.NewReference(fqn, nil, 0), Params: placeholderParams(arity)})
}
