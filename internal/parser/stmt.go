package parser

import (
	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/lexer"
)

func (p *parser) parseBlock() *ast.Block {
	open := p.expect(lexer.LBRACE, "'{' opening block")
	b := &ast.Block{Pos: pos(open)}
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	p.expect(lexer.RBRACE, "'}' closing block")
	return b
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.cur().Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.SEMI:
		t := p.advance()
		return &ast.Skip{Pos: pos(t)}
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.DO:
		return p.parseDoWhile()
	case lexer.RETURN:
		t := p.advance()
		rs := &ast.ReturnStmt{Pos: pos(t)}
		if !p.is(lexer.SEMI) {
			rs.X = p.parseExpr()
		}
		p.expect(lexer.SEMI, "';' after return")
		return rs
	case lexer.THROW:
		t := p.advance()
		x := p.parseExpr()
		p.expect(lexer.SEMI, "';' after throw")
		return &ast.ThrowStmt{X: x, Pos: pos(t)}
	case lexer.TRY:
		return p.parseTry()
	case lexer.SWITCH:
		return p.parseSwitch()
	case lexer.BREAK, lexer.CONTINUE:
		t := p.advance()
		if p.is(lexer.IDENT) {
			p.advance() // label
		}
		p.expect(lexer.SEMI, "';' after break/continue")
		return &ast.Skip{Pos: pos(t)}
	case lexer.AT:
		// a statement can't start with an annotation in valid source except
		// as part of a local class/var modifier; treat as local decl.
		return p.parseLocalDeclOrExprStmt()
	case lexer.IDENT:
		if p.peekAt(1).Type == lexer.COLON {
			// labeled statement: `label: stmt`.
			p.advance()
			p.advance()
			return p.parseStmt()
		}
		return p.parseLocalDeclOrExprStmt()
	default:
		return p.parseLocalDeclOrExprStmt()
	}
}

// parseLocalDeclOrExprStmt disambiguates `Type name = init;` local variable
// declarations from bare expression statements by speculative scanning: if
// the statement looks like <modifiers>? <type> <ident> (`=`|`,`|`;`|`[`),
// it's a local declaration; otherwise it's an expression statement.
func (p *parser) parseLocalDeclOrExprStmt() ast.Stmt {
	start := p.pos
	mods := p.parseModifiersAndAnnotations()
	_ = mods
	if p.looksLikeLocalVarDecl() {
		ty := p.parseType()
		nameTok := p.expect(lexer.IDENT, "local variable name")
		lv := &ast.LocalVarDecl{Type: ty, Name: nameTok.Literal, Pos: pos(nameTok)}
		for p.is(lexer.LBRACKET) {
			p.advance()
			p.expect(lexer.RBRACKET, "']'")
			lv.Type.Dims++
		}
		if p.accept(lexer.ASSIGN) {
			lv.Init = p.parseVarInit()
		}
		// additional declarators on the same line: `int a = 1, b = 2;`
		var extra []ast.Stmt
		for p.accept(lexer.COMMA) {
			n2 := p.expect(lexer.IDENT, "local variable name")
			lv2 := &ast.LocalVarDecl{Type: ty, Name: n2.Literal, Pos: pos(n2)}
			if p.accept(lexer.ASSIGN) {
				lv2.Init = p.parseVarInit()
			}
			extra = append(extra, lv2)
		}
		p.expect(lexer.SEMI, "';' after local variable declaration")
		if len(extra) == 0 {
			return lv
		}
		return &ast.Skip{Inner: append([]ast.Stmt{lv}, extra...), Pos: lv.Pos}
	}
	p.pos = start
	x := p.parseExpr()
	p.expect(lexer.SEMI, "';' after expression statement")
	return &ast.ExprStmt{X: x, Pos: pos(p.toks[start])}
}

// looksLikeLocalVarDecl scans forward without consuming to check for the
// `Type name (=|;|,|[)` shape, handling dotted/generic types and `var`.
func (p *parser) looksLikeLocalVarDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()

	switch p.cur().Type {
	case lexer.VAR, lexer.VOID, lexer.BOOLEAN, lexer.BYTE, lexer.SHORT, lexer.CHARKW, lexer.INT_KW, lexer.LONG, lexer.FLOAT_KW, lexer.DOUBLE:
		p.advance()
	case lexer.IDENT:
		p.advance()
		p.skipGenericArgsIfAny()
		for p.is(lexer.DOT) {
			if p.peekAt(1).Type != lexer.IDENT {
				return false
			}
			p.advance()
			p.advance()
			p.skipGenericArgsIfAny()
		}
	default:
		return false
	}
	for p.is(lexer.LBRACKET) && p.peekAt(1).Type == lexer.RBRACKET {
		p.advance()
		p.advance()
	}
	if !p.is(lexer.IDENT) {
		return false
	}
	p.advance()
	for p.is(lexer.LBRACKET) && p.peekAt(1).Type == lexer.RBRACKET {
		p.advance()
		p.advance()
	}
	switch p.cur().Type {
	case lexer.ASSIGN, lexer.SEMI, lexer.COMMA, lexer.COLON:
		return true
	}
	return false
}

// skipGenericArgsIfAny best-effort skips a balanced `<...>` type-argument
// list during lookahead, without building nodes.
func (p *parser) skipGenericArgsIfAny() {
	if !p.is(lexer.LT) {
		return
	}
	save := p.pos
	p.advance()
	depth := 1
	for depth > 0 {
		switch p.cur().Type {
		case lexer.LT:
			depth++
		case lexer.GT:
			depth--
		case lexer.SEMI, lexer.LBRACE, lexer.EOF:
			p.pos = save
			return
		}
		p.advance()
	}
}

func (p *parser) parseVarInit() ast.Expr {
	if p.is(lexer.LBRACE) {
		// array initializer `{a, b, c}` — keep the first element reachable
		// so the collector still sees calls/news inside it, consistent with
		// parseAnnotationValue's handling of the analogous construct.
		p.advance()
		var first ast.Expr
		for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
			v := p.parseVarInit()
			if first == nil {
				first = v
			}
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RBRACE, "'}' closing array initializer")
		if first == nil {
			return &ast.Literal{Kind: ast.LitNull}
		}
		return first
	}
	return p.parseExpr()
}

func (p *parser) parseIf() ast.Stmt {
	t := p.advance()
	p.expect(lexer.LPAREN, "'(' after if")
	cond := p.parseExpr()
	p.expect(lexer.RPAREN, "')' closing if condition")
	then := p.parseStmt()
	var els ast.Stmt
	if p.is(lexer.ELSE) {
		p.advance()
		els = p.parseStmt()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Pos: pos(t)}
}

func (p *parser) parseWhile() ast.Stmt {
	t := p.advance()
	p.expect(lexer.LPAREN, "'(' after while")
	cond := p.parseExpr()
	p.expect(lexer.RPAREN, "')' closing while condition")
	body := p.parseStmt()
	return &ast.WhileStmt{Cond: cond, Body: body, Pos: pos(t)}
}

func (p *parser) parseDoWhile() ast.Stmt {
	t := p.advance()
	body := p.parseStmt()
	p.expect(lexer.WHILE, "'while' after do-block")
	p.expect(lexer.LPAREN, "'(' after while")
	cond := p.parseExpr()
	p.expect(lexer.RPAREN, "')' closing while condition")
	p.expect(lexer.SEMI, "';' after do-while")
	return &ast.WhileStmt{Cond: cond, Body: body, DoWhile: true, Pos: pos(t)}
}

func (p *parser) parseFor() ast.Stmt {
	t := p.advance()
	p.expect(lexer.LPAREN, "'(' after for")

	if p.looksLikeForEach() {
		elemTy := p.parseType()
		nameTok := p.expect(lexer.IDENT, "for-each variable name")
		p.expect(lexer.COLON, "':' in for-each")
		iterable := p.parseExpr()
		p.expect(lexer.RPAREN, "')' closing for-each header")
		body := p.parseStmt()
		return &ast.ForStmt{ElemType: &elemTy, ElemName: nameTok.Literal, Iterable: iterable, Body: body, Pos: pos(t)}
	}

	var init ast.Stmt
	if !p.is(lexer.SEMI) {
		init = p.parseLocalDeclOrExprStmtNoTrailingSemi()
		p.expect(lexer.SEMI, "';' after for init")
	} else {
		p.advance()
	}
	var cond ast.Expr
	if !p.is(lexer.SEMI) {
		cond = p.parseExpr()
	}
	p.expect(lexer.SEMI, "';' in for header")
	var post ast.Expr
	if !p.is(lexer.RPAREN) {
		post = p.parseExpr()
		for p.accept(lexer.COMMA) {
			p.parseExpr()
		}
	}
	p.expect(lexer.RPAREN, "')' closing for header")
	body := p.parseStmt()
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body, Pos: pos(t)}
}

// parseLocalDeclOrExprStmtNoTrailingSemi parses the init clause of a classic
// for-loop header, which is terminated by the header's own ';' rather than
// one consumed internally.
func (p *parser) parseLocalDeclOrExprStmtNoTrailingSemi() ast.Stmt {
	start := p.pos
	if p.looksLikeLocalVarDecl() {
		ty := p.parseType()
		nameTok := p.expect(lexer.IDENT, "local variable name")
		lv := &ast.LocalVarDecl{Type: ty, Name: nameTok.Literal, Pos: pos(nameTok)}
		if p.accept(lexer.ASSIGN) {
			lv.Init = p.parseVarInit()
		}
		for p.accept(lexer.COMMA) {
			n2 := p.expect(lexer.IDENT, "local variable name")
			if p.accept(lexer.ASSIGN) {
				p.parseVarInit()
			}
			_ = n2
		}
		return lv
	}
	p.pos = start
	x := p.parseExpr()
	return &ast.ExprStmt{X: x, Pos: pos(p.toks[start])}
}

func (p *parser) looksLikeForEach() bool {
	save := p.pos
	defer func() { p.pos = save }()
	if !p.looksLikeLocalVarDeclHeaderOnly() {
		return false
	}
	return p.is(lexer.COLON)
}

// looksLikeLocalVarDeclHeaderOnly advances past a `Type name` shape (without
// requiring `=`/`;`/`,`) purely to let looksLikeForEach check for a
// following ':'.
func (p *parser) looksLikeLocalVarDeclHeaderOnly() bool {
	switch p.cur().Type {
	case lexer.VAR, lexer.VOID, lexer.BOOLEAN, lexer.BYTE, lexer.SHORT, lexer.CHARKW, lexer.INT_KW, lexer.LONG, lexer.FLOAT_KW, lexer.DOUBLE:
		p.advance()
	case lexer.IDENT:
		p.advance()
		p.skipGenericArgsIfAny()
		for p.is(lexer.DOT) {
			if p.peekAt(1).Type != lexer.IDENT {
				return false
			}
			p.advance()
			p.advance()
			p.skipGenericArgsIfAny()
		}
	default:
		return false
	}
	for p.is(lexer.LBRACKET) && p.peekAt(1).Type == lexer.RBRACKET {
		p.advance()
		p.advance()
	}
	if !p.is(lexer.IDENT) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) parseTry() ast.Stmt {
	t := p.advance()
	ts := &ast.TryStmt{Pos: pos(t)}
	if p.accept(lexer.LPAREN) {
		// try-with-resources: skip the resource declarations/expressions.
		for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
			p.parseLocalDeclOrExprStmtNoTrailingSemi()
			if !p.accept(lexer.SEMI) {
				break
			}
		}
		p.expect(lexer.RPAREN, "')' closing try-with-resources")
	}
	ts.Body = p.parseBlock()
	for p.is(lexer.CATCH) {
		p.advance()
		p.expect(lexer.LPAREN, "'(' after catch")
		p.parseModifiersAndAnnotations()
		cc := ast.CatchClause{}
		cc.Types = append(cc.Types, p.parseType())
		for p.accept(lexer.PIPE) {
			cc.Types = append(cc.Types, p.parseType())
		}
		cc.Name = p.expect(lexer.IDENT, "catch parameter name").Literal
		p.expect(lexer.RPAREN, "')' closing catch parameter")
		cc.Body = p.parseBlock()
		ts.Catches = append(ts.Catches, cc)
	}
	if p.is(lexer.FINALLY) {
		p.advance()
		ts.Finally = p.parseBlock()
	}
	return ts
}

func (p *parser) parseSwitch() ast.Stmt {
	t := p.advance()
	p.expect(lexer.LPAREN, "'(' after switch")
	x := p.parseExpr()
	p.expect(lexer.RPAREN, "')' closing switch selector")
	p.expect(lexer.LBRACE, "'{' opening switch body")
	sw := &ast.SwitchStmt{X: x, Pos: pos(t)}
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		var sc ast.SwitchCase
		if p.is(lexer.CASE) {
			p.advance()
			sc.Values = append(sc.Values, p.parseExpr())
			for p.accept(lexer.COMMA) {
				sc.Values = append(sc.Values, p.parseExpr())
			}
		} else {
			p.expect(lexer.DEFAULT, "'case' or 'default'")
			sc.IsDefault = true
		}
		if p.accept(lexer.ARROW) {
			// switch expression arrow form: `case X -> expr;` or `-> { }`.
			if p.is(lexer.LBRACE) {
				sc.Stmts = append(sc.Stmts, p.parseBlock())
			} else {
				x := p.parseExpr()
				p.accept(lexer.SEMI)
				sc.Stmts = append(sc.Stmts, &ast.ExprStmt{X: x})
			}
		} else {
			p.expect(lexer.COLON, "':' after case label")
			for !p.is(lexer.CASE) && !p.is(lexer.DEFAULT) && !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
				sc.Stmts = append(sc.Stmts, p.parseStmt())
			}
		}
		sw.Cases = append(sw.Cases, sc)
	}
	p.expect(lexer.RBRACE, "'}' closing switch body")
	return sw
}
