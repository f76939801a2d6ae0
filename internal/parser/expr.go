package parser

import (
	"strings"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/lexer"
)

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

var assignOps = map[lexer.Type]string{
	lexer.ASSIGN:    "=",
	lexer.PLUSEQ:    "+=",
	lexer.MINUSEQ:   "-=",
	lexer.STAREQ:    "*=",
	lexer.SLASHEQ:   "/=",
	lexer.PERCENTEQ: "%=",
}

func (p *parser) parseAssign() ast.Expr {
	left := p.parseTernary()
	if op, ok := assignOps[p.cur().Type]; ok {
		t := p.advance()
		right := p.parseAssign()
		return &ast.Assign{Target: left, Op: op, Value: right, Pos: pos(t)}
	}
	return left
}

func (p *parser) parseTernary() ast.Expr {
	cond := p.parseLogicalOr()
	if p.is(lexer.QUESTION) {
		t := p.advance()
		then := p.parseExpr()
		p.expect(lexer.COLON, "':' in conditional expression")
		els := p.parseTernary()
		return &ast.Ternary{Cond: cond, Then: then, Else: els, Pos: pos(t)}
	}
	return cond
}

func (p *parser) parseLogicalOr() ast.Expr {
	x := p.parseLogicalAnd()
	for p.is(lexer.OROR) {
		t := p.advance()
		y := p.parseLogicalAnd()
		x = &ast.Binary{X: x, Y: y, Op: "||", Pos: pos(t)}
	}
	return x
}

func (p *parser) parseLogicalAnd() ast.Expr {
	x := p.parseBitOr()
	for p.is(lexer.ANDAND) {
		t := p.advance()
		y := p.parseBitOr()
		x = &ast.Binary{X: x, Y: y, Op: "&&", Pos: pos(t)}
	}
	return x
}

func (p *parser) parseBitOr() ast.Expr {
	x := p.parseBitAnd()
	for p.is(lexer.PIPE) {
		t := p.advance()
		y := p.parseBitAnd()
		x = &ast.Binary{X: x, Y: y, Op: "|", Pos: pos(t)}
	}
	return x
}

func (p *parser) parseBitAnd() ast.Expr {
	x := p.parseEquality()
	for p.is(lexer.AMP) {
		t := p.advance()
		y := p.parseEquality()
		x = &ast.Binary{X: x, Y: y, Op: "&", Pos: pos(t)}
	}
	return x
}

func (p *parser) parseEquality() ast.Expr {
	x := p.parseRelational()
	for p.is(lexer.EQEQ) || p.is(lexer.NEQ) {
		t := p.advance()
		y := p.parseRelational()
		x = &ast.Binary{X: x, Y: y, Op: t.Literal, Pos: pos(t)}
	}
	return x
}

func (p *parser) parseRelational() ast.Expr {
	x := p.parseAdditive()
	for {
		switch p.cur().Type {
		case lexer.LT, lexer.GT, lexer.LE, lexer.GE:
			t := p.advance()
			y := p.parseAdditive()
			x = &ast.Binary{X: x, Y: y, Op: t.Literal, Pos: pos(t)}
		case lexer.INSTANCEOF:
			t := p.advance()
			ty := p.parseType()
			if p.is(lexer.IDENT) {
				p.advance() // pattern-variable binding: `x instanceof Foo f`
			}
			x = &ast.InstanceOf{X: x, Type: ty, Pos: pos(t)}
		default:
			return x
		}
	}
}

func (p *parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.is(lexer.PLUS) || p.is(lexer.MINUS) {
		t := p.advance()
		y := p.parseMultiplicative()
		x = &ast.Binary{X: x, Y: y, Op: t.Literal, Pos: pos(t)}
	}
	return x
}

func (p *parser) parseMultiplicative() ast.Expr {
	x := p.parseUnary()
	for p.is(lexer.STAR) || p.is(lexer.SLASH) || p.is(lexer.PERCENT) {
		t := p.advance()
		y := p.parseUnary()
		x = &ast.Binary{X: x, Y: y, Op: t.Literal, Pos: pos(t)}
	}
	return x
}

func (p *parser) parseUnary() ast.Expr {
	switch p.cur().Type {
	case lexer.BANG, lexer.MINUS, lexer.PLUS, lexer.INC, lexer.DEC:
		t := p.advance()
		x := p.parseUnary()
		return &ast.Unary{X: x, Op: t.Literal, Pos: pos(t)}
	case lexer.LPAREN:
		if cast, ok := p.tryParseCast(); ok {
			return cast
		}
	}
	return p.parsePostfix()
}

// tryParseCast speculatively parses a parenthesized type; if the token after
// the closing ')' can only begin a new unary operand (never continue a
// binary expression rooted at the parenthesized part), it commits to a cast.
// Otherwise it rewinds and reports no match, letting the caller fall back to
// parsePostfix's plain-grouping handling.
func (p *parser) tryParseCast() (ast.Expr, bool) {
	save := p.pos
	open := p.advance() // '('
	ty, isType := func() (ty ast.TypeNode, ok bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, isParseErr := r.(parseError); !isParseErr {
					panic(r)
				}
			}
		}()
		return p.parseType(), true
	}()
	if !isType || !p.accept(lexer.RPAREN) {
		p.pos = save
		return nil, false
	}
	if !p.canStartUnaryAfterCast(ty.Primitive) {
		p.pos = save
		return nil, false
	}
	x := p.parseUnary()
	return &ast.Cast{Type: ty, X: x, Pos: pos(open)}, true
}

func (p *parser) canStartUnaryAfterCast(primitive bool) bool {
	switch p.cur().Type {
	case lexer.IDENT, lexer.THIS, lexer.SUPER, lexer.NEW, lexer.LPAREN, lexer.BANG,
		lexer.INT, lexer.FLOAT, lexer.STRING, lexer.CHAR, lexer.TRUE, lexer.FALSE, lexer.NULL:
		return true
	case lexer.PLUS, lexer.MINUS, lexer.INC, lexer.DEC:
		return primitive
	}
	return false
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur().Type {
		case lexer.DOT:
			p.advance()
			if p.is(lexer.CLASS) {
				p.advance()
				x = &ast.ClassLiteral{Type: typeNodeFromExpr(x), Pos: pos(p.cur())}
				continue
			}
			if p.is(lexer.THIS) {
				t := p.advance()
				x = &ast.Select{X: x, Name: "this", Pos: pos(t)}
				continue
			}
			if p.is(lexer.SUPER) {
				t := p.advance()
				x = &ast.Select{X: x, Name: "super", Pos: pos(t)}
				continue
			}
			if p.is(lexer.LT) {
				p.skipGenericArgsIfAny()
			}
			nameTok := p.expect(lexer.IDENT, "member name after '.'")
			if p.is(lexer.LPAREN) {
				args := p.parseArgs()
				x = &ast.Call{Callee: &ast.Select{X: x, Name: nameTok.Literal, Pos: pos(nameTok)}, Args: args, Pos: pos(nameTok)}
				continue
			}
			switch xx := x.(type) {
			case *ast.Ident:
				x = &ast.QualName{Parts: []string{xx.Name, nameTok.Literal}, Pos: xx.Pos}
			case *ast.QualName:
				xx.Parts = append(xx.Parts, nameTok.Literal)
				x = xx
			default:
				x = &ast.Select{X: x, Name: nameTok.Literal, Pos: pos(nameTok)}
			}
		case lexer.LPAREN:
			args := p.parseArgs()
			x = &ast.Call{Callee: x, Args: args}
		case lexer.LBRACKET:
			p.advance()
			idx := p.parseExpr()
			p.expect(lexer.RBRACKET, "']' closing index expression")
			x = &ast.Index{X: x, Y: idx}
		case lexer.INC, lexer.DEC:
			t := p.advance()
			x = &ast.Unary{X: x, Op: "post" + t.Literal, Pos: pos(t)}
		default:
			return x
		}
	}
}

func (p *parser) parseArgs() []ast.Expr {
	p.expect(lexer.LPAREN, "'(' opening argument list")
	var args []ast.Expr
	for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
		args = append(args, p.parseExpr())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')' closing argument list")
	return args
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Type {
	case lexer.IDENT:
		p.advance()
		return &ast.Ident{Name: t.Literal, Pos: pos(t)}
	case lexer.THIS:
		p.advance()
		if p.is(lexer.LPAREN) {
			args := p.parseArgs()
			return &ast.Call{Callee: &ast.This{Pos: pos(t)}, Args: args, Pos: pos(t)}
		}
		return &ast.This{Pos: pos(t)}
	case lexer.SUPER:
		p.advance()
		if p.is(lexer.LPAREN) {
			args := p.parseArgs()
			return &ast.Call{Callee: &ast.Super{Pos: pos(t)}, Args: args, Pos: pos(t)}
		}
		return &ast.Super{Pos: pos(t)}
	case lexer.NEW:
		return p.parseNewExpr()
	case lexer.INT:
		p.advance()
		return &ast.Literal{Kind: ast.LitInt, Value: t.Literal, Pos: pos(t)}
	case lexer.FLOAT:
		p.advance()
		return &ast.Literal{Kind: ast.LitFloat, Value: t.Literal, Pos: pos(t)}
	case lexer.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Value: t.Literal, Pos: pos(t)}
	case lexer.CHAR:
		p.advance()
		return &ast.Literal{Kind: ast.LitChar, Value: t.Literal, Pos: pos(t)}
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Value: t.Literal, Pos: pos(t)}
	case lexer.NULL:
		p.advance()
		return &ast.Literal{Kind: ast.LitNull, Value: "null", Pos: pos(t)}
	case lexer.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.expect(lexer.RPAREN, "')' closing parenthesized expression")
		return &ast.Paren{X: x, Pos: pos(t)}
	case lexer.BOOLEAN, lexer.BYTE, lexer.SHORT, lexer.CHARKW, lexer.INT_KW, lexer.LONG, lexer.FLOAT_KW, lexer.DOUBLE, lexer.VOID:
		ty := p.parseType()
		p.expect(lexer.DOT, "'.' after primitive type in class literal")
		p.expect(lexer.CLASS, "'class'")
		return &ast.ClassLiteral{Type: ty, Pos: pos(t)}
	}
	p.fail("expected expression at line %d, got %q", t.Line, t.Literal)
	return nil
}

// parseNewExpr handles both `new T(args)` object creation (with an optional
// anonymous-class body, whose members are skipped) and `new T[dims]...`
// array creation.
func (p *parser) parseNewExpr() ast.Expr {
	t := p.advance() // 'new'
	ty := p.parseNewBaseType()

	if p.is(lexer.LBRACKET) {
		var dims []ast.Expr
		for p.is(lexer.LBRACKET) {
			p.advance()
			if p.is(lexer.RBRACKET) {
				p.advance()
				ty.Dims++
				continue
			}
			size := p.parseExpr()
			p.expect(lexer.RBRACKET, "']' closing array dimension")
			dims = append(dims, size)
		}
		if p.is(lexer.LBRACE) {
			p.parseVarInit()
		}
		return &ast.NewExpr{Type: ty, ArrayLen: dims, Pos: pos(t)}
	}

	if p.is(lexer.LBRACE) {
		// a '{' directly after the type name, with no brackets before it:
		// bracketed forms such as `new int[]{1,2,3}` are handled above, so
		// this only consumes the stray initializer.
		p.parseVarInit()
		return &ast.NewExpr{Type: ty, Pos: pos(t)}
	}

	args := p.parseArgs()
	ne := &ast.NewExpr{Type: ty, Args: args, Pos: pos(t)}
	if p.is(lexer.LBRACE) {
		p.skipBalancedBraces()
	}
	return ne
}

// parseNewBaseType parses the type named right after `new`, without
// consuming array-dimension brackets (those may contain size expressions,
// unlike parseType's empty-bracket-only dims).
func (p *parser) parseNewBaseType() ast.TypeNode {
	t := p.cur()
	tn := ast.TypeNode{Pos: pos(t)}
	switch t.Type {
	case lexer.BOOLEAN, lexer.BYTE, lexer.SHORT, lexer.CHARKW, lexer.INT_KW, lexer.LONG, lexer.FLOAT_KW, lexer.DOUBLE:
		p.advance()
		tn.Primitive = true
		tn.Name = t.Literal
		return tn
	}
	name := p.expect(lexer.IDENT, "type name after 'new'").Literal
	if p.is(lexer.LT) {
		tn.TypeArgs = p.parseTypeArgs()
	}
	for p.is(lexer.DOT) {
		p.advance()
		name += "." + p.expect(lexer.IDENT, "type name").Literal
		if p.is(lexer.LT) {
			tn.TypeArgs = p.parseTypeArgs()
		}
	}
	tn.Name = name
	return tn
}

func (p *parser) skipBalancedBraces() {
	p.expect(lexer.LBRACE, "'{' opening block")
	depth := 1
	for depth > 0 && !p.is(lexer.EOF) {
		if p.is(lexer.LBRACE) {
			depth++
		} else if p.is(lexer.RBRACE) {
			depth--
		}
		p.advance()
	}
}

func typeNodeFromExpr(x ast.Expr) ast.TypeNode {
	switch v := x.(type) {
	case *ast.Ident:
		return ast.TypeNode{Name: v.Name, Pos: v.Pos}
	case *ast.QualName:
		return ast.TypeNode{Name: strings.Join(v.Parts, "."), Pos: v.Pos}
	case *ast.Select:
		base := typeNodeFromExpr(v.X)
		return ast.TypeNode{Name: base.Name + "." + v.Name, Pos: v.Pos}
	default:
		return ast.TypeNode{}
	}
}
