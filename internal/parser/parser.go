// Package parser builds the best-effort ast.File the scanner (C1) and
// symbol collector (C2) operate on. A parse failure never panics outward:
// Parse recovers internally and returns an error, so the scanner's contract
// ("a parse failure skips the file silently", spec.md §4.1) is satisfied by
// the caller simply checking the error.
package parser

import (
	"fmt"

	"github.com/javastub/javastub/internal/ast"
	"github.com/javastub/javastub/internal/lexer"
)

type parser struct {
	toks []lexer.Token
	pos  int
	path string
}

type parseError struct{ msg string }

func (e parseError) Error() string { return e.msg }

// Parse tokenizes and parses src (from path, used only for error messages)
// into an ast.File. It never panics; internal parse failures are converted
// to an error return.
func Parse(path, src string) (file *ast.File, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(parseError); ok {
				err = pe
				return
			}
			err = fmt.Errorf("parser: internal error: %v", r)
		}
	}()

	l := lexer.New(src)
	var toks []lexer.Token
	for {
		t := l.NextToken()
		toks = append(toks, t)
		if t.Type == lexer.EOF {
			break
		}
	}
	p := &parser{toks: toks, path: path}
	return p.parseFile(), nil
}

func (p *parser) fail(format string, args ...any) {
	panic(parseError{msg: fmt.Sprintf("%s: %s", p.path, fmt.Sprintf(format, args...))})
}

func (p *parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *parser) is(t lexer.Type) bool { return p.cur().Type == t }
func (p *parser) expect(t lexer.Type, what string) lexer.Token {
	if !p.is(t) {
		p.fail("expected %s at line %d, got %q", what, p.cur().Line, p.cur().Literal)
	}
	return p.advance()
}
func (p *parser) accept(t lexer.Type) bool {
	if p.is(t) {
		p.advance()
		return true
	}
	return false
}

func pos(t lexer.Token) ast.Pos { return ast.Pos{Line: t.Line, Column: t.Column} }

// parseFile parses package, imports, and top-level type declarations.
func (p *parser) parseFile() *ast.File {
	f := &ast.File{Path: p.path}

	if p.is(lexer.PACKAGE) {
		p.advance()
		f.Package = p.parseDottedName()
		p.expect(lexer.SEMI, "';' after package declaration")
	}

	for p.is(lexer.IMPORT) {
		p.advance()
		imp := ast.Import{Pos: pos(p.cur())}
		if p.is(lexer.STATIC) {
			p.advance()
			imp.Static = true
		}
		imp.Path = p.parseDottedNameWithStar()
		if len(imp.Path) > 0 && imp.Path[len(imp.Path)-1] == '*' {
			imp.Wildcard = true
		}
		p.expect(lexer.SEMI, "';' after import")
		f.Imports = append(f.Imports, imp)
	}

	for !p.is(lexer.EOF) {
		if p.accept(lexer.SEMI) {
			continue
		}
		td := p.parseTypeDecl()
		if td != nil {
			f.Types = append(f.Types, td)
		}
	}
	return f
}

func (p *parser) parseDottedName() string {
	name := p.expect(lexer.IDENT, "identifier").Literal
	for p.is(lexer.DOT) {
		p.advance()
		name += "." + p.expect(lexer.IDENT, "identifier").Literal
	}
	return name
}

func (p *parser) parseDottedNameWithStar() string {
	name := p.expect(lexer.IDENT, "identifier").Literal
	for p.is(lexer.DOT) {
		p.advance()
		if p.is(lexer.STAR) {
			p.advance()
			return name + ".*"
		}
		name += "." + p.expect(lexer.IDENT, "identifier").Literal
	}
	return name
}

// parseModifiersAndAnnotations consumes leading modifier keywords and
// annotation usages common to any declaration.
func (p *parser) parseModifiersAndAnnotations() ast.Modifiers {
	var m ast.Modifiers
	for {
		switch p.cur().Type {
		case lexer.PUBLIC:
			m.Public = true
			p.advance()
		case lexer.PROTECTED:
			m.Protected = true
			p.advance()
		case lexer.PRIVATE:
			m.Private = true
			p.advance()
		case lexer.STATIC:
			m.Static = true
			p.advance()
		case lexer.FINAL:
			m.Final = true
			p.advance()
		case lexer.ABSTRACT:
			m.Abstract = true
			p.advance()
		case lexer.DEFAULT:
			m.Default = true
			p.advance()
		case lexer.SYNCHRONIZED, lexer.VOLATILE, lexer.TRANSIENT, lexer.NATIVE, lexer.STRICTFP:
			p.advance()
		case lexer.AT:
			m.Annotations = append(m.Annotations, p.parseAnnotationUse())
		default:
			return m
		}
	}
}

func (p *parser) parseAnnotationUse() ast.AnnotationUse {
	at := p.advance() // '@'
	au := ast.AnnotationUse{Pos: pos(at)}
	au.Type = ast.TypeNode{Name: p.parseDottedName(), Pos: pos(at)}
	if p.accept(lexer.LPAREN) {
		for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
			elem := p.parseAnnotationElement()
			au.Elements = append(au.Elements, elem)
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN, "')' closing annotation arguments")
	}
	return au
}

func (p *parser) parseAnnotationElement() ast.AnnotationElement {
	// name = value, or a bare value (implicit "value" element), or a nested
	// annotation / array initializer — parsed as a best-effort expression.
	if p.is(lexer.IDENT) && p.peekAt(1).Type == lexer.ASSIGN {
		name := p.advance().Literal
		p.advance() // '='
		return ast.AnnotationElement{Name: name, Value: p.parseAnnotationValue()}
	}
	return ast.AnnotationElement{Name: "value", Value: p.parseAnnotationValue()}
}

func (p *parser) parseAnnotationValue() ast.Expr {
	if p.is(lexer.LBRACE) {
		// array initializer `{a, b, c}` — collapse to its first element for
		// the collector's "named element used" rule, keeping parse safety.
		p.advance()
		var first ast.Expr
		for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
			v := p.parseAnnotationValue()
			if first == nil {
				first = v
			}
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RBRACE, "'}' closing annotation array value")
		if first == nil {
			return &ast.Literal{Kind: ast.LitNull}
		}
		return first
	}
	if p.is(lexer.AT) {
		au := p.parseAnnotationUse()
		return &ast.ClassLiteral{Type: au.Type, Pos: au.Pos}
	}
	return p.parseExpr()
}

// parseTypeDecl parses one class/interface/enum/@interface/record
// declaration, including its full body.
func (p *parser) parseTypeDecl() *ast.TypeDecl {
	mods := p.parseModifiersAndAnnotations()

	var kind ast.TypeDeclKind
	switch {
	case p.is(lexer.CLASS):
		p.advance()
		kind = ast.DeclClass
	case p.is(lexer.INTERFACE):
		p.advance()
		kind = ast.DeclInterface
	case p.is(lexer.ENUM):
		p.advance()
		kind = ast.DeclEnum
	case p.is(lexer.RECORD):
		p.advance()
		kind = ast.DeclRecord
	case p.is(lexer.AT) && p.peekAt(1).Type == lexer.INTERFACE:
		p.advance()
		p.advance()
		kind = ast.DeclAnnotation
	default:
		p.fail("expected type declaration at line %d, got %q", p.cur().Line, p.cur().Literal)
	}

	nameTok := p.expect(lexer.IDENT, "type name")
	td := &ast.TypeDecl{Name: nameTok.Literal, Kind: kind, Modifiers: mods, Pos: pos(nameTok)}

	if p.is(lexer.LT) {
		td.TypeParams = p.parseTypeParams()
	}

	if kind == ast.DeclRecord && p.is(lexer.LPAREN) {
		// record components behave like implicit final fields; modeled as
		// fields so the scanner/collector see them uniformly.
		p.advance()
		for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
			ty := p.parseType()
			nm := p.expect(lexer.IDENT, "record component name").Literal
			td.Fields = append(td.Fields, &ast.FieldDecl{Name: nm, Type: ty, Modifiers: ast.Modifiers{Private: true, Final: true}})
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN, "')' closing record components")
	}

	if p.is(lexer.EXTENDS) {
		p.advance()
		td.Extends = append(td.Extends, p.parseType())
		for p.accept(lexer.COMMA) {
			td.Extends = append(td.Extends, p.parseType())
		}
	}
	if p.is(lexer.IMPLEMENTS) {
		p.advance()
		td.Implements = append(td.Implements, p.parseType())
		for p.accept(lexer.COMMA) {
			td.Implements = append(td.Implements, p.parseType())
		}
	}

	p.expect(lexer.LBRACE, "'{' opening type body")
	p.parseTypeBody(td)
	p.expect(lexer.RBRACE, "'}' closing type body")
	return td
}

func (p *parser) parseTypeParams() []string {
	p.expect(lexer.LT, "'<'")
	var names []string
	for {
		name := p.expect(lexer.IDENT, "type parameter name").Literal
		names = append(names, name)
		if p.is(lexer.EXTENDS) {
			p.advance()
			p.parseType()
			for p.accept(lexer.AMP) {
				p.parseType()
			}
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT, "'>' closing type parameters")
	return names
}

func (p *parser) parseTypeBody(td *ast.TypeDecl) {
	if td.Kind == ast.DeclEnum {
		p.parseEnumConstants(td)
	}
	for !p.is(lexer.RBRACE) && !p.is(lexer.EOF) {
		if p.accept(lexer.SEMI) {
			continue
		}
		p.parseMember(td)
	}
}

func (p *parser) parseEnumConstants(td *ast.TypeDecl) {
	for p.is(lexer.IDENT) {
		p.advance()
		if p.accept(lexer.LPAREN) {
			for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
				p.parseExpr()
				if !p.accept(lexer.COMMA) {
					break
				}
			}
			p.expect(lexer.RPAREN, "')' closing enum constant arguments")
		}
		if p.is(lexer.LBRACE) {
			// enum constant body (anonymous subclass) — skip its members.
			p.advance()
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
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.accept(lexer.SEMI)
}

// parseMember parses one nested type, field, method, or constructor
// declaration, disambiguating by lookahead.
func (p *parser) parseMember(owner *ast.TypeDecl) {
	mods := p.parseModifiersAndAnnotations()

	switch p.cur().Type {
	case lexer.CLASS, lexer.INTERFACE, lexer.ENUM, lexer.RECORD:
		nested := p.parseTypeDeclWithMods(mods)
		owner.Nested = append(owner.Nested, nested)
		return
	case lexer.AT:
		if p.peekAt(1).Type == lexer.INTERFACE {
			nested := p.parseTypeDeclWithMods(mods)
			owner.Nested = append(owner.Nested, nested)
			return
		}
	}

	// Generic method type parameters: `<T> T foo(...)`.
	var methodTypeParams []string
	if p.is(lexer.LT) {
		methodTypeParams = p.parseTypeParams()
	}

	// Constructor: bare `Name(` matching the owner's simple name.
	if p.is(lexer.IDENT) && p.cur().Literal == owner.Name && p.peekAt(1).Type == lexer.LPAREN {
		nameTok := p.advance()
		ctor := &ast.CtorDecl{Modifiers: mods, Pos: pos(nameTok)}
		ctor.Params, ctor.Varargs = p.parseParams()
		if p.is(lexer.THROWS) {
			p.advance()
			ctor.Throws = append(ctor.Throws, p.parseType())
			for p.accept(lexer.COMMA) {
				ctor.Throws = append(ctor.Throws, p.parseType())
			}
		}
		if p.is(lexer.LBRACE) {
			ctor.Body = p.parseBlock()
		} else {
			p.expect(lexer.SEMI, "';' after constructor declaration")
		}
		owner.Ctors = append(owner.Ctors, ctor)
		return
	}

	retType := p.parseType()

	nameTok := p.expect(lexer.IDENT, "member name")

	if p.is(lexer.LPAREN) {
		m := &ast.MethodDecl{Name: nameTok.Literal, TypeParams: methodTypeParams, Return: retType, Modifiers: mods, Pos: pos(nameTok)}
		m.Params, m.Varargs = p.parseParams()
		// trailing array dims on old-style declarations: `int foo()[]`.
		for p.is(lexer.LBRACKET) {
			p.advance()
			p.expect(lexer.RBRACKET, "']'")
			m.Return.Dims++
		}
		if p.is(lexer.THROWS) {
			p.advance()
			m.Throws = append(m.Throws, p.parseType())
			for p.accept(lexer.COMMA) {
				m.Throws = append(m.Throws, p.parseType())
			}
		}
		if p.is(lexer.LBRACE) {
			m.Body = p.parseBlock()
		} else {
			p.expect(lexer.SEMI, "';' after abstract method declaration")
		}
		owner.Methods = append(owner.Methods, m)
		return
	}

	// Field declaration, possibly with multiple comma-separated declarators.
	for {
		f := &ast.FieldDecl{Name: nameTok.Literal, Type: retType, Modifiers: mods, Pos: pos(nameTok)}
		for p.is(lexer.LBRACKET) {
			p.advance()
			p.expect(lexer.RBRACKET, "']'")
			f.Type.Dims++
		}
		if p.accept(lexer.ASSIGN) {
			f.Init = p.parseVarInit()
		}
		owner.Fields = append(owner.Fields, f)
		if !p.accept(lexer.COMMA) {
			break
		}
		nameTok = p.expect(lexer.IDENT, "field name")
	}
	p.expect(lexer.SEMI, "';' after field declaration")
}

func (p *parser) parseTypeDeclWithMods(mods ast.Modifiers) *ast.TypeDecl {
	// Re-enter parseTypeDecl logic without re-reading modifiers: rewind is
	// avoided by inlining the remainder here.
	var kind ast.TypeDeclKind
	switch {
	case p.is(lexer.CLASS):
		p.advance()
		kind = ast.DeclClass
	case p.is(lexer.INTERFACE):
		p.advance()
		kind = ast.DeclInterface
	case p.is(lexer.ENUM):
		p.advance()
		kind = ast.DeclEnum
	case p.is(lexer.RECORD):
		p.advance()
		kind = ast.DeclRecord
	case p.is(lexer.AT):
		p.advance()
		p.expect(lexer.INTERFACE, "'interface' after '@'")
		kind = ast.DeclAnnotation
	}
	nameTok := p.expect(lexer.IDENT, "type name")
	td := &ast.TypeDecl{Name: nameTok.Literal, Kind: kind, Modifiers: mods, Pos: pos(nameTok)}
	if p.is(lexer.LT) {
		td.TypeParams = p.parseTypeParams()
	}
	if kind == ast.DeclRecord && p.is(lexer.LPAREN) {
		p.advance()
		for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
			ty := p.parseType()
			nm := p.expect(lexer.IDENT, "record component name").Literal
			td.Fields = append(td.Fields, &ast.FieldDecl{Name: nm, Type: ty, Modifiers: ast.Modifiers{Private: true, Final: true}})
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN, "')' closing record components")
	}
	if p.is(lexer.EXTENDS) {
		p.advance()
		td.Extends = append(td.Extends, p.parseType())
		for p.accept(lexer.COMMA) {
			td.Extends = append(td.Extends, p.parseType())
		}
	}
	if p.is(lexer.IMPLEMENTS) {
		p.advance()
		td.Implements = append(td.Implements, p.parseType())
		for p.accept(lexer.COMMA) {
			td.Implements = append(td.Implements, p.parseType())
		}
	}
	p.expect(lexer.LBRACE, "'{' opening type body")
	p.parseTypeBody(td)
	p.expect(lexer.RBRACE, "'}' closing type body")
	return td
}

func (p *parser) parseParams() ([]ast.Param, bool) {
	p.expect(lexer.LPAREN, "'(' opening parameter list")
	var params []ast.Param
	varargs := false
	for !p.is(lexer.RPAREN) && !p.is(lexer.EOF) {
		// parameter-level annotations/modifiers (e.g. `final`, `@NotNull`).
		p.parseModifiersAndAnnotations()
		ty := p.parseType()
		if p.is(lexer.DOTDOTDOT) {
			p.advance()
			ty.Dims++
			varargs = true
		}
		nameTok := p.expect(lexer.IDENT, "parameter name")
		for p.is(lexer.LBRACKET) {
			p.advance()
			p.expect(lexer.RBRACKET, "']'")
			ty.Dims++
		}
		params = append(params, ast.Param{Name: nameTok.Literal, Type: ty})
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN, "')' closing parameter list")
	return params, varargs
}

// parseType parses a syntactic type reference: primitive/void keyword, or a
// dotted identifier chain with optional per-segment type arguments, followed
// by any number of `[]` array-dimension suffixes.
func (p *parser) parseType() ast.TypeNode {
	t := p.cur()
	tn := ast.TypeNode{Pos: pos(t)}

	switch t.Type {
	case lexer.VOID:
		p.advance()
		tn.Void = true
		tn.Name = "void"
		return tn
	case lexer.BOOLEAN, lexer.BYTE, lexer.SHORT, lexer.CHARKW, lexer.INT_KW, lexer.LONG, lexer.FLOAT_KW, lexer.DOUBLE:
		p.advance()
		tn.Primitive = true
		tn.Name = t.Literal
		for p.is(lexer.LBRACKET) {
			p.advance()
			p.expect(lexer.RBRACKET, "']'")
			tn.Dims++
		}
		return tn
	}

	name := p.expect(lexer.IDENT, "type name").Literal
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
	for p.is(lexer.LBRACKET) {
		p.advance()
		p.expect(lexer.RBRACKET, "']'")
		tn.Dims++
	}
	return tn
}

func (p *parser) parseTypeArgs() []ast.TypeNode {
	p.expect(lexer.LT, "'<'")
	var args []ast.TypeNode
	if p.is(lexer.GT) {
		p.advance()
		return args // diamond `<>`
	}
	for {
		if p.is(lexer.QUESTION) {
			q := p.advance()
			arg := ast.TypeNode{Name: "?", Pos: pos(q)}
			if p.is(lexer.EXTENDS) || p.is(lexer.SUPER) {
				p.advance()
				p.parseType()
			}
			args = append(args, arg)
		} else {
			args = append(args, p.parseType())
		}
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.GT, "'>' closing type arguments")
	return args
}
