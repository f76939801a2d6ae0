package lexer

import "testing"

func tokenTypes(src string) []Type {
	l := New(src)
	var types []Type
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			return types
		}
	}
}

func TestNextTokenPunctuationAndOperators(t *testing.T) {
	got := tokenTypes("() {} [] <= >= == != && || ++ -- += -= *= /= %= -> ...")
	want := []Type{
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
		LE, GE, EQEQ, NEQ, ANDAND, OROR, INC, DEC,
		PLUSEQ, MINUSEQ, STAREQ, SLASHEQ, PERCENTEQ, ARROW, DOTDOTDOT, EOF,
	}
	assertTypes(t, got, want)
}

func TestNextTokenKeywordsVsIdentifiers(t *testing.T) {
	got := tokenTypes("class Foo extends Bar implements Baz { void m() { return; } }")
	want := []Type{
		CLASS, IDENT, EXTENDS, IDENT, IMPLEMENTS, IDENT, LBRACE,
		VOID, IDENT, LPAREN, RPAREN, LBRACE, RETURN, SEMI, RBRACE, RBRACE, EOF,
	}
	assertTypes(t, got, want)
}

func TestNextTokenIdentifierAllowsDollarAndUnderscore(t *testing.T) {
	got := tokenTypes("bitField0_ $Outer _private")
	want := []Type{IDENT, IDENT, IDENT, EOF}
	assertTypes(t, got, want)
}

func TestNextTokenNumbers(t *testing.T) {
	l := New("42 3.14 7L 2.5f")
	cases := []struct {
		typ Type
		lit string
	}{
		{INT, "42"},
		{FLOAT, "3.14"},
		{INT, "7L"},
		{FLOAT, "2.5f"},
	}
	for _, c := range cases {
		tok := l.NextToken()
		if tok.Type != c.typ || tok.Literal != c.lit {
			t.Errorf("got %v %q, want %v %q", tok.Type, tok.Literal, c.typ, c.lit)
		}
	}
}

func TestNextTokenStringAndCharLiterals(t *testing.T) {
	l := New(`"hello \"world\"" 'x'`)
	str := l.NextToken()
	if str.Type != STRING || str.Literal != `hello \"world\"` {
		t.Errorf("got %v %q", str.Type, str.Literal)
	}
	ch := l.NextToken()
	if ch.Type != CHAR || ch.Literal != "x" {
		t.Errorf("got %v %q", ch.Type, ch.Literal)
	}
}

func TestNextTokenSkipsLineAndBlockComments(t *testing.T) {
	got := tokenTypes("// a comment\nclass /* inline */ Foo {}")
	want := []Type{CLASS, IDENT, LBRACE, RBRACE, EOF}
	assertTypes(t, got, want)
}

func TestNextTokenIllegalCharacter(t *testing.T) {
	l := New("#")
	tok := l.NextToken()
	if tok.Type != ILLEGAL || tok.Literal != "#" {
		t.Errorf("got %v %q, want ILLEGAL #", tok.Type, tok.Literal)
	}
}

func TestNextTokenTracksLineNumbers(t *testing.T) {
	l := New("class Foo {\n  void m() {}\n}")
	var line3Tok Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Line == 3 {
			line3Tok = tok
			break
		}
	}
	if line3Tok.Type != RBRACE {
		t.Errorf("expected the final closing brace on line 3, got %v on line %d", line3Tok.Type, line3Tok.Line)
	}
}

func assertTypes(t *testing.T, got, want []Type) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d tokens %v, want %d tokens %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}
