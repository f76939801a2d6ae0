package parser

import (
	"testing"

	"github.com/javastub/javastub/internal/ast"
)

func TestParsePackageAndImports(t *testing.T) {
	src := "package foo.bar;\n\nimport java.util.List;\nimport static java.lang.Math.max;\nimport java.util.*;\n\nclass Foo {}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Package != "foo.bar" {
		t.Errorf("package = %q", f.Package)
	}
	if len(f.Imports) != 3 {
		t.Fatalf("expected 3 imports, got %d", len(f.Imports))
	}
	if f.Imports[0].Path != "java.util.List" || f.Imports[0].Static || f.Imports[0].Wildcard {
		t.Errorf("import 0 = %+v", f.Imports[0])
	}
	if f.Imports[1].Path != "java.lang.Math.max" || !f.Imports[1].Static {
		t.Errorf("import 1 = %+v", f.Imports[1])
	}
	if !f.Imports[2].Wildcard {
		t.Errorf("import 2 should be a wildcard, got %+v", f.Imports[2])
	}
}

func TestParseClassExtendsImplements(t *testing.T) {
	src := "package foo;\n\nclass Foo extends Bar implements Baz, Qux {}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(f.Types))
	}
	td := f.Types[0]
	if td.Kind != ast.DeclClass || td.Name != "Foo" {
		t.Errorf("got kind=%v name=%q", td.Kind, td.Name)
	}
	if len(td.Extends) != 1 || td.Extends[0].Name != "Bar" {
		t.Errorf("extends = %+v", td.Extends)
	}
	if len(td.Implements) != 2 || td.Implements[0].Name != "Baz" || td.Implements[1].Name != "Qux" {
		t.Errorf("implements = %+v", td.Implements)
	}
}

func TestParseInterfaceEnumRecord(t *testing.T) {
	src := "package foo;\n\ninterface I {}\nenum E { A, B }\nrecord R(int x, String y) {}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(f.Types))
	}
	if f.Types[0].Kind != ast.DeclInterface {
		t.Errorf("expected interface, got %v", f.Types[0].Kind)
	}
	if f.Types[1].Kind != ast.DeclEnum {
		t.Errorf("expected enum, got %v", f.Types[1].Kind)
	}
	rec := f.Types[2]
	if rec.Kind != ast.DeclRecord {
		t.Errorf("expected record, got %v", rec.Kind)
	}
	if len(rec.Fields) != 2 || rec.Fields[0].Name != "x" || rec.Fields[1].Name != "y" {
		t.Errorf("record components -> fields = %+v", rec.Fields)
	}
}

func TestParseFieldMultiDeclarator(t *testing.T) {
	src := "package foo;\n\nclass Foo {\n    int a = 1, b, c = 3;\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	fields := f.Types[0].Fields
	if len(fields) != 3 {
		t.Fatalf("expected 3 separate field decls, got %d: %+v", len(fields), fields)
	}
	if fields[0].Name != "a" || fields[0].Init == nil {
		t.Errorf("field a = %+v", fields[0])
	}
	if fields[1].Name != "b" || fields[1].Init != nil {
		t.Errorf("field b = %+v", fields[1])
	}
	if fields[2].Name != "c" || fields[2].Init == nil {
		t.Errorf("field c = %+v", fields[2])
	}
}

func TestParseMethodWithVarargsAndThrows(t *testing.T) {
	src := "package foo;\n\nclass Foo {\n    void m(int a, String... rest) throws java.io.IOException {\n    }\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	methods := f.Types[0].Methods
	if len(methods) != 1 {
		t.Fatalf("expected 1 method, got %d", len(methods))
	}
	m := methods[0]
	if !m.Varargs {
		t.Error("expected varargs method")
	}
	if len(m.Params) != 2 || m.Params[1].Name != "rest" {
		t.Errorf("params = %+v", m.Params)
	}
	if len(m.Throws) != 1 || m.Throws[0].Name != "java.io.IOException" {
		t.Errorf("throws = %+v", m.Throws)
	}
	if m.Body == nil {
		t.Error("expected a body for a concrete method")
	}
}

func TestParseAbstractInterfaceMethodHasNoBody(t *testing.T) {
	src := "package foo;\n\ninterface I {\n    void doIt();\n    default void doItDefault() { }\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	methods := f.Types[0].Methods
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %d", len(methods))
	}
	if methods[0].Body != nil {
		t.Error("abstract method should have a nil body")
	}
	if methods[1].Body == nil || !methods[1].Modifiers.Default {
		t.Error("default method should keep its body and carry the default modifier")
	}
}

func TestParseConstructor(t *testing.T) {
	src := "package foo;\n\nclass Foo {\n    Foo(int x) {\n        this.x = x;\n    }\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ctors := f.Types[0].Ctors
	if len(ctors) != 1 {
		t.Fatalf("expected 1 constructor, got %d", len(ctors))
	}
	if len(ctors[0].Params) != 1 || ctors[0].Params[0].Name != "x" {
		t.Errorf("ctor params = %+v", ctors[0].Params)
	}
	if ctors[0].Body == nil {
		t.Error("expected constructor body")
	}
}

func TestParseNestedType(t *testing.T) {
	src := "package foo;\n\nclass Outer {\n    class Inner {\n        void n() {}\n    }\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	outer := f.Types[0]
	if len(outer.Nested) != 1 || outer.Nested[0].Name != "Inner" {
		t.Fatalf("expected nested Inner, got %+v", outer.Nested)
	}
}

func TestParseStatementForms(t *testing.T) {
	src := `package foo;

class Foo {
    void m() {
        if (a > b) {
            return;
        } else {
            throw new RuntimeException("x");
        }
        for (int i = 0; i < 10; i++) {
        }
        for (String s : names) {
        }
        while (running) {
        }
        do {
        } while (running);
        try {
            risky();
        } catch (IOException | RuntimeException e) {
        } finally {
        }
        switch (x) {
            case 1:
                break;
            default:
                break;
        }
    }
}
`
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	body := f.Types[0].Methods[0].Body
	if body == nil {
		t.Fatal("expected a method body")
	}
	if len(body.Stmts) != 7 {
		t.Fatalf("expected 7 top-level statements, got %d: %+v", len(body.Stmts), body.Stmts)
	}

	ifStmt, ok := body.Stmts[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("stmt 0: expected *ast.IfStmt, got %T", body.Stmts[0])
	}
	if ifStmt.Else == nil {
		t.Error("expected an else branch")
	}

	forStmt, ok := body.Stmts[1].(*ast.ForStmt)
	if !ok {
		t.Fatalf("stmt 1: expected *ast.ForStmt, got %T", body.Stmts[1])
	}
	if forStmt.Init == nil || forStmt.Cond == nil || forStmt.Post == nil {
		t.Errorf("expected a fully populated classic for header, got %+v", forStmt)
	}

	forEach, ok := body.Stmts[2].(*ast.ForStmt)
	if !ok {
		t.Fatalf("stmt 2: expected *ast.ForStmt (for-each), got %T", body.Stmts[2])
	}
	if forEach.ElemName != "s" || forEach.Iterable == nil {
		t.Errorf("for-each = %+v", forEach)
	}

	if _, ok := body.Stmts[3].(*ast.WhileStmt); !ok {
		t.Fatalf("stmt 3: expected *ast.WhileStmt, got %T", body.Stmts[3])
	}

	doWhile, ok := body.Stmts[4].(*ast.WhileStmt)
	if !ok || !doWhile.DoWhile {
		t.Fatalf("stmt 4: expected a do-while WhileStmt, got %+v", body.Stmts[4])
	}

	tryStmt, ok := body.Stmts[5].(*ast.TryStmt)
	if !ok {
		t.Fatalf("stmt 5: expected *ast.TryStmt, got %T", body.Stmts[5])
	}
	if len(tryStmt.Catches) != 1 || len(tryStmt.Catches[0].Types) != 2 {
		t.Errorf("expected 1 multi-catch clause with 2 types, got %+v", tryStmt.Catches)
	}
	if tryStmt.Finally == nil {
		t.Error("expected a finally block")
	}

	switchStmt, ok := body.Stmts[6].(*ast.SwitchStmt)
	if !ok {
		t.Fatalf("stmt 6: expected *ast.SwitchStmt, got %T", body.Stmts[6])
	}
	if len(switchStmt.Cases) != 2 || !switchStmt.Cases[1].IsDefault {
		t.Errorf("switch cases = %+v", switchStmt.Cases)
	}
}

func TestParseLocalVarDeclVsExprStmt(t *testing.T) {
	src := "package foo;\n\nclass Foo {\n    void m() {\n        int x = 1;\n        x = x + 1;\n        compute(x);\n    }\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmts := f.Types[0].Methods[0].Body.Stmts
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*ast.LocalVarDecl); !ok {
		t.Errorf("stmt 0: expected *ast.LocalVarDecl, got %T", stmts[0])
	}
	exprStmt, ok := stmts[1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmt 1: expected *ast.ExprStmt, got %T", stmts[1])
	}
	if _, ok := exprStmt.X.(*ast.Assign); !ok {
		t.Errorf("expected an assignment expression, got %T", exprStmt.X)
	}
	callStmt, ok := stmts[2].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmt 2: expected *ast.ExprStmt, got %T", stmts[2])
	}
	if _, ok := callStmt.X.(*ast.Call); !ok {
		t.Errorf("expected a call expression, got %T", callStmt.X)
	}
}

func TestParseExpressionForms(t *testing.T) {
	src := `package foo;

class Foo {
    Object m() {
        int x = (flag ? 1 : 2) + count;
        boolean b = obj instanceof String;
        Object o = (Object) x;
        Widget w = new Widget(1, 2);
        int[] arr = new int[10];
        return arr[0];
    }
}
`
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmts := f.Types[0].Methods[0].Body.Stmts
	if len(stmts) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(stmts))
	}

	xDecl := stmts[0].(*ast.LocalVarDecl)
	bin, ok := xDecl.Init.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+' binary, got %+v", xDecl.Init)
	}
	if _, ok := bin.X.(*ast.Paren); !ok {
		t.Errorf("expected parenthesized ternary on the left, got %T", bin.X)
	}
	paren := bin.X.(*ast.Paren)
	if _, ok := paren.X.(*ast.Ternary); !ok {
		t.Errorf("expected a ternary inside the parens, got %T", paren.X)
	}

	bDecl := stmts[1].(*ast.LocalVarDecl)
	if _, ok := bDecl.Init.(*ast.InstanceOf); !ok {
		t.Errorf("expected InstanceOf, got %T", bDecl.Init)
	}

	oDecl := stmts[2].(*ast.LocalVarDecl)
	cast, ok := oDecl.Init.(*ast.Cast)
	if !ok || cast.Type.Name != "Object" {
		t.Fatalf("expected a cast to Object, got %+v", oDecl.Init)
	}

	wDecl := stmts[3].(*ast.LocalVarDecl)
	newExpr, ok := wDecl.Init.(*ast.NewExpr)
	if !ok || newExpr.Type.Name != "Widget" || len(newExpr.Args) != 2 {
		t.Fatalf("expected new Widget(1, 2), got %+v", wDecl.Init)
	}

	arrDecl := stmts[4].(*ast.LocalVarDecl)
	arrNew, ok := arrDecl.Init.(*ast.NewExpr)
	if !ok || len(arrNew.ArrayLen) != 1 {
		t.Fatalf("expected a sized array creation, got %+v", arrDecl.Init)
	}

	ret := stmts[5].(*ast.ReturnStmt)
	if _, ok := ret.X.(*ast.Index); !ok {
		t.Errorf("expected an index expression, got %T", ret.X)
	}
}

func TestParseQualNameAndSelectChain(t *testing.T) {
	src := "package foo;\n\nclass Foo {\n    void m() {\n        java.lang.System.out.println(\"hi\");\n    }\n}\n"
	f, err := Parse("Foo.java", src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	exprStmt := f.Types[0].Methods[0].Body.Stmts[0].(*ast.ExprStmt)
	call, ok := exprStmt.X.(*ast.Call)
	if !ok {
		t.Fatalf("expected a call, got %T", exprStmt.X)
	}
	sel, ok := call.Callee.(*ast.Select)
	if !ok || sel.Name != "println" {
		t.Fatalf("expected a trailing println select, got %+v", call.Callee)
	}
	if _, ok := sel.X.(*ast.QualName); !ok {
		t.Errorf("expected the receiver to collapse into a QualName, got %T", sel.X)
	}
}

func TestParseInvalidSourceReturnsError(t *testing.T) {
	_, err := Parse("Bad.java", "class {{{ not valid java")
	if err == nil {
		t.Fatal("expected a parse error for malformed source")
	}
}
