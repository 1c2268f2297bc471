package parser_test

import (
	"testing"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/parser"
)

// TestParserAcceptsCoreSyntax is a table of accepted constructs (name +
// source per case) checking structural facts about the resulting
// *ast.Program directly rather than diffing golden snapshot files.
func TestParserAcceptsCoreSyntax(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"let_declaration", "let x = 1;"},
		{"const_declaration", "const x = 1;"},
		{"var_declaration", "var x = 1;"},
		{"function_declaration", "function f(a, b) { return a + b; }"},
		{"arrow_function", "const f = (a, b) => a + b;"},
		{"if_else", "if (x) { y = 1; } else { y = 2; }"},
		{"while_loop", "while (x < 10) { x = x + 1; }"},
		{"for_loop", "for (let i = 0; i < 10; i = i + 1) { }"},
		{"for_of", "for (const x of xs) { }"},
		{"for_in", "for (const k in obj) { }"},
		{"class_declaration", "class Point { constructor(x) { this.x = x; } }"},
		{"array_literal", "let a = [1, 2, 3];"},
		{"object_literal", "let o = { a: 1, b: 2 };"},
		{"ternary", "let y = x ? 1 : 2;"},
		{"optional_chaining", "let y = a?.b?.c;"},
		{"nullish_coalescing", "let y = a ?? b;"},
		{"typeof_check", "if (typeof x === \"string\") { }"},
		{"instanceof_check", "if (x instanceof Foo) { }"},
		{"try_catch", "try { f(); } catch (e) { g(); }"},
		{"switch_statement", "switch (x) { case 1: y = 1; break; default: y = 2; }"},
		{"async_function", "async function f() { await g(); }"},
		{"spread_in_call", "f(...args);"},
		{"destructuring_object", "const { a, b } = obj;"},
		{"destructuring_array", "const [a, b] = arr;"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prog, diags := parser.Parse(tc.input)
			if len(diags) != 0 {
				t.Fatalf("unexpected diagnostics for %q: %v", tc.input, diags)
			}
			if len(prog.Statements) == 0 {
				t.Fatalf("expected at least one top-level statement for %q", tc.input)
			}
		})
	}
}

func TestParserReportsDiagnosticOnSyntaxError(t *testing.T) {
	testCases := []string{
		"let x = ;",
		"function (a, b) {",
		"if (x { }",
	}
	for _, src := range testCases {
		_, diags := parser.Parse(src)
		if len(diags) == 0 {
			t.Errorf("expected at least one diagnostic for %q, got none", src)
		}
	}
}

func TestVariableDeclarationKindDistinguishesConst(t *testing.T) {
	prog, diags := parser.Parse("const x = 1; let y = 2;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	first, ok := prog.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected *ast.VariableDeclaration, got %T", prog.Statements[0])
	}
	if first.Kind != ast.DeclConst {
		t.Errorf("expected DeclConst, got %v", first.Kind)
	}
	second, ok := prog.Statements[1].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("expected *ast.VariableDeclaration, got %T", prog.Statements[1])
	}
	if second.Kind != ast.DeclLet {
		t.Errorf("expected DeclLet, got %v", second.Kind)
	}
}

func TestBinaryExpressionParsesOperatorAndOperands(t *testing.T) {
	prog, diags := parser.Parse("let x = 1 + 2;")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	bin, ok := decl.Declarators[0].Init.(*ast.BinaryExpression)
	if !ok {
		t.Fatalf("expected *ast.BinaryExpression, got %T", decl.Declarators[0].Init)
	}
	if bin.Op != "+" {
		t.Errorf("expected operator '+', got %q", bin.Op)
	}
	left, ok := bin.Left.(*ast.Literal)
	if !ok || left.Kind != ast.LitNumber {
		t.Errorf("expected a number literal on the left, got %T", bin.Left)
	}
}
