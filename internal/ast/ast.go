// Package ast defines the tree the parser produces and the inference core
// consumes. Every node carries a source range (Start/End) with line/column
// information on both ends.
package ast

import "github.com/funvibe/flowtype/internal/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Position
	End() token.Position
}

// Statement is a Node that appears in a statement position.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that appears in an expression position.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a Node usable on the left side of a binding: a plain
// identifier, or a destructuring array/object pattern.
type Pattern interface {
	Node
	patternNode()
}

// Span is the source range embedded in every node. It is exported (unlike
// a private base struct) so constructors outside this package can set it
// directly in composite literals.
type Span struct {
	Start token.Position
	Stop  token.Position
}

func (s Span) Pos() token.Position { return s.Start }
func (s Span) End() token.Position { return s.Stop }

// Program is the root of every parsed file; the engine also treats the
// top level as an implicit function.
type Program struct {
	Span
	File       string
	Statements []Statement
}

// DeclKind distinguishes var/let/const declarations.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
)

func (k DeclKind) String() string {
	switch k {
	case DeclLet:
		return "let"
	case DeclConst:
		return "const"
	default:
		return "var"
	}
}

// Declarator is one `name = init` (or pattern = init) clause of a
// variable declaration; a single statement may declare several.
type Declarator struct {
	Span
	Target Pattern // Identifier or a destructuring pattern
	Init   Expression
}

// VariableDeclaration is `var|let|const a = 1, b = 2;`.
type VariableDeclaration struct {
	Span
	Kind        DeclKind
	Declarators []*Declarator
}

func (*VariableDeclaration) statementNode() {}

// Identifier is both an Expression (a reference) and a Pattern (a simple
// binding target).
type Identifier struct {
	Span
	Name string
}

func (*Identifier) expressionNode() {}
func (*Identifier) patternNode()    {}

// BlockStatement is `{ stmt* }`.
type BlockStatement struct {
	Span
	Statements []Statement
}

func (*BlockStatement) statementNode() {}

// ExpressionStatement wraps an expression used for its side effects.
type ExpressionStatement struct {
	Span
	Expr Expression
}

func (*ExpressionStatement) statementNode() {}

// IfStatement is `if (cond) then [else alt]`.
type IfStatement struct {
	Span
	Cond Expression
	Then Statement
	Alt  Statement // nil if no else
}

func (*IfStatement) statementNode() {}

// WhileStatement is `while (cond) body`.
type WhileStatement struct {
	Span
	Label string
	Cond  Expression
	Body  Statement
}

func (*WhileStatement) statementNode() {}

// DoWhileStatement is `do body while (cond)`.
type DoWhileStatement struct {
	Span
	Label string
	Body  Statement
	Cond  Expression
}

func (*DoWhileStatement) statementNode() {}

// ForStatement is the classic three-clause for loop; any clause may be nil.
type ForStatement struct {
	Span
	Label  string
	Init   Node // *VariableDeclaration or Expression or nil
	Cond   Expression
	Update Expression
	Body   Statement
}

func (*ForStatement) statementNode() {}

// ForInStatement is `for (decl in obj) body` (enumerates keys).
type ForInStatement struct {
	Span
	Label  string
	Decl   DeclKind
	Target Pattern
	Object Expression
	Body   Statement
}

func (*ForInStatement) statementNode() {}

// ForOfStatement is `for (decl of iterable) body` (enumerates values).
type ForOfStatement struct {
	Span
	Label    string
	Decl     DeclKind
	Target   Pattern
	Iterable Expression
	Body     Statement
}

func (*ForOfStatement) statementNode() {}

// BreakStatement is `break [label];`.
type BreakStatement struct {
	Span
	Label string
}

func (*BreakStatement) statementNode() {}

// ContinueStatement is `continue [label];`.
type ContinueStatement struct {
	Span
	Label string
}

func (*ContinueStatement) statementNode() {}

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	Span
	Value Expression // nil if bare return
}

func (*ReturnStatement) statementNode() {}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	Span
	Value Expression
}

func (*ThrowStatement) statementNode() {}

// CatchClause is the `catch (param) { ... }` part of a try statement; Param
// may be nil (a parameterless catch).
type CatchClause struct {
	Span
	Param Pattern
	Body  *BlockStatement
}

// TryStatement is `try { } [catch (e) { }] [finally { }]`.
type TryStatement struct {
	Span
	Block   *BlockStatement
	Catch   *CatchClause
	Finally *BlockStatement
}

func (*TryStatement) statementNode() {}

// SwitchCase is one `case expr:` or `default:` arm; Test is nil for default.
type SwitchCase struct {
	Span
	Test       Expression
	Statements []Statement
}

// SwitchStatement is `switch (disc) { case ...: ...; default: ...; }`.
type SwitchStatement struct {
	Span
	Discriminant Expression
	Cases        []*SwitchCase
}

func (*SwitchStatement) statementNode() {}

// LabeledStatement is `label: stmt`.
type LabeledStatement struct {
	Span
	Label string
	Body  Statement
}

func (*LabeledStatement) statementNode() {}

// Param is one function parameter.
type Param struct {
	Span
	Target   Pattern
	Default  Expression // nil if no default
	Rest     bool
	Optional bool
}

// FunctionStatement is a named function declaration, hoisted to the top
// of its enclosing function scope.
type FunctionStatement struct {
	Span
	Name      *Identifier
	Params    []*Param
	Body      *BlockStatement
	Async     bool
	Generator bool
}

func (*FunctionStatement) statementNode() {}

// ClassField is `[static] name [= init];`.
type ClassField struct {
	Span
	Name   string
	Static bool
	Init   Expression
}

// ClassMethod is `[static] name(params) { body }`.
type ClassMethod struct {
	Span
	Name      string
	Static    bool
	Kind      string // "method", "get", "set", "constructor"
	Params    []*Param
	Body      *BlockStatement
	Async     bool
	Generator bool
}

// ClassDeclaration is `class Name [extends Super] { fields; methods; }`.
type ClassDeclaration struct {
	Span
	Name       *Identifier
	Superclass Expression // nil if no `extends`
	Fields     []*ClassField
	Methods    []*ClassMethod
}

func (*ClassDeclaration) statementNode()  {}
func (*ClassDeclaration) expressionNode() {} // class expressions are also valid
