// Package solver implements the iterative, CFG-based dataflow engine:
// per-block transfer functions, a worklist fixed point with widening,
// call-site parameter aggregation, and annotation/error extraction.
package solver

import "github.com/funvibe/flowtype/internal/ast"

// BindingKind classifies how a name was declared.
type BindingKind int

const (
	BindVar BindingKind = iota
	BindLet
	BindConst
	BindFunction
	BindClass
	BindParameter
	BindBuiltin
	BindCatch
)

// Binding records a declared name's static facts: its
// declaration kind and, for function/class bindings, the declaration node
// so call-site aggregation can key off it.
type Binding struct {
	Name    string
	Kind    BindingKind
	Decl    ast.Node
	FuncRef ast.Node // for BindFunction/BindClass: the node registered in the call-site registry
}

// Environment is the static scope this function body's analysis runs
// under: its own hoisted declarations plus read-only access, through
// Outer, to the top-level program's bindings (every function body's Outer
// is the top-level scope, not its lexically enclosing function's);
// lookup walks outward.
type Environment struct {
	Bindings  map[string]*Binding
	Outer     *Environment
	OwnerNode ast.Node // the function/program node this scope's flat TypeState belongs to
}

func NewEnvironment(outer *Environment, owner ast.Node) *Environment {
	return &Environment{Bindings: map[string]*Binding{}, Outer: outer, OwnerNode: owner}
}

// Lookup walks outward through the scope chain.
func (e *Environment) Lookup(name string) (*Binding, bool) {
	b, _, ok := e.LookupWithOwner(name)
	return b, ok
}

// LookupWithOwner also returns the OwnerNode of the scope the binding was
// found in, so a closure read can fetch that function's last-known
// TypeState rather than this function's own (flat, per-function) one.
func (e *Environment) LookupWithOwner(name string) (*Binding, ast.Node, bool) {
	for env := e; env != nil; env = env.Outer {
		if b, ok := env.Bindings[name]; ok {
			return b, env.OwnerNode, true
		}
	}
	return nil, nil, false
}

func (e *Environment) Declare(b *Binding) {
	e.Bindings[b.Name] = b
}

// hoist walks a function body once, recursively
// descending into nested blocks and control-flow bodies but never into
// nested function/class bodies, collecting every var, function, and class
// declaration and installing it in env. Simplification: unlike real
// lexical scoping, let/const declared in a nested block share the same
// function-wide namespace as var here; only their BindingKind (and so
// their const-reassignment and TDZ behaviour) is tracked precisely, not a
// separate nested slot.
func hoist(env *Environment, stmts []ast.Statement, reg *registry) {
	var walk func(s ast.Statement)
	walk = func(s ast.Statement) {
		switch v := s.(type) {
		case *ast.VariableDeclaration:
			kind := BindVar
			switch v.Kind {
			case ast.DeclLet:
				kind = BindLet
			case ast.DeclConst:
				kind = BindConst
			}
			for _, d := range v.Declarators {
				for _, name := range patternNames(d.Target) {
					env.Declare(&Binding{Name: name, Kind: kind, Decl: d})
				}
			}
		case *ast.FunctionStatement:
			if v.Name != nil {
				ref := reg.register(v)
				env.Declare(&Binding{Name: v.Name.Name, Kind: BindFunction, Decl: v, FuncRef: ref})
			}
		case *ast.ClassDeclaration:
			if v.Name != nil {
				ref := reg.register(v)
				env.Declare(&Binding{Name: v.Name.Name, Kind: BindClass, Decl: v, FuncRef: ref})
			}
		case *ast.BlockStatement:
			for _, inner := range v.Statements {
				walk(inner)
			}
		case *ast.IfStatement:
			walk(v.Then)
			if v.Alt != nil {
				walk(v.Alt)
			}
		case *ast.WhileStatement:
			walk(v.Body)
		case *ast.DoWhileStatement:
			walk(v.Body)
		case *ast.ForStatement:
			if initStmt, ok := v.Init.(ast.Statement); ok {
				walk(initStmt)
			}
			walk(v.Body)
		case *ast.ForInStatement:
			walk(v.Body)
		case *ast.ForOfStatement:
			walk(v.Body)
		case *ast.TryStatement:
			walk(v.Block)
			if v.Catch != nil {
				if v.Catch.Param != nil {
					for _, name := range patternNames(v.Catch.Param) {
						env.Declare(&Binding{Name: name, Kind: BindCatch, Decl: v.Catch})
					}
				}
				walk(v.Catch.Body)
			}
			if v.Finally != nil {
				walk(v.Finally)
			}
		case *ast.SwitchStatement:
			for _, c := range v.Cases {
				for _, st := range c.Statements {
					walk(st)
				}
			}
		case *ast.LabeledStatement:
			walk(v.Body)
		}
	}
	for _, s := range stmts {
		walk(s)
	}
}

// patternNames flattens a (possibly destructuring) pattern into the flat
// list of names it binds.
func patternNames(p ast.Pattern) []string {
	switch v := p.(type) {
	case *ast.Identifier:
		return []string{v.Name}
	case *ast.ArrayPattern:
		var out []string
		for _, el := range v.Elements {
			if el == nil {
				continue
			}
			out = append(out, patternNames(el)...)
		}
		return out
	case *ast.ObjectPattern:
		var out []string
		for _, prop := range v.Props {
			out = append(out, patternNames(prop.Target)...)
		}
		if v.Rest != nil {
			out = append(out, patternNames(v.Rest.Target)...)
		}
		return out
	case *ast.AssignmentPattern:
		return patternNames(v.Target)
	case *ast.RestElement:
		return patternNames(v.Target)
	}
	return nil
}

