package solver

import (
	"bitbucket.org/creachadair/stringset"

	"github.com/funvibe/flowtype/internal/ast"
)

// captureSet approximates a function body's free variables: every
// identifier referenced in the body whose name is not bound by a
// parameter or by a declaration anywhere inside the body. Nested function
// literals contribute their own free names minus their own parameters, so
// a doubly-nested read of an outer binding still surfaces here.
func captureSet(params []*ast.Param, body *ast.BlockStatement) stringset.Set {
	bound := stringset.New()
	for _, p := range params {
		bound.Add(patternNames(p.Target)...)
	}
	free := stringset.New()
	if body != nil {
		collectBoundNames(body.Statements, bound)
		for _, s := range body.Statements {
			freeInStmt(s, bound, free)
		}
	}
	return free
}

// collectBoundNames gathers every name a statement list declares at any
// block depth, without descending into nested function or class bodies
// (those bind their own scopes).
func collectBoundNames(stmts []ast.Statement, bound stringset.Set) {
	for _, s := range stmts {
		switch v := s.(type) {
		case *ast.VariableDeclaration:
			for _, d := range v.Declarators {
				bound.Add(patternNames(d.Target)...)
			}
		case *ast.FunctionStatement:
			if v.Name != nil {
				bound.Add(v.Name.Name)
			}
		case *ast.ClassDeclaration:
			if v.Name != nil {
				bound.Add(v.Name.Name)
			}
		case *ast.BlockStatement:
			collectBoundNames(v.Statements, bound)
		case *ast.IfStatement:
			collectBoundNames([]ast.Statement{v.Then}, bound)
			if v.Alt != nil {
				collectBoundNames([]ast.Statement{v.Alt}, bound)
			}
		case *ast.WhileStatement:
			collectBoundNames([]ast.Statement{v.Body}, bound)
		case *ast.DoWhileStatement:
			collectBoundNames([]ast.Statement{v.Body}, bound)
		case *ast.ForStatement:
			if init, ok := v.Init.(ast.Statement); ok {
				collectBoundNames([]ast.Statement{init}, bound)
			}
			collectBoundNames([]ast.Statement{v.Body}, bound)
		case *ast.ForInStatement:
			bound.Add(patternNames(v.Target)...)
			collectBoundNames([]ast.Statement{v.Body}, bound)
		case *ast.ForOfStatement:
			bound.Add(patternNames(v.Target)...)
			collectBoundNames([]ast.Statement{v.Body}, bound)
		case *ast.TryStatement:
			collectBoundNames(v.Block.Statements, bound)
			if v.Catch != nil {
				if v.Catch.Param != nil {
					bound.Add(patternNames(v.Catch.Param)...)
				}
				collectBoundNames(v.Catch.Body.Statements, bound)
			}
			if v.Finally != nil {
				collectBoundNames(v.Finally.Statements, bound)
			}
		case *ast.SwitchStatement:
			for _, c := range v.Cases {
				collectBoundNames(c.Statements, bound)
			}
		case *ast.LabeledStatement:
			collectBoundNames([]ast.Statement{v.Body}, bound)
		}
	}
}

func freeInStmt(s ast.Statement, bound, free stringset.Set) {
	switch v := s.(type) {
	case *ast.VariableDeclaration:
		for _, d := range v.Declarators {
			if d.Init != nil {
				freeInExpr(d.Init, bound, free)
			}
		}
	case *ast.ExpressionStatement:
		freeInExpr(v.Expr, bound, free)
	case *ast.ReturnStatement:
		if v.Value != nil {
			freeInExpr(v.Value, bound, free)
		}
	case *ast.ThrowStatement:
		freeInExpr(v.Value, bound, free)
	case *ast.BlockStatement:
		for _, inner := range v.Statements {
			freeInStmt(inner, bound, free)
		}
	case *ast.IfStatement:
		freeInExpr(v.Cond, bound, free)
		freeInStmt(v.Then, bound, free)
		if v.Alt != nil {
			freeInStmt(v.Alt, bound, free)
		}
	case *ast.WhileStatement:
		freeInExpr(v.Cond, bound, free)
		freeInStmt(v.Body, bound, free)
	case *ast.DoWhileStatement:
		freeInStmt(v.Body, bound, free)
		freeInExpr(v.Cond, bound, free)
	case *ast.ForStatement:
		if init, ok := v.Init.(ast.Statement); ok {
			freeInStmt(init, bound, free)
		} else if init, ok := v.Init.(ast.Expression); ok {
			freeInExpr(init, bound, free)
		}
		if v.Cond != nil {
			freeInExpr(v.Cond, bound, free)
		}
		if v.Update != nil {
			freeInExpr(v.Update, bound, free)
		}
		freeInStmt(v.Body, bound, free)
	case *ast.ForInStatement:
		freeInExpr(v.Object, bound, free)
		freeInStmt(v.Body, bound, free)
	case *ast.ForOfStatement:
		freeInExpr(v.Iterable, bound, free)
		freeInStmt(v.Body, bound, free)
	case *ast.TryStatement:
		freeInStmt(v.Block, bound, free)
		if v.Catch != nil {
			freeInStmt(v.Catch.Body, bound, free)
		}
		if v.Finally != nil {
			freeInStmt(v.Finally, bound, free)
		}
	case *ast.SwitchStatement:
		freeInExpr(v.Discriminant, bound, free)
		for _, c := range v.Cases {
			if c.Test != nil {
				freeInExpr(c.Test, bound, free)
			}
			for _, st := range c.Statements {
				freeInStmt(st, bound, free)
			}
		}
	case *ast.LabeledStatement:
		freeInStmt(v.Body, bound, free)
	case *ast.FunctionStatement:
		for nested := range captureSet(v.Params, v.Body) {
			if !bound.Contains(nested) {
				free.Add(nested)
			}
		}
	case *ast.ClassDeclaration:
		freeInClass(v, bound, free)
	}
}

func freeInExpr(e ast.Expression, bound, free stringset.Set) {
	switch v := e.(type) {
	case *ast.Identifier:
		if !bound.Contains(v.Name) {
			free.Add(v.Name)
		}
	case *ast.UnaryExpression:
		freeInExpr(v.Operand, bound, free)
	case *ast.UpdateExpression:
		freeInExpr(v.Operand, bound, free)
	case *ast.BinaryExpression:
		freeInExpr(v.Left, bound, free)
		freeInExpr(v.Right, bound, free)
	case *ast.LogicalExpression:
		freeInExpr(v.Left, bound, free)
		freeInExpr(v.Right, bound, free)
	case *ast.AssignmentExpression:
		freeInExpr(v.Target, bound, free)
		freeInExpr(v.Value, bound, free)
	case *ast.ConditionalExpression:
		freeInExpr(v.Cond, bound, free)
		freeInExpr(v.Then, bound, free)
		freeInExpr(v.Alt, bound, free)
	case *ast.SequenceExpression:
		for _, sub := range v.Exprs {
			freeInExpr(sub, bound, free)
		}
	case *ast.ArrayLiteral:
		for _, el := range v.Elements {
			if el != nil {
				freeInExpr(el, bound, free)
			}
		}
	case *ast.ObjectLiteral:
		for _, prop := range v.Properties {
			if prop.KeyExpr != nil {
				freeInExpr(prop.KeyExpr, bound, free)
			}
			if prop.Value != nil {
				freeInExpr(prop.Value, bound, free)
			}
		}
	case *ast.SpreadElement:
		freeInExpr(v.Arg, bound, free)
	case *ast.MemberExpression:
		freeInExpr(v.Object, bound, free)
		if v.Computed && v.Index != nil {
			freeInExpr(v.Index, bound, free)
		}
	case *ast.CallExpression:
		freeInExpr(v.Callee, bound, free)
		for _, a := range v.Args {
			freeInExpr(a, bound, free)
		}
	case *ast.NewExpression:
		freeInExpr(v.Callee, bound, free)
		for _, a := range v.Args {
			freeInExpr(a, bound, free)
		}
	case *ast.AwaitExpression:
		freeInExpr(v.Arg, bound, free)
	case *ast.YieldExpression:
		if v.Arg != nil {
			freeInExpr(v.Arg, bound, free)
		}
	case *ast.FunctionExpression:
		for nested := range captureSet(v.Params, v.Body) {
			if !bound.Contains(nested) {
				free.Add(nested)
			}
		}
	case *ast.ClassDeclaration:
		freeInClass(v, bound, free)
	}
}

func freeInClass(cd *ast.ClassDeclaration, bound, free stringset.Set) {
	if cd.Superclass != nil {
		freeInExpr(cd.Superclass, bound, free)
	}
	for _, f := range cd.Fields {
		if f.Init != nil {
			freeInExpr(f.Init, bound, free)
		}
	}
	for _, m := range cd.Methods {
		for nested := range captureSet(m.Params, m.Body) {
			if nested == "this" || bound.Contains(nested) {
				continue
			}
			free.Add(nested)
		}
	}
}
