package solver

import (
	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/cfg"
	"github.com/funvibe/flowtype/internal/types"
)

// transferBlock runs every statement of a basic block in order against an
// entry state, producing the state that holds at the block's
// terminator. This is the per-block transfer function the worklist
// solver iterates to a fixed point.
func (ctx *fnCtx) transferBlock(b *cfg.Block, entry TypeState) TypeState {
	cur := entry
	for _, stmt := range b.Statements {
		cur = ctx.transferStmt(stmt, cur)
	}
	return cur
}

func (ctx *fnCtx) transferStmt(stmt ast.Statement, state TypeState) TypeState {
	switch v := stmt.(type) {
	case *ast.VariableDeclaration:
		return ctx.transferVarDecl(v, state)

	case *ast.ExpressionStatement:
		_, s2 := ctx.evalExpr(v.Expr, state)
		return s2

	case *ast.ReturnStatement:
		if v.Value == nil {
			ctx.recordReturn(types.Undefined())
			return state
		}
		t, s2 := ctx.evalExpr(v.Value, state)
		ctx.recordReturn(t)
		return s2

	case *ast.ThrowStatement:
		_, s2 := ctx.evalExpr(v.Value, state)
		return s2

	case *ast.BreakStatement, *ast.ContinueStatement:
		return state

	case *ast.FunctionStatement:
		ref := ctx.s.reg.register(v)
		entry := ctx.s.reg.get(ref)
		return state.with(v.Name.Name, entry.fnType)

	case *ast.ClassDeclaration:
		if v.Name == nil {
			return state
		}
		ctx.s.reg.register(v)
		ct := ctx.s.buildOneClassType(v, ctx.env)
		return state.with(v.Name.Name, ct)

	case *ast.ForInStatement:
		// The CFG builder prepends the original statement as the loop
		// body's first entry (internal/cfg/build.go's buildEnumerationLoop)
		// purely so this binding is visible here; for-in always enumerates
		// string keys.
		return ctx.bindPattern(v.Target, types.String(), state)

	case *ast.ForOfStatement:
		iterT, s2 := ctx.evalExpr(v.Iterable, state)
		elem := elementTypeOf(iterT)
		return ctx.bindPattern(v.Target, elem, s2)

	case *ast.BlockStatement:
		cur := state
		for _, s := range v.Statements {
			cur = ctx.transferStmt(s, cur)
		}
		return cur
	}
	return state
}

func (ctx *fnCtx) transferVarDecl(v *ast.VariableDeclaration, state TypeState) TypeState {
	cur := state
	for _, d := range v.Declarators {
		var t types.Type = types.Undefined()
		if d.Init != nil {
			var t2 types.Type
			t2, cur = ctx.evalExpr(d.Init, cur)
			t = t2
		}
		cur = ctx.bindPattern(d.Target, t, cur)
		kind := KindVariable
		if v.Kind == ast.DeclConst {
			kind = KindConst
		}
		if id, ok := d.Target.(*ast.Identifier); ok {
			ctx.emitExprAnnotation(id, t, kind)
		}
	}
	return cur
}

// elementTypeOf is the element type a for-of loop binds its target to:
// an array's element type, a tuple's join, or `top` for
// anything else iterable opaquely (e.g. a Map/Set stand-in reached through
// a builtin).
func elementTypeOf(t types.Type) types.Type {
	switch v := t.(type) {
	case types.ArrayType:
		return v.Elem
	case types.UnionType:
		var joined types.Type
		for _, m := range v.Members {
			e := elementTypeOf(m)
			if joined == nil {
				joined = e
			} else {
				joined = types.Join(joined, e)
			}
		}
		if joined != nil {
			return joined
		}
	}
	return types.Top("")
}

// bindPattern decomposes a (possibly destructuring) pattern against a
// value type and folds every bound name into state.
func (ctx *fnCtx) bindPattern(p ast.Pattern, t types.Type, state TypeState) TypeState {
	switch v := p.(type) {
	case *ast.Identifier:
		return state.with(v.Name, t)

	case *ast.ArrayPattern:
		cur := state
		for i, el := range v.Elements {
			if el == nil {
				continue
			}
			if rest, ok := el.(*ast.RestElement); ok {
				cur = ctx.bindPattern(rest.Target, types.Array(elementTypeOf(t)), cur)
				continue
			}
			elemT := indexType(t, i)
			cur = ctx.bindPattern(el, elemT, cur)
		}
		return cur

	case *ast.ObjectPattern:
		cur := state
		consumed := map[string]bool{}
		for _, prop := range v.Props {
			ft, ok := fieldType(t, prop.Key)
			if !ok {
				ft = types.Top("")
			}
			consumed[prop.Key] = true
			cur = ctx.bindPattern(prop.Target, ft, cur)
		}
		if v.Rest != nil {
			cur = ctx.bindPattern(v.Rest.Target, restRecordType(t, consumed), cur)
		}
		return cur

	case *ast.AssignmentPattern:
		dt, s2 := ctx.evalExpr(v.Default, state)
		state = s2
		effective := dt
		if _, isUndef := asUndefined(t); !isUndef {
			// A slot that may or may not be undefined keeps both
			// possibilities: the default contributes via union.
			effective = types.Join(t, dt)
		}
		return ctx.bindPattern(v.Target, effective, state)

	case *ast.RestElement:
		return ctx.bindPattern(v.Target, t, state)
	}
	return state
}

func asUndefined(t types.Type) (types.Type, bool) {
	if p, ok := t.(types.Primitive); ok && p.Kind == types.KUndefined {
		return t, true
	}
	return t, false
}

func indexType(t types.Type, i int) types.Type {
	if elems, ok := types.IsTuple(t); ok {
		if i < len(elems) {
			return elems[i]
		}
		return types.Undefined()
	}
	if arr, ok := t.(types.ArrayType); ok {
		return arr.Elem
	}
	return types.Top("")
}

func fieldType(t types.Type, name string) (types.Type, bool) {
	switch v := t.(type) {
	case types.RecordType:
		f, ok := v.Field(name)
		if !ok {
			return nil, false
		}
		return f.Type, true
	case types.ClassType:
		return v.InstanceLookup(name)
	}
	return nil, false
}

// restRecordType approximates `{ ...rest } = obj`: a fresh record of
// every field not already destructured, keeping the source record's Open
// flag (an empty closed record when the source is not a record).
func restRecordType(t types.Type, consumed map[string]bool) types.Type {
	r, ok := t.(types.RecordType)
	if !ok {
		return types.Record()
	}
	var fields []types.Field
	for _, f := range r.Fields {
		if !consumed[f.Name] {
			fields = append(fields, f)
		}
	}
	return types.RecordType{Fields: fields, Open: r.Open}
}
