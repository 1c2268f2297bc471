package solver

import (
	"strconv"
	"strings"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/types"
)

// evalExpr is the pure expression-inference relation: given
// the current flow-sensitive state, produce the expression's type and the
// (possibly updated, for assignments/updates) successor state.
func (ctx *fnCtx) evalExpr(e ast.Expression, state TypeState) (types.Type, TypeState) {
	switch v := e.(type) {
	case *ast.Literal:
		return ctx.evalLiteral(v), state

	case *ast.Identifier:
		t := ctx.lookupIdentifier(v, state)
		ctx.emitExprAnnotation(v, t, KindExpression)
		return t, state

	case *ast.ThisExpression:
		if ctx.thisType != nil {
			return ctx.thisType, state
		}
		return types.Top(""), state

	case *ast.SuperExpression:
		return types.Top(""), state

	case *ast.UnaryExpression:
		return ctx.evalUnary(v, state)

	case *ast.UpdateExpression:
		return ctx.evalUpdate(v, state)

	case *ast.BinaryExpression:
		return ctx.evalBinary(v, state)

	case *ast.LogicalExpression:
		return ctx.evalLogical(v, state)

	case *ast.AssignmentExpression:
		return ctx.evalAssignment(v, state)

	case *ast.ConditionalExpression:
		_, condState := ctx.evalExpr(v.Cond, state)
		thenState := ctx.narrowState(condState, v.Cond, true)
		elseState := ctx.narrowState(condState, v.Cond, false)
		thenT, thenState2 := ctx.evalExpr(v.Then, thenState)
		elseT, elseState2 := ctx.evalExpr(v.Alt, elseState)
		return types.Join(thenT, elseT), joinStates(thenState2, elseState2)

	case *ast.SequenceExpression:
		var last types.Type = types.Undefined()
		cur := state
		for _, sub := range v.Exprs {
			last, cur = ctx.evalExpr(sub, cur)
		}
		return last, cur

	case *ast.ArrayLiteral:
		return ctx.evalArrayLiteral(v, state)

	case *ast.ObjectLiteral:
		return ctx.evalObjectLiteral(v, state)

	case *ast.MemberExpression:
		return ctx.evalMember(v, state)

	case *ast.CallExpression:
		return ctx.evalCall(v, state)

	case *ast.NewExpression:
		return ctx.evalNew(v, state)

	case *ast.FunctionExpression:
		return ctx.evalFunctionExpr(v, state)

	case *ast.ClassDeclaration:
		return ctx.evalClassExpr(v, state)

	case *ast.AwaitExpression:
		t, s2 := ctx.evalExpr(v.Arg, state)
		return types.Await(t), s2

	case *ast.YieldExpression:
		if v.Arg == nil {
			return types.Undefined(), state
		}
		return ctx.evalExpr(v.Arg, state)

	case *ast.SpreadElement:
		return ctx.evalExpr(v.Arg, state)
	}
	return types.Top(""), state
}

func (ctx *fnCtx) evalLiteral(l *ast.Literal) types.Type {
	switch l.Kind {
	case ast.LitNumber:
		f, err := strconv.ParseFloat(l.Raw, 64)
		if err != nil {
			return types.Number()
		}
		return types.NumberLit(f)
	case ast.LitBigInt:
		return types.BigIntLit(strings.TrimSuffix(l.Raw, "n"))
	case ast.LitString:
		return types.StringLit(unquote(l.Raw))
	case ast.LitBoolean:
		return types.BooleanLit(l.Raw == "true")
	case ast.LitNull:
		return types.Null()
	default:
		return types.Undefined()
	}
}

func unquote(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'' || raw[0] == '`') {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// lookupIdentifier resolves a name against the flow-sensitive state first,
// falling back to an enclosing function's last-known state for a closure
// read, and finally to an "unbound" top with an error.
func (ctx *fnCtx) lookupIdentifier(id *ast.Identifier, state TypeState) types.Type {
	name := id.Name
	if t, ok := state[name]; ok {
		return t
	}
	b, owner, ok := ctx.env.LookupWithOwner(name)
	if !ok {
		ctx.addError(id, "reference to undeclared identifier '%s'", name)
		return types.Top("unbound:" + name)
	}
	if b.Kind == BindBuiltin {
		return builtinInitialType()
	}
	if outer, ok := ctx.s.lastExit[owner]; ok {
		if t, ok2 := outer[name]; ok2 {
			return t
		}
	}
	return types.Undefined()
}

func (ctx *fnCtx) evalUnary(v *ast.UnaryExpression, state TypeState) (types.Type, TypeState) {
	operandT, s2 := ctx.evalExpr(v.Operand, state)
	switch v.Op {
	case "typeof":
		return types.String(), s2
	case "!":
		_ = operandT
		return types.Boolean(), s2
	case "-", "+", "~":
		return types.Number(), s2
	case "void":
		return types.Undefined(), s2
	case "delete":
		return types.Boolean(), s2
	}
	return types.Top(""), s2
}

func (ctx *fnCtx) evalUpdate(v *ast.UpdateExpression, state TypeState) (types.Type, TypeState) {
	_, s2 := ctx.evalExpr(v.Operand, state)
	if id, ok := v.Operand.(*ast.Identifier); ok {
		s2 = ctx.assignIdentifier(id, types.Number(), s2)
	}
	return types.Number(), s2
}

func (ctx *fnCtx) evalBinary(v *ast.BinaryExpression, state TypeState) (types.Type, TypeState) {
	left, s1 := ctx.evalExpr(v.Left, state)
	right, s2 := ctx.evalExpr(v.Right, s1)
	switch v.Op {
	case "+":
		if types.IsPrimitiveKind(left, types.KString) || types.IsPrimitiveKind(right, types.KString) {
			return types.String(), s2
		}
		if types.IsPrimitiveKind(left, types.KNumber) && types.IsPrimitiveKind(right, types.KNumber) {
			return types.Number(), s2
		}
		return types.MakeUnion(types.Number(), types.String()), s2
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return types.Number(), s2
	case "==", "!=", "===", "!==", "<", ">", "<=", ">=", "instanceof", "in":
		return types.Boolean(), s2
	}
	return types.Top(""), s2
}

// evalLogical implements the narrowing-aware rules for &&, ||, ??.
func (ctx *fnCtx) evalLogical(v *ast.LogicalExpression, state TypeState) (types.Type, TypeState) {
	left, s1 := ctx.evalExpr(v.Left, state)
	switch v.Op {
	case "&&":
		rightState := ctx.narrowState(s1, v.Left, true)
		right, s2 := ctx.evalExpr(v.Right, rightState)
		falsyLeft := types.Narrow(left, types.Predicate{Kind: truthyKind}, false, ctx.classLookupFn)
		return types.Join(falsyLeft, right), joinStates(s1, s2)
	case "||":
		rightState := ctx.narrowState(s1, v.Left, false)
		right, s2 := ctx.evalExpr(v.Right, rightState)
		truthyLeft := types.Narrow(left, types.Predicate{Kind: truthyKind}, true, ctx.classLookupFn)
		return types.Join(truthyLeft, right), joinStates(s1, s2)
	case "??":
		rightState := ctx.narrowState(s1, v.Left, false)
		right, s2 := ctx.evalExpr(v.Right, rightState)
		nonNullish := types.Narrow(left, types.Predicate{Kind: nullishKind}, false, ctx.classLookupFn)
		return types.Join(nonNullish, right), joinStates(s1, s2)
	}
	return types.Top(""), s1
}

const truthyKind = types.PredTruthy
const nullishKind = types.PredNullish

func (ctx *fnCtx) evalAssignment(v *ast.AssignmentExpression, state TypeState) (types.Type, TypeState) {
	rhs, s1 := ctx.evalExpr(v.Value, state)
	if v.Op != "=" {
		lhs, _ := ctx.evalExpr(v.Target, s1)
		rhs = combineCompoundAssign(v.Op, lhs, rhs)
	}
	switch target := v.Target.(type) {
	case *ast.Identifier:
		s1 = ctx.assignIdentifier(target, rhs, s1)
	case *ast.MemberExpression:
		// Property writes refine the local record binding when the object is
		// a plain identifier; otherwise they are side effects with no
		// tracked state update.
		if objID, ok := target.Object.(*ast.Identifier); ok && !target.Computed {
			objT := ctx.lookupIdentifier(objID, s1)
			if rec, ok := objT.(types.RecordType); ok {
				updated := rec.WithField(types.Field{Name: target.Property, Type: rhs, Writable: true, Enumerable: true, Configurable: true})
				s1 = ctx.assignIdentifier(objID, updated, s1)
			}
		}
	}
	return rhs, s1
}

func combineCompoundAssign(op string, lhs, rhs types.Type) types.Type {
	base := strings.TrimSuffix(op, "=")
	switch base {
	case "+":
		if types.IsPrimitiveKind(lhs, types.KString) || types.IsPrimitiveKind(rhs, types.KString) {
			return types.String()
		}
		return types.Number()
	default:
		return types.Number()
	}
}

// assignIdentifier implements the identifier-assignment transfer:
// update the binding's type, or record a const-violation error and leave
// state unchanged.
func (ctx *fnCtx) assignIdentifier(id *ast.Identifier, rhs types.Type, state TypeState) TypeState {
	b, _ := ctx.env.Lookup(id.Name)
	if b != nil && b.Kind == BindConst {
		ctx.addError(id, "cannot assign to constant '%s'", id.Name)
		return state
	}
	return state.with(id.Name, rhs)
}

func (ctx *fnCtx) evalArrayLiteral(v *ast.ArrayLiteral, state TypeState) (types.Type, TypeState) {
	cur := state
	elems := make([]types.Type, 0, len(v.Elements))
	for _, el := range v.Elements {
		if spread, ok := el.(*ast.SpreadElement); ok {
			t, s2 := ctx.evalExpr(spread.Arg, cur)
			cur = s2
			if arr, ok := t.(types.ArrayType); ok {
				elems = append(elems, arr.Elem)
			} else {
				elems = append(elems, types.Top(""))
			}
			continue
		}
		t, s2 := ctx.evalExpr(el, cur)
		cur = s2
		elems = append(elems, t)
	}
	if len(elems) <= types.MaxTupleLength {
		return types.Tuple(elems), cur
	}
	elem := types.Type(types.Bottom())
	for _, t := range elems {
		elem = types.Join(elem, t)
	}
	return types.Array(elem), cur
}

func (ctx *fnCtx) evalObjectLiteral(v *ast.ObjectLiteral, state TypeState) (types.Type, TypeState) {
	cur := state
	var fields []types.Field
	open := false
	for _, prop := range v.Properties {
		if prop.Computed {
			open = true
			if prop.KeyExpr != nil {
				_, s2 := ctx.evalExpr(prop.KeyExpr, cur)
				cur = s2
			}
			if prop.Value != nil {
				_, s2 := ctx.evalExpr(prop.Value, cur)
				cur = s2
			}
			continue
		}
		t, s2 := ctx.evalExpr(prop.Value, cur)
		cur = s2
		fields = append(fields, types.Field{Name: prop.Key, Type: t, Writable: true, Enumerable: true, Configurable: true})
	}
	r := types.RecordType{Fields: fields, Open: open}
	return r, cur
}

func (ctx *fnCtx) evalMember(v *ast.MemberExpression, state TypeState) (types.Type, TypeState) {
	objT, s1 := ctx.evalExpr(v.Object, state)
	if v.Computed {
		_, s2 := ctx.evalExpr(v.Index, s1)
		s1 = s2
		if arr, ok := objT.(types.ArrayType); ok {
			return arr.Elem, s1
		}
		return types.Top("dynamic-key"), s1
	}
	t, ok := memberType(objT, v.Property, ctx.classLookupFn)
	if !ok {
		ctx.addError(v, "property '%s' is not present on its object type", v.Property)
		return types.Top(""), s1
	}
	ctx.emitExprAnnotation(v, t, KindProperty)
	return t, s1
}

func memberType(objT types.Type, name string, lookup types.ClassLookup) (types.Type, bool) {
	switch o := objT.(type) {
	case types.ArrayType:
		if name == "length" {
			return types.Number(), true
		}
		return o.Elem, true
	case types.RecordType:
		if t, ok := types.LookupPrototypeChain(o, name); ok || !o.Open {
			return t, ok
		}
		return types.Top("dynamic-key"), true
	case types.ClassType:
		return o.InstanceLookup(name)
	case types.TopType:
		return types.Top(""), true
	case types.UnionType:
		var joined types.Type
		for _, m := range o.Members {
			t, ok := memberType(m, name, lookup)
			if !ok {
				return nil, false
			}
			if joined == nil {
				joined = t
			} else {
				joined = types.Join(joined, t)
			}
		}
		return joined, joined != nil
	}
	return nil, false
}

func (ctx *fnCtx) evalCall(v *ast.CallExpression, state TypeState) (types.Type, TypeState) {
	calleeT, s1 := ctx.evalExpr(v.Callee, state)
	cur := s1
	args := make([]types.Type, 0, len(v.Args))
	for _, a := range v.Args {
		t, s2 := ctx.evalExpr(a, cur)
		cur = s2
		args = append(args, t)
	}
	entry := ctx.resolveCallee(v.Callee)
	if entry != nil {
		entry.calls.observeCall(args)
		return entry.fnType.Return, cur
	}
	if fn, ok := calleeT.(types.FunctionType); ok {
		return fn.Return, cur
	}
	if _, ok := calleeT.(types.TopType); ok {
		return types.Top("unknown-callee"), cur
	}
	return types.Top("unknown-callee"), cur
}

func (ctx *fnCtx) evalNew(v *ast.NewExpression, state TypeState) (types.Type, TypeState) {
	cur := state
	args := make([]types.Type, 0, len(v.Args))
	for _, a := range v.Args {
		t, s2 := ctx.evalExpr(a, cur)
		cur = s2
		args = append(args, t)
	}
	entry := ctx.resolveCallee(v.Callee)
	if entry != nil && entry.className != "" {
		entry.calls.observeNew(args)
		if cd, ok := entry.node.(*ast.ClassDeclaration); ok {
			for _, m := range cd.Methods {
				if m.Kind != "constructor" {
					continue
				}
				if ce := ctx.s.reg.get(m); ce != nil {
					ce.calls.observeCall(args)
				}
			}
		}
		if ct, ok := ctx.s.classTypes[entry.node]; ok {
			return ct.Instance, cur
		}
	}
	return types.Top(""), cur
}

// resolveCallee follows a plain identifier callee to its registered
// function/class entry, enabling call-site aggregation.
func (ctx *fnCtx) resolveCallee(callee ast.Expression) *funcEntry {
	id, ok := callee.(*ast.Identifier)
	if !ok {
		return nil
	}
	b, ok := ctx.env.Lookup(id.Name)
	if !ok || b.FuncRef == nil {
		return nil
	}
	return ctx.s.reg.get(b.FuncRef)
}

func (ctx *fnCtx) evalFunctionExpr(v *ast.FunctionExpression, state TypeState) (types.Type, TypeState) {
	ref := ctx.s.reg.register(v)
	entry := ctx.s.reg.get(ref)
	return entry.fnType, state
}

func (ctx *fnCtx) evalClassExpr(v *ast.ClassDeclaration, state TypeState) (types.Type, TypeState) {
	ctx.s.reg.register(v)
	return ctx.s.buildOneClassType(v, ctx.env), state
}

// classLookupFn adapts the solver's registered class types to the
// types.ClassLookup signature narrow.go's instanceof handling needs.
func (ctx *fnCtx) classLookupFn(name string) (types.Type, bool) {
	for node, ct := range ctx.s.classTypes {
		if cd, ok := node.(*ast.ClassDeclaration); ok && cd.Name != nil && cd.Name.Name == name {
			return ct.Instance, true
		}
	}
	return nil, false
}

// narrowState applies the narrowing fact (if any) cond yields against the
// subject identifier it names, for the && / || / ?: sub-expression rules
// of short-circuit evaluation. Compound conditions it can't decode
// leave state unchanged, same as an un-narrowable CFG edge.
func (ctx *fnCtx) narrowState(state TypeState, cond ast.Expression, positive bool) TypeState {
	subject, pred, invert, ok := extractNarrowFact(cond)
	if !ok {
		return state
	}
	old, has := state[subject.Name]
	if !has {
		return state
	}
	narrowed := types.Narrow(old, pred, positive != invert, ctx.classLookupFn)
	return state.with(subject.Name, narrowed)
}

// extractNarrowFact mirrors cfg.extractPredicate's recognized forms but
// yields a types.Predicate directly, since expression-level narrowing
// (unlike the CFG builder) talks to the lattice package itself.
func extractNarrowFact(cond ast.Expression) (*ast.Identifier, types.Predicate, bool, bool) {
	switch e := cond.(type) {
	case *ast.UnaryExpression:
		if e.Op == "!" {
			subj, pred, invert, ok := extractNarrowFact(e.Operand)
			return subj, pred, !invert, ok
		}
	case *ast.Identifier:
		return e, types.Predicate{Kind: types.PredTruthy}, false, true
	case *ast.MemberExpression:
		return nil, types.Predicate{}, false, false
	case *ast.BinaryExpression:
		return extractBinaryNarrowFact(e)
	}
	return nil, types.Predicate{}, false, false
}

func extractBinaryNarrowFact(e *ast.BinaryExpression) (*ast.Identifier, types.Predicate, bool, bool) {
	switch e.Op {
	case "===", "==":
		if subj, pred, ok := typeofNarrowEquality(e.Left, e.Right); ok {
			return subj, pred, false, true
		}
		if subj, pred, ok := typeofNarrowEquality(e.Right, e.Left); ok {
			return subj, pred, false, true
		}
		if subj, pred, ok := nullNarrowEquality(e.Left, e.Right, e.Op == "=="); ok {
			return subj, pred, false, true
		}
		if subj, pred, ok := nullNarrowEquality(e.Right, e.Left, e.Op == "=="); ok {
			return subj, pred, false, true
		}
	case "!==", "!=":
		if subj, pred, ok := typeofNarrowEquality(e.Left, e.Right); ok {
			return subj, pred, true, true
		}
		if subj, pred, ok := typeofNarrowEquality(e.Right, e.Left); ok {
			return subj, pred, true, true
		}
		if subj, pred, ok := nullNarrowEquality(e.Left, e.Right, e.Op == "!="); ok {
			return subj, pred, true, true
		}
		if subj, pred, ok := nullNarrowEquality(e.Right, e.Left, e.Op == "!="); ok {
			return subj, pred, true, true
		}
	case "instanceof":
		ident, ok := e.Left.(*ast.Identifier)
		cls, ok2 := e.Right.(*ast.Identifier)
		if ok && ok2 {
			return ident, types.Predicate{Kind: types.PredInstanceof, Arg: cls.Name}, false, true
		}
	case "in":
		lit, ok := e.Left.(*ast.Literal)
		ident, ok2 := e.Right.(*ast.Identifier)
		if ok && ok2 && lit.Kind == ast.LitString {
			return ident, types.Predicate{Kind: types.PredIn, Arg: unquote(lit.Raw)}, false, true
		}
	}
	return nil, types.Predicate{}, false, false
}

func typeofNarrowEquality(a, b ast.Expression) (*ast.Identifier, types.Predicate, bool) {
	u, ok := a.(*ast.UnaryExpression)
	if !ok || u.Op != "typeof" {
		return nil, types.Predicate{}, false
	}
	lit, ok := b.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return nil, types.Predicate{}, false
	}
	ident, ok := u.Operand.(*ast.Identifier)
	if !ok {
		return nil, types.Predicate{}, false
	}
	return ident, types.Predicate{Kind: types.PredTypeof, Arg: unquote(lit.Raw)}, true
}

func nullNarrowEquality(a, b ast.Expression, loose bool) (*ast.Identifier, types.Predicate, bool) {
	lit, ok := b.(*ast.Literal)
	if !ok {
		return nil, types.Predicate{}, false
	}
	if lit.Kind != ast.LitNull && !(loose && lit.Kind == ast.LitUndefined) {
		return nil, types.Predicate{}, false
	}
	ident, ok := a.(*ast.Identifier)
	if !ok {
		return nil, types.Predicate{}, false
	}
	return ident, types.Predicate{Kind: types.PredNullish}, true
}
