package cfg

import "github.com/funvibe/flowtype/internal/ast"

// extractPredicate recognizes the narrowable condition forms (typeof
// checks, null checks, truthiness, instanceof, `in`) of a branch
// condition. Compound conditions it cannot decode (arbitrary &&/||
// chains, calls, etc.) yield a nil predicate, meaning the edge carries no
// narrowing fact and the solver propagates the unnarrowed type.
func extractPredicate(cond ast.Expression) *Predicate {
	switch e := cond.(type) {
	case *ast.UnaryExpression:
		if e.Op == "!" {
			if p := extractPredicate(e.Operand); p != nil {
				p.Invert = !p.Invert
				return p
			}
		}
		return nil
	case *ast.BinaryExpression:
		return extractBinaryPredicate(e)
	case *ast.Identifier:
		return &Predicate{Kind: PredTruthy, Subject: e}
	case *ast.MemberExpression:
		return &Predicate{Kind: PredTruthy, Subject: e}
	}
	return nil
}

func extractBinaryPredicate(e *ast.BinaryExpression) *Predicate {
	switch e.Op {
	case "===", "==":
		if p := typeofEquality(e.Left, e.Right); p != nil {
			return p
		}
		if p := typeofEquality(e.Right, e.Left); p != nil {
			return p
		}
		if p := nullEquality(e.Left, e.Right, e.Op == "=="); p != nil {
			return p
		}
		if p := nullEquality(e.Right, e.Left, e.Op == "=="); p != nil {
			return p
		}
	case "!==", "!=":
		if p := typeofEquality(e.Left, e.Right); p != nil {
			p.Invert = !p.Invert
			return p
		}
		if p := typeofEquality(e.Right, e.Left); p != nil {
			p.Invert = !p.Invert
			return p
		}
		if p := nullEquality(e.Left, e.Right, e.Op == "!="); p != nil {
			p.Invert = !p.Invert
			return p
		}
		if p := nullEquality(e.Right, e.Left, e.Op == "!="); p != nil {
			p.Invert = !p.Invert
			return p
		}
	case "instanceof":
		ident, ok := e.Left.(*ast.Identifier)
		if !ok {
			return nil
		}
		cls, ok := e.Right.(*ast.Identifier)
		if !ok {
			return nil
		}
		return &Predicate{Kind: PredInstanceof, Subject: ident, Arg: cls.Name}
	case "in":
		lit, ok := e.Left.(*ast.Literal)
		if !ok || lit.Kind != ast.LitString {
			return nil
		}
		ident, ok := e.Right.(*ast.Identifier)
		if !ok {
			return nil
		}
		return &Predicate{Kind: PredIn, Subject: ident, Arg: unquote(lit.Raw)}
	}
	return nil
}

// typeofEquality matches `typeof x === "<kind>"` in either operand order.
func typeofEquality(a, b ast.Expression) *Predicate {
	u, ok := a.(*ast.UnaryExpression)
	if !ok || u.Op != "typeof" {
		return nil
	}
	lit, ok := b.(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return nil
	}
	ident, ok := u.Operand.(*ast.Identifier)
	if !ok {
		return nil
	}
	return &Predicate{Kind: PredTypeof, Subject: ident, Arg: unquote(lit.Raw)}
}

// nullEquality matches `x === null` / `x == null` (loose also covers
// undefined, matching the `== null` idiom) in either operand order.
func nullEquality(a, b ast.Expression, loose bool) *Predicate {
	lit, ok := b.(*ast.Literal)
	if !ok {
		return nil
	}
	if lit.Kind != ast.LitNull && !(loose && lit.Kind == ast.LitUndefined) {
		return nil
	}
	ident, ok := a.(*ast.Identifier)
	if !ok {
		return nil
	}
	return &Predicate{Kind: PredNullish, Subject: ident}
}

func unquote(raw string) string {
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'' || raw[0] == '`') {
		return raw[1 : len(raw)-1]
	}
	return raw
}
