package types

// Predicate identifies a narrowing fact the CFG builder attaches to a
// conditional edge. Arg is the extra operand a predicate
// kind needs: the primitive kind name for Typeof, the class name for
// Instanceof, the property key for In.
type Predicate struct {
	Kind PredicateKind
	Arg  string
}

type PredicateKind int

const (
	PredTypeof PredicateKind = iota
	PredNullish
	PredTruthy
	PredInstanceof
	PredIn
)

// ClassLookup resolves a class name to its instance type for Instanceof
// narrowing; the solver supplies it since the lattice package has no
// notion of a class environment.
type ClassLookup func(name string) (Type, bool)

// Narrow produces the refined subtype of t that holds given pred is true
// (positive) or false (negative) along an edge. The result
// is always a subtype of t.
func Narrow(t Type, pred Predicate, positive bool, lookup ClassLookup) Type {
	switch pred.Kind {
	case PredTypeof:
		return narrowTypeof(t, pred.Arg, positive)
	case PredNullish:
		return narrowNullish(t, positive)
	case PredTruthy:
		return narrowTruthy(t, positive)
	case PredInstanceof:
		return narrowInstanceof(t, pred.Arg, positive, lookup)
	case PredIn:
		return narrowIn(t, pred.Arg, positive)
	}
	return t
}

var typeofKinds = map[string]PrimKind{
	"undefined": KUndefined,
	"boolean":   KBoolean,
	"number":    KNumber,
	"string":    KString,
	"bigint":    KBigInt,
	"symbol":    KSymbol,
}

func narrowTypeof(t Type, kindName string, positive bool) Type {
	k, ok := typeofKinds[kindName]
	if !ok {
		if kindName == "object" || kindName == "function" {
			// not a primitive kind; narrowing degrades to unchanged since the
			// lattice has no single tag meaning "is an object or function".
			return t
		}
		return t
	}
	if positive {
		return meetKeepingKind(t, k)
	}
	return subtractKind(t, k)
}

func meetKeepingKind(t Type, k PrimKind) Type {
	if members, ok := IsUnion(t); ok {
		var out []Type
		for _, m := range members {
			if IsPrimitiveKind(m, k) {
				out = append(out, m)
			}
		}
		return MakeUnion(out...)
	}
	if IsPrimitiveKind(t, k) {
		return t
	}
	return Bottom()
}

func subtractKind(t Type, k PrimKind) Type {
	if members, ok := IsUnion(t); ok {
		var out []Type
		for _, m := range members {
			if !IsPrimitiveKind(m, k) {
				out = append(out, m)
			}
		}
		return MakeUnion(out...)
	}
	if IsPrimitiveKind(t, k) {
		return Bottom()
	}
	return t
}

func isNullOrUndefined(t Type) bool {
	return IsPrimitiveKind(t, KNull) || IsPrimitiveKind(t, KUndefined)
}

func narrowNullish(t Type, positive bool) Type {
	if positive {
		if _, isTop := t.(TopType); isTop {
			return MakeUnion(Null(), Undefined())
		}
		if members, ok := IsUnion(t); ok {
			var out []Type
			for _, m := range members {
				if isNullOrUndefined(m) {
					out = append(out, m)
				}
			}
			return MakeUnion(out...)
		}
		if isNullOrUndefined(t) {
			return t
		}
		return Bottom()
	}
	if members, ok := IsUnion(t); ok {
		var out []Type
		for _, m := range members {
			if !isNullOrUndefined(m) {
				out = append(out, m)
			}
		}
		return MakeUnion(out...)
	}
	if isNullOrUndefined(t) {
		return Bottom()
	}
	return t
}

// isFalsyLiteral reports whether a literal-refined primitive is one of the
// falsy members: null, undefined, false, 0, "", NaN.
func isFalsyLiteral(t Type) bool {
	if isNullOrUndefined(t) {
		return true
	}
	p, ok := t.(Primitive)
	if !ok || !p.HasLit {
		return false
	}
	switch v := p.Literal.(type) {
	case bool:
		return !v
	case float64:
		return v == 0 || v != v // v != v only for NaN
	case string:
		return v == ""
	}
	return false
}

// narrowTruthy removes the provably falsy members (null, undefined,
// false, 0, "", NaN) on the true edge and keeps the possibly-falsy ones
// on the false edge. An unrefined number/string/boolean could be either, so
// it survives both edges; only literal-refined or null/undefined members
// are provably falsy or provably not.
func narrowTruthy(t Type, positive bool) Type {
	if members, ok := IsUnion(t); ok {
		var out []Type
		for _, m := range members {
			provablyFalsy := isNullOrUndefined(m) || (isLiteralPrimitive(m) && isFalsyLiteral(m))
			if positive {
				if !provablyFalsy {
					out = append(out, m)
				}
			} else if provablyFalsy || !isLiteralPrimitive(m) {
				out = append(out, m)
			}
		}
		return MakeUnion(out...)
	}
	if positive && isNullOrUndefined(t) {
		return Bottom()
	}
	if positive && isLiteralPrimitive(t) && isFalsyLiteral(t) {
		return Bottom()
	}
	if !positive && isLiteralPrimitive(t) && !isFalsyLiteral(t) {
		return Bottom()
	}
	return t
}

func isLiteralPrimitive(t Type) bool {
	p, ok := t.(Primitive)
	return ok && p.HasLit
}

func narrowInstanceof(t Type, className string, positive bool, lookup ClassLookup) Type {
	if !positive {
		return t
	}
	if lookup == nil {
		return t
	}
	if instanceType, ok := lookup(className); ok {
		return Meet(t, instanceType)
	}
	return t
}

func narrowIn(t Type, key string, positive bool) Type {
	if !positive {
		return t
	}
	r, ok := t.(RecordType)
	if !ok {
		return t
	}
	if _, has := r.Field(key); has {
		return r
	}
	return r.WithField(Field{Name: key, Type: Top(""), Writable: true, Enumerable: true, Configurable: true})
}
