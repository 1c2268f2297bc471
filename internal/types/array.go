package types

import "strings"

// MaxTupleLength caps how long an array literal may be while keeping a
// tuple refinement; beyond it the literal degrades to a plain array type.
// A package var, not a const, so the CLI's `.flowtype.yaml` `tuple_cap`
// key can override the default before calling solver.Infer.
var MaxTupleLength = 32

// ArrayType is `T[]`, optionally refined to a fixed-length Tuple.
type ArrayType struct {
	Elem  Type
	Tuple []Type // nil unless this is a tuple refinement; len(Tuple) is the fixed length
}

func (ArrayType) Tag() Tag { return TagArray }

func (a ArrayType) String() string {
	if a.Tuple != nil {
		parts := make([]string, len(a.Tuple))
		for i, t := range a.Tuple {
			parts[i] = t.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return a.Elem.String() + "[]"
}

func Array(elem Type) Type { return ArrayType{Elem: elem} }

// Tuple builds a tuple refinement; Elem is the join of all member types so
// the plain array view (e.g. `.length`, iteration) stays consistent.
func Tuple(elems []Type) Type {
	elem := Type(Bottom())
	for _, e := range elems {
		elem = Join(elem, e)
	}
	return ArrayType{Elem: elem, Tuple: elems}
}

// IsTuple reports whether t carries a tuple refinement.
func IsTuple(t Type) ([]Type, bool) {
	a, ok := t.(ArrayType)
	if !ok || a.Tuple == nil {
		return nil, false
	}
	return a.Tuple, true
}
