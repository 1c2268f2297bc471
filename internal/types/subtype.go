package types

// Subtype reports whether a ≤ b: structural, contravariant in function
// parameters, covariant in returns and array elements.
// `top` is maximal, `bottom` minimal.
func Subtype(a, b Type) bool {
	if _, ok := b.(TopType); ok {
		return true
	}
	if _, ok := a.(BottomType); ok {
		return true
	}
	if _, ok := a.(TopType); ok {
		_, bIsTop := b.(TopType)
		return bIsTop
	}
	if _, ok := b.(BottomType); ok {
		_, aIsBottom := a.(BottomType)
		return aIsBottom
	}
	if av, ok := a.(TypeVar); ok {
		return Subtype(av.Upper, b)
	}
	if bv, ok := b.(TypeVar); ok {
		return Subtype(a, bv.Lower)
	}

	if au, ok := a.(UnionType); ok {
		for _, m := range au.Members {
			if !Subtype(m, b) {
				return false
			}
		}
		return true
	}
	if bu, ok := b.(UnionType); ok {
		for _, m := range bu.Members {
			if Subtype(a, m) {
				return true
			}
		}
		return false
	}
	if bi, ok := b.(IntersectionType); ok {
		for _, m := range bi.Members {
			if !Subtype(a, m) {
				return false
			}
		}
		return true
	}
	if ai, ok := a.(IntersectionType); ok {
		for _, m := range ai.Members {
			if Subtype(m, b) {
				return true
			}
		}
		return false
	}

	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		if !ok || av.Kind != bv.Kind {
			return false
		}
		if !bv.HasLit {
			return true
		}
		return av.HasLit && av.Literal == bv.Literal
	case ArrayType:
		bv, ok := b.(ArrayType)
		if !ok {
			return false
		}
		return subtypeArray(av, bv)
	case RecordType:
		bv, ok := b.(RecordType)
		if !ok {
			return false
		}
		return subtypeRecord(av, bv)
	case FunctionType:
		bv, ok := b.(FunctionType)
		if !ok {
			return false
		}
		return subtypeFunction(av, bv)
	case ClassType:
		bv, ok := b.(ClassType)
		if !ok {
			return false
		}
		for c := &av; c != nil; c = c.Super {
			if c.Name == bv.Name {
				return true
			}
		}
		return false
	case PromiseType:
		bv, ok := b.(PromiseType)
		if !ok {
			return false
		}
		return Subtype(av.Resolved, bv.Resolved)
	}
	return a.String() == b.String()
}

func subtypeArray(a, b ArrayType) bool {
	if b.Tuple != nil {
		if a.Tuple == nil || len(a.Tuple) != len(b.Tuple) {
			return false
		}
		for i := range a.Tuple {
			if !Subtype(a.Tuple[i], b.Tuple[i]) {
				return false
			}
		}
		return true
	}
	return Subtype(a.Elem, b.Elem)
}

// subtypeRecord: a ≤ b iff every field of b is present in a with a subtype
// (width plus depth subtyping). A sealed or frozen b still only
// requires its own fields to match; sealing restricts what extensions b
// itself may receive, not what a supertype relation may hold against it.
func subtypeRecord(a, b RecordType) bool {
	for _, fb := range b.Fields {
		fa, ok := a.Field(fb.Name)
		if !ok {
			return false
		}
		if !Subtype(fa.Type, fb.Type) {
			return false
		}
	}
	return true
}

func subtypeFunction(a, b FunctionType) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		// contravariant: b's parameter type must be a subtype of a's
		if !Subtype(b.Params[i].Type, a.Params[i].Type) {
			return false
		}
	}
	return Subtype(a.Return, b.Return)
}
