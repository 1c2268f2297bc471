package types

// Meet returns the greatest lower bound of a and b;
// subtype(meet(a,b), a) always holds.
func Meet(a, b Type) Type {
	if _, ok := a.(TopType); ok {
		return b
	}
	if _, ok := b.(TopType); ok {
		return a
	}
	if _, ok := a.(BottomType); ok {
		return a
	}
	if _, ok := b.(BottomType); ok {
		return b
	}
	if av, ok := a.(TypeVar); ok {
		return Meet(av.Lower, b)
	}
	if bv, ok := b.(TypeVar); ok {
		return Meet(a, bv.Lower)
	}
	if au, ok := a.(UnionType); ok {
		out := make([]Type, 0, len(au.Members))
		for _, m := range au.Members {
			out = append(out, Meet(m, b))
		}
		return MakeUnion(out...)
	}
	if bu, ok := b.(UnionType); ok {
		out := make([]Type, 0, len(bu.Members))
		for _, m := range bu.Members {
			out = append(out, Meet(a, m))
		}
		return MakeUnion(out...)
	}

	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		if !ok || av.Kind != bv.Kind {
			return Bottom()
		}
		return meetPrimitive(av, bv)
	case ArrayType:
		bv, ok := b.(ArrayType)
		if !ok {
			return Bottom()
		}
		return meetArray(av, bv)
	case RecordType:
		bv, ok := b.(RecordType)
		if !ok {
			return Bottom()
		}
		return meetRecord(av, bv)
	case FunctionType:
		bv, ok := b.(FunctionType)
		if !ok {
			return Bottom()
		}
		return meetFunction(av, bv)
	case ClassType:
		bv, ok := b.(ClassType)
		if !ok || av.Name != bv.Name {
			return Bottom()
		}
		return av
	case PromiseType:
		bv, ok := b.(PromiseType)
		if !ok {
			return Bottom()
		}
		return Promise(Meet(av.Resolved, bv.Resolved))
	}
	if a.String() == b.String() {
		return a
	}
	return MakeIntersection(a, b)
}

func meetPrimitive(a, b Primitive) Type {
	if a.HasLit && b.HasLit {
		if a.Literal == b.Literal {
			return a
		}
		return Bottom()
	}
	if a.HasLit {
		return a
	}
	if b.HasLit {
		return b
	}
	return Primitive{Kind: a.Kind}
}

func meetArray(a, b ArrayType) Type {
	elem := Meet(a.Elem, b.Elem)
	if a.Tuple != nil && b.Tuple != nil && len(a.Tuple) == len(b.Tuple) {
		members := make([]Type, len(a.Tuple))
		for i := range a.Tuple {
			members[i] = Meet(a.Tuple[i], b.Tuple[i])
		}
		return ArrayType{Elem: elem, Tuple: members}
	}
	return ArrayType{Elem: elem}
}

// meetRecord is field-wise over the union of field names.
func meetRecord(a, b RecordType) Type {
	out := RecordType{Sealed: a.Sealed || b.Sealed, Frozen: a.Frozen || b.Frozen, Open: a.Open && b.Open}
	seen := map[string]bool{}
	for _, fa := range a.Fields {
		seen[fa.Name] = true
		if fb, ok := b.Field(fa.Name); ok {
			out.Fields = append(out.Fields, Field{
				Name:         fa.Name,
				Type:         Meet(fa.Type, fb.Type),
				Writable:     fa.Writable || fb.Writable,
				Enumerable:   fa.Enumerable || fb.Enumerable,
				Configurable: fa.Configurable || fb.Configurable,
			})
		} else {
			out.Fields = append(out.Fields, fa)
		}
	}
	for _, fb := range b.Fields {
		if !seen[fb.Name] {
			out.Fields = append(out.Fields, fb)
		}
	}
	return out
}

func meetFunction(a, b FunctionType) Type {
	if len(a.Params) != len(b.Params) {
		return Bottom()
	}
	params := make([]Param, len(a.Params))
	for i := range a.Params {
		// contravariant: parameter types join, not meet
		params[i] = Param{
			Name:     a.Params[i].Name,
			Type:     Join(a.Params[i].Type, b.Params[i].Type),
			Optional: a.Params[i].Optional && b.Params[i].Optional,
			Rest:     a.Params[i].Rest && b.Params[i].Rest,
		}
	}
	captures := a.Captures.Union(b.Captures)
	return FunctionType{
		Params:    params,
		Return:    Meet(a.Return, b.Return),
		Async:     a.Async && b.Async,
		Generator: a.Generator && b.Generator,
		Captures:  captures,
	}
}
