package types

// Join returns the least upper bound of a and b: commutative,
// associative, idempotent, and monotone, and subtype(a, join(a,b))
// always holds. Two primitives of different kinds join to the union of
// their unrefined kinds (number(1) ⊔ string("a") = number | string).
func Join(a, b Type) Type {
	if _, ok := a.(BottomType); ok {
		return b
	}
	if _, ok := b.(BottomType); ok {
		return a
	}
	if _, ok := a.(TopType); ok {
		return a
	}
	if _, ok := b.(TopType); ok {
		return b
	}
	if av, ok := a.(TypeVar); ok {
		return joinVar(av, b)
	}
	if bv, ok := b.(TypeVar); ok {
		return joinVar(bv, a)
	}

	switch av := a.(type) {
	case Primitive:
		bv, ok := b.(Primitive)
		if !ok {
			return MakeUnion(a, b)
		}
		if av.Kind != bv.Kind {
			return MakeUnion(Primitive{Kind: av.Kind}, Primitive{Kind: bv.Kind})
		}
		return joinPrimitive(av, bv)
	case ArrayType:
		bv, ok := b.(ArrayType)
		if !ok {
			return MakeUnion(a, b)
		}
		return joinArray(av, bv)
	case RecordType:
		bv, ok := b.(RecordType)
		if !ok {
			return MakeUnion(a, b)
		}
		return joinRecord(av, bv)
	case FunctionType:
		bv, ok := b.(FunctionType)
		if !ok {
			return MakeUnion(a, b)
		}
		return joinFunction(av, bv)
	case ClassType:
		bv, ok := b.(ClassType)
		if !ok || av.Name != bv.Name {
			return MakeUnion(a, b)
		}
		return av
	case PromiseType:
		bv, ok := b.(PromiseType)
		if !ok {
			return MakeUnion(a, b)
		}
		return Promise(Join(av.Resolved, bv.Resolved))
	case UnionType:
		return MakeUnion(append(append([]Type{}, av.Members...), b)...)
	case IntersectionType:
		if bv, ok := b.(IntersectionType); ok && sameIntersection(av, bv) {
			return av
		}
		return MakeUnion(a, b)
	}
	return MakeUnion(a, b)
}

func joinVar(v TypeVar, other Type) Type {
	return Join(v.Upper, other)
}

func joinPrimitive(a, b Primitive) Type {
	if !a.HasLit && !b.HasLit {
		return Primitive{Kind: a.Kind}
	}
	if a.HasLit && b.HasLit && a.Literal == b.Literal {
		return a
	}
	return Primitive{Kind: a.Kind}
}

func joinArray(a, b ArrayType) Type {
	elem := Join(a.Elem, b.Elem)
	if a.Tuple != nil && b.Tuple != nil && len(a.Tuple) == len(b.Tuple) {
		members := make([]Type, len(a.Tuple))
		for i := range a.Tuple {
			members[i] = Join(a.Tuple[i], b.Tuple[i])
		}
		return ArrayType{Elem: elem, Tuple: members}
	}
	return ArrayType{Elem: elem}
}

// joinRecord is field-wise over the intersection of field names (width
// subtyping: {a, b} ⊔ {a, c} = {a}).
func joinRecord(a, b RecordType) Type {
	var fields []Field
	for _, fa := range a.Fields {
		if fb, ok := b.Field(fa.Name); ok {
			fields = append(fields, Field{
				Name:         fa.Name,
				Type:         Join(fa.Type, fb.Type),
				Writable:     fa.Writable && fb.Writable,
				Enumerable:   fa.Enumerable && fb.Enumerable,
				Configurable: fa.Configurable && fb.Configurable,
			})
		}
	}
	return RecordType{
		Fields: fields,
		Sealed: a.Sealed && b.Sealed,
		Frozen: a.Frozen && b.Frozen,
		Open:   a.Open || b.Open,
	}
}

func joinFunction(a, b FunctionType) Type {
	if len(a.Params) != len(b.Params) {
		return MakeUnion(a, b)
	}
	params := make([]Param, len(a.Params))
	for i := range a.Params {
		// contravariant: parameter types meet, not join
		params[i] = Param{
			Name:     a.Params[i].Name,
			Type:     Meet(a.Params[i].Type, b.Params[i].Type),
			Optional: a.Params[i].Optional || b.Params[i].Optional,
			Rest:     a.Params[i].Rest || b.Params[i].Rest,
		}
	}
	captures := a.Captures.Union(b.Captures)
	return FunctionType{
		Params:    params,
		Return:    Join(a.Return, b.Return),
		Async:     a.Async || b.Async,
		Generator: a.Generator || b.Generator,
		Captures:  captures,
	}
}

func sameIntersection(a, b IntersectionType) bool {
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if a.Members[i].String() != b.Members[i].String() {
			return false
		}
	}
	return true
}
