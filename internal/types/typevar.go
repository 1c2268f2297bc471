package types

import "github.com/google/uuid"

// TypeVar is a polar type variable: a unique id, a polarity (positive =
// output, negative = input), and a lower and upper bound. WidenLower
// grows Lower by join and NarrowUpper shrinks Upper by meet; neither
// checks that Lower ≤ Upper still holds. The solver does not allocate
// type variables (parameters are seeded from call-site joins instead).
type TypeVar struct {
	ID       string
	Polarity Polarity
	Lower    Type
	Upper    Type
}

func (TypeVar) Tag() Tag { return TagVar }

func (v TypeVar) String() string { return "'t" + v.ID[:8] }

// FreshVar allocates a new type variable of the given polarity with
// bottom/top bounds (the widest possible starting bounds).
func FreshVar(polarity Polarity) TypeVar {
	return TypeVar{
		ID:       uuid.NewString(),
		Polarity: polarity,
		Lower:    Bottom(),
		Upper:    Top(""),
	}
}

// WidenLower returns a copy of v with its lower bound joined with t.
func (v TypeVar) WidenLower(t Type) TypeVar {
	v.Lower = Join(v.Lower, t)
	return v
}

// NarrowUpper returns a copy of v with its upper bound met with t.
func (v TypeVar) NarrowUpper(t Type) TypeVar {
	v.Upper = Meet(v.Upper, t)
	return v
}
