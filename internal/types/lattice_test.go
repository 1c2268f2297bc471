package types_test

import (
	"testing"

	"github.com/funvibe/flowtype/internal/types"
)

// fixedSample is a small, representative set of lattice members the
// universal-property tests range over.
func fixedSample() []types.Type {
	return []types.Type{
		types.Number(),
		types.String(),
		types.Boolean(),
		types.NumberLit(1),
		types.NumberLit(2),
		types.StringLit("a"),
		types.Undefined(),
		types.Null(),
		types.Top(""),
		types.Bottom(),
		types.Array(types.Number()),
		types.Record(types.Field{Name: "a", Type: types.Number(), Writable: true, Enumerable: true, Configurable: true}),
		types.MakeUnion(types.Number(), types.String()),
	}
}

func TestJoinCommutative(t *testing.T) {
	sample := fixedSample()
	for _, a := range sample {
		for _, b := range sample {
			ab := types.Join(a, b).String()
			ba := types.Join(b, a).String()
			if ab != ba {
				t.Errorf("join(%s, %s) = %s but join(%s, %s) = %s", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestMeetCommutative(t *testing.T) {
	sample := fixedSample()
	for _, a := range sample {
		for _, b := range sample {
			ab := types.Meet(a, b).String()
			ba := types.Meet(b, a).String()
			if ab != ba {
				t.Errorf("meet(%s, %s) = %s but meet(%s, %s) = %s", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestJoinIdempotent(t *testing.T) {
	for _, a := range fixedSample() {
		got := types.Join(a, a).String()
		want := a.String()
		if got != want {
			t.Errorf("join(%s, %s) = %s, want %s", a, a, got, want)
		}
	}
}

func TestMeetIdempotent(t *testing.T) {
	for _, a := range fixedSample() {
		got := types.Meet(a, a).String()
		want := a.String()
		if got != want {
			t.Errorf("meet(%s, %s) = %s, want %s", a, a, got, want)
		}
	}
}

func TestSubtypeOfJoin(t *testing.T) {
	sample := fixedSample()
	for _, a := range sample {
		for _, b := range sample {
			j := types.Join(a, b)
			if !types.Subtype(a, j) {
				t.Errorf("subtype(%s, join(%s, %s)=%s) should hold", a, a, b, j)
			}
			if !types.Subtype(b, j) {
				t.Errorf("subtype(%s, join(%s, %s)=%s) should hold", b, a, b, j)
			}
		}
	}
}

func TestMeetSubtypeOfOperands(t *testing.T) {
	sample := fixedSample()
	for _, a := range sample {
		for _, b := range sample {
			m := types.Meet(a, b)
			if !types.Subtype(m, a) {
				t.Errorf("subtype(meet(%s, %s)=%s, %s) should hold", a, b, m, a)
			}
			if !types.Subtype(m, b) {
				t.Errorf("subtype(meet(%s, %s)=%s, %s) should hold", a, b, m, b)
			}
		}
	}
}

func TestTopIsMaximal(t *testing.T) {
	top := types.Top("")
	for _, a := range fixedSample() {
		if !types.Subtype(a, top) {
			t.Errorf("subtype(%s, top) should always hold", a)
		}
	}
}

func TestBottomIsMinimal(t *testing.T) {
	bottom := types.Bottom()
	for _, a := range fixedSample() {
		if !types.Subtype(bottom, a) {
			t.Errorf("subtype(bottom, %s) should always hold", a)
		}
	}
}

func TestTypeToStringDeterministic(t *testing.T) {
	a := types.MakeUnion(types.Number(), types.String())
	b := types.MakeUnion(types.Number(), types.String())
	if a.String() != b.String() {
		t.Errorf("structurally equal unions produced different strings: %s vs %s", a, b)
	}
}

func TestLiteralWideningToUnrefinedPrimitive(t *testing.T) {
	// let x = 1; x = "a"; -> number | string
	joined := types.Join(types.NumberLit(1), types.StringLit("a"))
	if joined.String() != "number | string" {
		t.Errorf("Join(number(1), string(\"a\")) = %s, want number | string", joined)
	}
}

func TestLiteralJoinSameValueStaysRefined(t *testing.T) {
	joined := types.Join(types.NumberLit(1), types.NumberLit(1))
	if joined.String() != "number(1)" {
		t.Errorf("Join(number(1), number(1)) = %s, want number(1)", joined)
	}
}

func TestLiteralJoinDifferentValueWidens(t *testing.T) {
	joined := types.Join(types.NumberLit(1), types.NumberLit(2))
	if joined.String() != "number" {
		t.Errorf("Join(number(1), number(2)) = %s, want number", joined)
	}
}

func TestUnionFlattensAndDedups(t *testing.T) {
	nested := types.MakeUnion(types.MakeUnion(types.Number(), types.String()), types.Number())
	members, ok := types.IsUnion(nested)
	if !ok {
		t.Fatalf("expected a union, got %s", nested)
	}
	if len(members) != 2 {
		t.Fatalf("expected 2 deduplicated members, got %d (%s)", len(members), nested)
	}
}

func TestUnionSingletonCollapses(t *testing.T) {
	single := types.MakeUnion(types.Number(), types.Bottom())
	if single.Tag() != types.TagPrimitive {
		t.Errorf("union of one real member + bottom should collapse, got %s", single)
	}
}

func TestUnionWithTopCollapsesToTop(t *testing.T) {
	u := types.MakeUnion(types.Number(), types.Top("x"))
	if u.Tag() != types.TagTop {
		t.Errorf("union containing top should collapse to top, got %s", u)
	}
}

func TestRecordJoinIsWidthSubtypingOverIntersection(t *testing.T) {
	// {a, b} ⊔ {a, c} = {a}
	r1 := types.Record(
		types.Field{Name: "a", Type: types.NumberLit(1), Writable: true, Enumerable: true, Configurable: true},
		types.Field{Name: "b", Type: types.NumberLit(2), Writable: true, Enumerable: true, Configurable: true},
	)
	r2 := types.Record(
		types.Field{Name: "a", Type: types.NumberLit(3), Writable: true, Enumerable: true, Configurable: true},
		types.Field{Name: "c", Type: types.NumberLit(4), Writable: true, Enumerable: true, Configurable: true},
	)
	joined := types.Join(r1, r2).(types.RecordType)
	if len(joined.Fields) != 1 {
		t.Fatalf("expected exactly field 'a' to survive the join, got %v", joined.Fields)
	}
	if joined.Fields[0].Name != "a" {
		t.Errorf("expected surviving field to be 'a', got %s", joined.Fields[0].Name)
	}
	if joined.Fields[0].Type.String() != "number" {
		t.Errorf("field 'a' should widen to number (1 vs 3), got %s", joined.Fields[0].Type)
	}
}

func TestRecordMeetIsUnionOfFieldNames(t *testing.T) {
	r1 := types.Record(types.Field{Name: "a", Type: types.Number(), Writable: true, Enumerable: true, Configurable: true})
	r2 := types.Record(types.Field{Name: "b", Type: types.String(), Writable: true, Enumerable: true, Configurable: true})
	met := types.Meet(r1, r2).(types.RecordType)
	if len(met.Fields) != 2 {
		t.Fatalf("meet of disjoint-field records should carry both fields, got %v", met.Fields)
	}
}

func TestSubtypeContravariantInParameters(t *testing.T) {
	// (x: number) => number  <=  (x: number|string) => number
	// i.e. a function accepting a wider parameter type is the subtype.
	narrow := types.Func([]types.Param{{Name: "x", Type: types.MakeUnion(types.Number(), types.String())}}, types.Number())
	wide := types.Func([]types.Param{{Name: "x", Type: types.Number()}}, types.Number())
	if !types.Subtype(narrow, wide) {
		t.Errorf("a function accepting number|string should be a subtype of one accepting only number")
	}
	if types.Subtype(wide, narrow) {
		t.Errorf("a function accepting only number should not be a subtype of one accepting number|string")
	}
}

func TestSubtypeCovariantInArrayElement(t *testing.T) {
	narrow := types.Array(types.NumberLit(1))
	wide := types.Array(types.Number())
	if !types.Subtype(narrow, wide) {
		t.Errorf("Array(number(1)) should be a subtype of Array(number)")
	}
}
