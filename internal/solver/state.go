package solver

import "github.com/funvibe/flowtype/internal/types"

// TypeState is a flow-sensitive mapping from variable name to current
// type. A missing key is treated as `bottom`.
type TypeState map[string]types.Type

func (s TypeState) get(name string) types.Type {
	if t, ok := s[name]; ok {
		return t
	}
	return types.Bottom()
}

func (s TypeState) clone() TypeState {
	out := make(TypeState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s TypeState) with(name string, t types.Type) TypeState {
	out := s.clone()
	out[name] = t
	return out
}

// joinStates is the pointwise join on the union of keys:
// "keys absent on one side contribute their type unmodified from the
// other (treated as unchanged along that path)".
func joinStates(a, b TypeState) TypeState {
	out := make(TypeState, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = types.Join(existing, v)
		} else {
			out[k] = v
		}
	}
	return out
}

// leqStates reports s1 ≤ s2: for every key in s1,
// s1[k] ≤ s2[k] (missing keys in s2 are bottom).
func leqStates(s1, s2 TypeState) bool {
	for k, v := range s1 {
		if !types.Subtype(v, s2.get(k)) {
			return false
		}
	}
	return true
}

func equalStates(a, b TypeState) bool {
	return leqStates(a, b) && leqStates(b, a)
}
