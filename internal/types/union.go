package types

import "strings"

// UnionType is a flat, deduplicated disjunction of at least two members:
// no union-of-unions, no structural duplicates, singletons collapsed.
// Construct only through MakeUnion, never as a literal, so the invariant
// holds everywhere else in the package.
type UnionType struct {
	Members []Type
}

func (UnionType) Tag() Tag { return TagUnion }

func (u UnionType) String() string {
	parts := make([]string, len(u.Members))
	for i, m := range u.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

// MakeUnion flattens nested unions, deduplicates by structural identity
// (String() form, which is deterministic), drops bottom
// members (identity element for union), collapses to top if any member is
// top, and collapses a single surviving member to that member directly.
func MakeUnion(members ...Type) Type {
	flat := flattenUnion(members)
	seen := map[string]bool{}
	out := make([]Type, 0, len(flat))
	for _, m := range flat {
		if _, isBottom := m.(BottomType); isBottom {
			continue
		}
		if _, isTop := m.(TopType); isTop {
			return m
		}
		key := m.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	switch len(out) {
	case 0:
		return Bottom()
	case 1:
		return out[0]
	default:
		return UnionType{Members: out}
	}
}

func flattenUnion(members []Type) []Type {
	out := make([]Type, 0, len(members))
	for _, m := range members {
		if u, ok := m.(UnionType); ok {
			out = append(out, flattenUnion(u.Members)...)
		} else {
			out = append(out, m)
		}
	}
	return out
}

// IsUnion reports whether t is a UnionType and returns its members.
func IsUnion(t Type) ([]Type, bool) {
	u, ok := t.(UnionType)
	if !ok {
		return nil, false
	}
	return u.Members, true
}
