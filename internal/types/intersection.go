package types

import "strings"

// IntersectionType is a flat, deduplicated, ≥2-member conjunction, the
// meet-side counterpart to UnionType with the same structural invariants.
// Construct only through MakeIntersection.
type IntersectionType struct {
	Members []Type
}

func (IntersectionType) Tag() Tag { return TagIntersection }

func (i IntersectionType) String() string {
	parts := make([]string, len(i.Members))
	for idx, m := range i.Members {
		parts[idx] = m.String()
	}
	return strings.Join(parts, " & ")
}

// MakeIntersection flattens nested intersections, deduplicates by
// structural identity, drops top members (identity element for
// intersection), collapses to bottom if any member is bottom, and
// collapses a single surviving member to that member directly.
func MakeIntersection(members ...Type) Type {
	flat := flattenIntersection(members)
	seen := map[string]bool{}
	out := make([]Type, 0, len(flat))
	for _, m := range flat {
		if _, isTop := m.(TopType); isTop {
			continue
		}
		if _, isBottom := m.(BottomType); isBottom {
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
		return Top("")
	case 1:
		return out[0]
	default:
		return IntersectionType{Members: out}
	}
}

func flattenIntersection(members []Type) []Type {
	out := make([]Type, 0, len(members))
	for _, m := range members {
		if i, ok := m.(IntersectionType); ok {
			out = append(out, flattenIntersection(i.Members)...)
		} else {
			out = append(out, m)
		}
	}
	return out
}

// IsIntersection reports whether t is an IntersectionType and returns its
// members.
func IsIntersection(t Type) ([]Type, bool) {
	i, ok := t.(IntersectionType)
	if !ok {
		return nil, false
	}
	return i.Members, true
}
