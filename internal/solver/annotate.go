package solver

import (
	"sort"

	"github.com/funvibe/flowtype/internal/token"
	"github.com/funvibe/flowtype/internal/types"
)

// AnnotationKind classifies what a TypeAnnotation annotates.
type AnnotationKind int

const (
	KindVariable AnnotationKind = iota
	KindConst
	KindParameter
	KindFunction
	KindReturn
	KindProperty
	KindElement
	KindExpression
	KindClass
	KindMethod
	KindField
)

func (k AnnotationKind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindParameter:
		return "parameter"
	case KindFunction:
		return "function"
	case KindReturn:
		return "return"
	case KindProperty:
		return "property"
	case KindElement:
		return "element"
	case KindExpression:
		return "expression"
	case KindClass:
		return "class"
	case KindMethod:
		return "method"
	case KindField:
		return "field"
	default:
		return "variable"
	}
}

// TypeAnnotation is one per-position inference result.
type TypeAnnotation struct {
	Start      token.Position
	End        token.Position
	Line       int
	Column     int
	NodeType   string
	Name       string
	Type       types.Type
	TypeString string
	Kind       AnnotationKind
}

func newAnnotation(start, end token.Position, nodeType, name string, t types.Type, kind AnnotationKind) TypeAnnotation {
	return TypeAnnotation{
		Start:      start,
		End:        end,
		Line:       start.Line,
		Column:     start.Column,
		NodeType:   nodeType,
		Name:       name,
		Type:       t,
		TypeString: t.String(),
		Kind:       kind,
	}
}

// sortAnnotations orders by (line, column, start) so downstream
// formatters see deterministic output.
func sortAnnotations(anns []TypeAnnotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		a, b := anns[i], anns[j]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		return a.Start.Offset < b.Start.Offset
	})
}
