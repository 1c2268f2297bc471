package format

import (
	"sort"
	"strings"

	"github.com/funvibe/flowtype/internal/solver"
)

// Inline renders the inline-comment source overlay: the original source
// with a `/* : <type> */` comment spliced in immediately after each
// annotated identifier, the way an editor's inlay hints would render if
// flattened to plain text. Insertion walks annotations in descending end-
// offset order so each splice leaves earlier offsets in the same pass
// untouched; annotation order alone says nothing about offsets staying
// valid after insertion, so this formatter restores that itself.
func Inline(source string, res solver.Result) string {
	anns := append([]solver.TypeAnnotation(nil), res.Annotations...)
	sort.Slice(anns, func(i, j int) bool {
		return anns[i].End.Offset > anns[j].End.Offset
	})

	var b strings.Builder
	b.WriteString(source)
	out := b.String()
	for _, a := range anns {
		if a.Name == "" || !inlineKind(a.Kind) {
			continue
		}
		off := a.End.Offset
		if off < 0 || off > len(out) {
			continue
		}
		comment := " /* : " + a.TypeString + " */"
		out = out[:off] + comment + out[off:]
	}
	return out
}

func inlineKind(k solver.AnnotationKind) bool {
	switch k {
	case solver.KindVariable, solver.KindConst, solver.KindParameter, solver.KindFunction, solver.KindClass:
		return true
	default:
		return false
	}
}
