package format

import (
	"fmt"
	"strings"

	"github.com/funvibe/flowtype/internal/solver"
)

// Decl renders a `.d.flow` declaration-file form: one `declare` line per
// top-level binding, in the style a TypeScript `.d.ts` emitter produces,
// but only for the annotation kinds that make sense as top-level exports
// (variables, consts, functions, classes); nested parameter/return/
// property/element/expression annotations are the report/inline
// formatters' concern, not a declaration file's.
func Decl(res solver.Result) string {
	var b strings.Builder
	for _, a := range res.Annotations {
		if a.Name == "" {
			continue
		}
		switch a.Kind {
		case solver.KindVariable:
			fmt.Fprintf(&b, "declare let %s: %s;\n", a.Name, a.TypeString)
		case solver.KindConst:
			fmt.Fprintf(&b, "declare const %s: %s;\n", a.Name, a.TypeString)
		case solver.KindFunction:
			fmt.Fprintf(&b, "declare function %s%s;\n", a.Name, stripArrow(a.TypeString))
		case solver.KindClass:
			fmt.Fprintf(&b, "declare class %s %s\n", a.Name, a.TypeString)
		}
	}
	return b.String()
}

// stripArrow turns a FunctionType's "(a: T, b: U) => R" string form into
// the "(a: T, b: U): R" declaration-file form functions conventionally use.
func stripArrow(s string) string {
	s = strings.TrimPrefix(s, "async ")
	s = strings.TrimPrefix(s, "*")
	if i := strings.LastIndex(s, ") => "); i >= 0 {
		return s[:i+1] + ": " + s[i+5:]
	}
	return s
}
