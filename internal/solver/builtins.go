package solver

import "github.com/funvibe/flowtype/internal/types"

// ExtraBuiltins names additional ambient globals beyond the fixed table
// below, e.g. from a project's `.flowtype.yaml` globals list. A package
// var, not an Infer parameter, following the same override convention as MaxIterations and
// types.MaxTupleLength.
var ExtraBuiltins []string

// registerBuiltins installs the small ambient-global table: a short
// fixed list rather than a full standard library, since the engine proves
// nothing about their internals.
func registerBuiltins(env *Environment) {
	for _, name := range []string{"console", "Math", "JSON", "Object", "Array", "Promise", "globalThis"} {
		env.Declare(&Binding{Name: name, Kind: BindBuiltin, FuncRef: nil})
	}
	for _, name := range ExtraBuiltins {
		env.Declare(&Binding{Name: name, Kind: BindBuiltin, FuncRef: nil})
	}
}

func builtinInitialType() types.Type { return types.Top("builtin") }
