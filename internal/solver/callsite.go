package solver

import (
	"github.com/google/uuid"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/cfg"
	"github.com/funvibe/flowtype/internal/types"
)

// FunctionCallInfo accumulates observed argument types across every call
// site of one function. ID is a unique label assigned at registration;
// the registry itself is keyed by the declaration node, and nothing in
// the solver reads ID.
type FunctionCallInfo struct {
	ID                string
	CallSites         int
	MergedParamTypes  []types.Type
	MergedNewArgTypes []types.Type // separate tally for `new` expressions against a class constructor
}

func (f *FunctionCallInfo) observeCall(args []types.Type) {
	f.CallSites++
	f.merge(&f.MergedParamTypes, args)
}

func (f *FunctionCallInfo) observeNew(args []types.Type) {
	f.merge(&f.MergedNewArgTypes, args)
}

func (f *FunctionCallInfo) merge(dst *[]types.Type, args []types.Type) {
	if len(args) > len(*dst) {
		grown := make([]types.Type, len(args))
		copy(grown, *dst)
		for i := len(*dst); i < len(args); i++ {
			grown[i] = types.Bottom()
		}
		*dst = grown
	}
	for i, a := range args {
		(*dst)[i] = types.Join((*dst)[i], a)
	}
}

// paramTypeAt returns the merged argument type observed at position i, or
// `top` with reason "uncalled-parameter" if no call reached that arity.
func (f *FunctionCallInfo) paramTypeAt(i int) types.Type {
	if f == nil || i >= len(f.MergedParamTypes) {
		return types.Top("uncalled-parameter")
	}
	return f.MergedParamTypes[i]
}

// funcEntry is what the registry tracks per discovered function-like
// declaration node: its built CFG (built once, reused every outer-loop
// round) plus its accumulating call info and last-computed type.
type funcEntry struct {
	node      ast.Node
	cfg       *cfg.CFG
	params    []*ast.Param
	calls     FunctionCallInfo
	fnType    types.FunctionType
	className string    // non-empty when node is a *ast.ClassDeclaration
	thisType  types.Type // set for methods/constructors to their class's instance type
}

// registry collects every function/class declaration discovered anywhere
// in the program (by a single upfront walk) so call-site aggregation has
// somewhere to accumulate before the function itself has been visited.
type registry struct {
	entries map[ast.Node]*funcEntry
	order   []ast.Node
}

func newRegistry() *registry {
	return &registry{entries: map[ast.Node]*funcEntry{}}
}

// register records node (a *ast.FunctionStatement, *ast.FunctionExpression,
// *ast.ClassMethod, or *ast.ClassDeclaration) if not already present and
// returns it as the stable reference call sites key against.
func (r *registry) register(node ast.Node) ast.Node {
	if _, ok := r.entries[node]; ok {
		return node
	}
	e := &funcEntry{node: node}
	e.calls.ID = uuid.NewString()
	switch v := node.(type) {
	case *ast.FunctionStatement:
		e.params = v.Params
		e.cfg = cfg.BuildFunction(v)
		e.fnType = types.FunctionType{Return: types.Top("uncalled-parameter"), Async: v.Async, Generator: v.Generator, Captures: captureSet(v.Params, v.Body)}
	case *ast.FunctionExpression:
		e.params = v.Params
		e.cfg = cfg.BuildFunctionExpr(v)
		e.fnType = types.FunctionType{Return: types.Top("uncalled-parameter"), Async: v.Async, Generator: v.Generator, Captures: captureSet(v.Params, v.Body)}
	case *ast.ClassMethod:
		e.params = v.Params
		e.cfg = cfg.BuildMethod(v)
		e.fnType = types.FunctionType{Return: types.Top("uncalled-parameter"), Async: v.Async, Generator: v.Generator, Captures: captureSet(v.Params, v.Body)}
	case *ast.ClassDeclaration:
		if v.Name != nil {
			e.className = v.Name.Name
		}
	}
	r.entries[node] = e
	r.order = append(r.order, node)
	return node
}

func (r *registry) get(node ast.Node) *funcEntry {
	return r.entries[node]
}
