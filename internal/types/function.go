package types

import (
	"strings"

	"bitbucket.org/creachadair/stringset"
)

// Param is one entry of a FunctionType's ordered parameter list.
type Param struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool // true for the trailing `...rest` parameter, at most one
}

// FunctionType is a function signature: parameters, return type, the
// async/generator flags, and the set of enclosing-scope
// names the body reads (its capture set, computed when the solver
// registers the function and unioned by Join and Meet; the solver does
// not otherwise consult it).
type FunctionType struct {
	Params    []Param
	Return    Type
	Async     bool
	Generator bool
	Captures  stringset.Set
}

func (FunctionType) Tag() Tag { return TagFunc }

func (f FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		name := p.Name
		if p.Rest {
			name = "..." + name
		}
		opt := ""
		if p.Optional {
			opt = "?"
		}
		parts[i] = name + opt + ": " + p.Type.String()
	}
	ret := "void"
	if f.Return != nil {
		ret = f.Return.String()
	}
	prefix := ""
	if f.Async {
		prefix += "async "
	}
	if f.Generator {
		prefix += "*"
	}
	return prefix + "(" + strings.Join(parts, ", ") + ") => " + ret
}

// Func builds a plain, non-async, non-generator function type.
func Func(params []Param, ret Type) Type {
	return FunctionType{Params: params, Return: ret, Captures: stringset.New()}
}

// FuncWithCaptures builds a function type carrying an explicit capture set.
func FuncWithCaptures(params []Param, ret Type, async, generator bool, captures stringset.Set) Type {
	if captures == nil {
		captures = stringset.New()
	}
	return FunctionType{Params: params, Return: ret, Async: async, Generator: generator, Captures: captures}
}

// RequiredParamCount returns how many leading parameters are neither
// optional nor rest, i.e. the minimum call-site arity.
func (f FunctionType) RequiredParamCount() int {
	n := 0
	for _, p := range f.Params {
		if p.Optional || p.Rest {
			break
		}
		n++
	}
	return n
}

// HasRest reports whether the last parameter is a rest parameter.
func (f FunctionType) HasRest() bool {
	if len(f.Params) == 0 {
		return false
	}
	return f.Params[len(f.Params)-1].Rest
}
