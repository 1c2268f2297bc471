package solver

import (
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"github.com/golang/glog"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/cfg"
	"github.com/funvibe/flowtype/internal/types"
)

// MaxIterations bounds the per-function worklist. It is a package var,
// not a const, so the CLI's `.flowtype.yaml` `max_iterations` key can
// override it before a call to Infer; the core itself never reads a
// config file.
var MaxIterations = 100

// maxOuterRounds bounds the cross-function fixed point: re-analyze every
// function while call-site-aggregated parameter types are
// still changing, capped rather than proved to terminate.
const maxOuterRounds = 8

// Result is the full output of one Infer call.
type Result struct {
	Annotations []TypeAnnotation
	Errors      []InferenceError
	Warnings    []Warning
	Blocks      int
	Functions   int
	Edges       int
	BackEdges   int
	Iterations  int
	Converged   bool
}

// Solver owns all cross-function state for one Infer call: the function
// registry, each function's last-converged exit state (for closures), and
// the flat lists of emitted annotations/errors.
type Solver struct {
	reg         *registry
	lastExit    map[ast.Node]TypeState
	classTypes  map[ast.Node]types.ClassType
	funcEnv     map[ast.Node]*Environment
	annotations []TypeAnnotation
	errors      []InferenceError
	warnings    []Warning
	iterations  int
	converged   bool
}

// fnCtx is the per-analysis-pass context threaded through expression and
// statement evaluation for one function body: its scope chain, its `this`
// type (methods/constructors only), and whether this pass is a dry run
// (mid-convergence, no annotation/error recording) or the final
// recording pass, which records against the converged state.
type fnCtx struct {
	s        *Solver
	env      *Environment
	node     ast.Node
	thisType types.Type
	dry      bool
	returnT  types.Type
}

func (ctx *fnCtx) recordReturn(t types.Type) {
	if ctx.returnT == nil {
		ctx.returnT = t
		return
	}
	ctx.returnT = types.Join(ctx.returnT, t)
}

func (ctx *fnCtx) emitExprAnnotation(n ast.Node, t types.Type, kind AnnotationKind) {
	if ctx.dry {
		return
	}
	ctx.s.annotations = append(ctx.s.annotations, newAnnotation(n.Pos(), n.End(), nodeTypeName(n), nameOf(n), t, kind))
}

func (ctx *fnCtx) addError(n ast.Node, format string, args ...interface{}) {
	if ctx.dry {
		return
	}
	pos := n.Pos()
	ctx.s.errors = append(ctx.s.errors, newError(pos.Line, pos.Column, nodeTypeName(n), format, args...))
}

func nodeTypeName(n ast.Node) string {
	switch n.(type) {
	case *ast.Identifier:
		return "Identifier"
	case *ast.MemberExpression:
		return "MemberExpression"
	case *ast.CallExpression:
		return "CallExpression"
	case *ast.NewExpression:
		return "NewExpression"
	case *ast.Literal:
		return "Literal"
	case *ast.VariableDeclaration:
		return "VariableDeclaration"
	case *ast.FunctionStatement:
		return "FunctionStatement"
	case *ast.FunctionExpression:
		return "FunctionExpression"
	case *ast.ClassDeclaration:
		return "ClassDeclaration"
	case *ast.AssignmentExpression:
		return "AssignmentExpression"
	case *ast.BinaryExpression:
		return "BinaryExpression"
	default:
		return fmt.Sprintf("%T", n)
	}
}

// fnLabel names a function node for glog tracing: its declared name, or
// "<program>"/"<anonymous>" when it has none.
func fnLabel(n ast.Node) string {
	if _, ok := n.(*ast.Program); ok {
		return "<program>"
	}
	if name := nameOf(n); name != "" {
		return name
	}
	return "<anonymous>"
}

func nameOf(n ast.Node) string {
	switch v := n.(type) {
	case *ast.Identifier:
		return v.Name
	case *ast.MemberExpression:
		return v.Property
	case *ast.FunctionStatement:
		if v.Name != nil {
			return v.Name.Name
		}
	case *ast.ClassDeclaration:
		if v.Name != nil {
			return v.Name.Name
		}
	}
	return ""
}

// Infer runs the whole pipeline: hoist, build every CFG, solve each to
// a fixed point (narrowing plus widening), iterate the cross-function
// outer loop, and return the sorted annotation/error lists.
func Infer(prog *ast.Program) Result {
	s := &Solver{
		reg:        newRegistry(),
		lastExit:   map[ast.Node]TypeState{},
		classTypes: map[ast.Node]types.ClassType{},
		funcEnv:    map[ast.Node]*Environment{},
		converged:  true,
	}

	topEnv := NewEnvironment(nil, prog)
	registerBuiltins(topEnv)
	hoist(topEnv, prog.Statements, s.reg)
	topCFG := cfg.Build(prog)
	topEntry := &funcEntry{node: prog, cfg: topCFG, fnType: types.FunctionType{Return: types.Undefined()}}

	s.buildClassTypes(topEnv)

	outerSettled := false
	for round := 0; round < maxOuterRounds; round++ {
		before := s.snapshotCallSites()
		s.analyzeOnce(topEntry, topEnv, true)
		after := s.snapshotCallSites()
		if after == before {
			outerSettled = true
			glog.V(1).Infof("outer fixed point reached after %d round(s)", round+1)
			break
		}
		glog.V(1).Infof("outer round %d: call-site types changed, re-analyzing", round+1)
	}
	// Final recording pass: re-analyze every function once more in
	// non-dry mode so annotations/errors reflect the converged state
	// exactly once.
	s.analyzeOnce(topEntry, topEnv, false)

	s.emitDeclarationAnnotations()

	s.reportUnreachable(topCFG)
	for _, node := range s.reg.order {
		if e := s.reg.get(node); e != nil && e.cfg != nil {
			s.reportUnreachable(e.cfg)
		}
	}
	if !s.converged {
		s.warnings = append(s.warnings, newWarning(0, 0, "solver did not converge within MAX_ITERATIONS (%d)", MaxIterations))
	}
	if !outerSettled {
		s.warnings = append(s.warnings, newWarning(0, 0, "call-site types did not converge within %d outer rounds", maxOuterRounds))
	}

	sortAnnotations(s.annotations)
	blocks, edges, backEdges := s.countBlocks()
	blocks += len(topCFG.Blocks)
	backEdges += len(topCFG.BackEdges)
	for _, out := range topCFG.Edges {
		edges += len(out)
	}
	return Result{
		Annotations: s.annotations,
		Errors:      s.errors,
		Warnings:    s.warnings,
		Blocks:      blocks,
		Edges:       edges,
		BackEdges:   backEdges,
		Functions:   len(s.reg.entries) + 1,
		Iterations:  s.iterations,
		Converged:   s.converged,
	}
}

// emitDeclarationAnnotations records one annotation per named function,
// class, and method the registry discovered: the declaration-level
// counterparts to the per-statement annotations transferStmt/transferVarDecl
// emit while solving a body. Run once, after the final recording pass, so
// each carries the fully converged fnType/ClassType rather than an
// intermediate one from an earlier outer round.
func (s *Solver) emitDeclarationAnnotations() {
	for _, node := range s.reg.order {
		entry := s.reg.get(node)
		switch v := node.(type) {
		case *ast.FunctionStatement:
			if v.Name == nil {
				continue
			}
			s.annotations = append(s.annotations, newAnnotation(v.Pos(), v.End(), "FunctionStatement", v.Name.Name, entry.fnType, KindFunction))
		case *ast.ClassDeclaration:
			if v.Name == nil {
				continue
			}
			ct, ok := s.classTypes[v]
			if !ok {
				continue
			}
			s.annotations = append(s.annotations, newAnnotation(v.Pos(), v.End(), "ClassDeclaration", v.Name.Name, ct, KindClass))
		case *ast.ClassMethod:
			if v.Name == "" {
				continue
			}
			s.annotations = append(s.annotations, newAnnotation(v.Pos(), v.End(), "ClassMethod", v.Name, entry.fnType, KindMethod))
		}
	}
}

// reportUnreachable emits a warning for every block in c, other than the
// entry block, that has no predecessors and holds statements or an
// explicit terminator: dead code
// that survives CFG construction (e.g. after an unconditional return or
// throw) but contributes nothing to the fixed point.
func (s *Solver) reportUnreachable(c *cfg.CFG) {
	for _, id := range c.AllBlockIDs() {
		if id == c.Entry {
			continue
		}
		if len(c.Preds(id)) > 0 {
			continue
		}
		block := c.Blocks[id]
		if block == nil || (len(block.Statements) == 0 && block.Term.Kind == cfg.TermFallthrough) {
			continue
		}
		line, col := 0, 0
		if len(block.Statements) > 0 {
			pos := block.Statements[0].Pos()
			line, col = pos.Line, pos.Column
		}
		s.warnings = append(s.warnings, newWarning(line, col, "unreachable code in block %d", int(id)))
	}
}

// snapshotCallSites is the convergence signature for the outer loop: every
// registered function's merged parameter types and return type, in
// registry order. Re-observing the same call sites joins idempotently, so
// the signature stabilizes exactly when no merged type moved this round.
func (s *Solver) snapshotCallSites() string {
	out := ""
	for _, node := range s.reg.order {
		e := s.reg.get(node)
		out += "|"
		for _, t := range e.calls.MergedParamTypes {
			out += t.String() + ","
		}
		for _, t := range e.calls.MergedNewArgTypes {
			out += t.String() + ";"
		}
		ret := "void"
		if e.fnType.Return != nil {
			ret = e.fnType.Return.String()
		}
		out += ":" + ret
	}
	return out
}

// countBlocks returns the total block, edge, and back-edge count across
// every registered function's CFG, feeding the result's CFG stats.
func (s *Solver) countBlocks() (blocks, edges, backEdges int) {
	for _, node := range s.reg.order {
		e := s.reg.get(node)
		if e == nil || e.cfg == nil {
			continue
		}
		blocks += len(e.cfg.Blocks)
		for _, out := range e.cfg.Edges {
			edges += len(out)
		}
		backEdges += len(e.cfg.BackEdges)
	}
	return
}

// buildClassTypes constructs an approximate ClassType for every registered
// class declaration: instance fields from declared ClassFields (typed by
// evaluating their initializers against an empty state) plus methods as
// function-typed fields, inheriting a superclass's instance fields.
func (s *Solver) buildClassTypes(env *Environment) {
	for _, node := range s.reg.order {
		cd, ok := node.(*ast.ClassDeclaration)
		if !ok {
			continue
		}
		s.buildOneClassType(cd, env)
	}
}

func (s *Solver) buildOneClassType(cd *ast.ClassDeclaration, env *Environment) types.ClassType {
	if ct, ok := s.classTypes[cd]; ok {
		return ct
	}
	var instance, statics types.RecordType
	var ctor types.FunctionType
	dummyCtx := &fnCtx{s: s, env: env, node: cd, dry: true}
	for _, f := range cd.Fields {
		t := types.Type(types.Undefined())
		if f.Init != nil {
			t, _ = dummyCtx.evalExpr(f.Init, TypeState{})
		}
		field := types.Field{Name: f.Name, Type: t, Writable: true, Enumerable: true, Configurable: true}
		if f.Static {
			statics = statics.WithField(field)
		} else {
			instance = instance.WithField(field)
		}
	}
	var methodEntries []*funcEntry
	for _, m := range cd.Methods {
		ref := s.reg.register(m)
		entry := s.reg.get(ref)
		methodEntries = append(methodEntries, entry)
		fn := entry.fnType
		fn.Params = paramsToTypeParams(m.Params, nil)
		entry.fnType = fn
		if m.Kind == "constructor" {
			ctor = fn
			continue
		}
		field := types.Field{Name: m.Name, Type: fn, Writable: true, Enumerable: true, Configurable: true}
		if m.Static {
			statics = statics.WithField(field)
		} else {
			instance = instance.WithField(field)
		}
	}
	var result types.Type
	if cd.Superclass != nil {
		if superID, ok := cd.Superclass.(*ast.Identifier); ok {
			if b, ok := env.Lookup(superID.Name); ok {
				if superCD, ok := b.Decl.(*ast.ClassDeclaration); ok {
					super := s.buildOneClassType(superCD, env)
					for _, f := range super.Instance.Fields {
						if _, already := instance.Field(f.Name); !already {
							instance = instance.WithField(f)
						}
					}
					result = types.Extends(className(cd), ctor, instance, statics, super)
				}
			}
		}
	}
	if result == nil {
		result = types.Class(className(cd), ctor, instance, statics)
	}
	ct := result.(types.ClassType)
	s.classTypes[cd] = ct
	for _, entry := range methodEntries {
		entry.thisType = ct.Instance
	}
	return ct
}

func className(cd *ast.ClassDeclaration) string {
	if cd.Name != nil {
		return cd.Name.Name
	}
	return ""
}

func paramsToTypeParams(params []*ast.Param, info *FunctionCallInfo) []types.Param {
	out := make([]types.Param, len(params))
	for i, p := range params {
		out[i] = types.Param{Name: paramName(p), Type: info.paramTypeAt(i), Optional: p.Optional, Rest: p.Rest}
	}
	return out
}

func paramName(p *ast.Param) string {
	if id, ok := p.Target.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

// analyzeOnce drives one outer-loop round over the whole call graph: solve
// the top-level program, then keep solving any function/method/class
// literal the pass just discovered (registered into s.reg by evalExpr)
// until none remain, so every reachable function gets exactly one solve
// per round regardless of discovery order.
func (s *Solver) analyzeOnce(topEntry *funcEntry, topEnv *Environment, dry bool) {
	s.funcEnv[topEntry.node] = topEnv
	s.solveFunction(topEntry, topEnv, nil, dry)
	processed := map[ast.Node]bool{topEntry.node: true}
	for {
		progressed := false
		for _, node := range s.reg.order {
			if processed[node] {
				continue
			}
			processed[node] = true
			progressed = true
			entry := s.reg.get(node)
			if entry == nil || entry.cfg == nil {
				continue
			}
			env := s.funcEnv[node]
			if env == nil {
				env = s.prepareFunctionEnv(entry, topEnv)
				s.funcEnv[node] = env
			}
			s.solveFunction(entry, env, entry.thisType, dry)
		}
		if !progressed {
			break
		}
	}
}

// prepareFunctionEnv builds the scope a function/method body analyzes
// under: a child of the enclosing (approximated as top-level) scope,
// hoisted with its own locals and its parameters declared as
// BindParameter. Nested functions all close
// over the top-level scope rather than their true lexical parent, the
// same flat-namespace simplification already used for block scoping.
func (s *Solver) prepareFunctionEnv(entry *funcEntry, outer *Environment) *Environment {
	env := NewEnvironment(outer, entry.node)
	for _, p := range entry.params {
		for _, name := range patternNames(p.Target) {
			env.Declare(&Binding{Name: name, Kind: BindParameter})
		}
	}
	var body []ast.Statement
	switch v := entry.node.(type) {
	case *ast.FunctionStatement:
		body = v.Body.Statements
	case *ast.FunctionExpression:
		body = v.Body.Statements
	case *ast.ClassMethod:
		body = v.Body.Statements
	}
	hoist(env, body, s.reg)
	return env
}

// solveFunction is the per-function worklist fixed point: iterate block
// transfer functions, applying narrowing along conditional edges and
// widening on back-edges, until in-states stop changing (or the iteration
// cap is hit). dry suppresses annotation/error emission for all but the
// final call.
func (s *Solver) solveFunction(entry *funcEntry, env *Environment, thisType types.Type, dry bool) TypeState {
	c := entry.cfg
	if c == nil {
		return TypeState{}
	}
	ctx := &fnCtx{s: s, env: env, node: entry.node, thisType: thisType, dry: dry}
	loopVars := modifiedInLoopVars(c)
	loopHeaders := map[cfg.BlockID]bool{}
	for e := range c.BackEdges {
		loopHeaders[e.To] = true
	}

	entryState := TypeState{}
	for name, b := range env.Bindings {
		if b.Kind != BindParameter {
			entryState[name] = s.initialBindingType(b)
		}
	}
	for i, p := range entry.params {
		t := entry.calls.paramTypeAt(i)
		if p.Rest {
			rest := make([]types.Type, 0)
			for j := i; j < len(entry.calls.MergedParamTypes); j++ {
				rest = append(rest, entry.calls.MergedParamTypes[j])
			}
			elem := types.Type(types.Bottom())
			for _, r := range rest {
				elem = types.Join(elem, r)
			}
			entryState = ctx.bindPattern(p.Target, types.Array(elem), entryState)
			continue
		}
		if _, isTop := t.(types.TopType); isTop && p.Default != nil {
			dt, _ := ctx.evalExpr(p.Default, entryState)
			t = dt
		}
		entryState = ctx.bindPattern(p.Target, t, entryState)
	}

	in := map[cfg.BlockID]TypeState{c.Entry: entryState}
	out := map[cfg.BlockID]TypeState{}
	worklist := []cfg.BlockID{c.Entry}
	queued := map[cfg.BlockID]bool{c.Entry: true}

	iterations := 0
	for len(worklist) > 0 && iterations < MaxIterations {
		id := worklist[0]
		worklist = worklist[1:]
		queued[id] = false
		iterations++

		merged := s.mergeIncoming(c, id, out, in[id], loopHeaders[id], loopVars, ctx.classLookupFn)
		if existing, ok := in[id]; ok && equalStates(existing, merged) && out[id] != nil {
			continue
		}
		in[id] = merged

		block := c.Blocks[id]
		if block == nil {
			continue
		}
		outState := ctx.transferBlock(block, merged)
		out[id] = outState

		for _, succ := range c.Succs(id) {
			if !queued[succ] {
				worklist = append(worklist, succ)
				queued[succ] = true
			}
		}
	}

	if !dry {
		s.iterations += iterations
		glog.V(2).Infof("solved %s in %d block iteration(s)", fnLabel(entry.node), iterations)
		if len(worklist) > 0 {
			s.converged = false
			glog.V(1).Infof("%s did not converge within %d iterations", fnLabel(entry.node), MaxIterations)
		}
	}

	var exitState TypeState
	for _, exitID := range c.Exits {
		if st, ok := out[exitID]; ok {
			if exitState == nil {
				exitState = st
			} else {
				exitState = joinStates(exitState, st)
			}
		}
	}
	if exitState == nil {
		exitState = TypeState{}
	}
	s.lastExit[entry.node] = exitState
	entry.fnType.Params = paramsToTypeParams(entry.params, &entry.calls)
	if ctx.returnT != nil {
		if entry.fnType.Async {
			entry.fnType.Return = types.Promise(ctx.returnT)
		} else {
			entry.fnType.Return = ctx.returnT
		}
	} else if entry.fnType.Async {
		entry.fnType.Return = types.Promise(types.Undefined())
	} else {
		entry.fnType.Return = types.Undefined()
	}
	return exitState
}

// initialBindingType is the hoisted initial type for a binding: var, let,
// and const start as undefined, hoisted functions carry their registered
// function type, classes their class type, builtins and caught exception
// parameters top.
func (s *Solver) initialBindingType(b *Binding) types.Type {
	switch b.Kind {
	case BindFunction:
		if e := s.reg.get(b.FuncRef); e != nil {
			return e.fnType
		}
		return types.Undefined()
	case BindClass:
		if ct, ok := s.classTypes[b.FuncRef]; ok {
			return ct
		}
		return types.Top("")
	case BindBuiltin:
		return builtinInitialType()
	case BindCatch:
		return types.Top("")
	default:
		return types.Undefined()
	}
}

// mergeIncoming joins every predecessor's out-state through its edge's
// narrowing predicate, widening loop-modified variables at
// a loop header once a previous in-state exists to widen against.
func (s *Solver) mergeIncoming(c *cfg.CFG, id cfg.BlockID, out map[cfg.BlockID]TypeState, prevIn TypeState, isHeader bool, loopVars stringset.Set, lookup types.ClassLookup) TypeState {
	preds := c.Preds(id)
	if len(preds) == 0 {
		if prevIn != nil {
			return prevIn
		}
		return TypeState{}
	}
	var merged TypeState
	for _, p := range preds {
		predState, ok := out[p]
		if !ok {
			continue
		}
		edge := findEdge(c, p, id)
		filtered := applyEdgePredicate(edge, predState, lookup)
		if merged == nil {
			merged = filtered.clone()
		} else {
			merged = joinStates(merged, filtered)
		}
	}
	if merged == nil {
		merged = TypeState{}
	}
	if isHeader && prevIn != nil {
		for name := range loopVars {
			if _, ok := merged[name]; ok {
				merged[name] = widenType(prevIn.get(name), merged.get(name))
			}
		}
	}
	return merged
}

func findEdge(c *cfg.CFG, from, to cfg.BlockID) *cfg.Edge {
	for i, e := range c.Edges[from] {
		if e.To == to {
			return &c.Edges[from][i]
		}
	}
	return nil
}

// applyEdgePredicate narrows predState along the edge's attached fact,
// if any. Only identifier subjects can be narrowed against the
// flat per-function TypeState; a MemberExpression subject is left
// unnarrowed, a documented simplification of the single-namespace model.
func applyEdgePredicate(edge *cfg.Edge, predState TypeState, lookup types.ClassLookup) TypeState {
	if edge == nil || edge.Pred == nil {
		return predState
	}
	pred := edge.Pred
	subject, ok := pred.Subject.(*ast.Identifier)
	if !ok {
		return predState
	}
	old, has := predState[subject.Name]
	if !has {
		return predState
	}
	truthy := edge.Kind == cfg.EdgeTrue
	positive := truthy != pred.Invert
	tp := toTypesPredicateKind(pred.Kind)
	narrowed := types.Narrow(old, types.Predicate{Kind: tp, Arg: pred.Arg}, positive, lookup)
	return predState.with(subject.Name, narrowed)
}

func toTypesPredicateKind(k cfg.PredKind) types.PredicateKind {
	switch k {
	case cfg.PredTypeof:
		return types.PredTypeof
	case cfg.PredNullish:
		return types.PredNullish
	case cfg.PredInstanceof:
		return types.PredInstanceof
	case cfg.PredIn:
		return types.PredIn
	default:
		return types.PredTruthy
	}
}
