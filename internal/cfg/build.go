package cfg

import "github.com/funvibe/flowtype/internal/ast"

const noBlock BlockID = -1

// target is one entry of the break/continue target stacks a builder
// maintains while walking a function body, keyed by label.
type target struct {
	label       string
	block       BlockID
	isConstruct bool // true for a loop/switch's own target, reachable by a bare break/continue
}

func findTarget(stack []target, label string) (BlockID, bool) {
	if label == "" {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].isConstruct {
				return stack[i].block, true
			}
		}
		return 0, false
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].label == label {
			return stack[i].block, true
		}
	}
	return 0, false
}

// tryHandler is one entry of the try-handlers stack: the nearest
// enclosing catch/finally a throw inside the current block should target.
type tryHandler struct {
	catch      BlockID
	finally    BlockID
	hasCatch   bool
	hasFinally bool
}

// builder carries the per-function build context as it walks the AST.
type builder struct {
	cfg             *CFG
	cur             BlockID
	term            map[BlockID]bool
	breakTargets    []target
	continueTargets []target
	tryHandlers     []tryHandler
}

func newCFG(name string, params []*ast.Param, async, gen bool) *CFG {
	return &CFG{
		Blocks: map[BlockID]*Block{},
		Edges:  map[BlockID][]Edge{},
		Name:   name,
		Params: params,
		Async:  async,
		Gen:    gen,
	}
}

// Build treats the whole program as an implicit top-level function.
func Build(prog *ast.Program) *CFG {
	return build(newCFG("", nil, false, false), prog.Statements)
}

// BuildFunction builds the CFG for a named function declaration.
func BuildFunction(fn *ast.FunctionStatement) *CFG {
	name := ""
	if fn.Name != nil {
		name = fn.Name.Name
	}
	return build(newCFG(name, fn.Params, fn.Async, fn.Generator), fn.Body.Statements)
}

// BuildFunctionExpr builds the CFG for a function or arrow expression.
func BuildFunctionExpr(fe *ast.FunctionExpression) *CFG {
	name := ""
	if fe.Name != nil {
		name = fe.Name.Name
	}
	return build(newCFG(name, fe.Params, fe.Async, fe.Generator), fe.Body.Statements)
}

// BuildMethod builds the CFG for a class method (including the
// constructor).
func BuildMethod(m *ast.ClassMethod) *CFG {
	return build(newCFG(m.Name, m.Params, m.Async, m.Generator), m.Body.Statements)
}

func build(c *CFG, stmts []ast.Statement) *CFG {
	entry := c.newBlock()
	c.Entry = entry.ID
	b := &builder{cfg: c, cur: entry.ID, term: map[BlockID]bool{}}
	for _, s := range stmts {
		b.stmt(s)
	}
	if !b.term[b.cur] && (b.cur == c.Entry || len(c.Preds(b.cur)) > 0) {
		c.Exits = append(c.Exits, b.cur)
	}
	findBackEdges(c)
	computeDominators(c)
	return c
}

func (b *builder) appendStmt(s ast.Statement) {
	blk := b.cfg.Blocks[b.cur]
	blk.Statements = append(blk.Statements, s)
}

// closeFallthrough wires an unconditional edge from id to next unless id
// was already closed by an explicit terminator (return/throw/break/continue).
func (b *builder) closeFallthrough(id, next BlockID) {
	if b.term[id] {
		return
	}
	b.cfg.addEdge(id, next, EdgeUnconditional)
}

func (b *builder) stmt(s ast.Statement) {
	switch v := s.(type) {
	case *ast.BlockStatement:
		for _, inner := range v.Statements {
			b.stmt(inner)
		}
	case *ast.IfStatement:
		b.buildIf(v)
	case *ast.WhileStatement:
		b.buildWhile(v)
	case *ast.DoWhileStatement:
		b.buildDoWhile(v)
	case *ast.ForStatement:
		b.buildFor(v)
	case *ast.ForInStatement:
		b.buildForIn(v)
	case *ast.ForOfStatement:
		b.buildForOf(v)
	case *ast.BreakStatement:
		b.buildBreak(v)
	case *ast.ContinueStatement:
		b.buildContinue(v)
	case *ast.ReturnStatement:
		b.buildReturn(v)
	case *ast.ThrowStatement:
		b.buildThrow(v)
	case *ast.TryStatement:
		b.buildTry(v)
	case *ast.SwitchStatement:
		b.buildSwitch(v)
	case *ast.LabeledStatement:
		b.buildLabeled(v)
	default:
		// VariableDeclaration, ExpressionStatement, FunctionStatement,
		// ClassDeclaration: no control flow of their own.
		b.appendStmt(s)
	}
}

func (b *builder) buildIf(s *ast.IfStatement) {
	header := b.cur
	b.cfg.Blocks[header].Term = Terminator{Kind: TermBranch, Cond: s.Cond}
	pred := extractPredicate(s.Cond)

	thenBlk := b.cfg.newBlock()
	b.cfg.addEdgePred(header, thenBlk.ID, EdgeTrue, pred)
	afterBlk := b.cfg.newBlock()

	if s.Alt != nil {
		altBlk := b.cfg.newBlock()
		b.cfg.addEdgePred(header, altBlk.ID, EdgeFalse, pred)

		b.cur = thenBlk.ID
		b.stmt(s.Then)
		b.closeFallthrough(b.cur, afterBlk.ID)

		b.cur = altBlk.ID
		b.stmt(s.Alt)
		b.closeFallthrough(b.cur, afterBlk.ID)
	} else {
		b.cfg.addEdgePred(header, afterBlk.ID, EdgeFalse, pred)

		b.cur = thenBlk.ID
		b.stmt(s.Then)
		b.closeFallthrough(b.cur, afterBlk.ID)
	}
	b.cur = afterBlk.ID
}

func (b *builder) buildWhile(s *ast.WhileStatement) {
	header := b.cfg.newBlock()
	b.cfg.addEdge(b.cur, header.ID, EdgeUnconditional)

	bodyBlk := b.cfg.newBlock()
	afterBlk := b.cfg.newBlock()

	header.Term = Terminator{Kind: TermBranch, Cond: s.Cond}
	pred := extractPredicate(s.Cond)
	b.cfg.addEdgePred(header.ID, bodyBlk.ID, EdgeTrue, pred)
	b.cfg.addEdgePred(header.ID, afterBlk.ID, EdgeFalse, pred)

	b.breakTargets = append(b.breakTargets, target{label: s.Label, block: afterBlk.ID, isConstruct: true})
	b.continueTargets = append(b.continueTargets, target{label: s.Label, block: header.ID, isConstruct: true})

	b.cur = bodyBlk.ID
	b.stmt(s.Body)
	b.closeFallthrough(b.cur, header.ID)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.cur = afterBlk.ID
}

func (b *builder) buildDoWhile(s *ast.DoWhileStatement) {
	bodyBlk := b.cfg.newBlock()
	b.cfg.addEdge(b.cur, bodyBlk.ID, EdgeUnconditional)

	condBlk := b.cfg.newBlock()
	afterBlk := b.cfg.newBlock()

	b.breakTargets = append(b.breakTargets, target{label: s.Label, block: afterBlk.ID, isConstruct: true})
	b.continueTargets = append(b.continueTargets, target{label: s.Label, block: condBlk.ID, isConstruct: true})

	b.cur = bodyBlk.ID
	b.stmt(s.Body)
	b.closeFallthrough(b.cur, condBlk.ID)

	condBlk.Term = Terminator{Kind: TermBranch, Cond: s.Cond}
	pred := extractPredicate(s.Cond)
	b.cfg.addEdgePred(condBlk.ID, bodyBlk.ID, EdgeTrue, pred)
	b.cfg.addEdgePred(condBlk.ID, afterBlk.ID, EdgeFalse, pred)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	b.cur = afterBlk.ID
}

func (b *builder) buildFor(s *ast.ForStatement) {
	if s.Init != nil {
		if stmt, ok := s.Init.(ast.Statement); ok {
			b.stmt(stmt)
		} else if expr, ok := s.Init.(ast.Expression); ok {
			b.appendStmt(&ast.ExpressionStatement{Span: ast.Span{Start: expr.Pos(), Stop: expr.End()}, Expr: expr})
		}
	}

	header := b.cfg.newBlock()
	b.cfg.addEdge(b.cur, header.ID, EdgeUnconditional)

	bodyBlk := b.cfg.newBlock()
	updateBlk := b.cfg.newBlock()
	afterBlk := b.cfg.newBlock()

	if s.Cond != nil {
		header.Term = Terminator{Kind: TermBranch, Cond: s.Cond}
		pred := extractPredicate(s.Cond)
		b.cfg.addEdgePred(header.ID, bodyBlk.ID, EdgeTrue, pred)
		b.cfg.addEdgePred(header.ID, afterBlk.ID, EdgeFalse, pred)
	} else {
		b.cfg.addEdge(header.ID, bodyBlk.ID, EdgeUnconditional)
	}

	b.breakTargets = append(b.breakTargets, target{label: s.Label, block: afterBlk.ID, isConstruct: true})
	b.continueTargets = append(b.continueTargets, target{label: s.Label, block: updateBlk.ID, isConstruct: true})

	b.cur = bodyBlk.ID
	b.stmt(s.Body)
	b.closeFallthrough(b.cur, updateBlk.ID)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]

	if s.Update != nil {
		u := s.Update
		updateBlk.Statements = append(updateBlk.Statements, &ast.ExpressionStatement{Span: ast.Span{Start: u.Pos(), Stop: u.End()}, Expr: u})
	}
	b.cfg.addEdge(updateBlk.ID, header.ID, EdgeUnconditional)

	b.cur = afterBlk.ID
}

// buildEnumerationLoop is shared by for-in and for-of: both enumerate an
// opaque sequence with no narrowable condition, so the only edges are a
// has-next / no-next pair with no predicate. binder is the
// original ForInStatement/ForOfStatement, prepended as the body block's
// first statement so the solver's transfer function can see it and bind
// the iteration variable; the CFG itself only needs the has-next shape.
func (b *builder) buildEnumerationLoop(label string, binder, body ast.Statement) (bodyID, afterID BlockID) {
	header := b.cfg.newBlock()
	b.cfg.addEdge(b.cur, header.ID, EdgeUnconditional)

	bodyBlk := b.cfg.newBlock()
	afterBlk := b.cfg.newBlock()
	header.Term = Terminator{Kind: TermBranch}
	b.cfg.addEdge(header.ID, bodyBlk.ID, EdgeTrue)
	b.cfg.addEdge(header.ID, afterBlk.ID, EdgeFalse)

	b.breakTargets = append(b.breakTargets, target{label: label, block: afterBlk.ID, isConstruct: true})
	b.continueTargets = append(b.continueTargets, target{label: label, block: header.ID, isConstruct: true})

	b.cur = bodyBlk.ID
	bodyBlk.Statements = append(bodyBlk.Statements, binder)
	b.stmt(body)
	b.closeFallthrough(b.cur, header.ID)

	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.continueTargets = b.continueTargets[:len(b.continueTargets)-1]
	return bodyBlk.ID, afterBlk.ID
}

func (b *builder) buildForIn(s *ast.ForInStatement) {
	_, afterID := b.buildEnumerationLoop(s.Label, s, s.Body)
	b.cur = afterID
}

func (b *builder) buildForOf(s *ast.ForOfStatement) {
	_, afterID := b.buildEnumerationLoop(s.Label, s, s.Body)
	b.cur = afterID
}

func (b *builder) buildBreak(s *ast.BreakStatement) {
	id := b.cur
	b.cfg.Blocks[id].Term = Terminator{Kind: TermBreak, Label: s.Label}
	if dest, ok := findTarget(b.breakTargets, s.Label); ok {
		b.cfg.addEdge(id, dest, EdgeUnconditional)
		b.term[id] = true
	}
	nb := b.cfg.newBlock()
	b.cur = nb.ID
}

func (b *builder) buildContinue(s *ast.ContinueStatement) {
	id := b.cur
	b.cfg.Blocks[id].Term = Terminator{Kind: TermContinue, Label: s.Label}
	if dest, ok := findTarget(b.continueTargets, s.Label); ok {
		b.cfg.addEdge(id, dest, EdgeUnconditional)
		b.term[id] = true
	}
	nb := b.cfg.newBlock()
	b.cur = nb.ID
}

func (b *builder) buildReturn(s *ast.ReturnStatement) {
	id := b.cur
	b.cfg.Blocks[id].Term = Terminator{Kind: TermReturn, Value: s.Value}
	b.term[id] = true
	b.cfg.Exits = append(b.cfg.Exits, id)
	nb := b.cfg.newBlock()
	b.cur = nb.ID
}

func (b *builder) buildThrow(s *ast.ThrowStatement) {
	id := b.cur
	b.cfg.Blocks[id].Term = Terminator{Kind: TermThrow, Value: s.Value}
	b.term[id] = true
	if len(b.tryHandlers) > 0 {
		h := b.tryHandlers[len(b.tryHandlers)-1]
		switch {
		case h.hasCatch:
			b.cfg.addEdge(id, h.catch, EdgeException)
		case h.hasFinally:
			b.cfg.addEdge(id, h.finally, EdgeException)
		default:
			b.cfg.Exits = append(b.cfg.Exits, id)
		}
	} else {
		b.cfg.Exits = append(b.cfg.Exits, id)
	}
	nb := b.cfg.newBlock()
	b.cur = nb.ID
}

func (b *builder) buildTry(s *ast.TryStatement) {
	tryBlk := b.cfg.newBlock()
	b.cfg.addEdge(b.cur, tryBlk.ID, EdgeUnconditional)

	afterBlk := b.cfg.newBlock()

	var catchBlk, finallyBlk *Block
	h := tryHandler{catch: noBlock, finally: noBlock}
	if s.Catch != nil {
		catchBlk = b.cfg.newBlock()
		h.catch, h.hasCatch = catchBlk.ID, true
	}
	if s.Finally != nil {
		finallyBlk = b.cfg.newBlock()
		h.finally, h.hasFinally = finallyBlk.ID, true
	}

	b.tryHandlers = append(b.tryHandlers, h)
	b.cur = tryBlk.ID
	b.stmt(s.Block)
	next := afterBlk.ID
	if finallyBlk != nil {
		next = finallyBlk.ID
	}
	b.closeFallthrough(b.cur, next)
	b.tryHandlers = b.tryHandlers[:len(b.tryHandlers)-1]

	if catchBlk != nil {
		b.cur = catchBlk.ID
		b.stmt(s.Catch.Body)
		b.closeFallthrough(b.cur, next)
	}

	if finallyBlk != nil {
		b.cur = finallyBlk.ID
		b.stmt(s.Finally)
		if !b.term[b.cur] {
			b.cfg.addEdge(b.cur, afterBlk.ID, EdgeFinallyComplete)
		}
	}

	b.cur = afterBlk.ID
}

func (b *builder) buildSwitch(s *ast.SwitchStatement) {
	header := b.cur
	b.cfg.Blocks[header].Term = Terminator{Kind: TermSwitch, Value: s.Discriminant}

	afterBlk := b.cfg.newBlock()
	caseIDs := make([]BlockID, len(s.Cases))
	hasDefault := false
	for i, c := range s.Cases {
		blk := b.cfg.newBlock()
		caseIDs[i] = blk.ID
		if c.Test == nil {
			hasDefault = true
			b.cfg.addEdge(header, blk.ID, EdgeDefault)
		} else {
			b.cfg.addCaseEdge(header, blk.ID, c.Test)
		}
	}
	if !hasDefault {
		b.cfg.addEdge(header, afterBlk.ID, EdgeDefault)
	}

	b.breakTargets = append(b.breakTargets, target{label: "", block: afterBlk.ID, isConstruct: true})
	for i, c := range s.Cases {
		b.cur = caseIDs[i]
		for _, st := range c.Statements {
			b.stmt(st)
		}
		next := afterBlk.ID
		if i+1 < len(s.Cases) {
			next = caseIDs[i+1]
		}
		b.closeFallthrough(b.cur, next)
	}
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]

	b.cur = afterBlk.ID
}

// buildLabeled wraps an arbitrary statement with a forward break target
// reachable by name. A labelled while/do/for loop (including for-in and
// for-of) also carries the label itself and pushes labelled break and
// continue targets, so `break label;` inside it resolves to the loop's own
// exit; inside any other labelled statement (a block, or a switch, whose
// own target is unlabelled) it resolves here, one hop after the
// statement's end via the fallthrough this wrapper adds.
func (b *builder) buildLabeled(s *ast.LabeledStatement) {
	afterBlk := b.cfg.newBlock()
	b.breakTargets = append(b.breakTargets, target{label: s.Label, block: afterBlk.ID})
	b.stmt(s.Body)
	b.closeFallthrough(b.cur, afterBlk.ID)
	b.breakTargets = b.breakTargets[:len(b.breakTargets)-1]
	b.cur = afterBlk.ID
}
