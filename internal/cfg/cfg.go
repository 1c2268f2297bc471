// Package cfg translates a function-like AST node (or a whole program,
// treated as an implicit top-level function) into the basic-block graph
// the solver walks: typed edges, back-edges found by DFS, and dominators
// computed by the standard iterative dataflow fixed point.
package cfg

import "github.com/funvibe/flowtype/internal/ast"

// BlockID identifies a Block within a single CFG.
type BlockID int

// TermKind identifies how a Block's terminator transfers control.
type TermKind int

const (
	TermFallthrough TermKind = iota
	TermBranch
	TermSwitch
	TermReturn
	TermThrow
	TermBreak
	TermContinue
	TermTry
)

// Terminator closes a Block, deciding which edges leave it.
type Terminator struct {
	Kind  TermKind
	Cond  ast.Expression // TermBranch
	Value ast.Expression // TermReturn (may be nil), TermThrow
	Label string         // TermBreak / TermContinue, "" if unlabelled
}

// EdgeKind classifies an Edge.
type EdgeKind int

const (
	EdgeUnconditional EdgeKind = iota
	EdgeTrue
	EdgeFalse
	EdgeCase
	EdgeDefault
	EdgeException
	EdgeFinallyComplete
)

// PredKind mirrors types.PredicateKind without importing the types package,
// keeping cfg free of a dependency on the lattice (the solver is the one
// place that interprets a Predicate against types.Narrow).
type PredKind int

const (
	PredNone PredKind = iota
	PredTypeof
	PredNullish
	PredTruthy
	PredInstanceof
	PredIn
)

// Predicate is the narrowing fact a conditional edge carries.
type Predicate struct {
	Kind    PredKind
	Subject ast.Expression // the narrowed expression, usually an *ast.Identifier
	Arg     string         // typeof kind name / class name / property key
	Invert  bool           // true when the source condition was negated (`!cond`, `!==`, `!=`)
}

// Edge connects two blocks.
type Edge struct {
	From, To BlockID
	Kind     EdgeKind
	CaseTest ast.Expression // EdgeCase
	Pred     *Predicate     // non-nil only on EdgeTrue/EdgeFalse when narrowable
}

// Block is a maximal straight-line run of side-effect-free-to-reorder
// statements, closed by a single Terminator.
type Block struct {
	ID         BlockID
	Statements []ast.Statement
	Term       Terminator
}

// CFG is the full per-function graph.
type CFG struct {
	Entry     BlockID
	Exits     []BlockID // blocks whose terminator is Return or an uncaught Throw, plus the reachable block that falls off the end of the body
	Blocks    map[BlockID]*Block
	Edges     map[BlockID][]Edge // outgoing edges by source
	BackEdges map[Edge]bool
	Dom       map[BlockID]map[BlockID]bool // dom[n] = set of blocks dominating n
	PostDom   map[BlockID]map[BlockID]bool

	// Params/Name describe the function this CFG was built for; the
	// top-level program is modeled with an empty Params list and Name "".
	Params []*ast.Param
	Name   string
	Async  bool
	Gen    bool
}

func (c *CFG) newBlock() *Block {
	id := BlockID(len(c.Blocks))
	b := &Block{ID: id}
	c.Blocks[id] = b
	return b
}

func (c *CFG) addEdge(from, to BlockID, kind EdgeKind) {
	c.Edges[from] = append(c.Edges[from], Edge{From: from, To: to, Kind: kind})
}

func (c *CFG) addEdgePred(from, to BlockID, kind EdgeKind, pred *Predicate) {
	c.Edges[from] = append(c.Edges[from], Edge{From: from, To: to, Kind: kind, Pred: pred})
}

func (c *CFG) addCaseEdge(from, to BlockID, test ast.Expression) {
	c.Edges[from] = append(c.Edges[from], Edge{From: from, To: to, Kind: EdgeCase, CaseTest: test})
}

// Preds computes predecessors of b by scanning all edges; CFGs here are
// small enough (per-function) that this is cheaper than maintaining a
// second index incrementally through construction.
func (c *CFG) Preds(b BlockID) []BlockID {
	var out []BlockID
	for from, edges := range c.Edges {
		for _, e := range edges {
			if e.To == b {
				out = append(out, from)
			}
		}
	}
	return out
}

// Succs returns the successor blocks of b.
func (c *CFG) Succs(b BlockID) []BlockID {
	edges := c.Edges[b]
	out := make([]BlockID, len(edges))
	for i, e := range edges {
		out[i] = e.To
	}
	return out
}

// AllBlockIDs returns every block id in a stable, ascending order.
func (c *CFG) AllBlockIDs() []BlockID {
	out := make([]BlockID, 0, len(c.Blocks))
	for id := range c.Blocks {
		out = append(out, id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
