package solver

import (
	"strconv"

	"bitbucket.org/creachadair/stringset"
	"github.com/golang/glog"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/cfg"
	"github.com/funvibe/flowtype/internal/types"
)

// modifiedInLoopVars is the widening pre-pass: every name assigned,
// updated, or bound as a loop target in a block that some back-edge's
// target dominates (the loop body, and also any code after the loop that
// the header dominates).
func modifiedInLoopVars(c *cfg.CFG) stringset.Set {
	out := stringset.New()
	headers := map[cfg.BlockID]bool{}
	for e := range c.BackEdges {
		headers[e.To] = true
	}
	if len(headers) == 0 {
		return out
	}
	for _, id := range c.AllBlockIDs() {
		inLoop := false
		for h := range headers {
			if c.Dominates(h, id) {
				inLoop = true
				break
			}
		}
		if !inLoop {
			continue
		}
		for _, stmt := range c.Blocks[id].Statements {
			collectModifiedNames(stmt, out)
		}
	}
	return out
}

func collectModifiedNames(stmt ast.Statement, out stringset.Set) {
	switch v := stmt.(type) {
	case *ast.ExpressionStatement:
		collectModifiedInExpr(v.Expr, out)
	case *ast.ForInStatement:
		out.Add(patternNames(v.Target)...)
	case *ast.ForOfStatement:
		out.Add(patternNames(v.Target)...)
	case *ast.VariableDeclaration:
		for _, d := range v.Declarators {
			if d.Init != nil {
				collectModifiedInExpr(d.Init, out)
			}
		}
	}
}

func collectModifiedInExpr(e ast.Expression, out stringset.Set) {
	switch v := e.(type) {
	case *ast.AssignmentExpression:
		if id, ok := v.Target.(*ast.Identifier); ok {
			out.Add(id.Name)
		}
		collectModifiedInExpr(v.Value, out)
	case *ast.UpdateExpression:
		if id, ok := v.Operand.(*ast.Identifier); ok {
			out.Add(id.Name)
		}
	case *ast.SequenceExpression:
		for _, sub := range v.Exprs {
			collectModifiedInExpr(sub, out)
		}
	case *ast.CallExpression:
		collectModifiedInExpr(v.Callee, out)
		for _, a := range v.Args {
			collectModifiedInExpr(a, out)
		}
	}
}

// widenType snaps a strictly-growing value to a safe upper bound rather
// than joining unboundedly: the unrefined primitive for a literal
// refinement that changed value, or `top` once the join has accumulated
// three or more distinct tags.
func widenType(old, candidate types.Type) types.Type {
	joined := types.Join(old, candidate)
	if types.Subtype(joined, old) {
		return old
	}
	if countKinds(joined) >= 3 {
		glog.V(2).Infof("widen: %s -> top (3+ distinct tags)", old)
		return types.Top("widened")
	}
	if p, ok := joined.(types.Primitive); ok && p.HasLit {
		if op, ok := old.(types.Primitive); ok && op.HasLit && op.Literal != p.Literal {
			glog.V(2).Infof("widen: %s -> %s (literal divergence)", old, p.Kind)
			return types.Primitive{Kind: p.Kind}
		}
	}
	return joined
}

// countKinds counts the distinct kinds a union has grown across, where
// each primitive kind counts separately and every non-primitive variant
// counts by its lattice tag.
func countKinds(t types.Type) int {
	members, ok := types.IsUnion(t)
	if !ok {
		return 1
	}
	seen := map[string]bool{}
	for _, m := range members {
		if p, ok := m.(types.Primitive); ok {
			seen[p.Kind.String()] = true
			continue
		}
		seen["#" + strconv.Itoa(int(m.Tag()))] = true
	}
	return len(seen)
}
