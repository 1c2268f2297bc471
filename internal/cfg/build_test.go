package cfg_test

import (
	"testing"

	"github.com/funvibe/flowtype/internal/ast"
	"github.com/funvibe/flowtype/internal/cfg"
	"github.com/funvibe/flowtype/internal/parser"
)

func mustBuild(t *testing.T, src string) *cfg.CFG {
	t.Helper()
	prog, diags := parser.Parse(src)
	if len(diags) > 0 {
		t.Fatalf("parse failed: %v", diags)
	}
	return cfg.Build(prog)
}

func TestStraightLineProgramIsOneBlock(t *testing.T) {
	c := mustBuild(t, `
		let a = 1;
		let b = 2;
		let c = a + b;
	`)
	if len(c.Blocks) != 1 {
		t.Fatalf("expected exactly one block for straight-line code, got %d: %v", len(c.Blocks), c.AllBlockIDs())
	}
	if len(c.BackEdges) != 0 {
		t.Errorf("expected no back-edges, got %d", len(c.BackEdges))
	}
}

func TestIfStatementProducesTrueFalseEdges(t *testing.T) {
	c := mustBuild(t, `
		let x = 1;
		if (x) {
			x = 2;
		} else {
			x = 3;
		}
	`)
	if len(c.Blocks) < 3 {
		t.Fatalf("expected at least 3 blocks (cond, then, else/join), got %d", len(c.Blocks))
	}
	var sawTrue, sawFalse bool
	for _, edges := range c.Edges {
		for _, e := range edges {
			if e.Kind == cfg.EdgeTrue {
				sawTrue = true
			}
			if e.Kind == cfg.EdgeFalse {
				sawFalse = true
			}
		}
	}
	if !sawTrue || !sawFalse {
		t.Errorf("expected both an EdgeTrue and an EdgeFalse, got sawTrue=%v sawFalse=%v", sawTrue, sawFalse)
	}
}

func TestWhileLoopProducesABackEdge(t *testing.T) {
	c := mustBuild(t, `
		let i = 0;
		while (i < 10) {
			i = i + 1;
		}
	`)
	if len(c.BackEdges) == 0 {
		t.Fatalf("expected at least one back-edge for a while loop")
	}
	for e := range c.BackEdges {
		if !c.Dominates(e.To, e.From) {
			t.Errorf("back-edge target %d should dominate its source %d", e.To, e.From)
		}
	}
}

func TestReturnStatementIsAnExit(t *testing.T) {
	const src = `
		function f(x) {
			if (x) {
				return 1;
			}
			return 2;
		}
	`
	prog, diags := parser.Parse(src)
	if len(diags) > 0 {
		t.Fatalf("parse failed: %v", diags)
	}
	fs, ok := prog.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("expected a *ast.FunctionStatement, got %T", prog.Statements[0])
	}
	fc := cfg.BuildFunction(fs)
	if len(fc.Exits) < 2 {
		t.Errorf("expected at least 2 exit blocks (one per return), got %d", len(fc.Exits))
	}
	for _, id := range fc.Exits {
		if fc.Blocks[id].Term.Kind != cfg.TermReturn {
			t.Errorf("exit block %d should terminate in TermReturn, got %v", id, fc.Blocks[id].Term.Kind)
		}
	}
}
