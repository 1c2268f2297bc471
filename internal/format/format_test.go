package format_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/funvibe/flowtype/internal/format"
	"github.com/funvibe/flowtype/internal/solver"
	"github.com/funvibe/flowtype/internal/token"
)

func sampleResult() solver.Result {
	return solver.Result{
		Annotations: []solver.TypeAnnotation{
			{
				Start: token.Position{Offset: 4, Line: 1, Column: 5}, End: token.Position{Offset: 5, Line: 1, Column: 6},
				Line: 1, Column: 5, NodeType: "Identifier", Name: "x", TypeString: "number(1)", Kind: solver.KindVariable,
			},
			{
				Start: token.Position{Offset: 20, Line: 2, Column: 1}, End: token.Position{Offset: 22, Line: 2, Column: 3},
				Line: 2, Column: 1, NodeType: "FunctionStatement", Name: "id", TypeString: "(x: number) => number", Kind: solver.KindFunction,
			},
		},
		Errors: []solver.InferenceError{
			{Message: "cannot assign to constant 'x'", Line: 3, Column: 2, NodeType: "Identifier"},
		},
		Warnings: []solver.Warning{
			{Message: "unreachable code in block 4", Line: 5, Column: 1},
		},
		Blocks: 3, Edges: 2, BackEdges: 0, Functions: 2, Iterations: 7, Converged: true,
	}
}

func TestReportRendersAnnotationsErrorsAndWarnings(t *testing.T) {
	out := format.NewReport(&strings.Builder{}, boolPtr(false)).Render("sample.js", sampleResult(), "1.2ms", 42)
	for _, want := range []string{
		"sample.js",
		"x: number(1)",
		"id: (x: number) => number",
		"error: cannot assign to constant 'x'",
		"warning: unreachable code in block 4",
		"analyzed 2 functions",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report output missing %q, got:\n%s", want, out)
		}
	}
}

func TestReportSingularPluralization(t *testing.T) {
	res := sampleResult()
	res.Functions = 1
	res.Blocks = 1
	out := format.NewReport(&strings.Builder{}, boolPtr(false)).Render("one.js", res, "0.1ms", 10)
	if !strings.Contains(out, "1 function,") {
		t.Errorf("expected singular 'function', got:\n%s", out)
	}
	if !strings.Contains(out, "1 block,") {
		t.Errorf("expected singular 'block', got:\n%s", out)
	}
}

func TestDeclOnlyRendersTopLevelKinds(t *testing.T) {
	out := format.Decl(sampleResult())
	if !strings.Contains(out, "declare let x: number(1);") {
		t.Errorf("expected a declare-let line, got:\n%s", out)
	}
	if !strings.Contains(out, "declare function id(x: number): number;") {
		t.Errorf("expected a declare-function line with arrow stripped, got:\n%s", out)
	}
}

func TestJSONRoundTripsCFGStats(t *testing.T) {
	out, err := format.JSON(sampleResult(), true)
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decoding JSON output: %v", err)
	}
	stats, ok := decoded["cfg_stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected a cfg_stats object, got %v", decoded["cfg_stats"])
	}
	if int(stats["blocks"].(float64)) != 3 {
		t.Errorf("cfg_stats.blocks = %v, want 3", stats["blocks"])
	}
	if int(stats["iterations"].(float64)) != 7 {
		t.Errorf("cfg_stats.iterations = %v, want 7", stats["iterations"])
	}
	errs, ok := decoded["errors"].([]interface{})
	if !ok || len(errs) != 1 {
		t.Fatalf("expected exactly one error in JSON output, got %v", decoded["errors"])
	}
}

func TestInlineSplicesTypeCommentsWithoutCorruptingOffsets(t *testing.T) {
	source := "let x = 1;\nfunction id(x) { return x; }\n"
	res := solver.Result{
		Annotations: []solver.TypeAnnotation{
			{Start: token.Position{Offset: 4}, End: token.Position{Offset: 5}, NodeType: "Identifier", Name: "x", TypeString: "number(1)", Kind: solver.KindVariable},
			{Start: token.Position{Offset: 20}, End: token.Position{Offset: 22}, NodeType: "FunctionStatement", Name: "id", TypeString: "(x: number) => number", Kind: solver.KindFunction},
		},
	}
	out := format.Inline(source, res)
	if !strings.Contains(out, "x /* : number(1) */ = 1;") {
		t.Errorf("expected a splice after 'x' in the let declaration, got:\n%s", out)
	}
	if !strings.Contains(out, "id /* : (x: number) => number */(x)") {
		t.Errorf("expected a splice after the function name, got:\n%s", out)
	}
}

func boolPtr(b bool) *bool { return &b }
