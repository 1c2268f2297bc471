package solver_test

import (
	"strings"
	"testing"

	"github.com/funvibe/flowtype/internal/parser"
	"github.com/funvibe/flowtype/internal/solver"
	"github.com/funvibe/flowtype/internal/types"
)

func mustInfer(t *testing.T, src string) solver.Result {
	t.Helper()
	prog, diags := parser.Parse(src)
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.Error())
		}
		t.Fatalf("parse failed: %s", strings.Join(msgs, "; "))
	}
	return solver.Infer(prog)
}

func findAnnotation(res solver.Result, name string, kind solver.AnnotationKind) (solver.TypeAnnotation, bool) {
	for _, a := range res.Annotations {
		if a.Name == name && a.Kind == kind {
			return a, true
		}
	}
	return solver.TypeAnnotation{}, false
}

// Assigning to a `const` binding is a bound violation, reported as an
// InferenceError, not silently accepted.
func TestConstViolationReportsError(t *testing.T) {
	res := mustInfer(t, `
		const x = 1;
		x = 2;
	`)
	found := false
	for _, e := range res.Errors {
		if e.Message == "cannot assign to constant 'x'" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a const-violation error, got errors=%v", res.Errors)
	}
}

// A function's parameter type is the join of every observed call-site
// argument type, and the declared function annotation
// reflects that merged signature once the outer fixed point settles.
func TestCallSiteAggregationMergesArgumentTypes(t *testing.T) {
	res := mustInfer(t, `
		function id(x) { return x; }
		id(1);
		id("a");
	`)
	a, ok := findAnnotation(res, "id", solver.KindFunction)
	if !ok {
		t.Fatalf("expected a function annotation for 'id', got annotations=%v", res.Annotations)
	}
	if !strings.Contains(a.TypeString, "number") || !strings.Contains(a.TypeString, "string") {
		t.Errorf("id's merged parameter type should mention both number and string, got %s", a.TypeString)
	}
}

// A function with a single call site keeps that call's argument type
// without ever widening to a union.
func TestCallSiteAggregationSingleCallSite(t *testing.T) {
	res := mustInfer(t, `
		function double(n) { return n; }
		double(1);
	`)
	a, ok := findAnnotation(res, "double", solver.KindFunction)
	if !ok {
		t.Fatalf("expected a function annotation for 'double', got annotations=%v", res.Annotations)
	}
	if strings.Contains(a.TypeString, "|") {
		t.Errorf("single-call-site parameter should not be a union, got %s", a.TypeString)
	}
}

// An uncalled function's parameter type falls back to top rather than
// bottom.
func TestUncalledFunctionParameterIsTop(t *testing.T) {
	res := mustInfer(t, `
		function never(x) { return x; }
	`)
	a, ok := findAnnotation(res, "never", solver.KindFunction)
	if !ok {
		t.Fatalf("expected a function annotation for 'never', got annotations=%v", res.Annotations)
	}
	if !strings.Contains(a.TypeString, "any(uncalled-parameter)") {
		t.Errorf("uncalled function's parameter should widen to any(uncalled-parameter), got %s", a.TypeString)
	}
}

// Reassigning a `let` binding to a different
// primitive kind widens its declared type to a union at the join point:
// the read of x after the if sees both kinds.
func TestLetReassignmentWidensDeclaredType(t *testing.T) {
	res := mustInfer(t, `
		let x = 1;
		if (true) {
			x = "a";
		}
		x;
	`)
	found := false
	for _, a := range res.Annotations {
		if a.Name == "x" && strings.Contains(a.TypeString, "number") && strings.Contains(a.TypeString, "string") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an annotation for 'x' mentioning both number and string, got %v", res.Annotations)
	}
}

// A class declaration is recorded with a KindClass annotation carrying
// its instance/static shape, not just its methods individually.
func TestClassDeclarationIsAnnotated(t *testing.T) {
	res := mustInfer(t, `
		class Point {
			constructor(x) {
				this.x = x;
			}
		}
	`)
	if _, ok := findAnnotation(res, "Point", solver.KindClass); !ok {
		t.Fatalf("expected a class annotation for 'Point', got annotations=%v", res.Annotations)
	}
}

// cfg_stats must reflect at least the top-level program's own
// control flow even when no user function is ever called.
func TestCFGStatsCountTopLevelBlock(t *testing.T) {
	res := mustInfer(t, `let x = 1;`)
	if res.Blocks == 0 {
		t.Errorf("expected at least one block counted, got 0")
	}
	if res.Functions == 0 {
		t.Errorf("expected Functions to count at least the top-level program, got 0")
	}
}

// Divergence: when MaxIterations is forced absurdly low, the solver stops
// early and surfaces a warning rather than an error.
func TestDivergenceWarningOnLowIterationCap(t *testing.T) {
	old := solver.MaxIterations
	solver.MaxIterations = 1
	defer func() { solver.MaxIterations = old }()

	res := mustInfer(t, `
		let i = 0;
		while (i < 10) {
			i = i + 1;
		}
	`)
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w.Message, "did not converge") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a divergence warning with MaxIterations=1, got warnings=%v", res.Warnings)
	}
}

// A function reading an enclosing binding carries that name in its
// capture set.
func TestFunctionTypeRecordsCaptures(t *testing.T) {
	res := mustInfer(t, `
		let y = 1;
		function readsOuter() { return y; }
		readsOuter();
	`)
	a, ok := findAnnotation(res, "readsOuter", solver.KindFunction)
	if !ok {
		t.Fatalf("expected a function annotation for 'readsOuter', got annotations=%v", res.Annotations)
	}
	fn, ok := a.Type.(types.FunctionType)
	if !ok {
		t.Fatalf("expected the annotation to carry a FunctionType, got %T", a.Type)
	}
	if !fn.Captures.Contains("y") {
		t.Errorf("capture set should contain 'y', got %v", fn.Captures)
	}
	if fn.Captures.Contains("readsOuter") {
		t.Errorf("a function's own hoisted name is not a capture, got %v", fn.Captures)
	}
}

// A catch parameter is bound inside its handler block rather than
// reported as an undeclared identifier.
func TestCatchParameterIsVisibleInHandler(t *testing.T) {
	res := mustInfer(t, `
		function boom() { throw 1; }
		try {
			boom();
		} catch (e) {
			let msg = e;
		}
	`)
	for _, err := range res.Errors {
		if strings.Contains(err.Message, "'e'") {
			t.Fatalf("catch parameter should be bound in its handler, got error %q", err.Message)
		}
	}
}

// A constructor's parameter types come from aggregation over `new`
// expressions, the same way plain calls feed plain functions.
func TestConstructorAggregatesNewArguments(t *testing.T) {
	res := mustInfer(t, `
		class Point {
			constructor(x) {
				this.x = x;
			}
		}
		const p = new Point(1);
	`)
	a, ok := findAnnotation(res, "constructor", solver.KindMethod)
	if !ok {
		t.Fatalf("expected a method annotation for 'constructor', got annotations=%v", res.Annotations)
	}
	if !strings.Contains(a.TypeString, "number") {
		t.Errorf("constructor parameter should reflect the new-expression argument, got %s", a.TypeString)
	}
}
