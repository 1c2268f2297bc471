package solver_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/funvibe/flowtype/internal/parser"
	"github.com/funvibe/flowtype/internal/solver"
)

// annotationSummary is the subset of a TypeAnnotation worth diffing in a
// fixture test; go-cmp over the full TypeAnnotation would walk into the
// types.Type interface's unexported fields, so tests compare this
// flattened, exported view instead.
type annotationSummary struct {
	Name string
	Kind string
	Type string
}

func summarize(anns []solver.TypeAnnotation) []annotationSummary {
	out := make([]annotationSummary, 0, len(anns))
	for _, a := range anns {
		if a.Name == "" {
			continue
		}
		out = append(out, annotationSummary{Name: a.Name, Kind: a.Kind.String(), Type: a.TypeString})
	}
	return out
}

// fixture archives bundle a scenario's source alongside the declaration
// annotations it should produce, in the same txtar multi-section format
// golang.org/x/tools uses for its own test corpora: one physical blob
// instead of scattering a source string and its expectation across
// separate literals.
const narrowingFixture = `
-- source.js --
function describe(x) {
	if (typeof x === "string") {
		return x;
	}
	return 0;
}
describe("a");
-- want.txt --
describe function
`

func TestNarrowingFixtureFromTxtarArchive(t *testing.T) {
	arc := txtar.Parse([]byte(narrowingFixture))
	var source, want string
	for _, f := range arc.Files {
		switch f.Name {
		case "source.js":
			source = string(f.Data)
		case "want.txt":
			want = string(f.Data)
		}
	}
	if source == "" {
		t.Fatalf("fixture archive missing source.js section")
	}

	prog, diags := parser.Parse(source)
	if len(diags) != 0 {
		t.Fatalf("parse failed: %v", diags)
	}
	res := solver.Infer(prog)
	got := summarize(res.Annotations)

	for _, line := range strings.Split(strings.TrimSpace(want), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		wantName, wantKind := fields[0], fields[1]
		found := false
		for _, a := range got {
			if a.Name == wantName && a.Kind == wantKind {
				found = true
			}
		}
		if !found {
			t.Errorf("want.txt expects a %s annotation named %q, got %+v", wantKind, wantName, got)
		}
	}
}

// TestAnnotationSummaryDiffIsStable exercises go-cmp the way the rest of
// the pack's own test suites do: diffing two structurally equal summaries
// must report no difference, and a changed field must produce a
// non-empty diff.
func TestAnnotationSummaryDiffIsStable(t *testing.T) {
	a := annotationSummary{Name: "x", Kind: "variable", Type: "number(1)"}
	b := annotationSummary{Name: "x", Kind: "variable", Type: "number(1)"}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("expected no diff between structurally equal summaries, got:\n%s", diff)
	}
	c := annotationSummary{Name: "x", Kind: "variable", Type: "string(\"a\")"}
	if diff := cmp.Diff(a, c); diff == "" {
		t.Errorf("expected a diff when Type differs")
	}
}
