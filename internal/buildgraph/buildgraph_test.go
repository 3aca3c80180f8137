package buildgraph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/callsight/callsight/internal/graph"
)

// fakeRunner serves canned query results keyed by expression.
type fakeRunner struct {
	targets  []string
	kindFail bool
	allFail  bool
	deps     map[string][]string
	depFail  map[string]bool
	queries  []string
}

func (f *fakeRunner) Query(_ context.Context, expr string, kindOutput bool) ([]string, error) {
	f.queries = append(f.queries, expr)
	if strings.HasPrefix(expr, "deps(") {
		label := strings.TrimSuffix(strings.TrimPrefix(expr, "deps("), ", 1)")
		if f.depFail[label] {
			return nil, errors.New("query failed")
		}
		return append([]string{label}, f.deps[label]...), nil
	}
	if f.allFail {
		return nil, errors.New("bazel not found")
	}
	if kindOutput && f.kindFail {
		return nil, errors.New("label_kind unsupported")
	}
	if kindOutput {
		return f.targets, nil
	}
	// Plain output: strip kind annotations.
	var out []string
	for _, line := range f.targets {
		fields := strings.Fields(line)
		out = append(out, fields[len(fields)-1])
	}
	return out, nil
}

func scenarioRunner() *fakeRunner {
	return &fakeRunner{
		targets: []string{
			"go_binary rule //app:main",
			"go_library rule //lib:foo",
			"go_library rule //lib:bar",
			"go_library rule //unused:lib",
		},
		deps: map[string][]string{
			"//app:main": {"//lib:foo"},
			"//lib:foo":  {"//lib:bar"},
		},
	}
}

func TestAnalyzeTargetGraph(t *testing.T) {
	a := New(scenarioRunner(), nil)
	g, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	reachable, unreachable := collectReachable(g)
	wantReachable := []string{"//app:main", "//lib:bar", "//lib:foo"}
	if fmt.Sprint(reachable) != fmt.Sprint(wantReachable) {
		t.Errorf("reachable = %v, want %v", reachable, wantReachable)
	}
	if fmt.Sprint(unreachable) != fmt.Sprint([]string{"//unused:lib"}) {
		t.Errorf("unreachable = %v", unreachable)
	}
}

func collectReachable(g *graph.CallGraph) (reachable, unreachable []string) {
	for _, id := range g.IDs() {
		if g.Node(id).Reachable {
			reachable = append(reachable, id)
		} else {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(reachable)
	sort.Strings(unreachable)
	return
}

func TestAnalyzeChangedFilesNarrowing(t *testing.T) {
	r := scenarioRunner()
	a := New(r, nil)
	if _, err := a.Analyze(context.Background(), []string{"lib/foo.go"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.Contains(r.queries[0], "rdeps(//..., set(lib/foo.go))") {
		t.Errorf("first query = %q, want rdeps narrowing", r.queries[0])
	}
}

func TestAnalyzeEnumerationFailureIsFatal(t *testing.T) {
	r := scenarioRunner()
	r.allFail = true
	a := New(r, nil)
	if _, err := a.Analyze(context.Background(), nil); err == nil {
		t.Fatal("expected error when target enumeration fails")
	}
}

func TestAnalyzeKindQueryFallsBackToPlain(t *testing.T) {
	r := scenarioRunner()
	r.kindFail = true
	a := New(r, nil)
	g, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// Without rule kinds, //app:main is classified by its name pattern.
	node := g.Node("//app:main")
	if node == nil || !node.IsEntrypoint {
		t.Error("name-pattern fallback did not classify //app:main")
	}
}

func TestAnalyzePerTargetFailureAssumesNoDeps(t *testing.T) {
	r := scenarioRunner()
	r.depFail = map[string]bool{"//lib:foo": true}
	a := New(r, nil)
	g, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	// //lib:foo contributes no edges, so //lib:bar becomes unreachable.
	if g.Node("//lib:bar").Reachable {
		t.Error("//lib:bar reachable despite failed dep query for its only parent")
	}
	if !g.Node("//lib:foo").Reachable {
		t.Error("//lib:foo must stay reachable from //app:main")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		target Target
		want   graph.EntrypointKind
		ok     bool
	}{
		{Target{Label: "//app:main", Kind: "go_binary"}, graph.EntrypointTarget, true},
		{Target{Label: "//lib:foo_test", Kind: "go_test"}, graph.EntrypointTest, true},
		{Target{Label: "//lib:foo", Kind: "go_library"}, "", false},
		{Target{Label: "//app:main"}, graph.EntrypointTarget, true},
		{Target{Label: "//lib:parser_test"}, graph.EntrypointTest, true},
		{Target{Label: "//lib:parser"}, "", false},
	}
	for _, tt := range tests {
		kind, ok := classify(tt.target)
		if kind != tt.want || ok != tt.ok {
			t.Errorf("classify(%+v) = (%q, %v), want (%q, %v)", tt.target, kind, ok, tt.want, tt.ok)
		}
	}
}
