package graph

import (
	"errors"
	"testing"
)

func addFunc(g *CallGraph, id string) {
	g.AddFunction(&FunctionNode{ID: id, Name: id})
}

func TestAddFunction_FirstDefinitionWins(t *testing.T) {
	g := New()
	g.AddFunction(&FunctionNode{ID: "a", Name: "a", Line: 1})
	g.AddFunction(&FunctionNode{ID: "a", Name: "a", Line: 99})

	if g.Len() != 1 {
		t.Fatalf("expected 1 node, got %d", g.Len())
	}
	if g.Node("a").Line != 1 {
		t.Errorf("second insert overwrote the first definition")
	}
}

func TestAddCall_UnknownCallerRecorded(t *testing.T) {
	g := New()
	g.AddCall("ghost", "target")

	caller := g.Node("ghost")
	if caller == nil {
		t.Fatal("unknown caller was dropped")
	}
	if len(caller.Calls) != 1 || caller.Calls[0] != "target" {
		t.Errorf("expected call edge to target, got %v", caller.Calls)
	}
}

func TestMarkEntrypoint_NotFound(t *testing.T) {
	g := New()
	err := g.MarkEntrypoint("missing", EntrypointMain)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReachability_EmptyGraph(t *testing.T) {
	g := New()
	reachable, unreachable := g.Reachability()
	if len(reachable) != 0 || len(unreachable) != 0 {
		t.Errorf("empty graph should yield empty sets, got %v / %v", reachable, unreachable)
	}
	report := g.BuildReport()
	if len(report.AllFunctions) != 0 || len(report.Entrypoints) != 0 {
		t.Errorf("empty graph should yield empty report")
	}
}

func TestReachability_MainCallsHelper(t *testing.T) {
	g := New()
	addFunc(g, "main")
	addFunc(g, "helper")
	addFunc(g, "unused")
	g.AddCall("main", "helper")
	if err := g.MarkEntrypoint("main", EntrypointMain); err != nil {
		t.Fatal(err)
	}

	reachable, unreachable := g.Reachability()

	wantReachable := []string{"helper", "main"}
	if len(reachable) != 2 || reachable[0] != wantReachable[0] || reachable[1] != wantReachable[1] {
		t.Errorf("reachable = %v, want %v", reachable, wantReachable)
	}
	if len(unreachable) != 1 || unreachable[0] != "unused" {
		t.Errorf("unreachable = %v, want [unused]", unreachable)
	}
}

func TestReachability_EntrypointsAlwaysReachable(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c"} {
		addFunc(g, id)
		if err := g.MarkEntrypoint(id, EntrypointTest); err != nil {
			t.Fatal(err)
		}
	}

	reachable, _ := g.Reachability()
	if len(reachable) != 3 {
		t.Errorf("every entrypoint must be reachable, got %v", reachable)
	}
}

func TestReachability_PartitionsAllNodes(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		addFunc(g, id)
	}
	g.AddCall("a", "b")
	g.AddCall("b", "c")
	g.AddCall("d", "e")
	_ = g.MarkEntrypoint("a", EntrypointMain)

	reachable, unreachable := g.Reachability()

	seen := make(map[string]int)
	for _, id := range reachable {
		seen[id]++
	}
	for _, id := range unreachable {
		seen[id]++
	}
	if len(seen) != g.Len() {
		t.Errorf("union of sets should cover all %d nodes, covered %d", g.Len(), len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("node %s appears %d times across the partition", id, count)
		}
	}
}

func TestReachability_CycleSafe(t *testing.T) {
	g := New()
	addFunc(g, "a")
	addFunc(g, "b")
	addFunc(g, "c")
	g.AddCall("a", "b")
	g.AddCall("b", "c")
	g.AddCall("c", "a") // cycle back to the root
	_ = g.MarkEntrypoint("a", EntrypointMain)

	reachable, unreachable := g.Reachability()
	if len(reachable) != 3 {
		t.Errorf("cycle nodes should each be reachable exactly once, got %v", reachable)
	}
	if len(unreachable) != 0 {
		t.Errorf("unexpected unreachable nodes %v", unreachable)
	}
}

func TestReachability_Idempotent(t *testing.T) {
	g := New()
	addFunc(g, "main")
	addFunc(g, "helper")
	g.AddCall("main", "helper")
	_ = g.MarkEntrypoint("main", EntrypointMain)

	first, _ := g.Reachability()
	second, _ := g.Reachability()

	if len(first) != len(second) {
		t.Fatalf("runs disagree: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("runs disagree at %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestReachability_DeadEndEdgeTerminatesBranch(t *testing.T) {
	g := New()
	addFunc(g, "main")
	g.AddCall("main", "external.library.call") // never defined
	_ = g.MarkEntrypoint("main", EntrypointMain)

	reachable, _ := g.Reachability()
	if len(reachable) != 1 || reachable[0] != "main" {
		t.Errorf("dead-end edge should not add nodes, got %v", reachable)
	}
}

func TestMarkAllReachable(t *testing.T) {
	g := New()
	addFunc(g, "a")
	addFunc(g, "b")

	g.MarkAllReachable()
	report := g.BuildReport()
	if len(report.Unreachable) != 0 {
		t.Errorf("conservative override left unreachable nodes: %v", report.Unreachable)
	}
	if len(report.Reachable) != 2 {
		t.Errorf("expected all nodes reachable, got %v", report.Reachable)
	}
}

func TestFindPath_ShortestChain(t *testing.T) {
	g := New()
	for _, id := range []string{"main", "a", "b", "helper"} {
		addFunc(g, id)
	}
	g.AddCall("main", "a")
	g.AddCall("a", "b")
	g.AddCall("b", "helper")
	g.AddCall("main", "helper") // direct shortcut
	_ = g.MarkEntrypoint("main", EntrypointMain)
	g.Reachability()

	path := g.FindPath("helper")
	if len(path) != 2 || path[0] != "main" || path[1] != "helper" {
		t.Errorf("expected shortest chain [main helper], got %v", path)
	}
}

func TestFindPath_NoPath(t *testing.T) {
	g := New()
	addFunc(g, "main")
	addFunc(g, "orphan")
	_ = g.MarkEntrypoint("main", EntrypointMain)

	if path := g.FindPath("orphan"); path != nil {
		t.Errorf("expected no path, got %v", path)
	}
	if path := g.FindPath("never-defined"); path != nil {
		t.Errorf("expected no path for unknown target, got %v", path)
	}
}

func TestFindPath_TargetIsEntrypoint(t *testing.T) {
	g := New()
	addFunc(g, "main")
	_ = g.MarkEntrypoint("main", EntrypointMain)

	path := g.FindPath("main")
	if len(path) != 1 || path[0] != "main" {
		t.Errorf("expected [main], got %v", path)
	}
}
