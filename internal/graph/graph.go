// Package graph holds the mutable call graph built during one analysis run
// and the traversal that classifies functions as reachable or not.
//
// Nodes live in an arena-style ID→node map; call edges are plain ID strings,
// so cyclic call graphs carry no ownership cycles. The orchestrator owns one
// CallGraph exclusively for a run's lifetime; there is no internal locking.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/callsight/callsight/internal/lang"
)

// ErrNotFound is returned when an operation names a function ID that is not
// in the graph.
var ErrNotFound = errors.New("function not found")

// EntrypointKind classifies why a function is treated as externally invokable.
type EntrypointKind string

const (
	EntrypointMain    EntrypointKind = "main"
	EntrypointTest    EntrypointKind = "test"
	EntrypointHandler EntrypointKind = "handler"
	EntrypointJob     EntrypointKind = "job"
	EntrypointTarget  EntrypointKind = "build-target"
	EntrypointExport  EntrypointKind = "export"
)

// Entrypoint is a detector match: a function in a file, with the kind of
// detector that matched.
type Entrypoint struct {
	File     string
	Function string
	Kind     EntrypointKind
}

// FunctionNode is one function, method, or build target in the call graph.
// The ID is the stable identity: two nodes are the same function iff their
// IDs are equal.
type FunctionNode struct {
	ID       string
	Name     string
	File     string
	Line     int
	Column   int
	Language lang.Language

	Decorators []string

	IsEntrypoint   bool
	EntrypointKind EntrypointKind
	IsPublic       bool
	IsAsync        bool
	IsTest         bool
	// IsModuleScope marks the synthetic pseudo-function that owns a file's
	// top-level statements.
	IsModuleScope bool

	// Calls holds callee IDs in source order. Targets may be absent from the
	// graph (dead-end edges); traversal skips them.
	Calls []string

	// Reachable is set only by Reachability / MarkAllReachable.
	Reachable bool
}

// CallGraph owns the ID→node mapping. Single-writer during construction,
// read-mostly afterwards.
type CallGraph struct {
	nodes map[string]*FunctionNode
	// order preserves insertion order for deterministic reporting.
	order []string
}

// New creates an empty call graph.
func New() *CallGraph {
	return &CallGraph{nodes: make(map[string]*FunctionNode)}
}

// AddFunction inserts a node. The first definition of an ID wins; later
// inserts of the same ID are ignored so duplicate definitions across
// analysis passes never overwrite flags already set.
func (g *CallGraph) AddFunction(node *FunctionNode) {
	if node == nil || node.ID == "" {
		return
	}
	if _, exists := g.nodes[node.ID]; exists {
		return
	}
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
}

// AddCall appends callee to the caller's outgoing list. An unknown caller is
// recorded as a stub node rather than dropped: the edge may still matter once
// later passes define the caller's file.
func (g *CallGraph) AddCall(callerID, calleeID string) {
	if callerID == "" || calleeID == "" {
		return
	}
	caller, ok := g.nodes[callerID]
	if !ok {
		caller = &FunctionNode{ID: callerID, Name: callerID}
		g.nodes[callerID] = caller
		g.order = append(g.order, callerID)
	}
	caller.Calls = append(caller.Calls, calleeID)
}

// Node returns the node for an ID, or nil.
func (g *CallGraph) Node(id string) *FunctionNode {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *CallGraph) Len() int {
	return len(g.nodes)
}

// IDs returns all node IDs in insertion order.
func (g *CallGraph) IDs() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// MarkEntrypoint flags an existing node as an entrypoint.
func (g *CallGraph) MarkEntrypoint(id string, kind EntrypointKind) error {
	node, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("mark entrypoint %q: %w", id, ErrNotFound)
	}
	node.IsEntrypoint = true
	if node.EntrypointKind == "" {
		node.EntrypointKind = kind
	}
	return nil
}

// Entrypoints returns the IDs of all entrypoint nodes in insertion order.
func (g *CallGraph) Entrypoints() []string {
	var out []string
	for _, id := range g.order {
		if g.nodes[id].IsEntrypoint {
			out = append(out, id)
		}
	}
	return out
}

// MarkAllReachable is the conservative override: every node becomes
// reachable. Used when dynamic-code constructs make static resolution
// untrustworthy.
func (g *CallGraph) MarkAllReachable() {
	for _, node := range g.nodes {
		node.Reachable = true
	}
}

// Reachability marks every node on a call path from an entrypoint and
// returns the reachable and unreachable ID sets, each sorted.
//
// The traversal is an iterative depth-first walk with an explicit stack, so
// deep chains cannot exhaust goroutine stack space. A visited set makes
// cycles terminate with each node expanded exactly once; dead-end edges
// (IDs absent from the graph) end their branch. The result is independent
// of expansion order.
func (g *CallGraph) Reachability() (reachable, unreachable []string) {
	visited := make(map[string]bool, len(g.nodes))
	var stack []string

	for _, id := range g.order {
		if g.nodes[id].IsEntrypoint {
			stack = append(stack, id)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		node, ok := g.nodes[id]
		if !ok {
			continue // dead-end edge
		}
		visited[id] = true
		node.Reachable = true
		for i := len(node.Calls) - 1; i >= 0; i-- {
			if !visited[node.Calls[i]] {
				stack = append(stack, node.Calls[i])
			}
		}
	}

	for id, node := range g.nodes {
		if node.Reachable {
			reachable = append(reachable, id)
		} else {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(reachable)
	sort.Strings(unreachable)
	return reachable, unreachable
}
