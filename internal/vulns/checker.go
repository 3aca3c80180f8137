package vulns

import (
	"strings"

	"github.com/callsight/callsight/internal/graph"
)

// Check produces a per-vulnerability verdict against a traversed graph.
// Name matching is deliberately lenient: advisory function names rarely
// carry the graph's full qualified form, so a case-insensitive substring
// match in either direction is accepted. A reachable verdict includes one
// example call chain from an entrypoint to the matched node.
func Check(g *graph.CallGraph, list []Vulnerability) []graph.VulnerabilityReachability {
	results := make([]graph.VulnerabilityReachability, 0, len(list))

	for _, v := range list {
		res := graph.VulnerabilityReachability{
			ID:        v.ID,
			Package:   v.Package,
			Version:   v.Version,
			Functions: v.Functions,
		}

		for _, name := range v.Functions {
			id, ok := matchFunction(g, name)
			if !ok {
				continue
			}
			node := g.Node(id)
			if !node.Reachable {
				continue
			}
			res.Reachable = true
			res.CallChain = g.FindPath(id)
			break
		}
		results = append(results, res)
	}
	return results
}

// matchFunction finds the graph node for an advisory function name.
// Exact simple-name matches win over substring matches; among equal
// matches, reachable nodes win, then insertion order decides.
func matchFunction(g *graph.CallGraph, name string) (string, bool) {
	lowered := strings.ToLower(name)

	var exact, loose string
	for _, id := range g.IDs() {
		node := g.Node(id)
		nodeName := strings.ToLower(node.Name)

		if nodeName == lowered || strings.ToLower(id) == lowered {
			if node.Reachable {
				return id, true
			}
			if exact == "" {
				exact = id
			}
			continue
		}
		if strings.Contains(strings.ToLower(id), lowered) || (nodeName != "" && strings.Contains(lowered, nodeName)) {
			if loose == "" || (g.Node(loose) != nil && !g.Node(loose).Reachable && node.Reachable) {
				loose = id
			}
		}
	}

	if exact != "" {
		return exact, true
	}
	if loose != "" {
		return loose, true
	}
	return "", false
}
