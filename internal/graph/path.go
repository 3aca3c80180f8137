package graph

// FindPath returns one shortest call chain from any entrypoint to target,
// as an ordered ID sequence ending at target. Returns nil if no path
// exists. If the target itself is an entrypoint, the chain is just the
// target.
func (g *CallGraph) FindPath(targetID string) []string {
	if _, ok := g.nodes[targetID]; !ok {
		return nil
	}

	type queueItem struct {
		id string
	}
	parent := make(map[string]string, len(g.nodes))
	var queue []queueItem

	for _, id := range g.order {
		if g.nodes[id].IsEntrypoint {
			parent[id] = id // roots are their own parent
			queue = append(queue, queueItem{id})
			if id == targetID {
				return []string{id}
			}
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		node := g.nodes[item.id]
		if node == nil {
			continue
		}
		for _, calleeID := range node.Calls {
			if _, seen := parent[calleeID]; seen {
				continue
			}
			if _, ok := g.nodes[calleeID]; !ok {
				continue // dead-end edge
			}
			parent[calleeID] = item.id
			if calleeID == targetID {
				return reconstructPath(parent, calleeID)
			}
			queue = append(queue, queueItem{calleeID})
		}
	}
	return nil
}

func reconstructPath(parent map[string]string, end string) []string {
	var rev []string
	for id := end; ; id = parent[id] {
		rev = append(rev, id)
		if parent[id] == id {
			break
		}
	}
	path := make([]string, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}
