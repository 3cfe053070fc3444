package graph

// reachable reports whether target can be reached from start by following
// the committed adjacency list, plus any overlay edges not yet committed.
// Iterative depth-first search with early exit; no transitive closure is
// cached, so each query is O(V+E) and the answer is always current.
func (g *Graph) reachable(start, target Index, overlay map[Index][]Index) bool {
	if start == target {
		return true
	}
	visited := make([]bool, len(g.adj))
	stack := []Index{start}
	visited[start] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.adj[n] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
		for _, next := range overlay[n] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}
