package insiders

// connectedComponents groups nodes linked by edges. It walks the graph with an
// explicit stack so adversarially deep inputs cannot exhaust the goroutine
// stack. Components follow the order of their first node in nodes, and members
// follow discovery order.
func connectedComponents(nodes []string, edges [][2]string) [][]string {
	adj := make(map[string][]string, len(nodes))
	for _, e := range edges {
		if e[0] == e[1] {
			continue
		}
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}

	visited := make(map[string]bool, len(nodes))
	var components [][]string

	for _, start := range nodes {
		if visited[start] {
			continue
		}
		visited[start] = true

		var component []string
		stack := []string{start}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, n)

			for _, next := range adj[n] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		components = append(components, component)
	}
	return components
}
