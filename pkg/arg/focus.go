package arg

// FocusSubgraph returns a new graph containing the focus node and every node
// reachable from it through parent→child edges (its descendants), with the
// edges among the kept nodes. The host UI calls this from the right-click
// navigation callback.
func FocusSubgraph(g *Graph, focus int) (*Graph, error) {
	return focusClosure(g, focus, false)
}

// FocusAncestors returns a new graph containing the focus node and every
// node that can reach it (its ancestors), with the edges among the kept
// nodes.
func FocusAncestors(g *Graph, focus int) (*Graph, error) {
	return focusClosure(g, focus, true)
}

func focusClosure(g *Graph, focus int, up bool) (*Graph, error) {
	if _, ok := g.Node(focus); !ok {
		return nil, ErrUnknownNode
	}

	keep := map[int]bool{focus: true}
	queue := []int{focus}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next := g.Children(cur)
		if up {
			next = g.Parents(cur)
		}
		for _, id := range next {
			if !keep[id] {
				keep[id] = true
				queue = append(queue, id)
			}
		}
	}

	out := New()
	for _, n := range g.Nodes() {
		if keep[n.ID] {
			_ = out.AddNode(*n)
		}
	}
	for _, e := range g.Edges() {
		if keep[e.Source] && keep[e.Target] {
			_ = out.AddEdge(e)
		}
	}
	return out, nil
}
