package layout

import "github.com/argviz/argviz/pkg/arg"

// Route computes an orthogonal polyline for every edge, given fixed node
// positions. Each path has at most one bend.
//
// Aligned endpoints (equal x or equal rank) route as a straight 2-point
// path. Otherwise the bend orientation is chosen by, in order: target is a
// sample or has a single parent, then source has a single child (both
// force horizontal-first), then a greedy comparison of crossing counts
// against the already-routed paths, where upward-pointing edges break ties
// horizontal-first.
//
// The result is keyed by edge ordinal, matching g.Edge. Routing is greedy
// and deterministic, not globally optimal.
func Route(g *arg.Graph, c Canvas) (map[int]Path, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	paths := make(map[int]Path, g.EdgeCount())
	var routed []Path
	for ord, e := range g.Edges() {
		src, ok := g.Node(e.Source)
		if !ok {
			continue
		}
		tgt, ok := g.Node(e.Target)
		if !ok {
			continue
		}
		p := routeEdge(g, e, src, tgt, routed)
		paths[ord] = p
		routed = append(routed, p)
	}
	return paths, nil
}

func routeEdge(g *arg.Graph, e arg.Edge, src, tgt *arg.Node, routed []Path) Path {
	s := Point{X: src.X, Y: src.Y}
	t := Point{X: tgt.X, Y: tgt.Y}

	if src.X == tgt.X || src.Rank == tgt.Rank {
		return Path{s, t}
	}

	horizontal := Path{s, {X: t.X, Y: s.Y}, t}
	vertical := Path{s, {X: s.X, Y: t.Y}, t}

	if tgt.IsSample || len(g.Parents(tgt.ID)) == 1 {
		return horizontal
	}
	if len(g.Children(src.ID)) == 1 {
		return horizontal
	}

	hCross := crossingsAgainst(horizontal, routed)
	vCross := crossingsAgainst(vertical, routed)
	switch {
	case hCross < vCross:
		return horizontal
	case vCross < hCross:
		return vertical
	default:
		// Tie. Upward-pointing edges (target drawn above the source)
		// prefer horizontal-first.
		if t.Y < s.Y {
			return horizontal
		}
		return vertical
	}
}

func crossingsAgainst(candidate Path, routed []Path) int {
	count := 0
	for _, p := range routed {
		count += pathsIntersect(candidate, p)
	}
	return count
}
