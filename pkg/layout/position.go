package layout

import (
	"sort"

	"github.com/argviz/argviz/pkg/arg"
)

// virtualRoot is the group key for nodes whose anchor has not been placed
// yet. The group sorts before every real anchor.
const virtualRoot = -1

// Position assigns x and y coordinates to every node, producing a
// deterministic, crossing-aware starting layout.
//
// Samples are placed first, spread evenly across the padded width, ordered
// so well-connected samples land centrally. Each higher rank is then placed
// bottom-to-top: nodes group by their placed anchor (the primary child),
// groups line up left-to-right by anchor x, and each node interpolates
// within its group's x-interval, clamped to its descendant-sample x-range
// when one exists.
//
// Ranks must be assigned before calling. The index must wrap g.
func Position(g *arg.Graph, idx *arg.Index, c Canvas) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if g.NodeCount() == 0 {
		return nil
	}
	maxRank := arg.MaxRank(g)
	if maxRank == 0 && !allSameRankValid(g) {
		return ErrUnrankedGraph
	}

	placeSamples(g, c, maxRank)
	placed := make(map[int]bool, g.NodeCount())
	for _, s := range g.Samples() {
		placed[s.ID] = true
	}

	for rank := 0; rank <= maxRank; rank++ {
		var pending []*arg.Node
		for _, n := range arg.NodesInRank(g, rank) {
			n.Y = c.RankY(rank, maxRank)
			if !placed[n.ID] {
				pending = append(pending, n)
			}
		}
		if len(pending) == 0 {
			continue
		}
		placeRank(g, idx, c, pending, placed)
		for _, n := range pending {
			placed[n.ID] = true
		}
	}

	if maxRank > 0 {
		untangleRanks(g, idx, maxRank)
	}
	return nil
}

// allSameRankValid reports whether a rank of zero for every node is the
// legitimate result of rank assignment (all nodes share one time) rather
// than ranks never having been assigned. A graph spanning multiple times
// with all ranks zero was never ranked.
func allSameRankValid(g *arg.Graph) bool {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return true
	}
	t := nodes[0].Time
	for _, n := range nodes[1:] {
		if n.Time != t {
			return false
		}
	}
	return true
}

// placeSamples spreads the samples evenly across the padded width. Samples
// are sorted by descending degree and dealt center-outward, alternating
// sides, so heavily connected samples end up in the middle where their
// ancestors have room.
func placeSamples(g *arg.Graph, c Canvas, maxRank int) {
	samples := g.Samples()
	if len(samples) == 0 {
		return
	}

	byDegree := make([]*arg.Node, len(samples))
	copy(byDegree, samples)
	sort.SliceStable(byDegree, func(i, j int) bool {
		di, dj := g.Degree(byDegree[i].ID), g.Degree(byDegree[j].ID)
		if di != dj {
			return di > dj
		}
		return byDegree[i].ID < byDegree[j].ID
	})

	// Deal into slots center-outward: highest degree takes the middle
	// slot, the next two flank it, and so on.
	slots := make([]*arg.Node, len(byDegree))
	center := (len(slots) - 1) / 2
	for k, n := range byDegree {
		step := (k + 1) / 2
		slot := center - step
		if k%2 == 1 {
			slot = center + step
		}
		slots[slot] = n
	}

	pad := c.PadX()
	spacing := 0.0
	if len(slots) > 1 {
		spacing = c.UsableWidth() / float64(len(slots)-1)
	} else {
		pad = c.Width / 2
	}
	for i, n := range slots {
		n.X = pad + float64(i)*spacing
		n.Y = c.RankY(n.Rank, maxRank)
	}
}

// placeRank positions one rank's unplaced nodes. Nodes group by anchor,
// groups order left-to-right by anchor x with the virtual-root group
// leading, and each group receives an x-interval proportional to its size.
func placeRank(g *arg.Graph, idx *arg.Index, c Canvas, pending []*arg.Node, placed map[int]bool) {
	groups := map[int][]*arg.Node{}
	anchorX := map[int]float64{}
	for _, n := range pending {
		key := virtualRoot
		if anchor, ok := idx.PrimaryChild(n.ID); ok && placed[anchor] {
			key = anchor
			if a, ok := g.Node(anchor); ok {
				anchorX[anchor] = a.X
			}
		}
		groups[key] = append(groups[key], n)
	}

	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := keys[i], keys[j]
		if ki == virtualRoot {
			return true
		}
		if kj == virtualRoot {
			return false
		}
		if anchorX[ki] != anchorX[kj] {
			return anchorX[ki] < anchorX[kj]
		}
		return ki < kj
	})

	// Nodes with more descendant samples sort first inside their group so
	// broad subtrees claim the group's leading positions.
	for _, members := range groups {
		sort.SliceStable(members, func(i, j int) bool {
			ci := len(idx.DescendantSamples(members[i].ID))
			cj := len(idx.DescendantSamples(members[j].ID))
			if ci != cj {
				return ci > cj
			}
			return members[i].ID < members[j].ID
		})
	}

	total := len(pending)
	usable := c.UsableWidth()
	consumed := 0
	for _, key := range keys {
		members := groups[key]
		groupStart := c.PadX() + usable*float64(consumed)/float64(total)
		width := usable * float64(len(members)) / float64(total)
		for i, n := range members {
			frac := (float64(i) + 0.5) / float64(len(members))
			x := groupStart + width*frac
			if min, max, ok := idx.DescendantXRange(n.ID); ok {
				x = clamp(x, min, max)
			}
			n.X = c.ClampX(x)
		}
		consumed += len(members)
	}
}

// untangleRanks sweeps each internal rank once, left to right, swapping
// the x positions of adjacent non-sample nodes whenever the swap keeps
// both nodes inside their descendant x-ranges and strictly lowers the
// crossing count against the neighboring ranks.
func untangleRanks(g *arg.Graph, idx *arg.Index, maxRank int) {
	order := make([][]int, maxRank+1)
	for rank := 0; rank <= maxRank; rank++ {
		nodes := arg.NodesInRank(g, rank)
		sort.Slice(nodes, func(i, j int) bool {
			if nodes[i].X != nodes[j].X {
				return nodes[i].X < nodes[j].X
			}
			return nodes[i].ID < nodes[j].ID
		})
		ids := make([]int, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID
		}
		order[rank] = ids
	}

	for rank := 1; rank <= maxRank; rank++ {
		ids := order[rank]
		for i := 0; i+1 < len(ids); i++ {
			a, _ := g.Node(ids[i])
			b, _ := g.Node(ids[i+1])
			if a == nil || b == nil || a.IsSample || b.IsSample {
				continue
			}
			if !withinDescendantRange(idx, a.ID, b.X) || !withinDescendantRange(idx, b.ID, a.X) {
				continue
			}
			before := layerScore(g, order, rank, maxRank)
			a.X, b.X = b.X, a.X
			ids[i], ids[i+1] = ids[i+1], ids[i]
			if layerScore(g, order, rank, maxRank) >= before {
				a.X, b.X = b.X, a.X
				ids[i], ids[i+1] = ids[i+1], ids[i]
			}
		}
	}
}

// layerScore sums the layer crossings between a rank and its neighbors.
func layerScore(g *arg.Graph, order [][]int, rank, maxRank int) int {
	score := CountLayerCrossings(g, order[rank], order[rank-1])
	if rank < maxRank {
		score += CountLayerCrossings(g, order[rank+1], order[rank])
	}
	return score
}

// withinDescendantRange reports whether x falls inside the node's
// descendant-sample x-range. Nodes without a range are unconstrained.
func withinDescendantRange(idx *arg.Index, id int, x float64) bool {
	min, max, ok := idx.DescendantXRange(id)
	if !ok {
		return true
	}
	return x >= min && x <= max
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Radius returns the render radius for a node. Combined nodes draw larger
// than plain internals, samples larger still than internals.
func Radius(n *arg.Node) float64 {
	switch {
	case n.Combined:
		return combinedRadius
	case n.IsSample:
		return sampleRadius
	default:
		return nodeRadius
	}
}
