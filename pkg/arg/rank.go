package arg

import "sort"

// AssignRanks buckets nodes into integer time layers: the distinct node times
// are sorted ascending and each node's Rank becomes the index of its time in
// that list. Equal times share a rank, so rank 0 is the minimum-time layer,
// which by convention holds the samples.
//
// Rank maps linearly to a vertical canvas coordinate; see layout.Canvas.
//
// AssignRanks overwrites any existing rank assignments. It returns the number
// of distinct ranks.
func AssignRanks(g *Graph) int {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0
	}

	times := make([]float64, 0, len(nodes))
	seen := make(map[float64]bool, len(nodes))
	for _, n := range nodes {
		if !seen[n.Time] {
			seen[n.Time] = true
			times = append(times, n.Time)
		}
	}
	sort.Float64s(times)

	rank := make(map[float64]int, len(times))
	for i, t := range times {
		rank[t] = i
	}
	for _, n := range nodes {
		n.Rank = rank[n.Time]
	}
	return len(times)
}

// MaxRank returns the highest rank present in the graph, or 0 when empty.
// Call AssignRanks first.
func MaxRank(g *Graph) int {
	max := 0
	for _, n := range g.Nodes() {
		if n.Rank > max {
			max = n.Rank
		}
	}
	return max
}

// NodesInRank returns the nodes assigned to the given rank, in insertion
// order.
func NodesInRank(g *Graph, rank int) []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.Rank == rank {
			out = append(out, n)
		}
	}
	return out
}

// RankTick is one entry of the vertical axis data derived from the rank
// assignment: the tick index and the original time it stands for. The host
// view renders these as axis labels; the engine itself draws nothing.
type RankTick struct {
	Rank int     `json:"rank" bson:"rank"`
	Time float64 `json:"time" bson:"time"`
}

// RankTicks returns one tick per distinct time, ascending. The result is
// empty for an empty graph.
func RankTicks(g *Graph) []RankTick {
	seen := make(map[float64]bool)
	var times []float64
	for _, n := range g.Nodes() {
		if !seen[n.Time] {
			seen[n.Time] = true
			times = append(times, n.Time)
		}
	}
	sort.Float64s(times)
	ticks := make([]RankTick, len(times))
	for i, t := range times {
		ticks[i] = RankTick{Rank: i, Time: t}
	}
	return ticks
}
