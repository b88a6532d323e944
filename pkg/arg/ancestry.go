package arg

import (
	"sort"

	"github.com/charmbracelet/log"
)

// Index answers derived ancestry queries over a graph: resolved parent,
// children, reachable descendant samples, descendant x-ranges, and siblings.
//
// All query results except DescendantXRange are memoized for the lifetime of
// the Index, which is one layout pass. Build a fresh Index (or call
// Invalidate) whenever the graph changes. DescendantXRange memoizes the
// sample set but reads x positions live, so it stays correct while the
// relaxation engine moves nodes.
//
// Index is not safe for concurrent use.
type Index struct {
	g *Graph

	parents     map[int]int
	parentKnown map[int]bool
	descSamples map[int][]int
	siblings    map[int][]int
}

// NewIndex creates an ancestry index over the graph.
func NewIndex(g *Graph) *Index {
	idx := &Index{g: g}
	idx.Invalidate()
	return idx
}

// Invalidate drops all memoized state. Call after any graph change.
func (idx *Index) Invalidate() {
	idx.parents = make(map[int]int)
	idx.parentKnown = make(map[int]bool)
	idx.descSamples = make(map[int][]int)
	idx.siblings = make(map[int][]int)
}

// ParentOf resolves the node's single layout parent: the source of its
// lowest-ordinal incoming edge. Returns false for roots and disconnected
// nodes.
//
// True multi-parent (recombination) nodes are collapsed to a single parent
// here; rendered edges keep full multi-parent semantics, so this is a known
// layout-fidelity simplification. The lowest-edge-ordinal pick makes the
// tie-break explicit and deterministic.
func (idx *Index) ParentOf(id int) (int, bool) {
	if known := idx.parentKnown[id]; known {
		p, ok := idx.parents[id]
		return p, ok
	}
	idx.parentKnown[id] = true
	ords := idx.g.InEdges(id)
	if len(ords) == 0 {
		return 0, false
	}
	p := idx.g.Edge(ords[0]).Source
	idx.parents[id] = p
	return p, true
}

// ChildrenOf returns the ids the node directly parents, in edge insertion
// order.
func (idx *Index) ChildrenOf(id int) []int { return idx.g.Children(id) }

// PrimaryChild returns the target of the node's lowest-ordinal outgoing
// edge. The layer positioner anchors each node to this already-placed
// descendant. Returns false for nodes with no children.
func (idx *Index) PrimaryChild(id int) (int, bool) {
	ords := idx.g.OutEdges(id)
	if len(ords) == 0 {
		return 0, false
	}
	return idx.g.Edge(ords[0]).Target, true
}

// DescendantSamples returns the ids of all sample nodes reachable by
// following parent→child edges from the node, ascending. A sample node's own
// set is just itself. The result is memoized; the traversal is O(V+E).
//
// The BFS is bounded by a visited set. If the bound is ever exceeded (which
// only a corrupt, cyclic graph can cause), the query is aborted and the
// partial result discarded rather than looping indefinitely.
func (idx *Index) DescendantSamples(id int) []int {
	if s, ok := idx.descSamples[id]; ok {
		return s
	}

	n, ok := idx.g.Node(id)
	if !ok {
		return nil
	}
	if n.IsSample {
		s := []int{id}
		idx.descSamples[id] = s
		return s
	}

	bound := idx.g.NodeCount() + idx.g.EdgeCount()
	visited := map[int]bool{id: true}
	queue := []int{id}
	var samples []int
	steps := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range idx.g.Children(cur) {
			if steps++; steps > bound {
				log.Warn("ancestry traversal exceeded bound, aborting query", "node", id)
				idx.descSamples[id] = nil
				return nil
			}
			if visited[child] {
				continue
			}
			visited[child] = true
			if c, ok := idx.g.Node(child); ok && c.IsSample {
				samples = append(samples, child)
			}
			queue = append(queue, child)
		}
	}

	sort.Ints(samples)
	idx.descSamples[id] = samples
	return samples
}

// DescendantXRange returns the min and max x over the node's descendant
// samples. ok is false when the set is empty (a disconnected component with
// no path to any sample), in which case the node is unconstrained and the
// caller falls back to default spacing.
func (idx *Index) DescendantXRange(id int) (min, max float64, ok bool) {
	samples := idx.DescendantSamples(id)
	if len(samples) == 0 {
		return 0, 0, false
	}
	for i, sid := range samples {
		s, found := idx.g.Node(sid)
		if !found {
			continue
		}
		if i == 0 {
			min, max = s.X, s.X
			continue
		}
		if s.X < min {
			min = s.X
		}
		if s.X > max {
			max = s.X
		}
	}
	return min, max, true
}

// SiblingsOf returns the other nodes that resolve to the same ParentOf
// result, ascending. Nodes without a resolved parent have no siblings.
func (idx *Index) SiblingsOf(id int) []int {
	if s, ok := idx.siblings[id]; ok {
		return s
	}
	parent, ok := idx.ParentOf(id)
	if !ok {
		idx.siblings[id] = nil
		return nil
	}
	var sibs []int
	for _, other := range idx.g.Nodes() {
		if other.ID == id {
			continue
		}
		if p, ok := idx.ParentOf(other.ID); ok && p == parent {
			sibs = append(sibs, other.ID)
		}
	}
	sort.Ints(sibs)
	idx.siblings[id] = sibs
	return sibs
}

// SiblingMeanX returns the mean x of the node's siblings, or false when it
// has none.
func (idx *Index) SiblingMeanX(id int) (float64, bool) {
	sibs := idx.SiblingsOf(id)
	if len(sibs) == 0 {
		return 0, false
	}
	sum := 0.0
	count := 0
	for _, sid := range sibs {
		if s, ok := idx.g.Node(sid); ok {
			sum += s.X
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
