package arg

import (
	"errors"
	"sort"
)

var (
	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique across the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [Graph.AddEdge] for edges whose source and
	// target are the same node. Self-inheritance is never valid in an ARG.
	ErrSelfLoop = errors.New("edge is a self-loop")

	// ErrTimeOrder is returned by [Graph.AddEdge] when the source (parent) is
	// strictly younger than the target (child). Equal times are allowed and
	// collapse into a single rank.
	ErrTimeOrder = errors.New("parent must not be younger than child")

	// ErrInvalidInterval is returned by [Graph.AddEdge] when the genomic
	// interval is empty or inverted (Left >= Right).
	ErrInvalidInterval = errors.New("invalid genomic interval")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a directed cycle
	// is detected. Valid ARG provenance never produces cycles; this guards
	// against corrupt input.
	ErrGraphHasCycle = errors.New("graph contains a cycle")

	// ErrUnknownNode is returned by the focus filters when the focus node
	// does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Location is an optional 2-3D sample location carried through from the
// source data. Z is only meaningful when HasZ is set.
type Location struct {
	X    float64
	Y    float64
	Z    float64
	HasZ bool
}

// Node represents a lineage at a discrete time point.
//
// ID, Time, IsSample, Individual and Location are immutable input. Rank, X
// and Y are derived by the layout passes. Combined and Members are set by the
// deduplicator when structurally identical nodes are merged.
//
// Sample nodes are never combined, and a non-sample node's X must stay within
// the x-range of its descendant samples whenever that set is non-empty.
type Node struct {
	ID         int
	Time       float64
	IsSample   bool
	Individual int // grouping key; -1 when absent
	Location   *Location

	// Derived layout state.
	Rank int
	X    float64
	Y    float64

	// Combined marks a synthetic node that merged structurally identical
	// originals; Members records the merged ids (including this node's own).
	Combined bool
	Members  []int
}

// Edge is a parent→child inheritance relationship tagged with the genomic
// half-open interval [Left, Right). Source is the genealogical parent (the
// older node), matching the snapshot format emitted by the data-fetch
// collaborator. Multiple edges between the same pair with distinct intervals
// encode recombination.
type Edge struct {
	Source int
	Target int
	Left   float64
	Right  float64
}

// Graph is a directed acyclic graph of lineages. Edges run parent→child, so
// traversing outgoing edges moves toward the samples.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization; the layout pipeline treats a built
// graph as immutable input.
type Graph struct {
	nodes    map[int]*Node
	order    []int         // node ids in insertion order, for determinism
	edges    []Edge
	outgoing map[int][]int // node id -> ordinals of edges it sources
	incoming map[int][]int // node id -> ordinals of edges targeting it
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[int]*Node),
		outgoing: make(map[int][]int),
		incoming: make(map[int][]int),
	}
}

// AddNode adds a node to the graph. Returns ErrDuplicateNodeID if a node with
// the same ID already exists.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := n
	g.nodes[node.ID] = &node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge adds a parent→child edge between two existing nodes.
//
// Returns ErrUnknownSourceNode/ErrUnknownTargetNode for missing endpoints,
// ErrSelfLoop for loops, ErrInvalidInterval for an empty genomic interval,
// and ErrTimeOrder when the parent is strictly younger than the child.
func (g *Graph) AddEdge(e Edge) error {
	src, ok := g.nodes[e.Source]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := g.nodes[e.Target]
	if !ok {
		return ErrUnknownTargetNode
	}
	if e.Source == e.Target {
		return ErrSelfLoop
	}
	if e.Right <= e.Left {
		return ErrInvalidInterval
	}
	if src.Time < dst.Time {
		return ErrTimeOrder
	}
	ord := len(g.edges)
	g.edges = append(g.edges, e)
	g.outgoing[e.Source] = append(g.outgoing[e.Source], ord)
	g.incoming[e.Target] = append(g.incoming[e.Target], ord)
	return nil
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node, so layout passes may
// write derived fields through it.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order. The slice contains pointers to
// the actual node structs.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns all edges in insertion order. The edge ordinal (index into
// this slice) is the deterministic tie-break used by the ancestry index.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Edge returns the edge at the given ordinal.
func (g *Graph) Edge(ord int) Edge { return g.edges[ord] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// OutEdges returns the ordinals of edges sourced at the node, in insertion
// order. The returned slice must not be modified.
func (g *Graph) OutEdges(id int) []int { return g.outgoing[id] }

// InEdges returns the ordinals of edges targeting the node, in insertion
// order. The returned slice must not be modified.
func (g *Graph) InEdges(id int) []int { return g.incoming[id] }

// Children returns the ids of nodes this node directly parents, in edge
// insertion order. Duplicate targets (recombination re-attachments) appear
// once.
func (g *Graph) Children(id int) []int {
	return g.edgeEndpoints(g.outgoing[id], false)
}

// Parents returns the ids of nodes that directly parent this node, in edge
// insertion order. Multiple parents encode recombination.
func (g *Graph) Parents(id int) []int {
	return g.edgeEndpoints(g.incoming[id], true)
}

func (g *Graph) edgeEndpoints(ords []int, source bool) []int {
	var out []int
	seen := make(map[int]bool, len(ords))
	for _, ord := range ords {
		e := g.edges[ord]
		id := e.Target
		if source {
			id = e.Source
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Degree returns the number of distinct direction-ignored neighbors.
func (g *Graph) Degree(id int) int { return len(g.Neighbors(id)) }

// Neighbors returns the distinct ids connected to the node by any edge,
// ignoring direction, in ascending order. This is the identity key used by
// the deduplicator.
func (g *Graph) Neighbors(id int) []int {
	seen := make(map[int]bool)
	for _, ord := range g.outgoing[id] {
		seen[g.edges[ord].Target] = true
	}
	for _, ord := range g.incoming[id] {
		seen[g.edges[ord].Source] = true
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Samples returns all sample nodes in insertion order.
func (g *Graph) Samples() []*Node {
	var out []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.IsSample {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks graph integrity: every edge must reference existing nodes
// and the graph must be acyclic. Returns ErrInvalidEdgeEndpoint or
// ErrGraphHasCycle. A graph built exclusively through AddNode/AddEdge cannot
// fail the endpoint check; Validate exists for graphs assembled from
// untrusted snapshots.
//
// Cycle detection runs in O(V+E) using depth-first search with
// white/gray/black coloring.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return ErrInvalidEdgeEndpoint
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[int]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id int)
	dfs = func(id int) {
		color[id] = gray
		for _, child := range g.Children(id) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the graph. Derived node state is copied too.
func (g *Graph) Clone() *Graph {
	out := New()
	for _, n := range g.Nodes() {
		c := *n
		if n.Location != nil {
			loc := *n.Location
			c.Location = &loc
		}
		if n.Members != nil {
			c.Members = append([]int(nil), n.Members...)
		}
		// Bypass AddNode: the source graph already holds valid state.
		out.nodes[c.ID] = &c
		out.order = append(out.order, c.ID)
	}
	for ord, e := range g.edges {
		out.edges = append(out.edges, e)
		out.outgoing[e.Source] = append(out.outgoing[e.Source], ord)
		out.incoming[e.Target] = append(out.incoming[e.Target], ord)
	}
	return out
}
