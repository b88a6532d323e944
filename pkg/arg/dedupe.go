package arg

import (
	"strconv"
	"strings"
)

// DedupOptions controls the structural deduplication pass.
type DedupOptions struct {
	// Spatial additionally requires identical locations before two nodes are
	// considered structurally identical. Used by the spatial rendering
	// variant, where merging nodes at different coordinates would lie about
	// the geography.
	Spatial bool
}

// DedupResult is the output of Deduplicate. Mapping is built once per pass
// and immutable thereafter; the host UI uses it to resolve what a combined
// node represents.
type DedupResult struct {
	// Graph is the reduced graph with remapped edges.
	Graph *Graph

	// Mapping maps every input node id to its surviving id. Unmerged nodes
	// map to themselves.
	Mapping map[int]int

	// Merged is the number of nodes removed by merging.
	Merged int
}

// Deduplicate merges structurally identical non-sample nodes into combined
// nodes and rewrites the edge set through the merge mapping.
//
// Two non-sample nodes are identical iff they share time, sample flag, and an
// identical set of directly connected neighbor ids, direction ignored (plus
// an identical location under DedupOptions.Spatial). All mutually identical
// nodes collapse into one combined node that keeps the first node's id and
// records all merged ids in Members. Edges that become self-loops or exact
// duplicates after remapping are dropped.
//
// Sample nodes are always emitted unchanged and never merged.
//
// Merging can make two previously distinct nodes identical, so the pass
// repeats until a fixpoint; this is what makes Deduplicate idempotent. Each
// pass strictly reduces the node count, so the loop always terminates. Cost
// is O(n·degree) per pass at the target scale of a few thousand nodes.
func Deduplicate(g *Graph, opts DedupOptions) DedupResult {
	mapping := make(map[int]int, g.NodeCount())
	for _, n := range g.Nodes() {
		mapping[n.ID] = n.ID
	}

	merged := 0
	for {
		next, passMapping, passMerged := dedupePass(g, opts)
		if passMerged == 0 {
			break
		}
		merged += passMerged
		for old, mid := range mapping {
			mapping[old] = passMapping[mid]
		}
		g = next
	}

	return DedupResult{Graph: g, Mapping: mapping, Merged: merged}
}

// dedupePass performs one merge round. It groups non-sample nodes by their
// structural identity key and collapses every group with more than one
// member.
func dedupePass(g *Graph, opts DedupOptions) (*Graph, map[int]int, int) {
	type group struct {
		first   *Node
		members []*Node
	}

	groupIdx := make(map[string]int)
	var groups []*group

	for _, n := range g.Nodes() {
		if n.IsSample {
			continue
		}
		key := identityKey(g, n, opts)
		i, ok := groupIdx[key]
		if !ok {
			i = len(groups)
			groupIdx[key] = i
			groups = append(groups, &group{first: n})
		}
		groups[i].members = append(groups[i].members, n)
	}

	mapping := make(map[int]int, g.NodeCount())
	for _, n := range g.Nodes() {
		mapping[n.ID] = n.ID
	}
	combined := make(map[int][]int) // survivor id -> member ids
	mergedAway := make(map[int]bool)
	merged := 0

	for _, grp := range groups {
		if len(grp.members) < 2 {
			continue
		}
		survivor := grp.first
		var members []int
		for _, m := range grp.members {
			if m.ID != survivor.ID {
				mapping[m.ID] = survivor.ID
				mergedAway[m.ID] = true
				merged++
			}
			if len(m.Members) > 0 {
				members = append(members, m.Members...)
			} else {
				members = append(members, m.ID)
			}
		}
		combined[survivor.ID] = members
	}

	if merged == 0 {
		return g, mapping, 0
	}

	out := New()
	for _, n := range g.Nodes() {
		if mergedAway[n.ID] {
			continue
		}
		c := *n
		if members, ok := combined[n.ID]; ok {
			c.Combined = true
			c.Members = members
		}
		// Input nodes came from a valid graph; AddNode cannot fail here.
		_ = out.AddNode(c)
	}

	type edgeKey struct {
		source, target int
		left, right    float64
	}
	seen := make(map[edgeKey]bool)
	for _, e := range g.Edges() {
		e.Source = mapping[e.Source]
		e.Target = mapping[e.Target]
		if e.Source == e.Target {
			continue
		}
		k := edgeKey{e.Source, e.Target, e.Left, e.Right}
		if seen[k] {
			continue
		}
		seen[k] = true
		_ = out.AddEdge(e)
	}

	return out, mapping, merged
}

// identityKey builds the canonical structural identity string for a
// non-sample node: time, the sorted direction-ignored neighbor set, and the
// location under the spatial variant.
func identityKey(g *Graph, n *Node, opts DedupOptions) string {
	var b strings.Builder
	b.WriteString(strconv.FormatFloat(n.Time, 'g', -1, 64))
	for _, nb := range g.Neighbors(n.ID) {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(nb))
	}
	if opts.Spatial {
		b.WriteByte('@')
		if n.Location == nil {
			b.WriteString("none")
		} else {
			b.WriteString(strconv.FormatFloat(n.Location.X, 'g', -1, 64))
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(n.Location.Y, 'g', -1, 64))
			if n.Location.HasZ {
				b.WriteByte(',')
				b.WriteString(strconv.FormatFloat(n.Location.Z, 'g', -1, 64))
			}
		}
	}
	return b.String()
}
