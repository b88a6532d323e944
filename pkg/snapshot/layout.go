package snapshot

import (
	"fmt"
	"sort"
	"strings"

	"github.com/argviz/argviz/pkg/arg"
	"github.com/argviz/argviz/pkg/layout"
)

// NodeRecord is one positioned node as exposed to the host view. Click
// callbacks carry the full record so the host can resolve combined
// members for subgraph navigation.
type NodeRecord struct {
	ID              int     `json:"id" bson:"id"`
	X               float64 `json:"x" bson:"x"`
	Y               float64 `json:"y" bson:"y"`
	Radius          float64 `json:"radius" bson:"radius"`
	IsSample        bool    `json:"is_sample" bson:"is_sample"`
	IsCombined      bool    `json:"is_combined" bson:"is_combined"`
	CombinedMembers []int   `json:"combined_members,omitempty" bson:"combined_members,omitempty"`
}

// EdgeRecord is one rendered edge. Straight mode fills Source and Target;
// routed mode fills Path. Bounds is the merged genomic interval label,
// e.g. "0-500 700-1000".
type EdgeRecord struct {
	ID             int          `json:"id" bson:"id"`
	SourceID       int          `json:"source" bson:"source"`
	TargetID       int          `json:"target" bson:"target"`
	Source         layout.Point `json:"source_xy" bson:"source_xy"`
	Target         layout.Point `json:"target_xy" bson:"target_xy"`
	Path           layout.Path  `json:"path,omitempty" bson:"path,omitempty"`
	Bounds         string       `json:"bounds" bson:"bounds"`
	RegionFraction float64      `json:"region_fraction" bson:"region_fraction"`
	EdgeWeight     float64      `json:"edge_weight" bson:"edge_weight"`
}

// Layout is the full renderable result for one graph: the output of the
// pipeline, the payload of the layout API, and the unit of layout caching.
type Layout struct {
	Nodes  []NodeRecord   `json:"nodes" bson:"nodes"`
	Edges  []EdgeRecord   `json:"edges" bson:"edges"`
	Width  float64        `json:"width" bson:"width"`
	Height float64        `json:"height" bson:"height"`
	YAxis  []arg.RankTick `json:"y_axis" bson:"y_axis"`
}

// Build assembles the layout records from a positioned graph. Parallel
// edges between the same node pair collapse into one record whose Bounds
// label lists the merged genomic intervals. When paths is non-nil (routed
// mode) each record carries the polyline of the pair's first edge.
//
// seqLen scales RegionFraction; pass the snapshot's sequence length, or 0
// to leave fractions unset.
func Build(g *arg.Graph, c layout.Canvas, paths map[int]layout.Path, seqLen float64) *Layout {
	out := &Layout{
		Width:  c.Width,
		Height: c.Height,
		YAxis:  arg.RankTicks(g),
	}

	for _, n := range g.Nodes() {
		rec := NodeRecord{
			ID:         n.ID,
			X:          n.X,
			Y:          n.Y,
			Radius:     layout.Radius(n),
			IsSample:   n.IsSample,
			IsCombined: n.Combined,
		}
		if n.Combined {
			rec.CombinedMembers = append(rec.CombinedMembers, n.Members...)
		}
		out.Nodes = append(out.Nodes, rec)
	}

	type pair struct{ source, target int }
	grouped := make(map[pair][]int) // edge ordinals per node pair
	var order []pair
	for ord, e := range g.Edges() {
		p := pair{e.Source, e.Target}
		if _, seen := grouped[p]; !seen {
			order = append(order, p)
		}
		grouped[p] = append(grouped[p], ord)
	}

	for i, p := range order {
		ords := grouped[p]
		intervals := make([][2]float64, 0, len(ords))
		for _, ord := range ords {
			e := g.Edge(ord)
			intervals = append(intervals, [2]float64{e.Left, e.Right})
		}
		merged := mergeIntervals(intervals)

		src, _ := g.Node(p.source)
		tgt, _ := g.Node(p.target)
		if src == nil || tgt == nil {
			continue
		}
		rec := EdgeRecord{
			ID:       i,
			SourceID: p.source,
			TargetID: p.target,
			Source:   layout.Point{X: src.X, Y: src.Y},
			Target:   layout.Point{X: tgt.X, Y: tgt.Y},
			Bounds:   boundsLabel(merged),
		}
		for _, iv := range merged {
			rec.EdgeWeight += iv[1] - iv[0]
		}
		if seqLen > 0 {
			rec.RegionFraction = rec.EdgeWeight / seqLen
		}
		if paths != nil {
			rec.Path = paths[ords[0]]
		}
		out.Edges = append(out.Edges, rec)
	}
	return out
}

// mergeIntervals sorts and merges overlapping or touching intervals.
func mergeIntervals(intervals [][2]float64) [][2]float64 {
	if len(intervals) == 0 {
		return nil
	}
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i][0] != intervals[j][0] {
			return intervals[i][0] < intervals[j][0]
		}
		return intervals[i][1] < intervals[j][1]
	})
	merged := [][2]float64{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv[0] <= last[1] {
			if iv[1] > last[1] {
				last[1] = iv[1]
			}
		} else {
			merged = append(merged, iv)
		}
	}
	return merged
}

// boundsLabel renders merged intervals as a space-separated label,
// dropping trailing zeros for whole-number bounds.
func boundsLabel(intervals [][2]float64) string {
	parts := make([]string, len(intervals))
	for i, iv := range intervals {
		parts[i] = fmt.Sprintf("%s-%s", trimFloat(iv[0]), trimFloat(iv[1]))
	}
	return strings.Join(parts, " ")
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
