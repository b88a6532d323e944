package snapshot

import (
	"strings"
	"testing"

	"github.com/argviz/argviz/pkg/arg"
	"github.com/argviz/argviz/pkg/layout"
)

func builtLayout(t *testing.T, routed bool) (*Layout, *arg.Graph) {
	t.Helper()
	s, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	g, err := s.ToGraph()
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	arg.AssignRanks(g)
	idx := arg.NewIndex(g)
	c := layout.DefaultCanvas()
	if err := layout.Position(g, idx, c); err != nil {
		t.Fatalf("Position() error = %v", err)
	}

	var paths map[int]layout.Path
	if routed {
		paths, err = layout.Route(g, c)
		if err != nil {
			t.Fatalf("Route() error = %v", err)
		}
	}
	return Build(g, c, paths, s.Metadata.SequenceLength), g
}

func TestBuild_NodeRecords(t *testing.T) {
	l, g := builtLayout(t, false)

	if len(l.Nodes) != g.NodeCount() {
		t.Fatalf("built %d node records for %d nodes", len(l.Nodes), g.NodeCount())
	}
	for _, rec := range l.Nodes {
		n, ok := g.Node(rec.ID)
		if !ok {
			t.Fatalf("record for unknown node %d", rec.ID)
		}
		if rec.X != n.X || rec.Y != n.Y {
			t.Errorf("node %d record at (%g,%g), graph at (%g,%g)", rec.ID, rec.X, rec.Y, n.X, n.Y)
		}
		if rec.IsSample != n.IsSample {
			t.Errorf("node %d sample flag mismatch", rec.ID)
		}
		if rec.Radius <= 0 {
			t.Errorf("node %d radius = %g, want positive", rec.ID, rec.Radius)
		}
		if rec.IsCombined || rec.CombinedMembers != nil {
			t.Errorf("node %d marked combined without dedup", rec.ID)
		}
	}
}

func TestBuild_MergesParallelEdges(t *testing.T) {
	l, _ := builtLayout(t, false)

	// Three raw edges, but 2->1 carries two intervals that merge into one
	// record with a two-part bounds label.
	if len(l.Edges) != 2 {
		t.Fatalf("built %d edge records, want 2", len(l.Edges))
	}
	var rec *EdgeRecord
	for i := range l.Edges {
		if l.Edges[i].SourceID == 2 && l.Edges[i].TargetID == 1 {
			rec = &l.Edges[i]
		}
	}
	if rec == nil {
		t.Fatal("no record for edge 2->1")
	}
	if rec.Bounds != "0-500 700-1000" {
		t.Errorf("Bounds = %q, want %q", rec.Bounds, "0-500 700-1000")
	}
	if rec.EdgeWeight != 800 {
		t.Errorf("EdgeWeight = %g, want 800", rec.EdgeWeight)
	}
	if rec.RegionFraction != 0.8 {
		t.Errorf("RegionFraction = %g, want 0.8", rec.RegionFraction)
	}
}

func TestBuild_StraightModeHasNoPaths(t *testing.T) {
	l, _ := builtLayout(t, false)
	for _, rec := range l.Edges {
		if rec.Path != nil {
			t.Errorf("edge %d->%d has a path in straight mode", rec.SourceID, rec.TargetID)
		}
	}
}

func TestBuild_RoutedModeCarriesPaths(t *testing.T) {
	l, _ := builtLayout(t, true)
	for _, rec := range l.Edges {
		if len(rec.Path) < 2 {
			t.Errorf("edge %d->%d path = %v, want at least 2 points", rec.SourceID, rec.TargetID, rec.Path)
		}
	}
}

func TestBuild_YAxis(t *testing.T) {
	l, _ := builtLayout(t, false)

	if len(l.YAxis) != 2 {
		t.Fatalf("YAxis has %d ticks, want 2", len(l.YAxis))
	}
	if l.YAxis[0].Time != 0 || l.YAxis[1].Time != 10.5 {
		t.Errorf("YAxis times = %v, want [0 10.5]", l.YAxis)
	}
}

func TestBuild_CombinedMembers(t *testing.T) {
	g := arg.New()
	g.AddNode(arg.Node{ID: 0, Time: 0, IsSample: true})
	g.AddNode(arg.Node{ID: 1, Time: 1, Combined: true, Members: []int{1, 2}})
	g.AddEdge(arg.Edge{Source: 1, Target: 0, Left: 0, Right: 100})
	arg.AssignRanks(g)

	l := Build(g, layout.DefaultCanvas(), nil, 100)
	var rec *NodeRecord
	for i := range l.Nodes {
		if l.Nodes[i].ID == 1 {
			rec = &l.Nodes[i]
		}
	}
	if rec == nil || !rec.IsCombined {
		t.Fatal("combined node not marked in record")
	}
	if len(rec.CombinedMembers) != 2 {
		t.Errorf("CombinedMembers = %v, want [1 2]", rec.CombinedMembers)
	}
}

func TestMergeIntervals(t *testing.T) {
	tests := []struct {
		name string
		in   [][2]float64
		want [][2]float64
	}{
		{"disjoint", [][2]float64{{0, 1}, {2, 3}}, [][2]float64{{0, 1}, {2, 3}}},
		{"overlapping", [][2]float64{{0, 5}, {3, 8}}, [][2]float64{{0, 8}}},
		{"touching", [][2]float64{{0, 5}, {5, 8}}, [][2]float64{{0, 8}}},
		{"contained", [][2]float64{{0, 10}, {2, 3}}, [][2]float64{{0, 10}}},
		{"unsorted", [][2]float64{{5, 8}, {0, 2}}, [][2]float64{{0, 2}, {5, 8}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeIntervals(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("mergeIntervals() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("mergeIntervals() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestBoundsLabel(t *testing.T) {
	got := boundsLabel([][2]float64{{0, 500}, {700.5, 1000}})
	if got != "0-500 700.5-1000" {
		t.Errorf("boundsLabel() = %q, want %q", got, "0-500 700.5-1000")
	}
}
