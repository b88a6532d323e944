package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/argviz/argviz/pkg/arg"
)

const sampleJSON = `{
  "nodes": [
    {"id": 0, "time": 0, "is_sample": true, "individual": 0, "location": {"x": 1.5, "y": 2.5}},
    {"id": 1, "time": 0, "is_sample": true, "individual": 1},
    {"id": 2, "time": 10.5, "is_sample": false, "individual": -1}
  ],
  "edges": [
    {"source": 2, "target": 0, "left": 0, "right": 1000},
    {"source": 2, "target": 1, "left": 0, "right": 500},
    {"source": 2, "target": 1, "left": 700, "right": 1000}
  ],
  "metadata": {"num_nodes": 3, "num_edges": 3, "num_samples": 2, "sequence_length": 1000, "genomic_start": 0, "genomic_end": 1000}
}`

func TestRead(t *testing.T) {
	s, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(s.Nodes) != 3 || len(s.Edges) != 3 {
		t.Fatalf("Read() = %d nodes, %d edges, want 3 and 3", len(s.Nodes), len(s.Edges))
	}
	if s.Nodes[0].Location == nil || s.Nodes[0].Location.X != 1.5 {
		t.Errorf("node 0 location = %+v, want x=1.5", s.Nodes[0].Location)
	}
	if s.Nodes[0].Location.Z != nil {
		t.Error("node 0 should have no z coordinate")
	}
	if s.Metadata.SequenceLength != 1000 {
		t.Errorf("SequenceLength = %g, want 1000", s.Metadata.SequenceLength)
	}
}

func TestRead_Malformed(t *testing.T) {
	if _, err := Read(strings.NewReader(`{"nodes": [}`)); err == nil {
		t.Error("Read(malformed) error = nil, want error")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	s, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	back, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read(written) error = %v", err)
	}
	if len(back.Nodes) != len(s.Nodes) || len(back.Edges) != len(s.Edges) {
		t.Error("round trip changed node or edge count")
	}
	if back.Edges[2] != s.Edges[2] {
		t.Errorf("round trip changed edge: %+v vs %+v", back.Edges[2], s.Edges[2])
	}
}

func TestToGraph(t *testing.T) {
	s, err := Read(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	g, err := s.ToGraph()
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Fatalf("graph has %d nodes, %d edges, want 3 and 3", g.NodeCount(), g.EdgeCount())
	}
	n0, _ := g.Node(0)
	if n0.Location == nil || n0.Location.HasZ {
		t.Errorf("node 0 location = %+v, want 2D location", n0.Location)
	}
	if got := len(g.Samples()); got != 2 {
		t.Errorf("Samples() = %d, want 2", got)
	}
}

func TestToGraph_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		s    Snapshot
		want error
	}{
		{
			name: "dangling edge",
			s: Snapshot{
				Nodes: []Node{{ID: 0, Time: 0, IsSample: true}},
				Edges: []Edge{{Source: 9, Target: 0, Left: 0, Right: 1}},
			},
			want: arg.ErrUnknownSourceNode,
		},
		{
			name: "self loop",
			s: Snapshot{
				Nodes: []Node{{ID: 0, Time: 0, IsSample: true}},
				Edges: []Edge{{Source: 0, Target: 0, Left: 0, Right: 1}},
			},
			want: arg.ErrSelfLoop,
		},
		{
			name: "duplicate node",
			s: Snapshot{
				Nodes: []Node{{ID: 0, Time: 0}, {ID: 0, Time: 1}},
			},
			want: arg.ErrDuplicateNodeID,
		},
		{
			name: "inverted interval",
			s: Snapshot{
				Nodes: []Node{{ID: 0, Time: 0, IsSample: true}, {ID: 1, Time: 1}},
				Edges: []Edge{{Source: 1, Target: 0, Left: 5, Right: 5}},
			},
			want: arg.ErrInvalidInterval,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.ToGraph(); !errors.Is(err, tt.want) {
				t.Errorf("ToGraph() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFromGraphRoundTrip(t *testing.T) {
	s, _ := Read(strings.NewReader(sampleJSON))
	g, err := s.ToGraph()
	if err != nil {
		t.Fatalf("ToGraph() error = %v", err)
	}

	back := FromGraph(g)
	if back.Metadata.NumNodes != 3 || back.Metadata.NumEdges != 3 || back.Metadata.NumSamples != 2 {
		t.Errorf("metadata = %+v, want counts 3/3/2", back.Metadata)
	}
	if back.Metadata.SequenceLength != 1000 {
		t.Errorf("SequenceLength = %g, want 1000", back.Metadata.SequenceLength)
	}
}

func TestClipToWindow(t *testing.T) {
	s, _ := Read(strings.NewReader(sampleJSON))

	// Window [600, 1000): drops the 0-500 edge, keeps the others.
	clipped := s.ClipToWindow(600, 1000)
	if len(clipped.Edges) != 2 {
		t.Fatalf("clipped to %d edges, want 2", len(clipped.Edges))
	}
	for _, e := range clipped.Edges {
		if e.Right <= 600 {
			t.Errorf("edge %+v does not overlap the window", e)
		}
	}
	if !clipped.Metadata.IsSubset {
		t.Error("IsSubset not set on clipped snapshot")
	}
	if clipped.Metadata.GenomicStart != 600 || clipped.Metadata.GenomicEnd != 1000 {
		t.Errorf("window = [%g, %g), want [600, 1000)",
			clipped.Metadata.GenomicStart, clipped.Metadata.GenomicEnd)
	}
}

func TestClipToWindow_KeepsDisconnectedSamples(t *testing.T) {
	s, _ := Read(strings.NewReader(sampleJSON))

	// Nothing overlaps [2000, 3000); samples stay, the internal node goes.
	clipped := s.ClipToWindow(2000, 3000)
	if len(clipped.Edges) != 0 {
		t.Fatalf("clipped to %d edges, want 0", len(clipped.Edges))
	}
	if len(clipped.Nodes) != 2 {
		t.Fatalf("clipped to %d nodes, want the 2 samples", len(clipped.Nodes))
	}
	for _, n := range clipped.Nodes {
		if !n.IsSample {
			t.Errorf("non-sample node %d survived an empty window", n.ID)
		}
	}
}

func TestClipToWindow_EmptyWindow(t *testing.T) {
	s, _ := Read(strings.NewReader(sampleJSON))
	clipped := s.ClipToWindow(500, 500)
	if len(clipped.Nodes) != 0 || len(clipped.Edges) != 0 {
		t.Error("empty window should produce an empty snapshot")
	}
}
