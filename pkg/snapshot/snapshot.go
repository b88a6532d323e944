package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/argviz/argviz/pkg/arg"
)

// Node is one snapshot node as supplied by the data-fetch collaborator.
type Node struct {
	ID         int       `json:"id" bson:"id"`
	Time       float64   `json:"time" bson:"time"`
	IsSample   bool      `json:"is_sample" bson:"is_sample"`
	Individual int       `json:"individual" bson:"individual"`
	Location   *Location `json:"location,omitempty" bson:"location,omitempty"`
}

// Location is an optional 2-3D sample location.
type Location struct {
	X float64  `json:"x" bson:"x"`
	Y float64  `json:"y" bson:"y"`
	Z *float64 `json:"z,omitempty" bson:"z,omitempty"`
}

// Edge is one parent→child inheritance record. Source is the genealogical
// parent.
type Edge struct {
	Source int     `json:"source" bson:"source"`
	Target int     `json:"target" bson:"target"`
	Left   float64 `json:"left" bson:"left"`
	Right  float64 `json:"right" bson:"right"`
}

// Metadata describes the snapshot's provenance and extent.
type Metadata struct {
	NumNodes       int     `json:"num_nodes" bson:"num_nodes"`
	NumEdges       int     `json:"num_edges" bson:"num_edges"`
	NumSamples     int     `json:"num_samples" bson:"num_samples"`
	SequenceLength float64 `json:"sequence_length" bson:"sequence_length"`
	GenomicStart   float64 `json:"genomic_start" bson:"genomic_start"`
	GenomicEnd     float64 `json:"genomic_end" bson:"genomic_end"`
	IsSubset       bool    `json:"is_subset" bson:"is_subset"`
	NumLocalTrees  int     `json:"num_local_trees,omitempty" bson:"num_local_trees,omitempty"`
	OriginalNodes  int     `json:"original_nodes,omitempty" bson:"original_nodes,omitempty"`
}

// Snapshot is the complete graph snapshot: the unit of input to the layout
// pipeline and the unit of storage.
type Snapshot struct {
	Nodes    []Node   `json:"nodes" bson:"nodes"`
	Edges    []Edge   `json:"edges" bson:"edges"`
	Metadata Metadata `json:"metadata" bson:"metadata"`
}

// Read decodes a JSON snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// ReadFile reads a JSON snapshot from the file at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Write encodes the snapshot as indented JSON. The output round-trips
// through Read.
func (s *Snapshot) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// ToGraph converts the snapshot into the core graph model. Node and edge
// validation errors surface wrapped with the offending record; callers
// should treat any error as a malformed snapshot.
func (s *Snapshot) ToGraph() (*arg.Graph, error) {
	g := arg.New()
	for _, n := range s.Nodes {
		node := arg.Node{
			ID:         n.ID,
			Time:       n.Time,
			IsSample:   n.IsSample,
			Individual: n.Individual,
		}
		if n.Location != nil {
			loc := &arg.Location{X: n.Location.X, Y: n.Location.Y}
			if n.Location.Z != nil {
				loc.Z = *n.Location.Z
				loc.HasZ = true
			}
			node.Location = loc
		}
		if err := g.AddNode(node); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		err := g.AddEdge(arg.Edge{Source: e.Source, Target: e.Target, Left: e.Left, Right: e.Right})
		if err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", e.Source, e.Target, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return g, nil
}

// FromGraph builds a snapshot from a graph, recomputing the count
// metadata. SequenceLength is taken as the maximum edge Right when meta is
// zero-valued there.
func FromGraph(g *arg.Graph) *Snapshot {
	s := &Snapshot{}
	for _, n := range g.Nodes() {
		node := Node{
			ID:         n.ID,
			Time:       n.Time,
			IsSample:   n.IsSample,
			Individual: n.Individual,
		}
		if n.Location != nil {
			loc := &Location{X: n.Location.X, Y: n.Location.Y}
			if n.Location.HasZ {
				z := n.Location.Z
				loc.Z = &z
			}
			node.Location = loc
		}
		s.Nodes = append(s.Nodes, node)
	}
	seqLen := 0.0
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{Source: e.Source, Target: e.Target, Left: e.Left, Right: e.Right})
		if e.Right > seqLen {
			seqLen = e.Right
		}
	}
	s.Metadata = Metadata{
		NumNodes:       len(s.Nodes),
		NumEdges:       len(s.Edges),
		NumSamples:     len(g.Samples()),
		SequenceLength: seqLen,
		GenomicEnd:     seqLen,
	}
	return s
}

// ClipToWindow returns a copy restricted to the genomic window
// [start, end): only edges overlapping the window survive, and only nodes
// that are samples or touched by a surviving edge. Metadata is updated to
// mark the subset.
func (s *Snapshot) ClipToWindow(start, end float64) *Snapshot {
	if end <= start {
		return &Snapshot{Metadata: s.Metadata}
	}

	var edges []Edge
	connected := make(map[int]bool)
	for _, e := range s.Edges {
		if e.Left < end && e.Right > start {
			edges = append(edges, e)
			connected[e.Source] = true
			connected[e.Target] = true
		}
	}

	var nodes []Node
	samples := 0
	for _, n := range s.Nodes {
		if !n.IsSample && !connected[n.ID] {
			continue
		}
		nodes = append(nodes, n)
		if n.IsSample {
			samples++
		}
	}

	meta := s.Metadata
	meta.NumNodes = len(nodes)
	meta.NumEdges = len(edges)
	meta.NumSamples = samples
	meta.GenomicStart = start
	meta.GenomicEnd = end
	meta.IsSubset = start > 0 || end < s.Metadata.SequenceLength
	meta.OriginalNodes = s.Metadata.NumNodes

	return &Snapshot{Nodes: nodes, Edges: edges, Metadata: meta}
}
