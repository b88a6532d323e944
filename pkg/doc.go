// Package pkg provides the core libraries for argviz ARG layout.
//
// # Overview
//
// Argviz computes 2D layouts for ancestral recombination graphs (ARGs):
// time-ranked genealogies where recombination gives some nodes multiple
// parents over different genomic intervals. The pkg directory is organized
// into four main areas:
//
//  1. [arg] - Domain logic (graph model, ranks, ancestry index, dedup, focus)
//  2. [layout] - Geometry (positioning, relaxation, crossing counts, routing)
//  3. [snapshot], [store], [cache] - Serialization and persistence
//  4. [pipeline] - Orchestration (build → position → relax → route)
//
// # Architecture
//
// The typical data flow through argviz:
//
//	Snapshot JSON (nodes, edges, metadata)
//	         ↓
//	    [arg] package (graph build, dedup, ranks, ancestry index)
//	         ↓
//	    [layout] package (positioner, relaxation, edge routing)
//	         ↓
//	    [snapshot] package (wire-ready layout records)
//
// # Quick Start
//
// Lay out a snapshot and route its edges:
//
//	import (
//	    "context"
//	    "github.com/argviz/argviz/pkg/pipeline"
//	    "github.com/argviz/argviz/pkg/snapshot"
//	)
//
//	// 1. Read the snapshot
//	snap, _ := snapshot.ReadFile("arg.json")
//
//	// 2. Run the pipeline
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), snap, pipeline.Options{
//	    Relax: true,
//	    Route: true,
//	})
//
//	// 3. Use the layout
//	for _, n := range result.Layout.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y)
//	}
//
// # Main Packages
//
// [arg] holds the graph model and its derived structure: rank assignment
// from node times, the memoized ancestry index, structural deduplication,
// and focus filtering.
//
// [layout] turns a ranked graph into coordinates: the deterministic layer
// positioner, the tick-driven force relaxation, crossing counts, and the
// orthogonal edge router.
//
// [snapshot] is the wire format: reading and writing ARG snapshots,
// genomic-window clipping, and assembling layout records with merged
// interval labels.
//
// [store] persists snapshots (in-memory or MongoDB); [cache] memoizes
// computed layouts (file or Redis backends) under content-hash keys.
//
// [pipeline] ties the stages together with caching and is shared by the
// CLI and the HTTP API.
package pkg
