// Package layout computes 2D positions and edge paths for ancestral
// recombination graphs.
//
// The pipeline runs in stages. [Position] produces a deterministic,
// crossing-aware starting layout: samples spread across the bottom of the
// canvas, higher ranks placed bottom-to-top anchored to already-placed
// descendants. [Simulation] then optionally relaxes positions with a
// tick-driven force loop, and [Route] computes orthogonal polylines for
// static rendering.
//
// All stages honor the core invariant that a non-sample node's x stays
// within the x-range of its descendant samples whenever that set is
// non-empty.
package layout
