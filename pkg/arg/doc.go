// Package arg models Ancestral Recombination Graphs and provides the graph
// transforms the layout engine runs before positioning: structural
// deduplication of redundant internal nodes, time-rank assignment, and the
// memoized ancestry index every later stage queries.
//
// # Model
//
// Nodes are lineages at discrete time points; edges are parent→child
// inheritance relationships tagged with a half-open genomic interval
// [Left, Right). Multiple edges between the same pair with distinct
// intervals encode recombination. The graph is a DAG: a parent is never
// younger than its child.
//
// # The layout pre-passes
//
// A layout run applies, in order:
//
//	res := arg.Deduplicate(g, arg.DedupOptions{})
//	arg.AssignRanks(res.Graph)
//	idx := arg.NewIndex(res.Graph)
//
// Deduplicate merges structurally identical non-sample nodes (same time, same
// sample flag, same direction-ignored neighbor set) into combined nodes,
// rewriting edges through the merge mapping. AssignRanks buckets nodes into
// integer time layers. The Index answers parent/children/descendant-sample
// queries and is memoized for the duration of one layout pass.
//
// All transforms are deterministic for identical input.
package arg
