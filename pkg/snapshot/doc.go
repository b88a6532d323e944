// Package snapshot defines the graph snapshot exchanged with data-fetch
// collaborators and the layout records returned to host views.
//
// A snapshot is the JSON object {nodes, edges, metadata} produced by the
// upstream tree-sequence service. ToGraph converts it into the core model,
// and Build assembles the renderable layout (positions, radii, merged
// edge bounds, axis ticks) once the layout passes have run. The same
// structs carry bson tags so stored snapshots round-trip through the
// document store unchanged.
package snapshot
