package cache

// Keyer generates cache keys for the pipeline stages. Implementations
// must be deterministic: the same inputs always produce the same key.
type Keyer interface {
	// SnapshotKey keys a fetched snapshot by its storage id and genomic
	// window.
	SnapshotKey(id string, opts SnapshotKeyOpts) string

	// GraphKey keys a built graph by the content hash of its snapshot
	// and the dedup settings that shaped it.
	GraphKey(snapshotHash string, opts GraphKeyOpts) string

	// LayoutKey keys a computed layout by the graph hash and the layout
	// parameters.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// SnapshotKeyOpts are the snapshot-affecting parameters.
type SnapshotKeyOpts struct {
	GenomicStart float64
	GenomicEnd   float64
	FocusNode    *int
	FocusMode    string
}

// GraphKeyOpts are the graph-affecting parameters.
type GraphKeyOpts struct {
	Dedup   bool
	Spatial bool
}

// LayoutKeyOpts are the layout-affecting parameters.
type LayoutKeyOpts struct {
	Width   float64
	Height  float64
	Relaxed bool
	Routed  bool
}

// DefaultKeyer generates hash-based keys with stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for snapshot caching.
func (k *DefaultKeyer) SnapshotKey(id string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", id, opts)
}

// GraphKey generates a key for graph caching.
func (k *DefaultKeyer) GraphKey(snapshotHash string, opts GraphKeyOpts) string {
	return hashKey("graph", snapshotHash, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
