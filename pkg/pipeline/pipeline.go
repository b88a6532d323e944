// Package pipeline provides the core layout pipeline for argviz.
//
// This package implements the complete build → position → relax → route
// pipeline that can be used by CLI, API, and worker components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Build: Decode a snapshot into a graph, apply the genomic window,
//     focus filtering, deduplication, and rank assignment
//  2. Position: Compute deterministic initial coordinates
//  3. Relax: Optionally run the force relaxation to convergence
//  4. Route: Optionally route edges as orthogonal paths
//
// The build stage can be run independently; the layout stages run together
// and produce a wire-ready snapshot.Layout.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Relax: true, Route: true}
//	result, err := runner.Execute(ctx, snap, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	layout := result.Layout
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/argviz/argviz/pkg/arg"
	"github.com/argviz/argviz/pkg/cache"
	"github.com/argviz/argviz/pkg/layout"
	"github.com/argviz/argviz/pkg/snapshot"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = layout.DefaultWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = layout.DefaultHeight

	// DefaultFocusMode is the focus filter applied when a focus node is set
	// without an explicit mode.
	DefaultFocusMode = FocusModeSubgraph
)

// Focus mode constants.
const (
	FocusModeSubgraph  = "subgraph"
	FocusModeAncestors = "ancestors"
)

// ValidFocusModes is the set of supported focus modes.
var ValidFocusModes = map[string]bool{
	FocusModeSubgraph:  true,
	FocusModeAncestors: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Snapshot options
	GenomicStart float64 `json:"genomic_start,omitempty"`
	GenomicEnd   float64 `json:"genomic_end,omitempty"`
	FocusNode    *int    `json:"focus_node,omitempty"`
	FocusMode    string  `json:"focus_mode,omitempty"`

	// Graph options
	Dedup   bool `json:"dedup,omitempty"`
	Spatial bool `json:"spatial,omitempty"`

	// Layout options
	Width      float64             `json:"width,omitempty"`
	Height     float64             `json:"height,omitempty"`
	Relax      bool                `json:"relax,omitempty"`
	Route      bool                `json:"route,omitempty"`
	Relaxation layout.RelaxOptions `json:"relaxation,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built, ranked graph.
	Graph *arg.Graph

	// GraphHash is the content hash of the built graph.
	GraphHash string

	// Layout is the wire-ready layout.
	Layout *snapshot.Layout

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	MergedNodes int
	RelaxTicks  int
	BuildTime   time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks cache hits for the pipeline.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFocusMode checks that a focus mode is valid.
func ValidateFocusMode(mode string) error {
	if !ValidFocusModes[mode] {
		return fmt.Errorf("invalid focus_mode: %q (must be one of: subgraph, ancestors)", mode)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("canvas dimensions must be positive")
	}

	if o.GenomicStart < 0 || o.GenomicEnd < 0 {
		return fmt.Errorf("genomic window must be non-negative")
	}
	if o.GenomicEnd > 0 && o.GenomicEnd <= o.GenomicStart {
		return fmt.Errorf("genomic_end must be greater than genomic_start")
	}

	if o.FocusNode != nil && o.FocusMode == "" {
		o.FocusMode = DefaultFocusMode
	}
	if o.FocusMode != "" {
		if err := ValidateFocusMode(o.FocusMode); err != nil {
			return err
		}
	}

	if o.Relax {
		if o.Relaxation.Logger == nil {
			o.Relaxation.Logger = o.Logger
		}
		if err := o.Relaxation.ValidateAndSetDefaults(); err != nil {
			return err
		}
	}

	o.validated = true
	return nil
}

// logger returns the configured logger, or a discarding one when unset.
func (o *Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

// Canvas returns the drawing area described by the options.
func (o *Options) Canvas() layout.Canvas {
	return layout.Canvas{Width: o.Width, Height: o.Height}
}

// HasWindow reports whether a genomic window is set.
func (o *Options) HasWindow() bool {
	return o.GenomicStart > 0 || o.GenomicEnd > 0
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Dedup:   o.Dedup,
		Spatial: o.Spatial,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:   o.Width,
		Height:  o.Height,
		Relaxed: o.Relax,
		Routed:  o.Route,
	}
}
