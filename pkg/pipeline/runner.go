package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/argviz/argviz/pkg/arg"
	"github.com/argviz/argviz/pkg/cache"
	argerrors "github.com/argviz/argviz/pkg/errors"
	"github.com/argviz/argviz/pkg/layout"
	"github.com/argviz/argviz/pkg/observability"
	"github.com/argviz/argviz/pkg/snapshot"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → position → relax → route pipeline
// with layout caching.
func (r *Runner) Execute(ctx context.Context, snap *snapshot.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	g, merged, err := BuildGraph(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.MergedNodes = merged

	// Compute graph hash for cache keys and API responses
	if graphData, err := json.Marshal(snapshot.FromGraph(g)); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("built graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"merged", merged,
		"duration", result.Stats.BuildTime)

	// Stages 2-4: Position, relax, route
	layoutStart := time.Now()
	lay, ticks, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, result.GraphHash, seqLenOf(snap, g), opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = lay
	result.CacheInfo.LayoutHit = hit
	result.Stats.RelaxTicks = ticks
	result.Stats.LayoutTime = time.Since(layoutStart)

	r.Logger.Info("computed layout",
		"nodes", len(lay.Nodes),
		"edges", len(lay.Edges),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// BuildGraph decodes a snapshot into a ranked graph, applying the genomic
// window, focus filter, and deduplication in that order. It returns the
// graph and the number of nodes removed by merging.
func BuildGraph(ctx context.Context, snap *snapshot.Snapshot, opts Options) (*arg.Graph, int, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	observability.Layout().OnBuildStart(ctx, len(snap.Nodes), len(snap.Edges))
	opts.logger().Debug("building graph", "nodes", len(snap.Nodes), "edges", len(snap.Edges))

	if opts.HasWindow() {
		end := opts.GenomicEnd
		if end == 0 {
			end = snap.Metadata.SequenceLength
		}
		snap = snap.ClipToWindow(opts.GenomicStart, end)
		opts.logger().Debug("clipped to window", "start", opts.GenomicStart, "end", end)
	}

	g, err := snap.ToGraph()
	if err != nil {
		err = argerrors.Wrap(argerrors.ErrCodeMalformedGraph, err, "snapshot does not form a valid graph")
		observability.Layout().OnBuildComplete(ctx, 0, time.Since(start), err)
		return nil, 0, err
	}

	if opts.FocusNode != nil {
		switch opts.FocusMode {
		case FocusModeAncestors:
			g, err = arg.FocusAncestors(g, *opts.FocusNode)
		default:
			g, err = arg.FocusSubgraph(g, *opts.FocusNode)
		}
		if err != nil {
			err = argerrors.Wrap(argerrors.ErrCodeInvalidFocusNode, err, "focus node %d", *opts.FocusNode)
			observability.Layout().OnBuildComplete(ctx, 0, time.Since(start), err)
			return nil, 0, err
		}
	}

	merged := 0
	if opts.Dedup {
		res := arg.Deduplicate(g, arg.DedupOptions{Spatial: opts.Spatial})
		g = res.Graph
		merged = res.Merged
	}

	arg.AssignRanks(g)

	observability.Layout().OnBuildComplete(ctx, g.NodeCount(), time.Since(start), nil)
	return g, merged, nil
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// the relaxation tick count and cache hit info. graphHash keys the cache
// entry; pass "" to skip caching.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, g *arg.Graph, graphHash string, seqLen float64, opts Options) (*snapshot.Layout, int, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, false, err
	}

	var cacheKey string
	if graphHash != "" {
		cacheKey = r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached snapshot.Layout
			if err := json.NewDecoder(bytes.NewReader(data)).Decode(&cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return &cached, 0, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	lay, ticks, err := ComputeLayout(ctx, g, seqLen, opts)
	if err != nil {
		return nil, ticks, false, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(lay); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return lay, ticks, false, nil
}

// ComputeLayout positions the graph, optionally relaxes and routes it, and
// assembles the wire-ready layout. It returns the layout and the number of
// relaxation ticks run.
func ComputeLayout(ctx context.Context, g *arg.Graph, seqLen float64, opts Options) (*snapshot.Layout, int, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, 0, err
	}

	idx := arg.NewIndex(g)
	c := opts.Canvas()

	posStart := time.Now()
	observability.Layout().OnPositionStart(ctx, g.NodeCount())
	err := layout.Position(g, idx, c)
	observability.Layout().OnPositionComplete(ctx, time.Since(posStart), err)
	if err != nil {
		return nil, 0, err
	}

	ticks := 0
	if opts.Relax {
		relaxStart := time.Now()
		observability.Layout().OnRelaxStart(ctx, g.NodeCount())
		sim, err := layout.NewSimulation(g, idx, c, opts.Relaxation)
		if err != nil {
			observability.Layout().OnRelaxComplete(ctx, 0, time.Since(relaxStart), err)
			return nil, 0, err
		}
		state, err := sim.Run(ctx)
		ticks = state.Tick
		observability.Layout().OnRelaxComplete(ctx, ticks, time.Since(relaxStart), err)
		if err != nil {
			return nil, ticks, err
		}
	}

	var paths map[int]layout.Path
	if opts.Route {
		routeStart := time.Now()
		observability.Layout().OnRouteStart(ctx, g.EdgeCount())
		paths, err = layout.Route(g, c)
		observability.Layout().OnRouteComplete(ctx, time.Since(routeStart), err)
		if err != nil {
			return nil, ticks, err
		}
	}

	return snapshot.Build(g, c, paths, seqLen), ticks, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// seqLenOf prefers the snapshot's declared sequence length and falls back
// to the graph's genomic extent.
func seqLenOf(snap *snapshot.Snapshot, g *arg.Graph) float64 {
	if snap.Metadata.SequenceLength > 0 {
		return snap.Metadata.SequenceLength
	}
	return snapshot.FromGraph(g).Metadata.SequenceLength
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
