package layout

import (
	"context"
	"io"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tidwall/rtree"

	"github.com/argviz/argviz/pkg/arg"
)

// Defaults for the relaxation loop.
const (
	DefaultMaxTicks        = 300
	DefaultEnergyThreshold = 0.005
	DefaultEnergyDecay     = 0.98

	DefaultLinkStrength  = 0.10
	DefaultSiblingBoost  = 1.8
	DefaultRepulsion     = 30.0
	DefaultMidpointPull  = 0.08
	DefaultClampEvery    = 3
	DefaultCrossingEvery = 10
	DefaultCrossingCap   = 16

	// dragSiblingSlack bounds how far a dragged node may stray from its
	// sibling-average x.
	dragSiblingSlack = 150.0

	velocityDamping = 0.6
)

// RelaxOptions configures a Simulation. The zero value is usable after
// ValidateAndSetDefaults.
type RelaxOptions struct {
	// MaxTicks is the tick budget; the loop halts when it is exhausted
	// even if energy remains above threshold.
	MaxTicks int `json:"max_ticks,omitempty"`

	// EnergyThreshold stops the loop once the decaying energy falls
	// below it.
	EnergyThreshold float64 `json:"energy_threshold,omitempty"`

	// EnergyDecay is the per-tick multiplier applied to energy, in (0,1).
	EnergyDecay float64 `json:"energy_decay,omitempty"`

	// LinkStrength scales the per-edge attraction.
	LinkStrength float64 `json:"link_strength,omitempty"`

	// SiblingBoost multiplies link attraction for edges whose target has
	// siblings, tightening sibling clusters.
	SiblingBoost float64 `json:"sibling_boost,omitempty"`

	// Repulsion scales the same-rank pairwise push.
	Repulsion float64 `json:"repulsion,omitempty"`

	// MidpointPull scales the pull of non-sample nodes toward the
	// midpoint of sibling-average x and descendant-range center.
	MidpointPull float64 `json:"midpoint_pull,omitempty"`

	// ClampEvery subsamples the hard descendant-range clamp: it runs on
	// every ClampEvery-th tick and on the final one.
	ClampEvery int `json:"clamp_every,omitempty"`

	// CrossingEvery subsamples the crossing-reduction pass.
	CrossingEvery int `json:"crossing_every,omitempty"`

	// CrossingCap bounds how many nodes one crossing-reduction pass may
	// touch, keeping a tick inside the frame budget.
	CrossingCap int `json:"crossing_cap,omitempty"`

	// Logger receives per-run debug output. Defaults to a discarding
	// logger.
	Logger *log.Logger `json:"-"`

	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks fields and applies defaults. Idempotent.
func (o *RelaxOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxTicks < 0 || o.EnergyThreshold < 0 {
		return ErrInvalidRelaxOptions
	}
	if o.EnergyDecay != 0 && (o.EnergyDecay < 0 || o.EnergyDecay >= 1) {
		return ErrInvalidRelaxOptions
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.EnergyThreshold == 0 {
		o.EnergyThreshold = DefaultEnergyThreshold
	}
	if o.EnergyDecay == 0 {
		o.EnergyDecay = DefaultEnergyDecay
	}
	if o.LinkStrength == 0 {
		o.LinkStrength = DefaultLinkStrength
	}
	if o.SiblingBoost == 0 {
		o.SiblingBoost = DefaultSiblingBoost
	}
	if o.Repulsion == 0 {
		o.Repulsion = DefaultRepulsion
	}
	if o.MidpointPull == 0 {
		o.MidpointPull = DefaultMidpointPull
	}
	if o.ClampEvery <= 0 {
		o.ClampEvery = DefaultClampEvery
	}
	if o.CrossingEvery <= 0 {
		o.CrossingEvery = DefaultCrossingEvery
	}
	if o.CrossingCap <= 0 {
		o.CrossingCap = DefaultCrossingCap
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// State is the observable progress of a simulation.
type State struct {
	Tick   int
	Energy float64
	Done   bool
}

// Simulation is the tick-driven relaxation loop. It owns the graph's
// mutable position state exclusively for its lifetime: no two simulations
// may run over the same graph concurrently, and a new graph must cancel
// the previous simulation before starting its own.
//
// The loop is single-threaded. Step advances one tick and is meant to be
// called once per animation frame by the host.
type Simulation struct {
	g      *arg.Graph
	idx    *arg.Index
	canvas Canvas
	opts   RelaxOptions

	state   State
	maxRank int
	ranks   map[int][]*arg.Node
	vel     map[int]float64

	dragID  int
	dragged bool
}

// NewSimulation prepares a relaxation over g's current positions. Call
// Position first; ranks must be assigned.
func NewSimulation(g *arg.Graph, idx *arg.Index, c Canvas, opts RelaxOptions) (*Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	s := &Simulation{
		g:       g,
		idx:     idx,
		canvas:  c,
		opts:    opts,
		state:   State{Energy: 1.0},
		maxRank: arg.MaxRank(g),
		ranks:   make(map[int][]*arg.Node),
		vel:     make(map[int]float64, g.NodeCount()),
	}
	for _, n := range g.Nodes() {
		s.ranks[n.Rank] = append(s.ranks[n.Rank], n)
	}
	return s, nil
}

// State returns the current tick and energy.
func (s *Simulation) State() State { return s.state }

// Done reports whether the loop has terminated.
func (s *Simulation) Done() bool { return s.state.Done }

// Step advances the simulation by one tick: soft forces, then the
// subsampled hard clamp, then the low-frequency crossing-reduction pass.
// It returns the post-tick state.
func (s *Simulation) Step() (State, error) {
	if s.state.Done {
		return s.state, ErrSimulationDone
	}

	s.applyLinkForces()
	s.applyRepulsion()
	s.applyMidpointPull()
	s.integrate()
	s.resolveCollisions()
	s.pinVertical()

	s.state.Tick++
	s.state.Energy *= s.opts.EnergyDecay

	final := s.state.Energy < s.opts.EnergyThreshold || s.state.Tick >= s.opts.MaxTicks
	if s.state.Tick%s.opts.ClampEvery == 0 || final {
		s.clampToDescendantRanges()
	}
	if s.state.Tick%s.opts.CrossingEvery == 0 {
		s.reduceCrossings()
	}
	if final {
		s.state.Done = true
		s.opts.Logger.Debug("relaxation finished",
			"ticks", s.state.Tick, "energy", s.state.Energy)
	}
	return s.state, nil
}

// Run ticks the simulation to termination, checking ctx between ticks.
// Cancellation leaves positions at the last completed tick, with the final
// hard clamp applied so the rest-state invariant still holds.
func (s *Simulation) Run(ctx context.Context) (State, error) {
	for !s.state.Done {
		select {
		case <-ctx.Done():
			s.clampToDescendantRanges()
			s.state.Done = true
			return s.state, ctx.Err()
		default:
		}
		if _, err := s.Step(); err != nil {
			return s.state, err
		}
	}
	return s.state, nil
}

// =============================================================================
// Dragging
// =============================================================================

// BeginDrag pins a node to the pointer. While held the node ignores soft
// forces; its x follows MoveDrag subject to the usual clamps.
func (s *Simulation) BeginDrag(id int) error {
	if _, ok := s.g.Node(id); !ok {
		return ErrUnknownDragNode
	}
	s.dragID = id
	s.dragged = true
	s.vel[id] = 0
	return nil
}

// MoveDrag updates the held node's x from the pointer position. The value
// clamps to the node's descendant-sample x-range when one exists, else to
// the canvas padding, and additionally to a bounded distance from the
// sibling-average x. Y stays pinned to the rank coordinate throughout.
func (s *Simulation) MoveDrag(x float64) {
	if !s.dragged {
		return
	}
	n, ok := s.g.Node(s.dragID)
	if !ok {
		return
	}
	if lo, hi, ok := s.idx.DescendantXRange(n.ID); ok && !n.IsSample {
		x = clamp(x, lo, hi)
	} else {
		x = s.canvas.ClampX(x)
	}
	if mean, ok := s.idx.SiblingMeanX(n.ID); ok {
		x = clamp(x, mean-dragSiblingSlack, mean+dragSiblingSlack)
	}
	n.X = x
	n.Y = s.canvas.RankY(n.Rank, s.maxRank)
}

// EndDrag releases the held node back to simulation control.
func (s *Simulation) EndDrag() { s.dragged = false }

// =============================================================================
// Forces
// =============================================================================

func (s *Simulation) applyLinkForces() {
	for _, e := range s.g.Edges() {
		src, _ := s.g.Node(e.Source)
		tgt, _ := s.g.Node(e.Target)
		if src == nil || tgt == nil {
			continue
		}
		strength := s.opts.LinkStrength
		if len(s.idx.SiblingsOf(tgt.ID)) > 0 {
			strength *= s.opts.SiblingBoost
		}
		pull := (tgt.X - src.X) * strength * s.state.Energy
		s.push(src, pull)
		s.push(tgt, -pull)
	}
}

func (s *Simulation) applyRepulsion() {
	for _, nodes := range s.ranks {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				dx := b.X - a.X
				dist := math.Abs(dx)
				if dist < 1 {
					dist = 1
				}
				force := s.opts.Repulsion / dist * s.state.Energy
				if dx >= 0 {
					s.push(a, -force)
					s.push(b, force)
				} else {
					s.push(a, force)
					s.push(b, -force)
				}
			}
		}
	}
}

// applyMidpointPull draws each non-sample node toward the midpoint of its
// sibling-average x and the center of its descendant-sample range. Nodes
// with neither constraint drift freely.
func (s *Simulation) applyMidpointPull() {
	for _, n := range s.g.Nodes() {
		if n.IsSample {
			continue
		}
		var targets []float64
		if mean, ok := s.idx.SiblingMeanX(n.ID); ok {
			targets = append(targets, mean)
		}
		if lo, hi, ok := s.idx.DescendantXRange(n.ID); ok {
			targets = append(targets, (lo+hi)/2)
		}
		if len(targets) == 0 {
			continue
		}
		sum := 0.0
		for _, t := range targets {
			sum += t
		}
		mid := sum / float64(len(targets))
		s.push(n, (mid-n.X)*s.opts.MidpointPull*s.state.Energy)
	}
}

func (s *Simulation) push(n *arg.Node, force float64) {
	if n.IsSample {
		return // samples anchor the layout
	}
	if s.dragged && n.ID == s.dragID {
		return
	}
	s.vel[n.ID] += force
}

func (s *Simulation) integrate() {
	for _, n := range s.g.Nodes() {
		if n.IsSample || (s.dragged && n.ID == s.dragID) {
			continue
		}
		n.X = s.canvas.ClampX(n.X + s.vel[n.ID])
		s.vel[n.ID] *= velocityDamping
	}
}

// resolveCollisions enforces minimum separation within each rank. Node
// extents go into an r-tree per rank; overlapping neighbors are pushed
// apart symmetrically, with samples and the dragged node held fixed.
func (s *Simulation) resolveCollisions() {
	for _, nodes := range s.ranks {
		if len(nodes) < 2 {
			continue
		}
		var tr rtree.RTreeG[*arg.Node]
		for _, n := range nodes {
			r := Radius(n)
			tr.Insert([2]float64{n.X - r, n.Y - r}, [2]float64{n.X + r, n.Y + r}, n)
		}
		for _, n := range nodes {
			r := Radius(n)
			lo := [2]float64{n.X - r - minSpacing, n.Y - r}
			hi := [2]float64{n.X + r + minSpacing, n.Y + r}
			tr.Search(lo, hi, func(_, _ [2]float64, other *arg.Node) bool {
				if other.ID <= n.ID {
					return true
				}
				s.separate(n, other)
				return true
			})
		}
	}
}

func (s *Simulation) separate(a, b *arg.Node) {
	gap := math.Abs(b.X - a.X)
	want := Radius(a) + Radius(b) + minSpacing/2
	if gap >= want {
		return
	}
	shift := (want - gap) / 2
	if b.X < a.X {
		a, b = b, a
	}
	aFixed := a.IsSample || (s.dragged && a.ID == s.dragID)
	bFixed := b.IsSample || (s.dragged && b.ID == s.dragID)
	switch {
	case aFixed && bFixed:
	case aFixed:
		b.X = s.canvas.ClampX(b.X + 2*shift)
	case bFixed:
		a.X = s.canvas.ClampX(a.X - 2*shift)
	default:
		a.X = s.canvas.ClampX(a.X - shift)
		b.X = s.canvas.ClampX(b.X + shift)
	}
}

func (s *Simulation) pinVertical() {
	for _, n := range s.g.Nodes() {
		n.Y = s.canvas.RankY(n.Rank, s.maxRank)
	}
}

// clampToDescendantRanges is the hard constraint: every non-sample node's
// x re-enters its descendant-sample x-range. Subsampled across ticks for
// cost, but always applied on the final tick so the invariant holds at
// rest.
func (s *Simulation) clampToDescendantRanges() {
	for _, n := range s.g.Nodes() {
		if n.IsSample {
			continue
		}
		if lo, hi, ok := s.idx.DescendantXRange(n.ID); ok {
			n.X = clamp(n.X, lo, hi)
		}
	}
}

// reduceCrossings nudges a bounded subset of non-sample nodes toward the
// mean x of their connected neighbors, keeping a nudge only when it does
// not increase the crossings its edges participate in. Candidates are the
// highest-degree non-samples, capped per pass.
func (s *Simulation) reduceCrossings() {
	var candidates []*arg.Node
	for _, n := range s.g.Nodes() {
		if !n.IsSample && !(s.dragged && n.ID == s.dragID) {
			candidates = append(candidates, n)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := s.g.Degree(candidates[i].ID), s.g.Degree(candidates[j].ID)
		if di != dj {
			return di > dj
		}
		return candidates[i].ID < candidates[j].ID
	})
	if len(candidates) > s.opts.CrossingCap {
		candidates = candidates[:s.opts.CrossingCap]
	}

	for _, n := range candidates {
		neighbors := s.g.Neighbors(n.ID)
		if len(neighbors) == 0 {
			continue
		}
		sum := 0.0
		count := 0
		for _, id := range neighbors {
			if nb, ok := s.g.Node(id); ok {
				sum += nb.X
				count++
			}
		}
		if count == 0 {
			continue
		}
		target := sum / float64(count)
		if lo, hi, ok := s.idx.DescendantXRange(n.ID); ok {
			target = clamp(target, lo, hi)
		}
		target = s.canvas.ClampX(target)

		before := CrossingsInvolving(s.g, n.ID)
		old := n.X
		n.X = target
		if CrossingsInvolving(s.g, n.ID) > before {
			n.X = old
		}
	}
}
