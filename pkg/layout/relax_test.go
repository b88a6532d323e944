package layout

import (
	"context"
	"errors"
	"testing"

	"github.com/argviz/argviz/pkg/arg"
)

func relaxedSim(t *testing.T, opts RelaxOptions) (*Simulation, *arg.Graph, *arg.Index) {
	t.Helper()
	g, idx := twoCherries(t)
	c := DefaultCanvas()
	if err := Position(g, idx, c); err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	sim, err := NewSimulation(g, idx, c, opts)
	if err != nil {
		t.Fatalf("NewSimulation() error = %v", err)
	}
	return sim, g, idx
}

func TestRelaxOptionsDefaults(t *testing.T) {
	var opts RelaxOptions
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.MaxTicks != DefaultMaxTicks {
		t.Errorf("MaxTicks = %d, want %d", opts.MaxTicks, DefaultMaxTicks)
	}
	if opts.EnergyDecay != DefaultEnergyDecay {
		t.Errorf("EnergyDecay = %g, want %g", opts.EnergyDecay, DefaultEnergyDecay)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent.
	opts.MaxTicks = 7
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second ValidateAndSetDefaults() error = %v", err)
	}
	if opts.MaxTicks != 7 {
		t.Error("revalidation overwrote explicit value")
	}
}

func TestRelaxOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts RelaxOptions
	}{
		{"negative ticks", RelaxOptions{MaxTicks: -1}},
		{"negative threshold", RelaxOptions{EnergyThreshold: -0.5}},
		{"decay at one", RelaxOptions{EnergyDecay: 1.0}},
		{"negative decay", RelaxOptions{EnergyDecay: -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, ErrInvalidRelaxOptions) {
				t.Errorf("error = %v, want ErrInvalidRelaxOptions", err)
			}
		})
	}
}

func TestSimulation_RunTerminates(t *testing.T) {
	sim, _, _ := relaxedSim(t, RelaxOptions{MaxTicks: 50})

	state, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !state.Done {
		t.Error("Run() returned before termination")
	}
	if state.Tick == 0 || state.Tick > 50 {
		t.Errorf("Tick = %d, want in (0, 50]", state.Tick)
	}
}

func TestSimulation_EnergyDecays(t *testing.T) {
	sim, _, _ := relaxedSim(t, RelaxOptions{})

	before := sim.State().Energy
	state, err := sim.Step()
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if state.Energy >= before {
		t.Errorf("Energy = %g after tick, want < %g", state.Energy, before)
	}
}

func TestSimulation_InvariantAtRest(t *testing.T) {
	sim, g, idx := relaxedSim(t, RelaxOptions{MaxTicks: 40})

	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, n := range g.Nodes() {
		if n.IsSample {
			continue
		}
		lo, hi, ok := idx.DescendantXRange(n.ID)
		if !ok {
			continue
		}
		if n.X < lo || n.X > hi {
			t.Errorf("node %d rested at x = %g outside [%g, %g]", n.ID, n.X, lo, hi)
		}
	}
}

func TestSimulation_SamplesNeverMove(t *testing.T) {
	sim, g, _ := relaxedSim(t, RelaxOptions{MaxTicks: 30})

	want := map[int]float64{}
	for _, s := range g.Samples() {
		want[s.ID] = s.X
	}
	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, s := range g.Samples() {
		if s.X != want[s.ID] {
			t.Errorf("sample %d moved from %g to %g", s.ID, want[s.ID], s.X)
		}
	}
}

func TestSimulation_YStaysPinned(t *testing.T) {
	sim, g, _ := relaxedSim(t, RelaxOptions{MaxTicks: 20})
	c := DefaultCanvas()
	maxRank := arg.MaxRank(g)

	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, n := range g.Nodes() {
		if want := c.RankY(n.Rank, maxRank); n.Y != want {
			t.Errorf("node %d y = %g, want rank coordinate %g", n.ID, n.Y, want)
		}
	}
}

func TestSimulation_Cancellation(t *testing.T) {
	sim, _, _ := relaxedSim(t, RelaxOptions{MaxTicks: 10000, EnergyThreshold: 1e-12, EnergyDecay: 0.9999})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run(canceled) error = %v, want context.Canceled", err)
	}
	if !sim.Done() {
		t.Error("canceled simulation not marked done")
	}
	if _, err := sim.Step(); !errors.Is(err, ErrSimulationDone) {
		t.Errorf("Step(after done) error = %v, want ErrSimulationDone", err)
	}
}

func TestSimulation_Drag(t *testing.T) {
	sim, g, idx := relaxedSim(t, RelaxOptions{})

	if err := sim.BeginDrag(5); err != nil {
		t.Fatalf("BeginDrag() error = %v", err)
	}
	sim.MoveDrag(-500) // far off canvas
	n, _ := g.Node(5)
	lo, _, ok := idx.DescendantXRange(5)
	if !ok {
		t.Fatal("expected a descendant range for node 5")
	}
	if n.X < lo {
		t.Errorf("dragged x = %g escaped range floor %g", n.X, lo)
	}

	// The held node ignores forces.
	held := n.X
	if _, err := sim.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if n.X != held {
		t.Errorf("held node moved during tick: %g -> %g", held, n.X)
	}

	sim.EndDrag()
	if _, err := sim.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
}

func TestSimulation_DragUnknownNode(t *testing.T) {
	sim, _, _ := relaxedSim(t, RelaxOptions{})
	if err := sim.BeginDrag(999); !errors.Is(err, ErrUnknownDragNode) {
		t.Errorf("BeginDrag(unknown) error = %v, want ErrUnknownDragNode", err)
	}
}

func TestSimulation_MinimumSeparation(t *testing.T) {
	// Two internals at the same rank forced onto the same x must come
	// apart.
	g, idx := twoCherries(t)
	c := DefaultCanvas()
	if err := Position(g, idx, c); err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	n5, _ := g.Node(5)
	n6, _ := g.Node(6)
	n5.X, n6.X = 400, 400

	sim, err := NewSimulation(g, idx, c, RelaxOptions{MaxTicks: 60})
	if err != nil {
		t.Fatalf("NewSimulation() error = %v", err)
	}
	if _, err := sim.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	gap := n6.X - n5.X
	if gap < 0 {
		gap = -gap
	}
	if gap < minSpacing/2 {
		t.Errorf("same-rank gap = %g, want at least %g", gap, minSpacing/2)
	}
}
