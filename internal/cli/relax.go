package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/argviz/argviz/pkg/arg"
	"github.com/argviz/argviz/pkg/layout"
	"github.com/argviz/argviz/pkg/pipeline"
	"github.com/argviz/argviz/pkg/snapshot"
)

// relaxCommand creates the "relax" command: an interactive view of the
// relaxation run.
func (c *CLI) relaxCommand() *cobra.Command {
	var flags layoutFlags
	var watch bool

	cmd := &cobra.Command{
		Use:   "relax <snapshot.json>",
		Short: "Run the force relaxation on a snapshot",
		Long: `Relax positions a snapshot and runs the force relaxation to convergence.

With --watch, progress is shown tick by tick in an interactive view.
Without it, the simulation runs to completion silently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			opts := flags.options(true)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			g, merged, err := pipeline.BuildGraph(cmd.Context(), snap, opts)
			if err != nil {
				return err
			}
			if merged > 0 {
				printDetail("Merged %d duplicate nodes", merged)
			}

			idx := arg.NewIndex(g)
			canvas := opts.Canvas()
			if err := layout.Position(g, idx, canvas); err != nil {
				return err
			}

			sim, err := layout.NewSimulation(g, idx, canvas, opts.Relaxation)
			if err != nil {
				return err
			}

			var state layout.State
			if watch {
				state, err = watchSimulation(sim, g)
			} else {
				p := newProgress(c.Logger)
				state, err = sim.Run(cmd.Context())
				p.done(fmt.Sprintf("Simulated %d ticks", state.Tick))
			}
			if err != nil {
				return err
			}

			var paths map[int]layout.Path
			if flags.route {
				if paths, err = layout.Route(g, canvas); err != nil {
					return err
				}
			}

			lay := snapshot.Build(g, canvas, paths, snap.Metadata.SequenceLength)
			if err := writeLayout(lay, flags.output); err != nil {
				return err
			}

			printSuccess("Relaxation settled after %d ticks", state.Tick)
			printDetail("Residual energy %.4f, %d edge crossings", state.Energy, layout.CountCrossings(g))
			if flags.output != "" {
				printFile(flags.output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "show tick-by-tick progress")
	return cmd
}

// =============================================================================
// RelaxModel - Interactive simulation view
// =============================================================================

// relaxTickMsg drives the simulation forward one frame.
type relaxTickMsg time.Time

// stepsPerFrame is how many simulation ticks run per rendered frame.
const stepsPerFrame = 3

// relaxModel is the bubbletea model for watching a relaxation run.
type relaxModel struct {
	sim       *layout.Simulation
	g         *arg.Graph
	state     layout.State
	crossings int
	quitting  bool
	err       error
}

func newRelaxModel(sim *layout.Simulation, g *arg.Graph) relaxModel {
	return relaxModel{
		sim:       sim,
		g:         g,
		state:     sim.State(),
		crossings: layout.CountCrossings(g),
	}
}

func relaxTick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return relaxTickMsg(t)
	})
}

func (m relaxModel) Init() tea.Cmd {
	return relaxTick()
}

func (m relaxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
	case relaxTickMsg:
		for i := 0; i < stepsPerFrame && !m.sim.Done(); i++ {
			state, err := m.sim.Step()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.state = state
		}
		m.crossings = layout.CountCrossings(m.g)
		if m.sim.Done() {
			return m, tea.Quit
		}
		return m, relaxTick()
	}
	return m, nil
}

func (m relaxModel) View() string {
	if m.quitting && !m.sim.Done() {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Relaxing layout"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q: stop early"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s %s\n",
		lipgloss.NewStyle().Foreground(colorGray).Width(10).Render("tick"),
		StyleNumber.Render(fmt.Sprintf("%d", m.state.Tick))))
	b.WriteString(fmt.Sprintf("  %s %s %s\n",
		lipgloss.NewStyle().Foreground(colorGray).Width(10).Render("energy"),
		energyBar(m.state.Energy),
		StyleNumber.Render(fmt.Sprintf("%.4f", m.state.Energy))))
	b.WriteString(fmt.Sprintf("  %s %s\n",
		lipgloss.NewStyle().Foreground(colorGray).Width(10).Render("crossings"),
		StyleNumber.Render(fmt.Sprintf("%d", m.crossings))))

	return b.String()
}

// energyBar renders the residual energy as a fixed-width bar. Energy starts
// at 1.0 and decays toward the halt threshold.
func energyBar(energy float64) string {
	const width = 30
	filled := int(energy * width)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return StyleHighlight.Render(bar)
}

// watchSimulation runs the simulation inside a bubbletea program and
// returns the final state.
func watchSimulation(sim *layout.Simulation, g *arg.Graph) (layout.State, error) {
	p := tea.NewProgram(newRelaxModel(sim, g))
	final, err := p.Run()
	if err != nil {
		return sim.State(), err
	}
	if m, ok := final.(relaxModel); ok && m.err != nil {
		return sim.State(), m.err
	}
	return sim.State(), nil
}
