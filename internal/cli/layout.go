package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/argviz/argviz/pkg/pipeline"
	"github.com/argviz/argviz/pkg/snapshot"
)

// layoutFlags holds the shared layout pipeline flags.
type layoutFlags struct {
	output       string
	width        float64
	height       float64
	dedup        bool
	spatial      bool
	route        bool
	focusNode    int
	focusMode    string
	genomicStart float64
	genomicEnd   float64
	noCache      bool
}

// register adds the layout flags to a command.
func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write layout JSON to file (default stdout)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width in pixels")
	cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height in pixels")
	cmd.Flags().BoolVar(&f.dedup, "dedup", false, "merge structurally identical nodes")
	cmd.Flags().BoolVar(&f.spatial, "spatial", false, "require identical locations when merging")
	cmd.Flags().BoolVar(&f.route, "route", false, "route edges as orthogonal paths")
	cmd.Flags().IntVar(&f.focusNode, "focus", -1, "restrict the graph to this node's neighborhood")
	cmd.Flags().StringVar(&f.focusMode, "focus-mode", "", "focus filter: subgraph or ancestors")
	cmd.Flags().Float64Var(&f.genomicStart, "genomic-start", 0, "genomic window start")
	cmd.Flags().Float64Var(&f.genomicEnd, "genomic-end", 0, "genomic window end")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "bypass the layout cache")
}

// options converts the flags into pipeline options.
func (f *layoutFlags) options(relax bool) pipeline.Options {
	opts := pipeline.Options{
		GenomicStart: f.genomicStart,
		GenomicEnd:   f.genomicEnd,
		FocusMode:    f.focusMode,
		Dedup:        f.dedup,
		Spatial:      f.spatial,
		Width:        f.width,
		Height:       f.height,
		Relax:        relax,
		Route:        f.route,
	}
	if f.focusNode >= 0 {
		focus := f.focusNode
		opts.FocusNode = &focus
	}
	return opts
}

// layoutCommand creates the "layout" command.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags layoutFlags
	var relax bool

	cmd := &cobra.Command{
		Use:   "layout <snapshot.json>",
		Short: "Compute a layout for a snapshot file",
		Long: `Layout reads an ARG snapshot from a JSON file, computes node positions,
and writes the resulting layout as JSON.

By default only the deterministic positioner runs. Use --relax to run the
force relaxation to convergence and --route for orthogonal edge paths.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			runner, err := c.newRunner(flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			sp := newSpinnerWithContext(cmd.Context(), "Computing layout")
			sp.Start()
			result, err := runner.Execute(cmd.Context(), snap, flags.options(relax))
			sp.Stop()
			if err != nil {
				return err
			}

			if err := writeLayout(result.Layout, flags.output); err != nil {
				return err
			}

			printSuccess("Layout complete")
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
			if result.Stats.MergedNodes > 0 {
				printDetail("Merged %d duplicate nodes", result.Stats.MergedNodes)
			}
			if relax {
				printDetail("Relaxation ran %d ticks", result.Stats.RelaxTicks)
			}
			if flags.output != "" {
				printFile(flags.output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&relax, "relax", false, "run force relaxation to convergence")
	return cmd
}

// writeLayout writes the layout JSON to path, or stdout when path is empty.
func writeLayout(lay *snapshot.Layout, path string) error {
	data, err := json.MarshalIndent(lay, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
