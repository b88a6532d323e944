package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/argviz/argviz/pkg/snapshot"
)

// routeCommand creates the "route" command: positions a snapshot and
// routes every edge as an orthogonal path, without relaxation.
func (c *CLI) routeCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "route <snapshot.json>",
		Short: "Route a snapshot's edges as orthogonal paths",
		Long: `Route computes deterministic positions for a snapshot and routes every
edge as an axis-aligned path with at most one bend. Equivalent to
"layout --route" without the relaxation step.`,
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

			opts := flags.options(false)
			opts.Route = true

			result, err := runner.Execute(cmd.Context(), snap, opts)
			if err != nil {
				return err
			}

			if err := writeLayout(result.Layout, flags.output); err != nil {
				return err
			}

			printSuccess("Routed %d edge records", len(result.Layout.Edges))
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.LayoutHit)
			if flags.output != "" {
				printFile(flags.output)
			}
			return nil
		},
	}

	flags.register(cmd)
	_ = cmd.Flags().MarkHidden("route") // always on for this command
	return cmd
}
