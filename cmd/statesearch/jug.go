package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/jug"
	"github.com/pdrpinto/statesearch/render"
)

func newJugCommand(a *app) *cobra.Command {
	var (
		capacityA, capacityB int
		jar, volume          int
		startA, startB       int
		trace                bool
	)
	cmd := &cobra.Command{
		Use:   "jug",
		Short: "Solve the two water jugs puzzle",
		Example: `  statesearch jug                       # classic 3 and 4 litre jugs, 2 litres in jug 2
  statesearch jug --jar 1 --volume 1 --strategy dfs --trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			goal, err := jug.JarEquals(jar, volume)
			if err != nil {
				return err
			}
			problem, err := jug.New(capacityA, capacityB, goal)
			if err != nil {
				return err
			}
			start := jug.State{A: startA, B: startB}
			if !problem.Valid(start) {
				return fmt.Errorf("start %s does not fit capacities (%d,%d)", start, capacityA, capacityB)
			}

			options := append(a.cfg.SearchOptions(), search.WithLogger(a.logger))
			if trace {
				options = append(options, search.WithObserver(func(event search.Event[jug.State]) {
					a.logger.Info("expand",
						slog.Int("step", event.Step),
						slog.String("state", event.State.String()),
						slog.Int("depth", event.Depth),
						slog.Int("frontier", event.Frontier),
						slog.Int("explored", event.Explored),
					)
				}))
			}

			result, searchErr := search.Search(cmd.Context(), problem, start, options...)
			plan := render.Plan{
				Title:     fmt.Sprintf("jugs (%d,%d) from %s: jug %d holds %d [%s]", capacityA, capacityB, start, jar, volume, a.cfg.Search.Strategy),
				Found:     result.Found,
				TotalCost: result.TotalCost,
				Expanded:  result.ExpandedNodes,
			}
			for i, step := range result.Path {
				plan.Rows = append(plan.Rows, render.Row{
					Step:   i,
					Action: search.OperatorName(problem, step.Action),
					State:  step.State.String(),
					Cost:   step.Cost,
				})
			}
			if err := render.Text(cmd.OutOrStdout(), plan); err != nil {
				return err
			}
			return searchErr
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&capacityA, "cap-a", 3, "capacity of jug 1")
	flags.IntVar(&capacityB, "cap-b", 4, "capacity of jug 2")
	flags.IntVar(&jar, "jar", 2, "jug that must hold the target volume (1 or 2)")
	flags.IntVar(&volume, "volume", 2, "target volume")
	flags.IntVar(&startA, "start-a", 0, "initial volume of jug 1")
	flags.IntVar(&startB, "start-b", 0, "initial volume of jug 2")
	flags.BoolVar(&trace, "trace", false, "log every expansion")
	return cmd
}
