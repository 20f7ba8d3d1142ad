package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	search "github.com/pdrpinto/statesearch"
	"github.com/pdrpinto/statesearch/render"
	"github.com/pdrpinto/statesearch/roads"
)

func newRouteCommand(a *app) *cobra.Command {
	var (
		networkPath string
		from, to    string
		pairs       []string
		weightName  string
		geojsonPath string
		offline     bool
	)
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Find a route between two places on a road network",
		Example: `  statesearch route --network envigado.yaml --from "Parque Envigado" --to "Plaza" --strategy astar
  statesearch route --network envigado.yaml --pair parque:plaza --pair plaza:parque --weight travel_time`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if networkPath != "" {
				a.cfg.Network.Path = networkPath
			}
			if weightName == "" {
				weightName = a.cfg.Network.Weight
			}
			weight, err := roads.ParseWeight(weightName)
			if err != nil {
				return err
			}
			if from != "" || to != "" {
				pairs = append([]string{from + ":" + to}, pairs...)
			}
			if len(pairs) == 0 {
				return errors.New("route: give --from and --to, or at least one --pair")
			}

			network, err := a.cfg.LoadNetwork()
			if err != nil {
				return err
			}
			geocoder, closeGeocoder, err := a.geocoder(offline)
			if err != nil {
				return err
			}
			defer closeGeocoder()

			// Geocoding is rate limited, so plans are resolved in order and
			// only the searches run concurrently.
			jobs := make([]search.Job[roads.NodeID], 0, len(pairs))
			routes := make([]*roads.Route, 0, len(pairs))
			for _, pair := range pairs {
				origin, destination, ok := strings.Cut(pair, ":")
				if !ok || origin == "" || destination == "" {
					return fmt.Errorf("route: pair %q is not origin:destination", pair)
				}
				route, err := roads.Plan(cmd.Context(), geocoder, network, origin, destination, weight, a.logger)
				if err != nil {
					return err
				}
				routes = append(routes, route)
				jobs = append(jobs, search.Job[roads.NodeID]{
					Name:    origin + " to " + destination,
					Problem: route.Problem,
					Start:   route.Start,
				})
			}

			results, err := search.RunAll(cmd.Context(), jobs, append(a.cfg.SearchOptions(), search.WithLogger(a.logger))...)
			if err != nil {
				return err
			}
			var failures []error
			for i, job := range results {
				if err := printRoute(cmd.OutOrStdout(), job, routes[i], a.cfg.Search.Strategy); err != nil {
					return err
				}
				if job.Err != nil {
					failures = append(failures, fmt.Errorf("%s: %w", job.Name, job.Err))
				}
			}
			if geojsonPath != "" && len(results) > 0 && results[0].Result.Found {
				if err := writeGeoJSON(geojsonPath, routes[0], results[0].Result); err != nil {
					return err
				}
				a.logger.Info("wrote geojson", slog.String("path", geojsonPath))
			}
			return errors.Join(failures...)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&networkPath, "network", "", "road network YAML (overrides network.path)")
	flags.StringVar(&from, "from", "", "origin place name")
	flags.StringVar(&to, "to", "", "destination place name")
	flags.StringArrayVar(&pairs, "pair", nil, "origin:destination, may repeat")
	flags.StringVar(&weightName, "weight", "", "edge weight (length, travel_time)")
	flags.StringVar(&geojsonPath, "geojson", "", "write the first route as GeoJSON to this file")
	flags.BoolVar(&offline, "offline", false, "resolve names only from geocoder.places")
	return cmd
}

func printRoute(w io.Writer, job search.JobResult[roads.NodeID], route *roads.Route, strategy string) error {
	unit := "m"
	if route.Problem.Weight() == roads.ByTravelTime {
		unit = "s"
	}
	plan := render.Plan{
		Title:     fmt.Sprintf("%s (node %d to %d) by %s [%s]", job.Name, route.Start, route.Goal, route.Problem.Weight(), strategy),
		Found:     job.Result.Found,
		TotalCost: job.Result.TotalCost,
		CostUnit:  unit,
		Expanded:  job.Result.ExpandedNodes,
	}
	if job.Result.Found {
		plan.Rows = append(plan.Rows, render.Row{Action: "start", State: fmt.Sprintf("node %d", route.Start)})
		path := job.Result.Path
		for i, segment := range route.Problem.Segments(path) {
			action := segment.Edge.Name
			if action == "" {
				action = segment.Edge.Highway
			}
			if action == "" {
				action = route.Problem.OperatorName(path[i+1].Action)
			}
			plan.Rows = append(plan.Rows, render.Row{
				Step:   i + 1,
				Action: action,
				State:  fmt.Sprintf("node %d", segment.To.ID),
				Cost:   path[i+1].Cost,
			})
		}
	}
	return render.Text(w, plan)
}

func writeGeoJSON(path string, route *roads.Route, result search.Result[roads.NodeID]) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.RouteGeoJSON(file, roads.RenderSegments(route.Problem.Segments(result.Path))); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
