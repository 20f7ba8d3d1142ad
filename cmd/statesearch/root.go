package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdrpinto/statesearch/geocode"
	"github.com/pdrpinto/statesearch/internal/config"
	"github.com/pdrpinto/statesearch/internal/logging"
)

// app carries what the persistent pre-run loads for the subcommands.
type app struct {
	viper   *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{viper: config.New()}
	root := &cobra.Command{
		Use:   "statesearch",
		Short: "statesearch: generic state-space search",
		Long: `statesearch runs breadth-first, depth-first, uniform-cost, greedy and A*
search over pluggable problems. It ships the water-jug puzzle and shortest
routes over a road network.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("strategy", "bfs", "search strategy (bfs, dfs, ucs, greedy, astar)")
	flags.Int("max-expansions", 0, "stop after this many expansions (0 = unbounded)")
	flags.Int("workers", 0, "concurrent searches for batch runs (0 = number of CPUs)")

	bindings := map[string]string{
		"log.level":             "log-level",
		"search.strategy":       "strategy",
		"search.max_expansions": "max-expansions",
		"search.workers":        "workers",
	}
	for key, flag := range bindings {
		cobra.CheckErr(a.viper.BindPFlag(key, flags.Lookup(flag)))
	}

	root.AddCommand(newJugCommand(a), newRouteCommand(a), newServeCommand(a))
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.viper, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	slog.SetDefault(logger)
	a.cfg, a.logger = cfg, logger
	if a.cfgFile != "" {
		logger.Debug("using config file", slog.String("path", a.cfgFile))
	}
	return nil
}

// geocoder builds the lookup chain: configured places first, then the
// Nominatim client behind the retrier and the optional bbolt cache.
func (a *app) geocoder(offline bool) (geocode.Geocoder, func() error, error) {
	closer := func() error { return nil }
	places := a.cfg.StaticPlaces()
	if offline {
		return places, closer, nil
	}

	options := a.cfg.NominatimOptions()
	options.Logger = a.logger
	var remote geocode.Geocoder = geocode.WithRetry(
		geocode.NewNominatim(options),
		a.cfg.Geocoder.MaxRetries,
		a.cfg.Geocoder.RetryDelay,
		a.logger,
	)
	if path := a.cfg.Geocoder.CachePath; path != "" {
		cache, err := geocode.OpenCache(path, remote)
		if err != nil {
			return nil, nil, err
		}
		remote, closer = cache, cache.Close
	}
	return geocode.Chain{places, remote}, closer, nil
}
