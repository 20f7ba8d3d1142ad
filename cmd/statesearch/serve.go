package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdrpinto/statesearch/geocode"
	"github.com/pdrpinto/statesearch/internal/config"
	"github.com/pdrpinto/statesearch/internal/server"
	"github.com/pdrpinto/statesearch/internal/telemetry"
	"github.com/pdrpinto/statesearch/roads"
)

func newServeCommand(a *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			shutdown, err := telemetry.Init(ctx, a.cfg.Telemetry)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					a.logger.Warn("telemetry shutdown", slog.Any("error", err))
				}
			}()

			serverConfig := server.Config{
				Logger:        a.logger,
				SearchOptions: a.cfg.SearchOptions(),
				Metrics:       telemetry.MetricsHandler(),
				MaxExpansions: a.cfg.Server.MaxExpansions,
			}
			network, err := a.cfg.LoadNetwork()
			switch {
			case errors.Is(err, config.ErrNoNetwork):
				a.logger.Info("no road network configured, route endpoint disabled")
			case err != nil:
				return err
			default:
				var geocoder geocode.Geocoder
				var closeGeocoder func() error
				geocoder, closeGeocoder, err = a.geocoder(offline)
				if err != nil {
					return err
				}
				defer closeGeocoder()
				serverConfig.Network = network
				serverConfig.Geocoder = geocoder
				serverConfig.Weight, _ = roads.ParseWeight(a.cfg.Network.Weight)
				a.logger.Info("road network loaded",
					slog.String("name", network.Name),
					slog.Int("nodes", network.NodeCount()),
					slog.Int("edges", network.EdgeCount()),
				)
			}

			if a.cfg.Server.Mode != "" {
				gin.SetMode(a.cfg.Server.Mode)
			}
			return server.New(serverConfig).Run(ctx, a.cfg.Server.Addr)
		},
	}
	flags := cmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("network", "", "road network YAML (overrides network.path)")
	flags.BoolVar(&offline, "offline", false, "resolve names only from geocoder.places")
	cobra.CheckErr(a.viper.BindPFlag("server.addr", flags.Lookup("addr")))
	cobra.CheckErr(a.viper.BindPFlag("network.path", flags.Lookup("network")))
	return cmd
}
