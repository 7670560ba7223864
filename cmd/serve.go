package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/geomap"
	"github.com/arcanaland/feedview/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the card grid and the earthquake map over HTTP",
	Long: `Serve starts a web server with two pages: /cards shows a card draw with
click-to-select, /quakes shows the earthquake feed on a Leaflet map. The same
data is available as JSON under /api.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		client, err := newFeedClient()
		if err != nil {
			return err
		}
		sessionTTL, err := cfg.SessionTimeout()
		if err != nil {
			return err
		}

		srv := server.New(server.Options{
			CardsURL:    cfg.Cards.URL,
			QuakesURL:   cfg.Quakes.URL,
			TileURL:     cfg.Quakes.TileURL,
			Attribution: cfg.Quakes.Attribution,
			Center:      geomap.LatLng{Lat: cfg.Quakes.CenterLat, Lng: cfg.Quakes.CenterLon},
			Zoom:        cfg.Quakes.Zoom,
			MaxSessions: cfg.Server.MaxSessions,
			SessionTTL:  sessionTTL,
		}, client, logger)

		logger.Info("serving", zap.String("addr", addr))
		return srv.Run(cmd.Context(), addr)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default from config)")
}
