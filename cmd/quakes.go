package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/geomap"
	"github.com/arcanaland/feedview/internal/quake"
)

// reservedRows leaves room below the map for attribution and popups
const reservedRows = 6

var quakesCmd = &cobra.Command{
	Use:   "quakes",
	Short: "Plot the weekly USGS earthquake feed on a terminal map",
	Long: `Quakes fetches the USGS all_week GeoJSON feed and plots one marker per
earthquake on a map centered on the configured view. Markers inside the view
are listed with their magnitude popups.

A failed fetch is logged and the map is shown with its base layer only.

Examples:
  feedview quakes
  feedview quakes --center 35.68,139.69 --zoom 5
  feedview quakes --zoom 1 --width 120 --height 40`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		centerFlag, _ := cmd.Flags().GetString("center")
		zoom, _ := cmd.Flags().GetInt("zoom")
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")

		center := geomap.LatLng{Lat: cfg.Quakes.CenterLat, Lng: cfg.Quakes.CenterLon}
		if centerFlag != "" {
			var err error
			if center, err = parseLatLng(centerFlag); err != nil {
				return err
			}
		}
		if !cmd.Flags().Changed("zoom") {
			zoom = cfg.Quakes.Zoom
		}

		termWidth, termHeight := terminalSize()
		if width <= 0 {
			width = termWidth
		}
		if height <= 0 {
			height = max(termHeight-reservedRows, 8)
		}

		client, err := newFeedClient()
		if err != nil {
			return err
		}

		m := geomap.New(center, zoom)
		geomap.NewTileLayer(cfg.Quakes.TileURL, cfg.Quakes.Attribution).AddTo(m)

		markers, err := quake.Load(cmd.Context(), client, cfg.Quakes.URL, logger)
		if err != nil {
			logger.Error("Error fetching data", zap.String("url", cfg.Quakes.URL), zap.Error(err))
		} else {
			logger.Debug("earthquakes loaded", zap.Int("count", len(markers)))
			quake.AddMarkers(m, markers)
		}

		return m.Render(cmd.OutOrStdout(), width, height)
	},
}

func init() {
	RootCmd.AddCommand(quakesCmd)

	quakesCmd.Flags().String("center", "", "Map center as LAT,LON (default from config)")
	quakesCmd.Flags().IntP("zoom", "z", 0, "Zoom level 0-19 (default from config)")
	quakesCmd.Flags().Int("width", 0, "Map width in columns (default terminal width)")
	quakesCmd.Flags().Int("height", 0, "Map height in rows (default terminal height)")
}

// parseLatLng parses "LAT,LON"
func parseLatLng(s string) (geomap.LatLng, error) {
	latStr, lonStr, ok := strings.Cut(s, ",")
	if !ok {
		return geomap.LatLng{}, fmt.Errorf("invalid center %q: want LAT,LON", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return geomap.LatLng{}, fmt.Errorf("invalid latitude %q", latStr)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return geomap.LatLng{}, fmt.Errorf("invalid longitude %q", lonStr)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return geomap.LatLng{}, fmt.Errorf("center %q out of range", s)
	}
	return geomap.LatLng{Lat: lat, Lng: lon}, nil
}
