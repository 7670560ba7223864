// Package quake loads the USGS earthquake summary feed and turns its
// GeoJSON features into map markers.
package quake

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/feed"
	"github.com/arcanaland/feedview/internal/geomap"
)

// DefaultFeedURL is every earthquake of the past week
const DefaultFeedURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_week.geojson"

// FeatureCollection is the top level of a GeoJSON summary feed
type FeatureCollection struct {
	Type     string    `json:"type" validate:"eq=FeatureCollection"`
	Metadata Metadata  `json:"metadata"`
	Features []Feature `json:"features" validate:"dive"`
}

// Metadata describes the feed itself
type Metadata struct {
	Generated int64  `json:"generated"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Count     int    `json:"count"`
}

// Feature is a single earthquake event
type Feature struct {
	Type          string         `json:"type"`
	ID            string         `json:"id"`
	Geometry      Geometry       `json:"geometry"`
	RawProperties map[string]any `json:"properties"`

	// Properties is filled from RawProperties by Resolve
	Properties Properties `json:"-"`
}

// Geometry holds [lon, lat, depth]
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" validate:"min=2"`
}

// Properties are the event fields the feed documents. Unknown keys are ignored.
type Properties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"`
	URL   string   `json:"url"`
	Title string   `json:"title"`
	Type  string   `json:"type"`
}

// Marker is the display record for one feature
type Marker struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Magnitude    float64 `json:"magnitude"`
	HasMagnitude bool    `json:"hasMagnitude"`
}

// Popup returns the marker's popup label
func (m Marker) Popup() string {
	if !m.HasMagnitude {
		return "Magnitude: null"
	}
	return "Magnitude: " + strconv.FormatFloat(m.Magnitude, 'f', -1, 64)
}

// Resolve decodes the raw properties and checks the coordinates
func (f *Feature) Resolve() error {
	var props Properties
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &props,
		TagName:          "json",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(f.RawProperties); err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	f.Properties = props

	if len(f.Geometry.Coordinates) < 2 {
		return fmt.Errorf("geometry: expected at least 2 coordinates, got %d", len(f.Geometry.Coordinates))
	}
	lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
	if lat < -90 || lat > 90 {
		return fmt.Errorf("geometry: latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("geometry: longitude %v out of range", lon)
	}
	return nil
}

// Usable resolves every feature and returns those that can be plotted,
// in feed order, with one error per feature left out
func Usable(fc *FeatureCollection) ([]Feature, []error) {
	kept := make([]Feature, 0, len(fc.Features))
	var skipped []error
	for i := range fc.Features {
		f := &fc.Features[i]
		if err := f.Resolve(); err != nil {
			skipped = append(skipped, fmt.Errorf("feature %d (%s): %w", i, f.ID, err))
			continue
		}
		kept = append(kept, *f)
	}
	return kept, skipped
}

// NormalizeFeature swaps the GeoJSON [lon, lat] order into a marker.
// f must have been resolved.
func NormalizeFeature(f Feature) Marker {
	m := Marker{
		Lat: f.Geometry.Coordinates[1],
		Lon: f.Geometry.Coordinates[0],
	}
	if f.Properties.Mag != nil {
		m.Magnitude = *f.Properties.Mag
		m.HasMagnitude = true
	}
	return m
}

// Normalize converts resolved features, preserving their order
func Normalize(features []Feature) []Marker {
	markers := make([]Marker, 0, len(features))
	for _, f := range features {
		markers = append(markers, NormalizeFeature(f))
	}
	return markers
}

// Load fetches the feed at url and returns its markers. A feed that fails
// the schema is an error; single features with unusable coordinates or
// properties are logged and left out.
func Load(ctx context.Context, f feed.JSONFetcher, url string, logger *zap.Logger) ([]Marker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var fc FeatureCollection
	if err := f.FetchJSON(ctx, url, &fc); err != nil {
		return nil, err
	}

	features, skipped := Usable(&fc)
	for _, err := range skipped {
		logger.Warn("skipping feature", zap.String("url", url), zap.Error(err))
	}
	return Normalize(features), nil
}

// AddMarkers puts one marker per record on m. Markers are never removed,
// so calling it twice with the same records doubles them.
func AddMarkers(m *geomap.Map, markers []Marker) []*geomap.Marker {
	added := make([]*geomap.Marker, 0, len(markers))
	for _, rec := range markers {
		added = append(added, geomap.NewMarker(rec.Lat, rec.Lon).AddTo(m).BindPopup(rec.Popup()))
	}
	return added
}
