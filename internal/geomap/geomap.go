// Package geomap is a small terminal map: a centered Web Mercator viewport
// with tile layers and popup markers, drawn with box characters.
package geomap

import (
	"math"
)

const (
	tileSize = 256
	maxZoom  = 19
	maxLat   = 85.0511287798

	// Pixels covered by one terminal cell. Cells are roughly twice as
	// tall as they are wide.
	cellWidth  = 8
	cellHeight = 16
)

// LatLng is a WGS 84 position
type LatLng struct {
	Lat float64
	Lng float64
}

// Map holds the view and everything added to it
type Map struct {
	center  LatLng
	zoom    int
	layers  []*TileLayer
	markers []*Marker
}

// New creates a map centered on center at zoom
func New(center LatLng, zoom int) *Map {
	m := &Map{}
	return m.SetView(center, zoom)
}

// SetView moves the map. Zoom is clamped to [0, 19].
func (m *Map) SetView(center LatLng, zoom int) *Map {
	if zoom < 0 {
		zoom = 0
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	m.center = center
	m.zoom = zoom
	return m
}

// Center returns the view center
func (m *Map) Center() LatLng { return m.center }

// Zoom returns the view zoom level
func (m *Map) Zoom() int { return m.zoom }

// TileLayers returns the layers in the order they were added
func (m *Map) TileLayers() []*TileLayer { return m.layers }

// Markers returns the markers in the order they were added
func (m *Map) Markers() []*Marker { return m.markers }

// TileLayer is a base layer. Only its attribution is shown; the
// graticule stands in for the tile imagery.
type TileLayer struct {
	URLTemplate string
	Attribution string
}

// NewTileLayer creates a tile layer for a {z}/{x}/{y} URL template
func NewTileLayer(urlTemplate, attribution string) *TileLayer {
	return &TileLayer{URLTemplate: urlTemplate, Attribution: attribution}
}

// AddTo attaches the layer to m
func (t *TileLayer) AddTo(m *Map) *TileLayer {
	m.layers = append(m.layers, t)
	return t
}

// Marker is a point annotation with an optional popup
type Marker struct {
	pos   LatLng
	popup string
}

// NewMarker creates a marker at lat, lng
func NewMarker(lat, lng float64) *Marker {
	return &Marker{pos: LatLng{Lat: lat, Lng: lng}}
}

// AddTo attaches the marker to m
func (mk *Marker) AddTo(m *Map) *Marker {
	m.markers = append(m.markers, mk)
	return mk
}

// BindPopup sets the popup text
func (mk *Marker) BindPopup(text string) *Marker {
	mk.popup = text
	return mk
}

// LatLng returns the marker position
func (mk *Marker) LatLng() LatLng { return mk.pos }

// Popup returns the popup text
func (mk *Marker) Popup() string { return mk.popup }

// project converts ll to global pixel coordinates at zoom
func project(ll LatLng, zoom int) (x, y float64) {
	world := float64(tileSize) * math.Exp2(float64(zoom))
	lat := math.Max(-maxLat, math.Min(maxLat, ll.Lat))
	sin := math.Sin(lat * math.Pi / 180)
	x = (ll.Lng + 180) / 360 * world
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * world
	return x, y
}

// unproject is the inverse of project
func unproject(x, y float64, zoom int) LatLng {
	world := float64(tileSize) * math.Exp2(float64(zoom))
	lng := x/world*360 - 180
	n := math.Pi * (1 - 2*y/world)
	lat := math.Atan(math.Sinh(n)) * 180 / math.Pi
	return LatLng{Lat: lat, Lng: lng}
}

// viewport maps between cells and positions for one render size
type viewport struct {
	width, height int
	zoom          int
	cx, cy        float64
}

func (m *Map) viewport(width, height int) viewport {
	cx, cy := project(m.center, m.zoom)
	return viewport{width: width, height: height, zoom: m.zoom, cx: cx, cy: cy}
}

// cell returns the cell containing ll and whether it is on screen
func (v viewport) cell(ll LatLng) (col, row int, ok bool) {
	x, y := project(ll, v.zoom)
	col = int(math.Floor((x-v.cx)/cellWidth + float64(v.width)/2))
	row = int(math.Floor((y-v.cy)/cellHeight + float64(v.height)/2))
	ok = col >= 0 && col < v.width && row >= 0 && row < v.height
	return col, row, ok
}

// corner returns the position of the top-left corner of a cell
func (v viewport) corner(col, row int) LatLng {
	x := v.cx + (float64(col)-float64(v.width)/2)*cellWidth
	y := v.cy + (float64(row)-float64(v.height)/2)*cellHeight
	return unproject(x, y, v.zoom)
}

// Visible returns the markers inside a width x height viewport
func (m *Map) Visible(width, height int) []*Marker {
	v := m.viewport(width, height)
	var visible []*Marker
	for _, mk := range m.markers {
		if _, _, ok := v.cell(mk.pos); ok {
			visible = append(visible, mk)
		}
	}
	return visible
}
