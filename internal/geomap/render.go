package geomap

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"math"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

const (
	markerGlyph      = '●'
	markerStackGlyph = '◉'
)

var (
	gridColor   = color.New(color.FgHiBlack)
	markerColor = color.New(color.FgRed, color.Bold)
	labelColor  = color.New(color.FgCyan)

	tagPattern = regexp.MustCompile(`<[^>]*>`)
)

// Render draws a width x height cell view of the map to w, followed by the
// layer attributions and the popups of the markers in view.
func (m *Map) Render(w io.Writer, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid map size %dx%d", width, height)
	}
	v := m.viewport(width, height)

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	if len(m.layers) > 0 {
		drawGraticule(grid, v)
	}

	counts := make(map[[2]int]int)
	var visible []*Marker
	for _, mk := range m.markers {
		col, row, ok := v.cell(mk.pos)
		if !ok {
			continue
		}
		counts[[2]int{col, row}]++
		visible = append(visible, mk)
	}

	bw := bufio.NewWriter(w)
	for r, line := range grid {
		for c, ch := range line {
			switch n := counts[[2]int{c, r}]; {
			case n == 1:
				bw.WriteString(markerColor.Sprint(string(markerGlyph)))
			case n > 1:
				bw.WriteString(markerColor.Sprint(string(markerStackGlyph)))
			case ch == ' ':
				bw.WriteRune(ch)
			default:
				bw.WriteString(gridColor.Sprint(string(ch)))
			}
		}
		bw.WriteByte('\n')
	}

	for _, layer := range m.layers {
		if layer.Attribution != "" {
			fmt.Fprintln(bw, gridColor.Sprint(PlainAttribution(layer.Attribution)))
		}
	}

	fmt.Fprintf(bw, "%s %d markers, %d in view (center %.4f, %.4f, zoom %d)\n",
		labelColor.Sprint("Map:"), len(m.markers), len(visible), m.center.Lat, m.center.Lng, m.zoom)
	for _, mk := range visible {
		if mk.popup == "" {
			continue
		}
		fmt.Fprintf(bw, "  %s %9.4f, %10.4f  %s\n",
			markerColor.Sprint(string(markerGlyph)), mk.pos.Lat, mk.pos.Lng, mk.popup)
	}

	return bw.Flush()
}

// drawGraticule draws meridians and parallels at a readable spacing
func drawGraticule(grid [][]rune, v viewport) {
	topLeft := v.corner(0, 0)
	bottomRight := v.corner(v.width, v.height)
	lngStep := niceStep((bottomRight.Lng - topLeft.Lng) / 4)
	latStep := niceStep((topLeft.Lat - bottomRight.Lat) / 3)

	cols := make([]bool, v.width)
	for c := range cols {
		cols[c] = crosses(v.corner(c, 0).Lng, v.corner(c+1, 0).Lng, lngStep)
	}
	rows := make([]bool, v.height)
	for r := range rows {
		// Latitude decreases going down
		rows[r] = crosses(v.corner(0, r+1).Lat, v.corner(0, r).Lat, latStep)
	}

	for r := range grid {
		for c := range grid[r] {
			switch {
			case rows[r] && cols[c]:
				grid[r][c] = '┼'
			case cols[c]:
				grid[r][c] = '│'
			case rows[r]:
				grid[r][c] = '─'
			}
		}
	}
}

// crosses reports whether a multiple of step lies in [lo, hi)
func crosses(lo, hi, step float64) bool {
	k := math.Ceil(lo / step)
	return k*step < hi
}

// niceStep rounds span up to 1, 2 or 5 times a power of ten
func niceStep(span float64) float64 {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(span)))
	switch f := span / exp; {
	case f <= 1:
		return exp
	case f <= 2:
		return 2 * exp
	case f <= 5:
		return 5 * exp
	default:
		return 10 * exp
	}
}

// PlainAttribution strips markup from an HTML attribution string
func PlainAttribution(attribution string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(attribution, ""))
}
