package ansi

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// upperHalfBlock carries two vertical pixels per cell: foreground on top,
// background below
const upperHalfBlock = '▀'

// FromImage converts an image to width x height cells of ANSI art
func FromImage(img image.Image, width, height int, trueColor bool) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid art size %dx%d", width, height)
	}

	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			// The four pixels that make up one character cell
			c1, _ := colorful.MakeColor(colorAt(resized, x, y))
			c2, _ := colorful.MakeColor(colorAt(resized, x+1, y))
			c3, _ := colorful.MakeColor(colorAt(resized, x, y+1))
			c4, _ := colorful.MakeColor(colorAt(resized, x+1, y+1))

			fg := toRGBA(averageColor(c1, c2))
			bg := toRGBA(averageColor(c3, c4))

			buffer.WriteString(colorString(upperHalfBlock, fg, bg, trueColor))
		}
		buffer.WriteString("\n")
	}

	return buffer.String(), nil
}

// colorAt returns the color at a specific coordinate
func colorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	x += bounds.Min.X
	y += bounds.Min.Y
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255} // Black for out-of-bounds
}

// averageColor calculates the average of multiple colors
func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// colorString formats a character with 24-bit ANSI color codes
func colorString(char rune, fg, bg color.RGBA, trueColor bool) string {
	if !trueColor {
		return string(char)
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
		fg.R, fg.G, fg.B, bg.R, bg.G, bg.B, char)
}

// Strip removes ANSI escape sequences from a string
func Strip(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// Width returns the number of visible cells in s
func Width(s string) int {
	return utf8.RuneCountInString(Strip(s))
}
