// Package cardview renders a drawn hand as a terminal grid of clickable
// thumbnails plus a detail panel for the selected card.
package cardview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/arcanaland/feedview/internal/ansi"
	"github.com/arcanaland/feedview/internal/card"
)

const (
	thumbWidth   = 12
	thumbHeight  = 8
	detailWidth  = 24
	detailHeight = 16
	nameLines    = 2
	gutter       = 2
)

// ErrUnknownCard is returned by Select for an id not in the current cards
var ErrUnknownCard = errors.New("no card with that id")

// Thumbnailer renders an image URL as ANSI art, one string per row
type Thumbnailer interface {
	Thumbnail(ctx context.Context, url string, width, height int) ([]string, error)
}

var (
	headerColor = color.New(color.Bold, color.FgHiWhite)
	indexColor  = color.New(color.FgCyan)
	nameColor   = color.New(color.FgHiWhite)
)

// View holds the card state: the current cards and at most one selected card
type View struct {
	Thumbs Thumbnailer // nil renders the grid without images
	Width  int         // terminal columns available to the grid
	Logger *zap.Logger

	cards    []card.Record
	selected *card.Record
}

// New creates an empty view
func New(thumbs Thumbnailer, width int, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{Thumbs: thumbs, Width: width, Logger: logger}
}

// SetCards replaces the cards wholesale. The selection is left as is.
func (v *View) SetCards(cards []card.Record) {
	v.cards = append([]card.Record(nil), cards...)
}

// Cards returns a copy of the current cards
func (v *View) Cards() []card.Record {
	return append([]card.Record(nil), v.cards...)
}

// Select makes the card with id the selected card, replacing any previous
// selection. An unknown id leaves the state unchanged.
func (v *View) Select(id int) error {
	for _, c := range v.cards {
		if c.ID == id {
			selected := c
			v.selected = &selected
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownCard, id)
}

// Selected returns the selected card, if any
func (v *View) Selected() (card.Record, bool) {
	if v.selected == nil {
		return card.Record{}, false
	}
	return *v.selected, true
}

// Render writes the grid of every card and, when a card is selected, the
// detail panel
func (v *View) Render(ctx context.Context, w io.Writer) error {
	var b strings.Builder

	b.WriteString(headerColor.Sprint("Select a Card"))
	b.WriteString("\n\n")

	blocks := make([][]string, 0, len(v.cards))
	for _, c := range v.cards {
		blocks = append(blocks, v.cardBlock(ctx, c))
	}
	writeGrid(&b, blocks, v.perRow())

	if sel, ok := v.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(headerColor.Sprint("Selected Card"))
		b.WriteString("\n")
		b.WriteString("  " + nameColor.Sprint(sel.Name) + "\n")
		for _, line := range v.thumbnail(ctx, sel, detailWidth, detailHeight) {
			b.WriteString("  " + line + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// perRow is how many card blocks fit across the view width
func (v *View) perRow() int {
	blockWidth := thumbWidth + 4
	n := (v.Width + gutter) / (blockWidth + gutter)
	if n < 1 {
		return 1
	}
	return n
}

// cardBlock draws one framed grid item
func (v *View) cardBlock(ctx context.Context, c card.Record) []string {
	inner := thumbWidth
	row := func(s string) string {
		return "│ " + s + strings.Repeat(" ", max(0, inner-ansi.Width(s))) + " │"
	}

	lines := []string{"┌" + strings.Repeat("─", inner+2) + "┐"}
	lines = append(lines, row(indexColor.Sprintf("[%d]", c.ID)))

	names := wrapText(c.Name, inner)
	for i := 0; i < nameLines; i++ {
		name := ""
		if i < len(names) {
			name = truncate(names[i], inner)
		}
		lines = append(lines, row(nameColor.Sprint(name)))
	}

	for _, t := range v.thumbnail(ctx, c, thumbWidth, thumbHeight) {
		lines = append(lines, row(t))
	}
	lines = append(lines, "└"+strings.Repeat("─", inner+2)+"┘")
	return lines
}

// thumbnail returns the card image art, or a placeholder if it cannot be
// fetched. Without a thumbnailer there is no image area at all.
func (v *View) thumbnail(ctx context.Context, c card.Record, width, height int) []string {
	if v.Thumbs == nil {
		return nil
	}
	lines, err := v.Thumbs.Thumbnail(ctx, c.ImageURL, width, height)
	if err != nil {
		v.Logger.Warn("card image unavailable",
			zap.Int("card", c.ID),
			zap.String("url", c.ImageURL),
			zap.Error(err),
		)
		return placeholder(width, height)
	}
	return lines
}

func placeholder(width, height int) []string {
	lines := make([]string, height)
	for i := range lines {
		lines[i] = strings.Repeat("░", width)
	}
	return lines
}

// writeGrid lays blocks out perRow at a time, side by side
func writeGrid(b *strings.Builder, blocks [][]string, perRow int) {
	for start := 0; start < len(blocks); start += perRow {
		end := min(start+perRow, len(blocks))
		row := blocks[start:end]
		for i := range row[0] {
			for j, block := range row {
				if j > 0 {
					b.WriteString(strings.Repeat(" ", gutter))
				}
				b.WriteString(block[i])
			}
			b.WriteString("\n")
		}
	}
}

// wrapText wraps text to a specified width
func wrapText(text string, width int) []string {
	var result []string
	var currentLine string
	for _, word := range strings.Fields(text) {
		if len(currentLine) == 0 {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= width {
			currentLine += " " + word
		} else {
			result = append(result, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		result = append(result, currentLine)
	}
	return result
}

// truncate shortens s to width runes, marking the cut with an ellipsis
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
