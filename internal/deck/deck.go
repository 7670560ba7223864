package deck

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/arcanaland/feedview/internal/card"
	"github.com/arcanaland/feedview/internal/feed"
)

// DefaultDrawURL draws ten cards from a freshly shuffled deck
const DefaultDrawURL = "https://deckofcardsapi.com/api/deck/new/draw/?count=10"

// DrawResponse is the body returned by the Deck of Cards draw endpoint
type DrawResponse struct {
	Success   bool      `json:"success"`
	DeckID    string    `json:"deck_id"`
	Remaining int       `json:"remaining"`
	Cards     []RawCard `json:"cards" validate:"dive"`
	Error     string    `json:"error,omitempty"`
}

// RawCard is a single card as the API describes it
type RawCard struct {
	Code  string `json:"code"`
	Value string `json:"value" validate:"required"`
	Suit  string `json:"suit" validate:"required"`
	Image string `json:"image" validate:"required,url"`
}

// ErrDrawFailed is returned when the API answers with success=false
var ErrDrawFailed = errors.New("deck API reported an unsuccessful draw")

// NormalizeCards converts a draw into display records. The card at
// position i gets ID i.
func NormalizeCards(raw DrawResponse) []card.Record {
	records := make([]card.Record, 0, len(raw.Cards))
	for i, c := range raw.Cards {
		records = append(records, card.Record{
			ID:       i,
			Name:     fmt.Sprintf("%s of %s", c.Value, c.Suit),
			ImageURL: c.Image,
		})
	}
	return records
}

// Draw fetches drawURL and returns the normalized cards
func Draw(ctx context.Context, f feed.JSONFetcher, drawURL string) ([]card.Record, error) {
	var raw DrawResponse
	if err := f.FetchJSON(ctx, drawURL, &raw); err != nil {
		return nil, err
	}
	if err := Check(raw); err != nil {
		return nil, feed.Malformed(drawURL, err)
	}
	return NormalizeCards(raw), nil
}

// Check reports API-level failures the struct tags cannot express. An
// unsuccessful draw that still returned cards is a deck that ran short, and
// its cards are kept.
func Check(raw DrawResponse) error {
	if !raw.Success && len(raw.Cards) == 0 {
		if raw.Error != "" {
			return fmt.Errorf("%w: %s", ErrDrawFailed, raw.Error)
		}
		return ErrDrawFailed
	}
	return nil
}

// WithCount returns drawURL with its count query parameter set
func WithCount(drawURL string, count int) (string, error) {
	u, err := url.Parse(drawURL)
	if err != nil {
		return "", fmt.Errorf("invalid draw URL: %w", err)
	}
	q := u.Query()
	q.Set("count", strconv.Itoa(count))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
