package deck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arcanaland/feedview/internal/card"
	"github.com/arcanaland/feedview/internal/feed"
)

func TestNormalizeCards_Single(t *testing.T) {
	raw := DrawResponse{
		Success: true,
		Cards:   []RawCard{{Value: "ACE", Suit: "SPADES", Image: "http://x/a.png"}},
	}

	got := NormalizeCards(raw)
	want := []card.Record{{ID: 0, Name: "ACE of SPADES", ImageURL: "http://x/a.png"}}

	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	if got[0] != want[0] {
		t.Errorf("expected %+v, got %+v", want[0], got[0])
	}
}

func TestNormalizeCards_IDsFollowInputOrder(t *testing.T) {
	for _, n := range []int{0, 1, 10, 52} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			raw := DrawResponse{Success: true}
			for i := 0; i < n; i++ {
				raw.Cards = append(raw.Cards, RawCard{
					Value: fmt.Sprintf("V%d", i),
					Suit:  "HEARTS",
					Image: fmt.Sprintf("http://x/%d.png", i),
				})
			}

			got := NormalizeCards(raw)
			if len(got) != n {
				t.Fatalf("expected %d records, got %d", n, len(got))
			}
			for i, r := range got {
				if r.ID != i {
					t.Errorf("record %d has ID %d", i, r.ID)
				}
				if r.Name != fmt.Sprintf("V%d of HEARTS", i) {
					t.Errorf("record %d has name %q", i, r.Name)
				}
				if r.ImageURL != raw.Cards[i].Image {
					t.Errorf("record %d has image %q", i, r.ImageURL)
				}
			}
		})
	}
}

const drawBody = `{
  "success": true,
  "deck_id": "3p40paa87x90",
  "cards": [
    {"code": "6H", "image": "https://deckofcardsapi.com/static/img/6H.png", "value": "6", "suit": "HEARTS"},
    {"code": "KS", "image": "https://deckofcardsapi.com/static/img/KS.png", "value": "KING", "suit": "SPADES"}
  ],
  "remaining": 50
}`

func TestDraw(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		wantErr   error
		wantCards int
	}{
		{"OK", drawBody, nil, 2},
		{"Empty", `{"success": true, "cards": []}`, nil, 0},
		{"Unsuccessful", `{"success": false, "error": "Not enough cards remaining"}`, ErrDrawFailed, 0},
		{"ShortDraw", `{"success": false, "error": "Not enough cards remaining to draw 5 additional", "remaining": 0, "cards": [
			{"code": "2H", "value": "2", "suit": "HEARTS", "image": "http://x/2H.png"},
			{"code": "KS", "value": "KING", "suit": "SPADES", "image": "http://x/KS.png"}]}`, nil, 2},
		{"MissingSuit", `{"success": true, "cards": [{"value": "ACE", "image": "http://x/a.png"}]}`, feed.ErrMalformed, 0},
		{"BadImageURL", `{"success": true, "cards": [{"value": "ACE", "suit": "CLUBS", "image": "not a url"}]}`, feed.ErrMalformed, 0},
		{"WrongShape", `{"success": true, "cards": {"value": "ACE"}}`, feed.ErrMalformed, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			cards, err := Draw(context.Background(), feed.NewClient(0, nil), srv.URL)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if !errors.Is(err, feed.ErrMalformed) {
					t.Errorf("expected error to be malformed, got %v", err)
				}
				if cards != nil {
					t.Errorf("expected no cards on error, got %v", cards)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(cards) != tc.wantCards {
				t.Fatalf("expected %d cards, got %d", tc.wantCards, len(cards))
			}
			if tc.wantCards > 0 && cards[1].Name != "KING of SPADES" {
				t.Errorf("unexpected second card %+v", cards[1])
			}
		})
	}
}

func TestWithCount(t *testing.T) {
	got, err := WithCount(DefaultDrawURL, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, "/api/deck/new/draw/?count=3") {
		t.Errorf("unexpected URL %s", got)
	}

	if _, err := WithCount("://bad", 3); err == nil {
		t.Error("expected error for invalid URL")
	}
}
