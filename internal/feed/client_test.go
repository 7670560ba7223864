package feed

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type payload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestFetchJSON(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
	}{
		{"OK", http.StatusOK, `{"name":"deck","count":3}`, 0},
		{"NotFound", http.StatusNotFound, `{"error":"nope"}`, KindStatus},
		{"ServerError", http.StatusInternalServerError, ``, KindStatus},
		{"NotJSON", http.StatusOK, `<html>oops</html>`, KindMalformed},
		{"SchemaFailure", http.StatusOK, `{"count":3}`, KindMalformed},
		{"NegativeCount", http.StatusOK, `{"name":"deck","count":-1}`, KindMalformed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET, got %s", r.Method)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewClient(0, zaptest.NewLogger(t))
			var p payload
			err := c.FetchJSON(context.Background(), srv.URL, &p)

			if tc.wantKind == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if p.Name != "deck" || p.Count != 3 {
					t.Errorf("unexpected payload: %+v", p)
				}
				return
			}

			var fe *Error
			if !errors.As(err, &fe) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if fe.Kind != tc.wantKind {
				t.Errorf("expected kind %s, got %s", tc.wantKind, fe.Kind)
			}
			if fe.URL != srv.URL {
				t.Errorf("expected URL %s, got %s", srv.URL, fe.URL)
			}
		})
	}
}

func TestFetchJSON_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(time.Second, nil)
	var p payload
	err := c.FetchJSON(context.Background(), url, &p)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("network failure should not match ErrMalformed")
	}
}

func TestFetchJSON_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(0, nil)
	var p payload
	err := c.FetchJSON(ctx, srv.URL, &p)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}

func TestFetchJSON_SliceTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2,3]`))
	}))
	defer srv.Close()

	var nums []int
	if err := NewClient(0, nil).FetchJSON(context.Background(), srv.URL, &nums); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nums) != 3 {
		t.Errorf("expected 3 numbers, got %d", len(nums))
	}
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken.png" {
			w.Write([]byte("not a png"))
			return
		}
		img := image.NewRGBA(image.Rect(0, 0, 4, 6))
		img.Set(1, 1, color.RGBA{R: 255, A: 255})
		w.Header().Set("Content-Type", "image/png")
		png.Encode(w, img)
	}))
	defer srv.Close()

	c := NewClient(0, nil)
	img, err := c.FetchImage(context.Background(), srv.URL+"/card.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 6 {
		t.Errorf("unexpected bounds %v", b)
	}

	_, err = c.FetchImage(context.Background(), srv.URL+"/broken.png")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindStatus, URL: "http://x", Status: 503}
	if got := err.Error(); got != "fetch http://x: status 503" {
		t.Errorf("unexpected message %q", got)
	}
	err = &Error{Kind: KindMalformed, URL: "http://x", Err: errors.New("bad")}
	if got := err.Error(); got != "fetch http://x: malformed: bad" {
		t.Errorf("unexpected message %q", got)
	}
}
