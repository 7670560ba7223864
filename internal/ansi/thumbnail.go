package ansi

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/arcanaland/feedview/internal/feed"
)

// Thumbnailer fetches images and renders them as ANSI art. Results are
// kept in memory for the life of the process.
type Thumbnailer struct {
	Images    feed.ImageFetcher
	TrueColor bool

	mu    sync.Mutex
	cache map[string]string
}

// NewThumbnailer creates a thumbnailer backed by images
func NewThumbnailer(images feed.ImageFetcher, trueColor bool) *Thumbnailer {
	return &Thumbnailer{
		Images:    images,
		TrueColor: trueColor,
		cache:     make(map[string]string),
	}
}

// Thumbnail returns url rendered as width x height cells, one string per row
func (t *Thumbnailer) Thumbnail(ctx context.Context, url string, width, height int) ([]string, error) {
	key := fmt.Sprintf("%dx%d %s", width, height, url)

	t.mu.Lock()
	art, ok := t.cache[key]
	t.mu.Unlock()

	if !ok {
		img, err := t.Images.FetchImage(ctx, url)
		if err != nil {
			return nil, err
		}
		art, err = FromImage(img, width, height, t.TrueColor)
		if err != nil {
			return nil, err
		}
		t.mu.Lock()
		t.cache[key] = art
		t.mu.Unlock()
	}

	return strings.Split(strings.TrimSuffix(art, "\n"), "\n"), nil
}
