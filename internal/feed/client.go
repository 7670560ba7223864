package feed

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const userAgent = "feedview/1.0"

// maxBodySize caps how much of a response body is read
const maxBodySize = 32 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSONFetcher is the part of Client the normalizing loaders depend on
type JSONFetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
}

// ImageFetcher is the part of Client the thumbnailer depends on
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) (image.Image, error)
}

// Client issues single GET requests against public feeds.
// It never retries and never caches.
type Client struct {
	HTTP   *http.Client
	Logger *zap.Logger
}

// NewClient creates a feed client. A zero timeout means no timeout.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:   &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

// get performs the request and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: err}
	}
	defer resp.Body.Close()

	c.Logger.Debug("feed response",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindStatus, URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return body, nil
}

// FetchJSON fetches url and decodes the JSON body into v. When v points to a
// struct its validate tags are checked; failures are KindMalformed.
func (c *Client) FetchJSON(ctx context.Context, url string, v any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	return Decode(url, body, v)
}

// Decode parses data into v and validates it. url only labels the error.
func Decode(url string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return Malformed(url, fmt.Errorf("failed to parse response: %w", err))
	}
	if err := Validate(v); err != nil {
		return Malformed(url, err)
	}
	return nil
}

// Validate checks the validate struct tags of v
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		if _, ok := err.(*validator.InvalidValidationError); ok {
			// Not a struct, nothing to check
			return nil
		}
		return err
	}
	return nil
}

// FetchImage fetches and decodes a PNG, JPEG or GIF image
func (c *Client) FetchImage(ctx context.Context, url string) (image.Image, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, Malformed(url, fmt.Errorf("failed to decode image: %w", err))
	}
	return img, nil
}
