package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/webp"
)

// maxImageBytes caps a single slide image download.
const maxImageBytes = 32 << 20

// Fetcher retrieves and decodes slide images from local paths or http(s) URLs.
// Decoded images are cached by reference, including permanent failures, so a
// preview server does not refetch on every request. Network errors and 5xx
// responses are retried on the next fetch.
type Fetcher struct {
	HTTPClient *http.Client
	// BaseDir resolves relative file references.
	BaseDir string

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	img image.Image
	err error
}

// transientError marks a download failure that may succeed if retried.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache: make(map[string]cached),
	}
}

// Fetch returns the decoded image for ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	f.mu.Lock()
	if c, ok := f.cache[ref]; ok {
		f.mu.Unlock()
		return c.img, c.err
	}
	f.mu.Unlock()

	img, err := f.fetch(ctx, ref)
	if ctx.Err() != nil || isTransient(err) {
		return img, err
	}

	f.mu.Lock()
	f.cache[ref] = cached{img: img, err: err}
	f.mu.Unlock()
	return img, err
}

func (f *Fetcher) fetch(ctx context.Context, ref string) (image.Image, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(ref) {
		data, err = f.download(ctx, ref)
	} else {
		data, err = f.readFile(ref)
	}
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", ref, err)
	}
	slog.Debug("Decoded slide image", "ref", ref, "format", format, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, &transientError{fmt.Errorf("failed to fetch image: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("image URL returned status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &transientError{err}
		}
		return nil, err
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, &transientError{fmt.Errorf("failed to read image data: %w", err)}
	}
	if len(imageData) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return imageData, nil
}

func (f *Fetcher) readFile(ref string) ([]byte, error) {
	path := strings.TrimPrefix(ref, "file://")
	if f.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
