// Package surface implements the off-screen render surface: a hidden,
// full-resolution mount of every slide in static mode, used by export.
package surface

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/lehigh-university-libraries/slideshow/internal/assets"
	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAlreadyMounted = errors.New("surface: already mounted")
	ErrNotMounted     = errors.New("surface: not mounted")
	ErrFontsNotReady  = errors.New("surface: fonts not ready")
)

// Fetcher loads a decoded image for a reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// FontLoader returns the fonts the renderer draws with.
type FontLoader func() (*assets.Fonts, error)

// ImageResult is the settled outcome of one image on the surface.
type ImageResult struct {
	Ref string
	Err error
}

// Surface holds at most one mount at a time.
type Surface struct {
	fetcher     Fetcher
	loadFonts   FontLoader
	concurrency int

	mu       sync.Mutex
	mounted  bool
	records  []slides.Record
	renderer *render.Renderer
	images   render.ImageMap
	results  []ImageResult
	loaded   chan struct{}
	cancel   context.CancelFunc
}

// Option configures a Surface.
type Option func(*Surface)

// WithConcurrency bounds how many images load at once.
func WithConcurrency(n int) Option {
	return func(s *Surface) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFontLoader replaces the bundled font loader.
func WithFontLoader(fn FontLoader) Option {
	return func(s *Surface) {
		s.loadFonts = fn
	}
}

// New creates an unmounted surface.
func New(fetcher Fetcher, opts ...Option) *Surface {
	s := &Surface{
		fetcher:     fetcher,
		loadFonts:   assets.LoadFonts,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount attaches one static render of every record and starts loading all
// referenced images in the background.
func (s *Surface) Mount(ctx context.Context, records []slides.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mounted {
		return ErrAlreadyMounted
	}

	refs := uniqueRefs(records)
	loadCtx, cancel := context.WithCancel(ctx)
	s.mounted = true
	s.records = append([]slides.Record(nil), records...)
	s.renderer = nil
	s.images = make(render.ImageMap, len(refs))
	s.results = make([]ImageResult, len(refs))
	s.loaded = make(chan struct{})
	s.cancel = cancel

	slog.Debug("Mounting off-screen surface", "slides", len(records), "images", len(refs))
	go s.loadImages(loadCtx, refs, s.images, s.results, s.loaded)
	return nil
}

func (s *Surface) loadImages(ctx context.Context, refs []string, images render.ImageMap, results []ImageResult, done chan struct{}) {
	defer close(done)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			img, err := s.fetcher.Fetch(ctx, ref)
			mu.Lock()
			defer mu.Unlock()
			results[i] = ImageResult{Ref: ref, Err: err}
			if err == nil {
				images[ref] = img
			}
			// Image failures never fail the group.
			return nil
		})
	}
	_ = g.Wait()
}

// FontsReady resolves once the renderer's fonts are parsed.
func (s *Surface) FontsReady(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fonts, err := s.loadFonts()
	if err != nil {
		return fmt.Errorf("failed to load fonts: %w", err)
	}
	r, err := render.New(fonts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return ErrNotMounted
	}
	s.renderer = r
	return nil
}

// ImagesSettled blocks until every image on the surface has either loaded or
// failed. Individual failures are reported in the results, not as an error.
func (s *Surface) ImagesSettled(ctx context.Context) ([]ImageResult, error) {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return nil, ErrNotMounted
	}
	loaded, results := s.loaded, s.results
	s.mu.Unlock()

	select {
	case <-loaded:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return append([]ImageResult(nil), results...), nil
}

// Len returns the number of mounted slides.
func (s *Surface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Rasterize captures the mounted slide at index into a bitmap at scale.
func (s *Surface) Rasterize(ctx context.Context, index int, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return nil, ErrNotMounted
	}
	if s.renderer == nil {
		s.mu.Unlock()
		return nil, ErrFontsNotReady
	}
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return nil, fmt.Errorf("surface: index %d out of range [0, %d)", index, len(s.records))
	}
	r, rec, images, loaded := s.renderer, s.records[index], s.images, s.loaded
	s.mu.Unlock()

	select {
	case <-loaded:
	default:
		return nil, errors.New("surface: images still loading")
	}
	return r.Render(rec, render.StaticMode, images, scale)
}

// Mounted reports whether the surface currently holds slides.
func (s *Surface) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Unmount releases the mounted slides. It is safe to call more than once.
func (s *Surface) Unmount() {
	s.mu.Lock()
	if !s.mounted {
		s.mu.Unlock()
		return
	}
	cancel, loaded := s.cancel, s.loaded
	s.mounted = false
	s.records = nil
	s.renderer = nil
	s.images = nil
	s.results = nil
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	<-loaded
	slog.Debug("Unmounted off-screen surface")
}

func uniqueRefs(records []slides.Record) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, r := range records {
		for _, ref := range r.ImageRefs() {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}
