package surface

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/slideshow/internal/slides"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]bool
	block   chan struct{}
	current int
	peak    int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int), fail: make(map[string]bool)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) (image.Image, error) {
	f.mu.Lock()
	f.calls[ref]++
	f.current++
	if f.current > f.peak {
		f.peak = f.current
	}
	fail, block := f.fail[ref], f.block
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.current--
		f.mu.Unlock()
	}()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("404")
	}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.White)
	return img, nil
}

func testRecords() []slides.Record {
	return []slides.Record{
		{ID: 1, Kind: slides.KindHero, Title: "Hero", Image: "a.png", Color: "amber"},
		{ID: 2, Kind: slides.KindGallery, Title: "Gallery", GalleryImages: []string{"a.png", "b.png", "c.png"}, Color: "rose"},
		{ID: 3, Kind: slides.KindConclusion, Title: "End", Image: "broken.png", Color: "teal"},
	}
}

func TestMountLoadsEveryImageOnce(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.fail["broken.png"] = true
	s := New(fetcher)
	ctx := context.Background()

	if err := s.Mount(ctx, testRecords()); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	defer s.Unmount()

	results, err := s.ImagesSettled(ctx)
	if err != nil {
		t.Fatalf("ImagesSettled failed: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("Expected 4 unique images, got %d", len(results))
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			if r.Ref != "broken.png" {
				t.Errorf("Unexpected failure for %s", r.Ref)
			}
		}
	}
	if failed != 1 {
		t.Errorf("Expected one failed image, got %d", failed)
	}
	for ref, n := range fetcher.calls {
		if n != 1 {
			t.Errorf("Expected %s fetched once, got %d", ref, n)
		}
	}
}

func TestMountTwiceFails(t *testing.T) {
	s := New(newFakeFetcher())
	ctx := context.Background()
	if err := s.Mount(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	defer s.Unmount()

	if err := s.Mount(ctx, testRecords()); !errors.Is(err, ErrAlreadyMounted) {
		t.Errorf("Expected ErrAlreadyMounted, got %v", err)
	}
}

func TestRasterizeRequiresReadiness(t *testing.T) {
	s := New(newFakeFetcher())
	ctx := context.Background()

	if _, err := s.Rasterize(ctx, 0, 0.1); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Expected ErrNotMounted before mount, got %v", err)
	}

	if err := s.Mount(ctx, testRecords()); err != nil {
		t.Fatal(err)
	}
	defer s.Unmount()

	if _, err := s.Rasterize(ctx, 0, 0.1); !errors.Is(err, ErrFontsNotReady) {
		t.Errorf("Expected ErrFontsNotReady, got %v", err)
	}
	if err := s.FontsReady(ctx); err != nil {
		t.Fatalf("FontsReady failed: %v", err)
	}
	if _, err := s.ImagesSettled(ctx); err != nil {
		t.Fatal(err)
	}

	img, err := s.Rasterize(ctx, 1, 0.1)
	if err != nil {
		t.Fatalf("Rasterize failed: %v", err)
	}
	if img.Bounds().Dx() != 192 {
		t.Errorf("Expected 192px wide capture, got %d", img.Bounds().Dx())
	}
	if _, err := s.Rasterize(ctx, 3, 0.1); err == nil {
		t.Error("Expected error for out of range index")
	}
}

func TestUnmountIsIdempotentAndCancelsLoads(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.block = make(chan struct{})
	s := New(fetcher)

	if err := s.Mount(context.Background(), testRecords()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		s.Unmount()
		s.Unmount()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Unmount did not cancel in-flight image loads")
	}
	if s.Mounted() {
		t.Error("Expected surface to be unmounted")
	}
	if _, err := s.ImagesSettled(context.Background()); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Expected ErrNotMounted after unmount, got %v", err)
	}

	// The surface can be mounted again after cleanup.
	fetcher.block = nil
	if err := s.Mount(context.Background(), testRecords()); err != nil {
		t.Fatalf("Remount failed: %v", err)
	}
	s.Unmount()
}

func TestImagesSettledHonorsContext(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.block = make(chan struct{})
	s := New(fetcher)
	if err := s.Mount(context.Background(), testRecords()); err != nil {
		t.Fatal(err)
	}
	defer s.Unmount()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := s.ImagesSettled(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestConcurrencyLimit(t *testing.T) {
	fetcher := newFakeFetcher()
	s := New(fetcher, WithConcurrency(1))
	if err := s.Mount(context.Background(), testRecords()); err != nil {
		t.Fatal(err)
	}
	defer s.Unmount()
	if _, err := s.ImagesSettled(context.Background()); err != nil {
		t.Fatal(err)
	}
	if fetcher.peak != 1 {
		t.Errorf("Expected at most one concurrent fetch, got %d", fetcher.peak)
	}
}
