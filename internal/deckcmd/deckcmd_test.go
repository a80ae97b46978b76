package deckcmd

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/manifest"
	"github.com/lehigh-university-libraries/slideshow/internal/presenter"
	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/spf13/cobra"
)

const testDeck = `title: "Weekend in Fes"
slides:
  - id: 10
    kind: hero
    title: "Fes"
    subtitle: "فاس"
    image: "photo.png"
    color: gold
  - id: 11
    kind: city
    title: "The tanneries"
    bullets: ["Climb to the terrace", "Hold the mint"]
    image: "missing.png"
    coordinates: {lat: 34.0181, lon: -5.0078}
  - id: 12
    kind: conclusion
    title: "Until next time"
    color: rose
`

// writeDeck writes a small deck with one local image and one missing image.
func writeDeck(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	for y := range 18 {
		for x := range 32 {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "deck.yaml")
	if err := os.WriteFile(path, []byte(testDeck), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fastOptions() export.Options {
	opts := export.DefaultOptions()
	opts.Scale = 0.1
	opts.SettleDelay = 0
	opts.StabilizeDelay = 0
	return opts
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{input: "", expected: slog.LevelInfo},
		{input: "debug", expected: slog.LevelDebug},
		{input: "WARN", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "loud", expected: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLoadRegistry(t *testing.T) {
	t.Setenv(EnvDeck, "")
	reg, dir, err := LoadRegistry("")
	if err != nil || reg != slides.Default() || dir != "" {
		t.Errorf("Expected built-in deck, got %v (%v)", dir, err)
	}

	path := writeDeck(t)
	reg, dir, err = LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if reg.Len() != 3 || reg.Title() != "Weekend in Fes" || dir != filepath.Dir(path) {
		t.Errorf("Unexpected deck: %q with %d slides in %s", reg.Title(), reg.Len(), dir)
	}

	t.Setenv(EnvDeck, path)
	if reg, _, err := LoadRegistry(""); err != nil || reg.Len() != 3 {
		t.Errorf("Expected deck from %s, got %v", EnvDeck, err)
	}

	if _, _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing deck")
	}
}

func TestExecuteSlides(t *testing.T) {
	reg, _, err := LoadRegistry(writeDeck(t))
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := executeSlides(&out, reg); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Weekend in Fes (3 slides)", "hero", "The tanneries", "map 34.0181°N", "anim=zoom", "bullets(2)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected output to contain %q:\n%s", want, out.String())
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Marrakech", 20); got != "Marrakech" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	if got := truncate("The longest train ride of the trip", 10); got != "The lon..." {
		t.Errorf("Expected truncated, got %q", got)
	}
}

func TestExecuteRender(t *testing.T) {
	path := writeDeck(t)
	reg, dir, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "frames", "hero.png")

	if err := executeRender(context.Background(), reg, NewFetcher(dir), 0, out, render.StaticMode, 0.1); err != nil {
		t.Fatalf("executeRender failed: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 192 || cfg.Height != 108 {
		t.Errorf("Expected 192x108, got %dx%d", cfg.Width, cfg.Height)
	}

	if err := executeRender(context.Background(), reg, NewFetcher(dir), 3, out, render.StaticMode, 0.1); err == nil {
		t.Error("Expected error for out of range index")
	}
}

func TestExecuteExport(t *testing.T) {
	path := writeDeck(t)
	reg, dir, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()
	manifestPath := filepath.Join(outDir, "captures.yaml")

	var log bytes.Buffer
	res, err := executeExport(context.Background(), reg, NewFetcher(dir), outDir, fastOptions(), manifestPath, &log)
	if err != nil {
		t.Fatalf("executeExport failed: %v", err)
	}

	if res.PageCount != 3 || res.ImageFailures != 1 {
		t.Errorf("Expected 3 pages and 1 image failure, got %d and %d", res.PageCount, res.ImageFailures)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "travel-presentation.pdf"))
	if err != nil {
		t.Fatalf("Expected PDF in output directory: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("Expected a PDF file")
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Pages) != 3 || m.Pages[0].Stamped || !m.Pages[2].Stamped || m.Config.Deck != "Weekend in Fes" {
		t.Errorf("Unexpected manifest: %+v", m)
	}
	if !strings.Contains(log.String(), "Export complete!") {
		t.Errorf("Expected completion summary, got:\n%s", log.String())
	}
}

func TestExportFlagsFromEnv(t *testing.T) {
	t.Setenv(EnvScale, "2")
	t.Setenv(EnvJPEGQuality, "70")
	t.Setenv(EnvOutputDir, "/tmp/decks")

	var flags exportFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	if err := cmd.Flags().Parse([]string{"--quality", "80", "--no-page-numbers"}); err != nil {
		t.Fatal(err)
	}
	if err := flags.resolve(cmd); err != nil {
		t.Fatal(err)
	}

	opts := flags.options()
	if opts.Scale != 2 || opts.JPEGQuality != 80 || opts.StampPageNumbers || flags.outDir != "/tmp/decks" {
		t.Errorf("Unexpected options: %+v out=%s", opts, flags.outDir)
	}

	t.Setenv(EnvScale, "big")
	var bad exportFlags
	cmd = &cobra.Command{Use: "test"}
	bad.register(cmd)
	if err := bad.resolve(cmd); err == nil {
		t.Error("Expected error for invalid env scale")
	}
}

func TestPresenterExportKey(t *testing.T) {
	path := writeDeck(t)
	reg, dir, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	outDir := t.TempDir()

	p, pipeline := newPresenter(context.Background(), reg, NewFetcher(dir), outDir, fastOptions())
	p.FrameDelay = 0

	// Ctrl+E twice: the second press lands while the first export runs or
	// after it finished, and never starts a parallel job.
	in := strings.NewReader("\x05\x05")
	if err := p.Run(context.Background(), in, &bytes.Buffer{}, presenter.Size{Cols: 80, Rows: 24}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(30 * time.Second)
	for {
		last, ok := pipeline.Last()
		if ok && !pipeline.Busy() {
			if last.Status != export.StatusDone {
				t.Fatalf("Expected export to finish, got %+v", last)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Export did not finish")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Stat(filepath.Join(outDir, "travel-presentation.pdf")); err != nil {
		t.Errorf("Expected exported PDF: %v", err)
	}
}
