package deckcmd

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/slideshow/internal/assets"
	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/lehigh-university-libraries/slideshow/internal/surface"
	"github.com/spf13/cobra"
)

// NewRenderCmd creates the render command
func NewRenderCmd() *cobra.Command {
	var deckPath string
	var index int
	var out string
	var static bool
	var progress float64
	var scale float64

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one slide to a PNG file",
		Long: `Render a single slide to a PNG image.

By default the slide is drawn settled, exactly as it is captured for export.
Use --t to draw a frame of its entrance animation instead.`,
		Example: `  # Render the first slide
  slideshow render --index 0 --out hero.png

  # Render the gallery halfway through its entrance at half size
  slideshow render --index 5 --t 0.5 --scale 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := floatFromEnv(cmd, "scale", EnvScale, &scale); err != nil {
				return err
			}
			mode := render.StaticMode
			if cmd.Flags().Changed("t") {
				if static {
					return errors.New("--static and --t cannot be combined")
				}
				if progress < 0 || progress > 1 {
					return fmt.Errorf("--t must be in [0, 1], got %v", progress)
				}
				mode = render.Mode{Progress: progress}
			}
			if out == "" {
				out = fmt.Sprintf("slide-%d.png", index)
			}

			reg, baseDir, err := LoadRegistry(deckPath)
			if err != nil {
				return err
			}
			return executeRender(cmd.Context(), reg, NewFetcher(baseDir), index, out, mode, scale)
		},
	}

	cmd.Flags().StringVar(&deckPath, "deck", "", "Path to a deck YAML file (env "+EnvDeck+", default: built-in deck)")
	cmd.Flags().IntVarP(&index, "index", "i", 0, "Zero-based slide index")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PNG path (default slide-<index>.png)")
	cmd.Flags().BoolVar(&static, "static", false, "Draw the settled slide (default unless --t is given)")
	cmd.Flags().Float64Var(&progress, "t", 1, "Entrance animation progress in [0, 1]")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Device pixels per slide unit (env "+EnvScale+")")

	return cmd
}

func executeRender(ctx context.Context, reg *slides.Registry, fetcher surface.Fetcher, index int, out string, mode render.Mode, scale float64) error {
	if index < 0 || index >= reg.Len() {
		return fmt.Errorf("slide index %d out of range [0, %d)", index, reg.Len())
	}
	rec := reg.At(index)

	images := render.ImageMap{}
	for _, ref := range rec.ImageRefs() {
		img, err := fetcher.Fetch(ctx, ref)
		if err != nil {
			slog.Warn("Slide image failed to load", "ref", ref, "err", err)
			continue
		}
		images[ref] = img
	}

	fonts, err := assets.LoadFonts()
	if err != nil {
		return err
	}
	renderer, err := render.New(fonts)
	if err != nil {
		return err
	}
	img, err := renderer.Render(rec, mode, images, scale)
	if err != nil {
		return fmt.Errorf("failed to render slide %d: %w", index, err)
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write PNG: %w", err)
	}

	b := img.Bounds()
	slog.Info("Rendered slide", "index", index, "id", rec.ID, "kind", rec.Kind, "width", b.Dx(), "height", b.Dy(), "path", out)
	return nil
}
