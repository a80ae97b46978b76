package deckcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/manifest"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/lehigh-university-libraries/slideshow/internal/surface"
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var deckPath string
	var manifestPath string
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the deck to a paginated PDF",
		Long: `Render every slide off-screen at full resolution, capture the slides one
after another in deck order, and assemble them into travel-presentation.pdf
with one full-bleed 1920x1080 page per slide.

Images that fail to load are drawn as placeholders and do not stop the export.`,
		Example: `  # Export the built-in deck into ./out
  slideshow export --out ./out

  # Export at double resolution and keep a Parquet capture report
  slideshow export --scale 2 --manifest ./out/captures.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.resolve(cmd); err != nil {
				return err
			}
			reg, baseDir, err := LoadRegistry(deckPath)
			if err != nil {
				return err
			}
			_, err = executeExport(cmd.Context(), reg, NewFetcher(baseDir), flags.outDir, flags.options(), manifestPath, cmd.ErrOrStderr())
			return err
		},
	}

	cmd.Flags().StringVar(&deckPath, "deck", "", "Path to a deck YAML file (env "+EnvDeck+", default: built-in deck)")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Write a capture report (.yaml or .parquet)")
	flags.register(cmd)

	return cmd
}

func executeExport(ctx context.Context, reg *slides.Registry, fetcher surface.Fetcher, outDir string, opts export.Options, manifestPath string, w io.Writer) (*export.Result, error) {
	pipeline := NewPipeline(fetcher, export.FileSaver{Dir: outDir},
		export.WithOptions(opts),
		export.WithNotifier(export.NotifierFunc(func(message string) {
			fmt.Fprintf(w, "\n%s\n", message)
		})),
		export.WithProgress(func(j export.Job) {
			if j.Status.Active() {
				fmt.Fprintf(w, "\r%-10s %3d%% (%d slides)", j.Status, j.Progress, j.PageCount)
			}
		}),
	)

	res, err := pipeline.Export(ctx, reg.Records())
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "\r%-10s %3d%% (%d slides)\n", export.StatusDone, 100, res.PageCount)

	if manifestPath != "" {
		if err := manifest.Save(manifestPath, manifest.FromResult(reg.Title(), opts, res)); err != nil {
			return nil, fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	fmt.Fprintf(w, "\nExport complete!\n")
	fmt.Fprintf(w, "  Pages: %d\n", res.PageCount)
	fmt.Fprintf(w, "  Size: %d bytes\n", res.Size)
	if res.ImageFailures > 0 {
		fmt.Fprintf(w, "  Images drawn as placeholders: %d\n", res.ImageFailures)
	}
	fmt.Fprintf(w, "  Output location: %s\n", res.Location)
	if manifestPath != "" {
		fmt.Fprintf(w, "  Manifest: %s\n", manifestPath)
	}
	return res, nil
}
