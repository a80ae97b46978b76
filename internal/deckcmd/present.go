package deckcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/presenter"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/lehigh-university-libraries/slideshow/internal/surface"
	"github.com/spf13/cobra"
)

// NewPresentCmd creates the present command
func NewPresentCmd() *cobra.Command {
	var deckPath string
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "present",
		Short: "Present the deck in the terminal",
		Long: `Show the deck one slide per screen in the terminal.

Keys:
  ↓ → PgDn Space   next slide
  ↑ ← PgUp         previous slide
  Home End         first / last slide
  Ctrl+E           export to PDF in the background
  q Ctrl+C         quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.resolve(cmd); err != nil {
				return err
			}
			reg, baseDir, err := LoadRegistry(deckPath)
			if err != nil {
				return err
			}
			return executePresent(cmd.Context(), reg, NewFetcher(baseDir), flags.outDir, flags.options(), os.Stdin, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&deckPath, "deck", "", "Path to a deck YAML file (env "+EnvDeck+", default: built-in deck)")
	flags.register(cmd)

	return cmd
}

func executePresent(ctx context.Context, reg *slides.Registry, fetcher surface.Fetcher, outDir string, opts export.Options, in *os.File, out io.Writer) error {
	p, _ := newPresenter(ctx, reg, fetcher, outDir, opts)
	return p.RunTerminal(ctx, in, out)
}

// newPresenter wires the export key to a background pipeline whose
// progress shows on the presenter status line.
func newPresenter(ctx context.Context, reg *slides.Registry, fetcher surface.Fetcher, outDir string, opts export.Options) (*presenter.Presenter, *export.Pipeline) {
	var p *presenter.Presenter
	pipeline := NewPipeline(fetcher, export.FileSaver{Dir: outDir},
		export.WithOptions(opts),
		export.WithNotifier(export.NotifierFunc(func(message string) {
			p.SetStatus(message)
		})),
		export.WithProgress(func(j export.Job) {
			if j.Status.Active() {
				p.SetStatus(fmt.Sprintf("Exporting: %s %d%%", j.Status, j.Progress))
			}
		}),
	)

	p = presenter.New(reg.Title(), reg.Records(), func() {
		_, done, err := pipeline.Start(ctx, reg.Records())
		if errors.Is(err, export.ErrExportInProgress) {
			return
		}
		if err != nil {
			p.SetStatus(err.Error())
			return
		}
		go func() {
			if out := <-done; out.Err == nil {
				p.SetStatus("Saved " + out.Result.Location)
			}
		}()
	})
	return p, pipeline
}
