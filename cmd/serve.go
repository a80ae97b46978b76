package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/slideshow/internal/assets"
	"github.com/lehigh-university-libraries/slideshow/internal/deckcmd"
	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/handlers"
	"github.com/lehigh-university-libraries/slideshow/internal/render"
	"github.com/lehigh-university-libraries/slideshow/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var deckPath string
	var scale float64
	var quality int
	var keep int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for presenting and exporting the deck",
		Long: `Starts the slideshow web interface on the specified port.

The interface scrolls through slide previews one screen at a time and
exports the deck to PDF. Exported documents are kept in memory and served
for download.`,
		Example: `  # Start server on default port 8888
  slideshow serve

  # Start server on custom port with a custom deck
  slideshow serve --port 3000 --deck ./my-trip.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, baseDir, err := deckcmd.LoadRegistry(deckPath)
			if err != nil {
				return err
			}
			fonts, err := assets.LoadFonts()
			if err != nil {
				return err
			}
			renderer, err := render.New(fonts)
			if err != nil {
				return err
			}

			opts := export.DefaultOptions()
			opts.Scale = scale
			opts.JPEGQuality = quality
			if err := opts.Validate(); err != nil {
				return err
			}

			fetcher := deckcmd.NewFetcher(baseDir)
			store := storage.New(keep)
			pipeline := deckcmd.NewPipeline(fetcher, store, export.WithOptions(opts))
			handler := handlers.New(cmd.Context(), reg, pipeline, store, renderer, fetcher)

			// Set up routes
			mux := http.NewServeMux()
			handler.Routes(mux)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Slideshow available", "addr", addr, "url", "http://localhost"+addr, "slides", reg.Len())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&deckPath, "deck", "", "Path to a deck YAML file (env "+deckcmd.EnvDeck+", default: built-in deck)")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Capture scale for exports")
	cmd.Flags().IntVar(&quality, "quality", 92, "JPEG quality of exported pages")
	cmd.Flags().IntVar(&keep, "keep", storage.DefaultLimit, "Number of exported documents kept for download")

	return cmd
}
