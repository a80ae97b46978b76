package cmd

import (
	"log/slog"
	"os"

	"github.com/gogpu/gg"
	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/slideshow/internal/deckcmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "slideshow",
		Short: "Travel slideshow renderer, presenter and PDF exporter",
		Long: `Slideshow holds a travel narrative deck, renders its slides, presents it
in the terminal or the browser, and exports it to a paginated PDF with one
full-resolution page per slide.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level, err := deckcmd.ParseLogLevel(os.Getenv(deckcmd.EnvLogLevel))
			if err != nil {
				return err
			}
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
			gg.SetLogger(logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (env "+deckcmd.EnvLogLevel+"=debug)")

	// Add subcommands
	cmd.AddCommand(deckcmd.NewSlidesCmd())
	cmd.AddCommand(deckcmd.NewRenderCmd())
	cmd.AddCommand(deckcmd.NewExportCmd())
	cmd.AddCommand(deckcmd.NewPresentCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
