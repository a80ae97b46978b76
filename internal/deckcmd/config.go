package deckcmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/slideshow/internal/assets"
	"github.com/lehigh-university-libraries/slideshow/internal/document"
	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/lehigh-university-libraries/slideshow/internal/surface"
	"github.com/spf13/cobra"
)

// Environment variables consulted when the matching flag is not given.
const (
	EnvScale       = "SLIDESHOW_SCALE"
	EnvJPEGQuality = "SLIDESHOW_JPEG_QUALITY"
	EnvOutputDir   = "SLIDESHOW_OUTPUT_DIR"
	EnvDeck        = "SLIDESHOW_DECK"
	EnvLogLevel    = "SLIDESHOW_LOG_LEVEL"
)

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// LoadRegistry loads the deck at path, or the embedded deck when path is
// empty. The returned directory resolves relative image references.
func LoadRegistry(path string) (*slides.Registry, string, error) {
	if path == "" {
		path = os.Getenv(EnvDeck)
	}
	if path == "" {
		return slides.Default(), "", nil
	}
	reg, err := slides.LoadFile(path)
	if err != nil {
		return nil, "", err
	}
	slog.Debug("Loaded deck", "path", path, "slides", reg.Len())
	return reg, filepath.Dir(path), nil
}

// NewFetcher creates an image fetcher resolving relative paths in baseDir.
func NewFetcher(baseDir string) *assets.Fetcher {
	f := assets.NewFetcher()
	f.BaseDir = baseDir
	return f
}

// NewDocument starts a PDF document on w.
func NewDocument(w io.Writer) (export.Document, error) {
	doc, err := document.NewPDF(w)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// NewPipeline wires a pipeline to a fresh off-screen surface.
func NewPipeline(fetcher surface.Fetcher, saver export.Saver, opts ...export.Option) *export.Pipeline {
	return export.New(surface.New(fetcher), NewDocument, saver, opts...)
}

// exportFlags are the flags shared by every command that exports.
type exportFlags struct {
	outDir        string
	scale         float64
	quality       int
	noPageNumbers bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	defaults := export.DefaultOptions()
	cmd.Flags().StringVarP(&f.outDir, "out", "o", ".", "Directory the PDF is written to (env "+EnvOutputDir+")")
	cmd.Flags().Float64Var(&f.scale, "scale", defaults.Scale, "Capture scale, device pixels per slide unit (env "+EnvScale+")")
	cmd.Flags().IntVar(&f.quality, "quality", defaults.JPEGQuality, "JPEG quality of each captured page (env "+EnvJPEGQuality+")")
	cmd.Flags().BoolVar(&f.noPageNumbers, "no-page-numbers", false, "Do not stamp page numbers")
}

// resolve fills unset flags from the environment.
func (f *exportFlags) resolve(cmd *cobra.Command) error {
	stringFromEnv(cmd, "out", EnvOutputDir, &f.outDir)
	if err := floatFromEnv(cmd, "scale", EnvScale, &f.scale); err != nil {
		return err
	}
	return intFromEnv(cmd, "quality", EnvJPEGQuality, &f.quality)
}

func (f *exportFlags) options() export.Options {
	opts := export.DefaultOptions()
	opts.Scale = f.scale
	opts.JPEGQuality = f.quality
	opts.StampPageNumbers = !f.noPageNumbers
	return opts
}

func stringFromEnv(cmd *cobra.Command, flag, env string, v *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if s := os.Getenv(env); s != "" {
		*v = s
	}
}

func floatFromEnv(cmd *cobra.Command, flag, env string, v *float64) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	s := os.Getenv(env)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*v = f
	return nil
}

func intFromEnv(cmd *cobra.Command, flag, env string, v *int) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	s := os.Getenv(env)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*v = n
	return nil
}
