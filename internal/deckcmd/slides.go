package deckcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/slideshow/internal/slides"
	"github.com/spf13/cobra"
)

// NewSlidesCmd creates the slides command
func NewSlidesCmd() *cobra.Command {
	var deckPath string

	cmd := &cobra.Command{
		Use:   "slides",
		Short: "List the slides in the deck",
		Long: `List every slide of the deck in presentation order with its id, kind,
title, and the optional content it carries.`,
		Example: `  # List the built-in deck
  slideshow slides

  # List a deck from a YAML file
  slideshow slides --deck ./my-trip.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := LoadRegistry(deckPath)
			if err != nil {
				return err
			}
			return executeSlides(cmd.OutOrStdout(), reg)
		},
	}

	cmd.Flags().StringVar(&deckPath, "deck", "", "Path to a deck YAML file (env "+EnvDeck+", default: built-in deck)")

	return cmd
}

func executeSlides(w io.Writer, reg *slides.Registry) error {
	fmt.Fprintf(w, "%s (%d slides)\n", reg.Title(), reg.Len())
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%-4s %-5s %-11s %-36s %s\n", "#", "ID", "KIND", "TITLE", "CONTENT")

	for i, rec := range reg.Records() {
		fmt.Fprintf(w, "%-4d %-5d %-11s %-36s %s\n", i, rec.ID, rec.Kind, truncate(rec.Title, 36), describe(rec))
	}
	return nil
}

func describe(rec slides.Record) string {
	var parts []string
	if rec.Image != "" {
		parts = append(parts, "image")
	}
	if n := len(rec.GalleryImages); n > 0 {
		parts = append(parts, fmt.Sprintf("gallery(%d)", n))
	}
	if rec.VideoURL != "" {
		parts = append(parts, "video")
	}
	if rec.Coordinates != nil {
		parts = append(parts, "map "+rec.Coordinates.String())
	}
	if n := len(rec.Bullets); n > 0 {
		parts = append(parts, fmt.Sprintf("bullets(%d)", n))
	}
	parts = append(parts, "anim="+rec.Preset().Name)
	return strings.Join(parts, " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
