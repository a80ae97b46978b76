// Package manifest records what an export captured, page by page.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

// Config is the run section of a manifest.
type Config struct {
	JobID         string  `yaml:"jobid"`
	Deck          string  `yaml:"deck"`
	FileName      string  `yaml:"filename"`
	Location      string  `yaml:"location"`
	Scale         float64 `yaml:"scale"`
	JPEGQuality   int     `yaml:"jpegquality"`
	PageCount     int     `yaml:"pagecount"`
	Size          int     `yaml:"size"`
	ImageFailures int     `yaml:"imagefailures"`
	DurationMS    int64   `yaml:"durationms"`
	Timestamp     string  `yaml:"timestamp"`
}

// Page is one captured slide. It is also the Parquet row type.
type Page struct {
	Page       int    `yaml:"page" parquet:"page"`
	Index      int    `yaml:"index" parquet:"index"`
	SlideID    int    `yaml:"slideid" parquet:"slide_id"`
	Kind       string `yaml:"kind" parquet:"kind"`
	Width      int    `yaml:"width" parquet:"width"`
	Height     int    `yaml:"height" parquet:"height"`
	Bytes      int    `yaml:"bytes" parquet:"bytes"`
	Stamped    bool   `yaml:"stamped" parquet:"stamped"`
	DurationMS int64  `yaml:"durationms" parquet:"duration_ms"`
}

// Manifest is the complete capture report of one export.
type Manifest struct {
	Config Config `yaml:"config"`
	Pages  []Page `yaml:"pages"`
}

// FromResult builds the manifest of a finished export.
func FromResult(deck string, opts export.Options, res *export.Result) Manifest {
	m := Manifest{
		Config: Config{
			JobID:         res.JobID,
			Deck:          deck,
			FileName:      res.FileName,
			Location:      res.Location,
			Scale:         opts.Scale,
			JPEGQuality:   opts.JPEGQuality,
			PageCount:     res.PageCount,
			Size:          res.Size,
			ImageFailures: res.ImageFailures,
			DurationMS:    res.Duration.Milliseconds(),
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
		},
		Pages: make([]Page, 0, len(res.Captures)),
	}
	for _, c := range res.Captures {
		m.Pages = append(m.Pages, Page{
			Page:       c.Index + 1,
			Index:      c.Index,
			SlideID:    c.SlideID,
			Kind:       string(c.Kind),
			Width:      c.Width,
			Height:     c.Height,
			Bytes:      c.Bytes,
			Stamped:    opts.StampPageNumbers && c.Index > 0,
			DurationMS: c.Duration.Milliseconds(),
		})
	}
	return m
}

// Save writes m to path. The format follows the extension: YAML keeps the
// whole manifest, Parquet keeps the page rows.
func Save(path string, m Manifest) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(&m)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write YAML file: %w", err)
		}
	case ".parquet":
		if err := saveParquet(path, m.Pages); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .parquet)", ext)
	}

	slog.Debug("Wrote capture manifest", "path", path, "pages", len(m.Pages))
	return nil
}

func saveParquet(path string, pages []Page) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Page](file)
	if _, err := writer.Write(pages); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}

// Load reads a manifest written by Save. A Parquet manifest has no Config.
func Load(path string) (Manifest, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Manifest{}, fmt.Errorf("failed to read manifest: %w", err)
		}
		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
		}
		return m, nil
	case ".parquet":
		pages, err := loadParquet(path)
		if err != nil {
			return Manifest{}, err
		}
		return Manifest{Pages: pages}, nil
	default:
		return Manifest{}, fmt.Errorf("unsupported manifest format: %s (supported: .yaml, .parquet)", ext)
	}
}

func loadParquet(path string) ([]Page, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}
	slog.Debug("Parquet manifest opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Page](pf)
	defer reader.Close()

	var pages []Page
	rows := make([]Page, 64)
	for {
		n, err := reader.Read(rows)
		pages = append(pages, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}
	return pages, nil
}
