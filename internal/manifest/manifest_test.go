package manifest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/slideshow/internal/export"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
)

func sampleResult() *export.Result {
	return &export.Result{
		JobID:         "job-1",
		FileName:      "travel-presentation.pdf",
		Location:      "out/travel-presentation.pdf",
		PageCount:     3,
		Size:          4096,
		ImageFailures: 1,
		Duration:      2500 * time.Millisecond,
		Captures: []export.CaptureInfo{
			{Index: 0, SlideID: 1, Kind: slides.KindHero, Width: 1920, Height: 1080, Bytes: 1000, Duration: 40 * time.Millisecond},
			{Index: 1, SlideID: 2, Kind: slides.KindStandard, Width: 1920, Height: 1080, Bytes: 1200, Duration: 35 * time.Millisecond},
			{Index: 2, SlideID: 9, Kind: slides.KindConclusion, Width: 1920, Height: 1080, Bytes: 900, Duration: 30 * time.Millisecond},
		},
	}
}

func TestFromResult(t *testing.T) {
	m := FromResult("Across the Maghreb", export.DefaultOptions(), sampleResult())

	if m.Config.JobID != "job-1" || m.Config.PageCount != 3 || m.Config.DurationMS != 2500 {
		t.Errorf("Unexpected config: %+v", m.Config)
	}
	if m.Config.JPEGQuality != 92 || m.Config.Scale != 1 {
		t.Errorf("Expected default options in config, got %+v", m.Config)
	}

	want := []Page{
		{Page: 1, Index: 0, SlideID: 1, Kind: "hero", Width: 1920, Height: 1080, Bytes: 1000, Stamped: false, DurationMS: 40},
		{Page: 2, Index: 1, SlideID: 2, Kind: "standard", Width: 1920, Height: 1080, Bytes: 1200, Stamped: true, DurationMS: 35},
		{Page: 3, Index: 2, SlideID: 9, Kind: "conclusion", Width: 1920, Height: 1080, Bytes: 900, Stamped: true, DurationMS: 30},
	}
	if diff := cmp.Diff(want, m.Pages); diff != "" {
		t.Errorf("Unexpected pages (-want +got):\n%s", diff)
	}
}

func TestFromResultWithoutStamps(t *testing.T) {
	opts := export.DefaultOptions()
	opts.StampPageNumbers = false
	for _, p := range FromResult("deck", opts, sampleResult()).Pages {
		if p.Stamped {
			t.Errorf("Page %d: expected no stamp", p.Page)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	m := FromResult("Across the Maghreb", export.DefaultOptions(), sampleResult())

	tests := []struct {
		name       string
		file       string
		wantConfig bool
	}{
		{name: "yaml", file: "manifest.yaml", wantConfig: true},
		{name: "yml", file: "manifest.yml", wantConfig: true},
		{name: "parquet", file: "manifest.parquet", wantConfig: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reports", tt.file)
			if err := Save(path, m); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if diff := cmp.Diff(m.Pages, got.Pages); diff != "" {
				t.Errorf("Unexpected pages (-want +got):\n%s", diff)
			}
			if tt.wantConfig {
				if diff := cmp.Diff(m.Config, got.Config); diff != "" {
					t.Errorf("Unexpected config (-want +got):\n%s", diff)
				}
			} else if got.Config != (Config{}) {
				t.Errorf("Expected empty config, got %+v", got.Config)
			}
		})
	}
}

func TestUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")
	if err := Save(path, Manifest{}); err == nil {
		t.Error("Expected error saving unsupported format")
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error loading unsupported format")
	}
}
