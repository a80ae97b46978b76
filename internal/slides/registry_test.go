package slides

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validRecords() []Record {
	return []Record{
		{ID: 10, Kind: KindHero, Title: "Start", Color: "amber"},
		{ID: 3, Kind: KindStandard, Title: "Middle", Bullets: []string{"a", "b"}, Color: "teal"},
		{ID: 7, Kind: KindConclusion, Title: "End", Color: "rose"},
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	if reg.Len() == 0 {
		t.Fatal("Expected embedded deck to contain slides")
	}
	if reg.At(0).Kind != KindHero {
		t.Errorf("Expected first slide to be hero, got %s", reg.At(0).Kind)
	}
	if reg.Title() == "" {
		t.Error("Expected embedded deck to have a title")
	}
	if Default() != reg {
		t.Error("Expected Default to return the same registry on every call")
	}
}

func TestRegistryKeepsArrayOrder(t *testing.T) {
	reg, err := New("deck", validRecords())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var ids []int
	for _, r := range reg.Records() {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]int{10, 3, 7}, ids); diff != "" {
		t.Errorf("Unexpected order (-want +got):\n%s", diff)
	}
	if got := reg.IndexOf(7); got != 2 {
		t.Errorf("Expected IndexOf(7) = 2, got %d", got)
	}
	if got := reg.IndexOf(99); got != -1 {
		t.Errorf("Expected IndexOf(99) = -1, got %d", got)
	}
}

func TestRegistryIsImmutable(t *testing.T) {
	records := validRecords()
	reg, err := New("deck", records)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	records[1].Bullets[0] = "changed"
	got := reg.Records()
	got[1].Title = "changed"
	got[1].Bullets[1] = "changed"

	again := reg.At(1)
	if again.Title != "Middle" || again.Bullets[0] != "a" || again.Bullets[1] != "b" {
		t.Errorf("Registry was mutated through a copy: %+v", again)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func([]Record) []Record
		wantErr string
	}{
		{
			name:   "valid registry",
			mutate: func(r []Record) []Record { return r },
		},
		{
			name:    "empty registry",
			mutate:  func(r []Record) []Record { return nil },
			wantErr: "no slides",
		},
		{
			name: "hero not first",
			mutate: func(r []Record) []Record {
				r[0], r[1] = r[1], r[0]
				return r
			},
			wantErr: "hero slide must be first",
		},
		{
			name: "two heroes",
			mutate: func(r []Record) []Record {
				r[2].Kind = KindHero
				return r
			},
			wantErr: "exactly one hero slide, found 2",
		},
		{
			name: "duplicate id",
			mutate: func(r []Record) []Record {
				r[2].ID = 3
				return r
			},
			wantErr: "duplicate id",
		},
		{
			name: "unknown kind",
			mutate: func(r []Record) []Record {
				r[1].Kind = "carousel"
				return r
			},
			wantErr: `unknown kind "carousel"`,
		},
		{
			name: "gallery without images",
			mutate: func(r []Record) []Record {
				r[1].Kind = KindGallery
				return r
			},
			wantErr: "gallery slide needs gallery_images",
		},
		{
			name: "video url on standard slide",
			mutate: func(r []Record) []Record {
				r[1].VideoURL = "https://example.org/v.mp4"
				return r
			},
			wantErr: "video_url only allowed on video slides",
		},
		{
			name: "coordinates out of range",
			mutate: func(r []Record) []Record {
				r[1].Coordinates = &Coordinates{Lat: 91, Lon: 0}
				return r
			},
			wantErr: "coordinates out of range",
		},
		{
			name: "unknown preset",
			mutate: func(r []Record) []Record {
				r[1].Animation = "spin"
				return r
			},
			wantErr: `unknown animation preset "spin"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mutate(validRecords()))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
title: Test deck
slides:
  - id: 1
    kind: hero
    title: Hello
    color: teal
  - id: 2
    kind: city
    title: Tunis
    color: indigo
    coordinates: {lat: 36.8, lon: 10.18}
`)
	reg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Expected 2 slides, got %d", reg.Len())
	}
	city := reg.At(1)
	if city.Coordinates == nil || city.Coordinates.Lat != 36.8 {
		t.Errorf("Expected coordinates to be parsed, got %+v", city.Coordinates)
	}

	if _, err := Parse([]byte("slides: [")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestImageRefs(t *testing.T) {
	r := Record{Image: "a.jpg", GalleryImages: []string{"b.jpg", "", "c.jpg"}}
	if diff := cmp.Diff([]string{"a.jpg", "b.jpg", "c.jpg"}, r.ImageRefs()); diff != "" {
		t.Errorf("Unexpected refs (-want +got):\n%s", diff)
	}
	if got := (Record{}).ImageRefs(); len(got) != 0 {
		t.Errorf("Expected no refs, got %v", got)
	}
}
