package slides

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed deck.yaml
var embeddedDeck []byte

// Deck is the on-disk YAML layout of a registry.
type Deck struct {
	Title  string   `yaml:"title"`
	Slides []Record `yaml:"slides"`
}

// Registry is the ordered, immutable list of slides. Array order is the
// presentation and export order; IDs carry no ordering meaning.
type Registry struct {
	title   string
	records []Record
}

// New validates records and returns a registry holding a private copy.
func New(title string, records []Record) (*Registry, error) {
	if err := Validate(records); err != nil {
		return nil, err
	}
	owned := make([]Record, len(records))
	for i, r := range records {
		owned[i] = r.clone()
	}
	return &Registry{title: title, records: owned}, nil
}

// Parse builds a registry from YAML deck data.
func Parse(data []byte) (*Registry, error) {
	var deck Deck
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}
	return New(deck.Title, deck.Slides)
}

// LoadFile reads a YAML deck from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck file: %w", err)
	}
	reg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry compiled into the binary.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Parse(embeddedDeck)
		if err != nil {
			panic("slides: embedded deck is invalid: " + err.Error())
		}
		defaultReg = reg
	})
	return defaultReg
}

// Title returns the presentation title.
func (r *Registry) Title() string { return r.title }

// Len returns the number of slides.
func (r *Registry) Len() int { return len(r.records) }

// At returns a copy of the slide at index i.
func (r *Registry) At(i int) Record { return r.records[i].clone() }

// Records returns a copy of all slides in presentation order.
func (r *Registry) Records() []Record {
	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.clone()
	}
	return out
}

// IndexOf returns the position of the slide with the given ID, or -1.
func (r *Registry) IndexOf(id int) int {
	for i, rec := range r.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the registry invariants and reports every violation.
func Validate(records []Record) error {
	if len(records) == 0 {
		return errors.New("registry has no slides")
	}

	var errs []error
	seen := make(map[int]int, len(records))
	heroes := 0

	for i, r := range records {
		at := fmt.Sprintf("slide %d (id %d)", i, r.ID)
		if r.ID <= 0 {
			errs = append(errs, fmt.Errorf("%s: id must be positive", at))
		}
		if prev, dup := seen[r.ID]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate id, first used by slide %d", at, prev))
		} else {
			seen[r.ID] = i
		}
		if !r.Kind.Valid() {
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", at, r.Kind))
		}
		if r.Kind == KindHero {
			heroes++
			if i != 0 {
				errs = append(errs, fmt.Errorf("%s: hero slide must be first", at))
			}
		}
		if r.Title == "" {
			errs = append(errs, fmt.Errorf("%s: title is required", at))
		}
		switch {
		case r.Kind == KindGallery && len(r.GalleryImages) == 0:
			errs = append(errs, fmt.Errorf("%s: gallery slide needs gallery_images", at))
		case r.Kind != KindGallery && len(r.GalleryImages) > 0:
			errs = append(errs, fmt.Errorf("%s: gallery_images only allowed on gallery slides", at))
		}
		switch {
		case r.Kind == KindVideo && r.VideoURL == "":
			errs = append(errs, fmt.Errorf("%s: video slide needs video_url", at))
		case r.Kind != KindVideo && r.VideoURL != "":
			errs = append(errs, fmt.Errorf("%s: video_url only allowed on video slides", at))
		}
		if c := r.Coordinates; c != nil {
			if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
				errs = append(errs, fmt.Errorf("%s: coordinates out of range: %s", at, c))
			}
		}
		if r.Animation != "" {
			if _, ok := LookupPreset(r.Animation); !ok {
				errs = append(errs, fmt.Errorf("%s: unknown animation preset %q", at, r.Animation))
			}
		}
	}

	if heroes != 1 {
		errs = append(errs, fmt.Errorf("registry must have exactly one hero slide, found %d", heroes))
	}

	return errors.Join(errs...)
}
