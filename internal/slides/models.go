package slides

import "fmt"

// Kind selects the renderer variant for a slide and which optional fields
// the record is expected to carry.
type Kind string

const (
	KindHero       Kind = "hero"
	KindStandard   Kind = "standard"
	KindCity       Kind = "city"
	KindGallery    Kind = "gallery"
	KindVideo      Kind = "video"
	KindConclusion Kind = "conclusion"
)

// Kinds lists every valid kind.
var Kinds = []Kind{KindHero, KindStandard, KindCity, KindGallery, KindVideo, KindConclusion}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Coordinates is a location shown with a map marker on the slide.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

func (c Coordinates) String() string {
	ns, ew := "N", "E"
	lat, lon := c.Lat, c.Lon
	if lat < 0 {
		ns, lat = "S", -lat
	}
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%.4f°%s %.4f°%s", lat, ns, lon, ew)
}

// Record is one immutable slide of the presentation.
type Record struct {
	ID            int          `json:"id" yaml:"id"`
	Kind          Kind         `json:"kind" yaml:"kind"`
	Title         string       `json:"title" yaml:"title"`
	Subtitle      string       `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Bullets       []string     `json:"bullets" yaml:"bullets"`
	Image         string       `json:"image" yaml:"image"`
	GalleryImages []string     `json:"gallery_images,omitempty" yaml:"gallery_images,omitempty"`
	VideoURL      string       `json:"video_url,omitempty" yaml:"video_url,omitempty"`
	Color         string       `json:"color" yaml:"color"`
	Coordinates   *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Animation     string       `json:"animation,omitempty" yaml:"animation,omitempty"`
}

// ImageRefs returns every image referenced by the record: the primary
// image first, then gallery images in order. Empty references are skipped.
func (r Record) ImageRefs() []string {
	refs := make([]string, 0, 1+len(r.GalleryImages))
	if r.Image != "" {
		refs = append(refs, r.Image)
	}
	for _, ref := range r.GalleryImages {
		if ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Preset resolves the animation preset for the record, falling back to the
// default preset of its kind.
func (r Record) Preset() Preset {
	if r.Animation != "" {
		if p, ok := LookupPreset(r.Animation); ok {
			return p
		}
	}
	return DefaultPreset(r.Kind)
}

func (r Record) clone() Record {
	c := r
	c.Bullets = append([]string(nil), r.Bullets...)
	c.GalleryImages = append([]string(nil), r.GalleryImages...)
	if r.Coordinates != nil {
		coords := *r.Coordinates
		c.Coordinates = &coords
	}
	return c
}
