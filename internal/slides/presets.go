package slides

import (
	"math"
	"sort"
)

// Preset describes an entrance animation as data. A slide enters from the
// "From" state and settles at full opacity, zero offset and unit scale.
type Preset struct {
	Name        string
	FromOpacity float64
	FromOffsetX float64
	FromOffsetY float64
	FromScale   float64
	// Loop adds a continuous drift once the entrance has played.
	Loop bool
}

// VisualState is the resolved appearance of a slide's content layer.
type VisualState struct {
	Opacity float64
	OffsetX float64
	OffsetY float64
	Scale   float64
}

// Settled is the final state every preset resolves to.
var Settled = VisualState{Opacity: 1, Scale: 1}

const driftAmplitude = 12.0

var presets = map[string]Preset{
	"fade":        {Name: "fade", FromOpacity: 0, FromScale: 1},
	"rise":        {Name: "rise", FromOpacity: 0, FromOffsetY: 80, FromScale: 1},
	"slide-left":  {Name: "slide-left", FromOpacity: 0, FromOffsetX: -160, FromScale: 1},
	"slide-right": {Name: "slide-right", FromOpacity: 0, FromOffsetX: 160, FromScale: 1},
	"zoom":        {Name: "zoom", FromOpacity: 0, FromScale: 0.85},
	"drift":       {Name: "drift", FromOpacity: 0, FromOffsetY: 40, FromScale: 1.05, Loop: true},
}

var kindPresets = map[Kind]string{
	KindHero:       "zoom",
	KindStandard:   "rise",
	KindCity:       "slide-left",
	KindGallery:    "fade",
	KindVideo:      "fade",
	KindConclusion: "drift",
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// PresetNames returns the known preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultPreset returns the preset used by a kind when a record names none.
func DefaultPreset(k Kind) Preset {
	if name, ok := kindPresets[k]; ok {
		return presets[name]
	}
	return presets["fade"]
}

// At returns the visual state at animation progress t. Values of t outside
// [0, 1] are clamped. Looping presets keep drifting after the entrance.
func (p Preset) At(t float64) VisualState {
	if t >= 1 {
		return Settled
	}
	t = math.Max(0, t)
	e := easeOut(t)
	s := VisualState{
		Opacity: lerp(p.FromOpacity, 1, e),
		OffsetX: lerp(p.FromOffsetX, 0, e),
		OffsetY: lerp(p.FromOffsetY, 0, e),
		Scale:   lerp(p.FromScale, 1, e),
	}
	if p.Loop {
		s.OffsetY += driftAmplitude * math.Sin(2*math.Pi*t)
	}
	return s
}

// Static returns the fully settled state with all looping motion removed.
func (Preset) Static() VisualState {
	return Settled
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

func easeOut(t float64) float64 {
	return 1 - (1-t)*(1-t)*(1-t)
}
