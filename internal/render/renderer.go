// Package render draws slide records into bitmaps.
//
// Layout is expressed in logical units of a 1920x1080 canvas. Render maps
// logical units to device pixels itself (text in gg is drawn straight into
// the pixmap and ignores the context transform), so every coordinate goes
// through a frame.
package render

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/lehigh-university-libraries/slideshow/internal/assets"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
)

// Logical canvas size of a slide.
const (
	Width  = 1920
	Height = 1080
)

// MaxScale bounds the device pixel ratio accepted by Render.
const MaxScale = 4.0

// Mode selects how animations are resolved.
type Mode struct {
	// Static resolves every animation to its settled state and disables
	// looping motion. Used for export capture.
	Static bool
	// Progress is the entrance progress in [0, 1] when not static.
	Progress float64
}

// StaticMode is the fully settled, motionless mode.
var StaticMode = Mode{Static: true}

// Images resolves image references to decoded images. A missing or failed
// image reports ok=false and is drawn as a neutral placeholder.
type Images interface {
	Image(ref string) (img image.Image, ok bool)
}

// ImageMap is an Images backed by a map.
type ImageMap map[string]image.Image

func (m ImageMap) Image(ref string) (image.Image, bool) {
	img, ok := m[ref]
	return img, ok && img != nil
}

// Renderer draws slides. It is safe for concurrent use; each call to Render
// works on its own drawing context.
type Renderer struct {
	fonts *assets.Fonts
}

// New creates a renderer using the given fonts.
func New(fonts *assets.Fonts) (*Renderer, error) {
	if fonts == nil || fonts.Regular == nil || fonts.Bold == nil {
		return nil, errors.New("render: fonts are required")
	}
	return &Renderer{fonts: fonts}, nil
}

// Render draws rec at the given scale and returns a bitmap of
// Width*scale x Height*scale pixels.
func (r *Renderer) Render(rec slides.Record, mode Mode, images Images, scale float64) (image.Image, error) {
	if scale <= 0 || scale > MaxScale {
		return nil, fmt.Errorf("render: scale %.2f out of range (0, %.0f]", scale, MaxScale)
	}
	if !rec.Kind.Valid() {
		return nil, fmt.Errorf("render: unknown slide kind %q", rec.Kind)
	}
	if images == nil {
		images = ImageMap(nil)
	}

	w, h := int(Width*scale+0.5), int(Height*scale+0.5)
	dc := gg.NewContext(w, h)
	defer dc.Close()

	state := rec.Preset().Static()
	if !mode.Static {
		state = rec.Preset().At(mode.Progress)
	}

	f := &frame{
		dc:     dc,
		r:      r,
		scale:  scale,
		state:  state,
		images: images,
	}

	f.fillCanvas(background(rec.Color))

	layered := state.Opacity < 1
	if layered {
		dc.PushLayer(gg.BlendNormal, state.Opacity)
	}
	switch rec.Kind {
	case slides.KindHero:
		f.hero(rec)
	case slides.KindStandard:
		f.standard(rec)
	case slides.KindCity:
		f.city(rec)
	case slides.KindGallery:
		f.gallery(rec)
	case slides.KindVideo:
		f.video(rec, mode)
	case slides.KindConclusion:
		f.conclusion(rec)
	}
	if rec.Coordinates != nil {
		f.locationBadge(*rec.Coordinates, Accent(rec.Color))
	}
	if layered {
		dc.PopLayer()
	}

	if f.err != nil {
		return nil, fmt.Errorf("render slide %d: %w", rec.ID, f.err)
	}
	return dc.Image(), nil
}

// frame maps logical coordinates to device pixels, applying the content
// layer's animation state around the canvas center.
type frame struct {
	dc     *gg.Context
	r      *Renderer
	scale  float64
	state  slides.VisualState
	images Images
	err    error
}

func (f *frame) x(v float64) float64 {
	return ((v-Width/2)*f.state.Scale + Width/2 + f.state.OffsetX) * f.scale
}

func (f *frame) y(v float64) float64 {
	return ((v-Height/2)*f.state.Scale + Height/2 + f.state.OffsetY) * f.scale
}

func (f *frame) size(v float64) float64 {
	return v * f.state.Scale * f.scale
}

func (f *frame) fail(err error) {
	if err != nil && f.err == nil {
		f.err = err
	}
}

func (f *frame) setColor(c gg.RGBA, alpha float64) {
	f.dc.SetRGBA(c.R, c.G, c.B, c.A*alpha)
}

// fillCanvas paints the whole slide, outside the animated content layer.
func (f *frame) fillCanvas(c gg.RGBA) {
	f.setColor(c, 1)
	f.dc.DrawRectangle(0, 0, Width*f.scale, Height*f.scale)
	f.fail(f.dc.Fill())
}

func (f *frame) rect(x, y, w, h float64, c gg.RGBA, alpha float64) {
	f.setColor(c, alpha)
	f.dc.DrawRectangle(f.x(x), f.y(y), f.size(w), f.size(h))
	f.fail(f.dc.Fill())
}

func (f *frame) roundRect(x, y, w, h, radius float64, c gg.RGBA, alpha float64) {
	f.setColor(c, alpha)
	f.dc.DrawRoundedRectangle(f.x(x), f.y(y), f.size(w), f.size(h), f.size(radius))
	f.fail(f.dc.Fill())
}

func (f *frame) circle(cx, cy, radius float64, c gg.RGBA, alpha float64) {
	f.setColor(c, alpha)
	f.dc.DrawCircle(f.x(cx), f.y(cy), f.size(radius))
	f.fail(f.dc.Fill())
}

func (f *frame) face(bold bool, points float64) text.Face {
	src := f.r.fonts.Regular
	if bold {
		src = f.r.fonts.Bold
	}
	return src.Face(f.size(points))
}

// image draws ref cover-fitted into the logical box, or a placeholder.
func (f *frame) image(ref string, x, y, w, h float64) {
	img, ok := f.images.Image(ref)
	if ref == "" || !ok {
		f.rect(x, y, w, h, placeholder, 1)
		return
	}

	b := img.Bounds()
	src := coverCrop(b, w/h)
	f.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:             f.x(x),
		Y:             f.y(y),
		DstWidth:      f.size(w),
		DstHeight:     f.size(h),
		SrcRect:       &src,
		Interpolation: gg.InterpBilinear,
	})
}

// coverCrop returns the largest centered sub-rectangle of b with the given
// aspect ratio.
func coverCrop(b image.Rectangle, aspect float64) image.Rectangle {
	bw, bh := b.Dx(), b.Dy()
	if bw == 0 || bh == 0 || aspect <= 0 {
		return b
	}
	if float64(bw)/float64(bh) > aspect {
		cw := int(float64(bh)*aspect + 0.5)
		off := (bw - cw) / 2
		return image.Rect(b.Min.X+off, b.Min.Y, b.Min.X+off+cw, b.Max.Y)
	}
	ch := int(float64(bw)/aspect + 0.5)
	off := (bh - ch) / 2
	return image.Rect(b.Min.X, b.Min.Y+off, b.Max.X, b.Min.Y+off+ch)
}
