package render

import (
	"math"

	"github.com/gogpu/gg"
	"github.com/lehigh-university-libraries/slideshow/internal/slides"
)

const margin = 120

func (f *frame) hero(rec slides.Record) {
	f.image(rec.Image, 0, 0, Width, Height)
	f.rect(0, 0, Width, Height, gg.RGB(0, 0, 0), 0.45)

	accent := Accent(rec.Color)
	f.rect(Width/2-80, 380, 160, 8, accent, 1)
	y := f.textBox(rec.Title, margin, 520, Width-2*margin, true, 112, ink, alignCenter)
	f.textBox(rec.Subtitle, margin, y+20, Width-2*margin, false, 52, inkMuted, alignCenter)
}

func (f *frame) standard(rec slides.Record) {
	const split = Width * 0.45
	f.image(rec.Image, 0, 0, split, Height)

	accent := Accent(rec.Color)
	x := split + 100.0
	w := Width - x - margin
	f.rect(x, 180, 120, 8, accent, 1)
	y := f.textBox(rec.Title, x, 290, w, true, 72, ink, alignStart)
	y = f.textBox(rec.Subtitle, x, y+10, w, false, 40, inkMuted, alignStart)
	f.bullets(rec.Bullets, x, y+50, w, accent)
}

func (f *frame) city(rec slides.Record) {
	f.image(rec.Image, 0, 0, Width, Height)
	f.rect(0, Height*0.55, Width, Height*0.45, gg.RGB(0, 0, 0), 0.6)

	accent := Accent(rec.Color)
	y := f.textBox(rec.Title, margin, 700, Width*0.6, true, 96, ink, alignStart)
	y = f.textBox(rec.Subtitle, margin, y, Width*0.6, false, 44, inkMuted, alignStart)
	f.bullets(rec.Bullets, Width*0.62, 700, Width*0.38-margin, accent)
}

func (f *frame) gallery(rec slides.Record) {
	accent := Accent(rec.Color)
	y := f.textBox(rec.Title, margin, 150, Width-2*margin, true, 72, ink, alignStart)
	f.rect(margin, y-40, 120, 8, accent, 1)

	const (
		cols = 3
		gap  = 24.0
	)
	images := rec.GalleryImages
	rows := (len(images) + cols - 1) / cols
	top := y + 10
	cellW := (Width - 2*margin - gap*(cols-1)) / cols
	cellH := (Height - top - 80 - gap*float64(rows-1)) / float64(rows)
	for i, ref := range images {
		col, row := i%cols, i/cols
		x := margin + float64(col)*(cellW+gap)
		cy := top + float64(row)*(cellH+gap)
		f.image(ref, x, cy, cellW, cellH)
	}
}

func (f *frame) video(rec slides.Record, mode Mode) {
	f.image(rec.Image, 0, 0, Width, Height)
	f.rect(0, 0, Width, Height, gg.RGB(0, 0, 0), 0.5)

	accent := Accent(rec.Color)
	radius := 90.0
	if !mode.Static {
		// The play button pulses while the slide is live.
		radius += 10 * math.Sin(2*math.Pi*mode.Progress)
	}
	cx, cy := Width/2.0, Height/2.0-60
	f.circle(cx, cy, radius, accent, 0.9)
	f.setColor(ink, 1)
	f.dc.MoveTo(f.x(cx-28), f.y(cy-42))
	f.dc.LineTo(f.x(cx+46), f.y(cy))
	f.dc.LineTo(f.x(cx-28), f.y(cy+42))
	f.dc.ClosePath()
	f.fail(f.dc.Fill())

	y := f.textBox(rec.Title, margin, cy+radius+110, Width-2*margin, true, 72, ink, alignCenter)
	f.textBox(rec.Subtitle, margin, y, Width-2*margin, false, 40, inkMuted, alignCenter)
}

func (f *frame) conclusion(rec slides.Record) {
	f.image(rec.Image, 0, 0, Width, Height)
	f.rect(0, 0, Width, Height, background(rec.Color), 0.75)

	accent := Accent(rec.Color)
	y := f.textBox(rec.Title, margin, 460, Width-2*margin, true, 128, ink, alignCenter)
	y = f.textBox(rec.Subtitle, margin, y+10, Width-2*margin, false, 52, inkMuted, alignCenter)
	f.rect(Width/2-80, y+10, 160, 8, accent, 1)
	for _, b := range rec.Bullets {
		y = f.textBox(b, margin, y+90, Width-2*margin, false, 40, inkMuted, alignCenter) - 60
	}
}

func (f *frame) bullets(items []string, x, y, w float64, accent gg.RGBA) float64 {
	const (
		points = 38.0
		indent = 48.0
	)
	for _, item := range items {
		f.circle(x+10, y-points*0.35, 9, accent, 1)
		y = f.textBox(item, x+indent, y, w-indent, false, points, ink, alignStart) + 22
	}
	return y
}

// locationBadge draws a map pin with the coordinates in the top-right corner.
func (f *frame) locationBadge(c slides.Coordinates, accent gg.RGBA) {
	const (
		bw = 520.0
		bh = 110.0
	)
	x, y := Width-margin-bw, 80.0
	f.roundRect(x, y, bw, bh, 24, gg.RGB(0, 0, 0), 0.55)

	px, py := x+60, y+bh/2-8
	f.circle(px, py, 22, accent, 1)
	f.setColor(accent, 1)
	f.dc.MoveTo(f.x(px-18), f.y(py+12))
	f.dc.LineTo(f.x(px), f.y(py+44))
	f.dc.LineTo(f.x(px+18), f.y(py+12))
	f.dc.ClosePath()
	f.fail(f.dc.Fill())
	f.circle(px, py, 8, ink, 1)

	f.textBox(c.String(), x+110, y+bh/2+12, bw-130, false, 30, ink, alignStart)
}
