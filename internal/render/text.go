package render

import (
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

type align int

const (
	alignStart align = iota
	alignCenter
)

// textBox draws s wrapped to the logical box starting at (x, baseline y)
// with width w and returns the logical baseline below the last line.
// Start-aligned right-to-left text is aligned to the right edge.
func (f *frame) textBox(s string, x, y, w float64, bold bool, points float64, c gg.RGBA, a align) float64 {
	if s == "" {
		return y
	}
	face := f.face(bold, points)
	f.dc.SetFont(face)
	f.setColor(c, 1)

	lineHeight := points * 1.3
	rtl := Direction(s) == text.DirectionRTL
	for _, line := range wrap(s, f.size(w), func(t string) float64 {
		width, _ := text.Measure(t, face)
		return width
	}) {
		switch {
		case a == alignCenter:
			f.dc.DrawStringAnchored(line, f.x(x+w/2), f.y(y), 0.5, 0)
		case rtl:
			f.dc.DrawStringAnchored(line, f.x(x+w), f.y(y), 1, 0)
		default:
			f.dc.DrawString(line, f.x(x), f.y(y))
		}
		y += lineHeight
	}
	return y
}

// wrap breaks s into lines no wider than maxWidth. A single word wider than
// maxWidth gets a line of its own.
func wrap(s string, maxWidth float64, measure func(string) float64) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	return append(lines, line)
}
