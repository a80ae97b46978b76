package render

import "github.com/gogpu/gg"

// accents maps the symbolic color tokens used by slide records to concrete
// colors. Unknown tokens fall back to slate.
var accents = map[string]gg.RGBA{
	"amber":   gg.Hex("#E8A33D"),
	"teal":    gg.Hex("#2A9D8F"),
	"rose":    gg.Hex("#E76F8A"),
	"indigo":  gg.Hex("#4F5BD5"),
	"emerald": gg.Hex("#2FA36B"),
	"slate":   gg.Hex("#64748B"),
	"gold":    gg.Hex("#D4AF37"),
	"crimson": gg.Hex("#B23A48"),
}

var (
	ink         = gg.Hex("#F8F5EF")
	inkMuted    = gg.Hex("#D9D3C7")
	placeholder = gg.Hex("#3A3F47")
)

// Accent returns the color for a token.
func Accent(token string) gg.RGBA {
	if c, ok := accents[token]; ok {
		return c
	}
	return accents["slate"]
}

// background is the accent darkened for use behind text.
func background(token string) gg.RGBA {
	c := Accent(token)
	return gg.RGB(c.R*0.18, c.G*0.18, c.B*0.18)
}
