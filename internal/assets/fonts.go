package assets

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Fonts holds the font sources used by the slide renderer.
type Fonts struct {
	Regular *text.FontSource
	Bold    *text.FontSource
}

var (
	fontsOnce sync.Once
	fonts     *Fonts
	fontsErr  error
)

// LoadFonts parses the bundled Go fonts once and returns them.
func LoadFonts() (*Fonts, error) {
	fontsOnce.Do(func() {
		regular, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("failed to parse regular font: %w", err)
			return
		}
		bold, err := text.NewFontSource(gobold.TTF)
		if err != nil {
			fontsErr = fmt.Errorf("failed to parse bold font: %w", err)
			return
		}
		fonts = &Fonts{Regular: regular, Bold: bold}
	})
	return fonts, fontsErr
}
