package render

import (
	"unicode/utf8"

	"github.com/gogpu/gg/text"
	"golang.org/x/text/unicode/bidi"
)

// Direction returns the paragraph direction of s, decided by its first
// strong character. Text without strong characters is left-to-right.
func Direction(s string) text.Direction {
	for len(s) > 0 {
		props, size := bidi.LookupString(s)
		if size == 0 {
			_, size = utf8.DecodeRuneInString(s)
		}
		switch props.Class() {
		case bidi.L:
			return text.DirectionLTR
		case bidi.R, bidi.AL:
			return text.DirectionRTL
		}
		s = s[size:]
	}
	return text.DirectionLTR
}
