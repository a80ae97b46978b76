package presenter

import (
	"unicode/utf8"

	"github.com/lehigh-university-libraries/slideshow/internal/navigation"
)

// ParseKeys decodes raw terminal input into key events. Unknown escape
// sequences are dropped.
func ParseKeys(b []byte) []navigation.KeyEvent {
	var events []navigation.KeyEvent
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == 0x1b && i+1 < len(b) && (b[i+1] == '[' || b[i+1] == 'O'):
			key, n := parseEscape(b[i+2:])
			if key != "" {
				events = append(events, navigation.KeyEvent{Key: key})
			}
			i += 2 + n
		case c == 0x1b:
			i++
		case c == '\r' || c == '\n':
			events = append(events, navigation.KeyEvent{Key: "Enter"})
			i++
		case c < 0x20:
			events = append(events, navigation.KeyEvent{Key: navigation.Key(rune('a' + c - 1)), Ctrl: true})
			i++
		default:
			r, size := utf8.DecodeRune(b[i:])
			events = append(events, navigation.KeyEvent{Key: navigation.Key(r)})
			i += size
		}
	}
	return events
}

// parseEscape reads the rest of a CSI or SS3 sequence and returns the key
// and the number of bytes consumed.
func parseEscape(b []byte) (navigation.Key, int) {
	param := 0
	for i, c := range b {
		switch {
		case c >= '0' && c <= '9':
			param = param*10 + int(c-'0')
		case c == ';':
			param = 0
		case c >= 0x40 && c <= 0x7e:
			return escapeKey(c, param), i + 1
		default:
			return "", i + 1
		}
	}
	return "", len(b)
}

func escapeKey(final byte, param int) navigation.Key {
	switch final {
	case 'A':
		return navigation.KeyArrowUp
	case 'B':
		return navigation.KeyArrowDown
	case 'C':
		return navigation.KeyArrowRight
	case 'D':
		return navigation.KeyArrowLeft
	case 'H':
		return navigation.KeyHome
	case 'F':
		return navigation.KeyEnd
	case '~':
		switch param {
		case 1, 7:
			return navigation.KeyHome
		case 4, 8:
			return navigation.KeyEnd
		case 5:
			return navigation.KeyPageUp
		case 6:
			return navigation.KeyPageDown
		}
	}
	return ""
}
