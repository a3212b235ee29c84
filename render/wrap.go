package render

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"
)

const ellipsis = "..."

// Wrapped is the outcome of laying out a text run: at most two lines, and
// the total pixel height they occupy.
type Wrapped struct {
	Lines  []string
	Height int
}

// Wrap breaks text greedily into at most two lines that fit maxWidth pixels
// when measured with face. A remainder that does not fit on the second line
// is truncated with an ellipsis. Blank input yields no lines and zero
// height. A word too wide for a line of its own is emitted unclipped and
// will draw as an overflow; that is deliberate, the display never hides a
// track name entirely.
func Wrap(text string, maxWidth int, face font.Face) Wrapped {
	text = strings.TrimSpace(text)
	if text == "" {
		return Wrapped{}
	}

	lineHeight := face.Metrics().Height.Ceil()

	first, rest := breakLine(text, maxWidth, face)
	if rest == "" {
		return Wrapped{Lines: []string{first}, Height: lineHeight}
	}

	second := rest
	if measure(rest, face) > maxWidth {
		second = truncate(rest, maxWidth, face)
	}
	return Wrapped{Lines: []string{first, second}, Height: 2 * lineHeight}
}

// breakLine finds the longest leading portion of text that fits maxWidth and
// ends on a whitespace boundary. It starts from an estimate based on the
// average glyph width and only shrinks, so the measurement cost stays
// bounded.
func breakLine(text string, maxWidth int, face font.Face) (line, rest string) {
	if measure(text, face) <= maxWidth {
		return text, ""
	}

	runes := []rune(text)
	avg := measure(text, face) / len(runes)
	if avg < 1 {
		avg = 1
	}

	i := maxWidth / avg
	if i >= len(runes) {
		i = len(runes) - 1
	}

	for i > 0 {
		if unicode.IsSpace(runes[i]) {
			candidate := strings.TrimRight(string(runes[:i]), " \t")
			if candidate != "" && measure(candidate, face) <= maxWidth {
				return candidate, strings.TrimLeft(string(runes[i:]), " \t")
			}
		}
		i--
	}

	// No break point fits: the first word alone exceeds maxWidth. Emit just
	// that word unclipped and wrap whatever follows onto the next line.
	if sp := strings.IndexFunc(text, unicode.IsSpace); sp >= 0 {
		return text[:sp], strings.TrimLeft(text[sp:], " \t")
	}
	return text, ""
}

// truncate shortens text until it fits maxWidth with a trailing ellipsis.
func truncate(text string, maxWidth int, face font.Face) string {
	runes := []rune(text)
	for len(runes) > 0 {
		candidate := strings.TrimRight(string(runes), " \t") + ellipsis
		if measure(candidate, face) <= maxWidth {
			return candidate
		}
		runes = runes[:len(runes)-1]
	}
	return ellipsis
}

func measure(s string, face font.Face) int {
	return font.MeasureString(face, s).Ceil()
}
