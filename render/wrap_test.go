package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// face7x13 has a fixed 7px advance, which makes width expectations exact.
var face7x13 = basicfont.Face7x13

func width(s string) int {
	return font.MeasureString(face7x13, s).Ceil()
}

func TestWrapBlankInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\t \t"} {
		w := Wrap(input, 100, face7x13)
		assert.Empty(t, w.Lines, "input %q", input)
		assert.Zero(t, w.Height, "input %q", input)
	}
}

func TestWrapSingleLineFits(t *testing.T) {
	w := Wrap("Pink Moon", 100, face7x13)

	require.Len(t, w.Lines, 1)
	assert.Equal(t, "Pink Moon", w.Lines[0])
	assert.Equal(t, face7x13.Metrics().Height.Ceil(), w.Height)
}

func TestWrapBreaksOnWhitespace(t *testing.T) {
	// "Massive Attack" is 14 glyphs = 98px; cap it below that.
	w := Wrap("Massive Attack", 70, face7x13)

	require.Len(t, w.Lines, 2)
	assert.Equal(t, "Massive", w.Lines[0])
	assert.Equal(t, "Attack", w.Lines[1])
	assert.Equal(t, 2*face7x13.Metrics().Height.Ceil(), w.Height)
}

func TestWrapLinesNeverExceedMaxWidth(t *testing.T) {
	inputs := []string{
		"The Velvet Underground and Nico",
		"Everything In Its Right Place",
		"a b c d e f g h i j k l m n o p",
		"Godspeed You! Black Emperor lift your skinny fists",
	}
	for _, input := range inputs {
		for _, maxWidth := range []int{50, 80, 120, 200} {
			w := Wrap(input, maxWidth, face7x13)
			require.NotEmpty(t, w.Lines)
			require.LessOrEqual(t, len(w.Lines), 2)
			for _, line := range w.Lines {
				if width(line) > maxWidth {
					// Only a lone unbreakable word may overflow.
					assert.NotContainsf(t, line, " ",
						"input %q width %d produced oversized multi-word line %q", input, maxWidth, line)
				}
			}
		}
	}
}

func TestWrapSecondLineOverflowGetsEllipsis(t *testing.T) {
	// 40 glyphs of artist name at a narrow width: two lines, ellipsis.
	input := "Sergei Rachmaninoff and the Philadelphia"
	require.Equal(t, 40, len(input))

	w := Wrap(input, 90, face7x13)

	require.Len(t, w.Lines, 2)
	assert.True(t, strings.HasSuffix(w.Lines[1], "..."), "second line %q", w.Lines[1])
	assert.LessOrEqual(t, width(w.Lines[1]), 90)
}

func TestWrapUnbreakableTextOverflows(t *testing.T) {
	// No whitespace to break on: the line is emitted unclipped by policy.
	w := Wrap("Supercalifragilisticexpialidocious", 40, face7x13)

	require.Len(t, w.Lines, 1)
	assert.Equal(t, "Supercalifragilisticexpialidocious", w.Lines[0])
}

func TestWrapOversizedFirstWordKeepsRemainder(t *testing.T) {
	// The first word overflows on its own, but the words after it must not
	// be swallowed into the overflow line.
	w := Wrap("Supercalifragilisticexpialidocious remix", 140, face7x13)

	require.Len(t, w.Lines, 2)
	assert.Equal(t, "Supercalifragilisticexpialidocious", w.Lines[0])
	assert.Equal(t, "remix", w.Lines[1])
}

func TestWrapNeverReturnsMoreThanTwoLines(t *testing.T) {
	input := strings.Repeat("word ", 50)
	w := Wrap(input, 60, face7x13)
	assert.LessOrEqual(t, len(w.Lines), 2)
}
