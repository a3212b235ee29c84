package render

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Fonts holds the faces the compositor draws with.
type Fonts struct {
	// Small is used for track, artist and context text.
	Small font.Face
	// Large is used for the calendar weekday and date.
	Large font.Face
	// Clock is used for the time string.
	Clock font.Face
}

// LoadFonts prepares the embedded faces once at start-up.
func LoadFonts() (*Fonts, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing bold font: %w", err)
	}

	small, err := opentype.NewFace(regular, &opentype.FaceOptions{Size: 13, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("building small face: %w", err)
	}
	large, err := opentype.NewFace(bold, &opentype.FaceOptions{Size: 21, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("building large face: %w", err)
	}
	clock, err := opentype.NewFace(bold, &opentype.FaceOptions{Size: 17, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("building clock face: %w", err)
	}

	return &Fonts{Small: small, Large: large, Clock: clock}, nil
}
