package render

import (
	"image"
	"image/color"

	"github.com/ascott/spotcal/model"
)

// iconBitmap is a 16x16 one-bit glyph, one uint16 per row, bit 15 leftmost.
type iconBitmap [16]uint16

var playlistIcon = iconBitmap{
	0x0000, 0x67FE, 0x67FE, 0x0000,
	0x0000, 0x67FE, 0x67FE, 0x0000,
	0x0000, 0x67FE, 0x67FE, 0x0000,
	0x0000, 0x0000, 0x0000, 0x0000,
}

var albumIcon = iconBitmap{
	0x07E0, 0x1FF8, 0x3FFC, 0x7FFE,
	0x7FFE, 0xFC3F, 0xF81F, 0xF99F,
	0xF99F, 0xF81F, 0xFC3F, 0x7FFE,
	0x7FFE, 0x3FFC, 0x1FF8, 0x07E0,
}

var artistIcon = iconBitmap{
	0x03C0, 0x07E0, 0x07E0, 0x07E0,
	0x03C0, 0x0180, 0x07E0, 0x1FF8,
	0x3FFC, 0x7FFE, 0x7FFE, 0xFFFF,
	0xFFFF, 0xFFFF, 0x0000, 0x0000,
}

var djIcon = iconBitmap{
	0x07E0, 0x1FF8, 0x381C, 0x700E,
	0x6006, 0xE007, 0xE007, 0xF81F,
	0xF81F, 0xF81F, 0x781E, 0x300C,
	0x0000, 0x0000, 0x0000, 0x0000,
}

var collectionIcon = iconBitmap{
	0x0000, 0x381C, 0x7C3E, 0xFE7F,
	0xFFFF, 0xFFFF, 0xFFFF, 0x7FFE,
	0x3FFC, 0x1FF8, 0x0FF0, 0x07E0,
	0x03C0, 0x0180, 0x0000, 0x0000,
}

var unknownIcon = iconBitmap{
	0x07E0, 0x1FF8, 0x3C3C, 0x381C,
	0x001C, 0x003C, 0x00F8, 0x01E0,
	0x01C0, 0x01C0, 0x0000, 0x01C0,
	0x01C0, 0x0000, 0x0000, 0x0000,
}

// iconFor maps every context type to a glyph. The mapping is exhaustive over
// the enum; anything unmapped falls through to the question mark.
func iconFor(c model.ContextType) iconBitmap {
	switch c {
	case model.ContextPlaylist:
		return playlistIcon
	case model.ContextAlbum:
		return albumIcon
	case model.ContextArtist:
		return artistIcon
	case model.ContextDJ:
		return djIcon
	case model.ContextCollection:
		return collectionIcon
	default:
		return unknownIcon
	}
}

// drawIcon renders bm at (x, y), magnified by scale.
func drawIcon(dst *image.Gray, bm iconBitmap, x, y, scale int, col color.Gray) {
	for row, bits := range bm {
		for bit := 0; bit < 16; bit++ {
			if bits&(1<<(15-bit)) == 0 {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					dst.SetGray(x+bit*scale+dx, y+row*scale+dy, col)
				}
			}
		}
	}
}
