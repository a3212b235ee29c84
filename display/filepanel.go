package display

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// FilePanel is a Panel that renders to PNG files instead of hardware. It
// backs the local/debug mode and doubles as the test double for the real
// driver: it honors the same depth the panel would run at, packing frames
// through a 1-bit buffer when grayscale is off.
type FilePanel struct {
	// Dir receives frame.png (and the packed one-bit preview).
	Dir string
	// OneBit packs the frame to 1-bit before saving, matching a panel
	// running without grayscale.
	OneBit bool

	last *image.Gray
}

var _ Panel = (*FilePanel)(nil)

// Init creates the output directory.
func (p *FilePanel) Init() error {
	return os.MkdirAll(p.Dir, 0o755)
}

// DisplayFull writes the frame to disk.
func (p *FilePanel) DisplayFull(img image.Image) error {
	p.last = toGray(img)
	return p.flush()
}

// DisplayPartial patches region of the last frame and writes the result.
func (p *FilePanel) DisplayPartial(img image.Image, region image.Rectangle) error {
	if p.last == nil {
		return fmt.Errorf("partial update before any full frame")
	}
	draw.Draw(p.last, region, img, img.Bounds().Min, draw.Src)
	return p.flush()
}

// Sleep is a no-op for files.
func (p *FilePanel) Sleep() error {
	slog.Debug("File panel sleeping")
	return nil
}

func (p *FilePanel) flush() error {
	out := image.Image(p.last)
	if p.OneBit {
		packed := image1bit.NewVerticalLSB(p.last.Bounds())
		draw.Draw(packed, packed.Bounds(), p.last, p.last.Bounds().Min, draw.Src)
		out = packed
	}
	return writePNG(filepath.Join(p.Dir, "frame.png"), out)
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		cloned := image.NewGray(g.Bounds())
		copy(cloned.Pix, g.Pix)
		return cloned
	}
	out := image.NewGray(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return nil
}
