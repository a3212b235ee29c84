package display

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFrame(t *testing.T, dir string) image.Image {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "frame.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestFilePanelWritesFrame(t *testing.T) {
	dir := t.TempDir()
	p := &FilePanel{Dir: dir}
	require.NoError(t, p.Init())

	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	require.NoError(t, p.DisplayFull(img))

	got := loadFrame(t, dir)
	assert.Equal(t, 16, got.Bounds().Dx())
}

func TestFilePanelOneBitPacksToBlackAndWhite(t *testing.T) {
	dir := t.TempDir()
	p := &FilePanel{Dir: dir, OneBit: true}
	require.NoError(t, p.Init())

	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0x40
	}
	require.NoError(t, p.DisplayFull(img))

	got := loadFrame(t, dir)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			g := color.GrayModel.Convert(got.At(x, y)).(color.Gray)
			assert.Contains(t, []uint8{0x00, 0xFF}, g.Y)
		}
	}
}

func TestFilePanelPartialPatchesLastFrame(t *testing.T) {
	dir := t.TempDir()
	p := &FilePanel{Dir: dir}
	require.NoError(t, p.Init())

	full := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range full.Pix {
		full.Pix[i] = 0xFF
	}
	require.NoError(t, p.DisplayFull(full))

	patch := image.NewGray(image.Rect(0, 0, 4, 4))
	require.NoError(t, p.DisplayPartial(patch, image.Rect(4, 4, 8, 8)))

	got := loadFrame(t, dir)
	dark := color.GrayModel.Convert(got.At(5, 5)).(color.Gray)
	light := color.GrayModel.Convert(got.At(0, 0)).(color.Gray)
	assert.Equal(t, uint8(0x00), dark.Y)
	assert.Equal(t, uint8(0xFF), light.Y)
}

func TestFilePanelPartialBeforeFullFails(t *testing.T) {
	p := &FilePanel{Dir: t.TempDir()}
	require.NoError(t, p.Init())

	err := p.DisplayPartial(image.NewGray(image.Rect(0, 0, 4, 4)), image.Rect(0, 0, 4, 4))
	assert.Error(t, err)
}
