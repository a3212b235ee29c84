package art

import "image"

// Palette is the four-level grayscale ramp the panel can show in 2-bit mode:
// black, dark gray, light gray, white.
var Palette = []uint8{0x00, 0x80, 0xC0, 0xFF}

// Quantize applies Floyd-Steinberg error diffusion to src against palette,
// returning a new image whose pixels only use palette values. The kernel
// distributes each pixel's quantization error 7/16 right, 3/16 below-left,
// 5/16 below, 1/16 below-right.
func Quantize(src *image.Gray, palette []uint8) *image.Gray {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	// Working copy with headroom for accumulated error.
	acc := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc[y*w+x] = int32(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := acc[y*w+x]
			quantized := nearest(palette, old)
			out.Pix[out.PixOffset(x, y)] = quantized
			diff := old - int32(quantized)

			if x+1 < w {
				acc[y*w+x+1] += diff * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					acc[(y+1)*w+x-1] += diff * 3 / 16
				}
				acc[(y+1)*w+x] += diff * 5 / 16
				if x+1 < w {
					acc[(y+1)*w+x+1] += diff * 1 / 16
				}
			}
		}
	}

	return out
}

// nearest picks the palette entry closest to v. v may lie outside 0..255
// once error has been carried in.
func nearest(palette []uint8, v int32) uint8 {
	best := palette[0]
	bestDist := int32(1 << 30)
	for _, p := range palette {
		d := v - int32(p)
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// Threshold converts src to pure black and white without diffusion, for
// 1-bit panels where dithering is skipped entirely.
func Threshold(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := uint8(0x00)
			if src.GrayAt(x, y).Y >= 0x80 {
				v = 0xFF
			}
			out.Pix[out.PixOffset(x-bounds.Min.X, y-bounds.Min.Y)] = v
		}
	}
	return out
}
