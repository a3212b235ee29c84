// Package art maintains the on-disk album art artifacts: downloaded cover
// images resized to the panel's art slot and, in four-gray mode, dithered to
// the panel palette. Artifacts are keyed by album identity so repeated
// renders of the same album skip the expensive quantization step.
package art

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "image/gif"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"

	"github.com/ascott/spotcal/model"
)

// Size is the edge length of the square art slot on the frame.
const Size = 120

// Manager fetches, scales and quantizes album art, caching the result on
// disk under Dir.
type Manager struct {
	// Dir is the artifact cache directory.
	Dir string
	// FourGray enables palette quantization; at 1-bit the resized art is
	// thresholded instead.
	FourGray bool
	// Client performs the cover downloads. Defaults to a 25s-timeout client.
	Client *http.Client
}

// Artifact returns the drawable art for track. With refetch false an
// existing artifact is loaded from disk; a missing or unreadable artifact is
// regenerated as if refetch were true. Any failure to produce an artifact is
// returned to the caller, which substitutes a placeholder.
func (m *Manager) Artifact(track model.Track, refetch bool) (image.Image, error) {
	path := m.artifactPath(track.AlbumName)

	if !refetch {
		img, err := loadPNG(path)
		if err == nil {
			return img, nil
		}
		slog.Warn("Album art artifact unusable, regenerating", "path", path, "error", err)
	}

	if track.ImageLink == "" {
		return nil, fmt.Errorf("no album art link for %q", track.AlbumName)
	}

	src, err := m.download(track.ImageLink)
	if err != nil {
		return nil, err
	}

	resized := scaleGray(src, Size)

	var out *image.Gray
	if m.FourGray {
		start := time.Now()
		out = Quantize(resized, Palette)
		slog.Info("Dithered album art", "album", track.AlbumName, "duration", time.Since(start))
	} else {
		out = Threshold(resized)
	}

	if err := savePNG(path, out); err != nil {
		// The artifact cache is an optimization; the render can still use
		// the in-memory image.
		slog.Error("Failed to persist album art artifact", "path", path, "error", err)
	}
	return out, nil
}

// artifactPath keys the artifact by album identity.
func (m *Manager) artifactPath(albumName string) string {
	sum := sha1.Sum([]byte(albumName))
	key := hex.EncodeToString(sum[:])[:12]
	suffix := "_resize"
	if m.FourGray {
		suffix = "_dither"
	}
	return filepath.Join(m.Dir, key+suffix+".png")
}

func (m *Manager) download(link string) (image.Image, error) {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}

	resp, err := client.Get(link)
	if err != nil {
		return nil, fmt.Errorf("downloading album art %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading album art %s: %s", link, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding album art %s: %w", link, err)
	}
	return img, nil
}

// scaleGray resizes src to a size×size grayscale image.
func scaleGray(src image.Image, size int) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return out
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
