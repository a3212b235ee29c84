// Package render composes complete frames for the e-paper panel: the
// calendar panel, the album art slot, and the track/artist/context text.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ascott/spotcal/config"
	"github.com/ascott/spotcal/model"
)

// Frame dimensions of the 2.7" panel.
const (
	FrameWidth  = 264
	FrameHeight = 176
)

// Fixed layout offsets. The layout never reflows; what changes between
// cycles is which regions get new content.
const (
	artX, artY = 0, 0
	artSize    = 120

	panelX0, panelY0 = 121, 0
	panelX1, panelY1 = FrameWidth, 119

	trackX     = 6
	trackTop   = 124
	textWidth  = FrameWidth - 2*trackX
	contextY   = 158
	iconScale  = 1
	iconWidth  = 16
	contextPad = 4
)

var (
	white     = color.Gray{Y: 0xFF}
	lightGray = color.Gray{Y: 0xC0}
	darkGray  = color.Gray{Y: 0x80}
	black     = color.Gray{Y: 0x00}
)

// clockRect is the strip inside the calendar panel holding the time string.
// It is the only region ever pushed as a partial update.
var clockRect = image.Rect(panelX0+4, 90, panelX1-4, 116)

// Compositor renders frames. It owns its frame buffer exclusively; callers
// must serialize Render calls (the draw loop already guarantees a single
// in-flight render).
type Compositor struct {
	settings *config.Settings
	fonts    *Fonts
	frame    *image.Gray
}

// NewCompositor builds a compositor for the given settings.
func NewCompositor(settings *config.Settings, fonts *Fonts) *Compositor {
	return &Compositor{
		settings: settings,
		fonts:    fonts,
		frame:    image.NewGray(image.Rect(0, 0, FrameWidth, FrameHeight)),
	}
}

// Render composes one complete frame: calendar panel, album art (or the
// placeholder when art is nil), track and artist text, and the context line.
// The returned buffer is reused by the next Render call.
func (c *Compositor) Render(track model.Track, art image.Image, now time.Time) *image.Gray {
	draw.Draw(c.frame, c.frame.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	c.drawCalendar(now.In(c.settings.Location()))
	c.drawArt(track, art)
	c.drawTrackBlock(track)

	return c.frame
}

// RenderClock renders just the clock strip, for partial updates between full
// redraws. The returned rectangle locates the strip within the frame.
func (c *Compositor) RenderClock(now time.Time) (*image.Gray, image.Rectangle) {
	strip := image.NewGray(image.Rect(0, 0, clockRect.Dx(), clockRect.Dy()))
	draw.Draw(strip, strip.Bounds(), image.NewUniform(darkGray), image.Point{}, draw.Src)

	text := c.clockString(now.In(c.settings.Location()))
	w := font.MeasureString(c.fonts.Clock, text).Ceil()
	x := (strip.Bounds().Dx() - w) / 2
	c.drawText(strip, text, x, 19, c.fonts.Clock, white)

	return strip, clockRect
}

func (c *Compositor) drawCalendar(now time.Time) {
	panel := image.Rect(panelX0, panelY0, panelX1, panelY1)
	draw.Draw(c.frame, panel, image.NewUniform(darkGray), image.Point{}, draw.Src)

	center := panelX0 + (panelX1-panelX0)/2
	weekday := now.Format("Monday")
	date := now.Format("January 2")

	c.drawCentered(weekday, center, 34, c.fonts.Large, white)
	c.drawCentered(date, center, 64, c.fonts.Large, white)
	c.drawCentered(c.clockString(now), center, clockRect.Min.Y+19, c.fonts.Clock, white)
}

func (c *Compositor) clockString(now time.Time) string {
	if c.settings.TwentyFourHourClock {
		return now.Format("15:04")
	}
	return strings.ToLower(now.Format("3:04PM"))
}

// drawArt pastes the prepared art artifact, or the placeholder block when no
// artifact could be produced. The substitution is logged: a placeholder on
// the panel should always be traceable to a recorded decision.
func (c *Compositor) drawArt(track model.Track, art image.Image) {
	slot := image.Rect(artX, artY, artX+artSize, artY+artSize)

	if art == nil {
		slog.Warn("Album art unavailable, drawing placeholder", "album", track.AlbumName)
		draw.Draw(c.frame, slot, image.NewUniform(lightGray), image.Point{}, draw.Src)
		drawIcon(c.frame, unknownIcon, artX+(artSize-16*4)/2, artY+(artSize-16*4)/2, 4, darkGray)
		c.drawBorder(slot)
		return
	}

	draw.Draw(c.frame, slot, art, art.Bounds().Min, draw.Src)
}

func (c *Compositor) drawTrackBlock(track model.Track) {
	small := c.fonts.Small
	ascent := small.Metrics().Ascent.Ceil()
	lineHeight := small.Metrics().Height.Ceil()

	y := trackTop

	// Two text rows fit between trackTop and the fixed context row. The name
	// may take both only when there is no artist line to draw beneath it;
	// otherwise it gets one truncated row so the artist never reaches
	// contextY.
	nameRows := 2
	if track.ArtistName != "" {
		nameRows = 1
	}

	name := Wrap(track.TrackName, textWidth, small)
	if len(name.Lines) > nameRows {
		name.Lines = []string{truncate(track.TrackName, textWidth, small)}
	}
	for _, line := range name.Lines {
		c.drawText(c.frame, line, trackX, y+ascent, small, black)
		y += lineHeight
	}

	artist := Wrap(track.ArtistName, textWidth, small)
	if len(artist.Lines) > 0 {
		line := artist.Lines[0]
		if len(artist.Lines) > 1 {
			line = truncate(track.ArtistName, textWidth, small)
		}
		c.drawText(c.frame, line, trackX, y+ascent, small, darkGray)
	}

	drawIcon(c.frame, iconFor(track.ContextType), trackX, contextY, iconScale, black)
	context := Wrap(track.ContextName, textWidth-iconWidth-contextPad, small)
	if len(context.Lines) > 0 {
		line := context.Lines[0]
		if len(context.Lines) > 1 {
			line = truncate(track.ContextName, textWidth-iconWidth-contextPad, small)
		}
		c.drawText(c.frame, line, trackX+iconWidth+contextPad, contextY+ascent, small, black)
	}
}

func (c *Compositor) drawText(dst *image.Gray, text string, x, baseline int, face font.Face, col color.Gray) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

func (c *Compositor) drawCentered(text string, centerX, baseline int, face font.Face, col color.Gray) {
	w := font.MeasureString(face, text).Ceil()
	c.drawText(c.frame, text, centerX-w/2, baseline, face, col)
}

func (c *Compositor) drawBorder(r image.Rectangle) {
	for x := r.Min.X; x < r.Max.X; x++ {
		c.frame.SetGray(x, r.Min.Y, black)
		c.frame.SetGray(x, r.Max.Y-1, black)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		c.frame.SetGray(r.Min.X, y, black)
		c.frame.SetGray(r.Max.X-1, y, black)
	}
}
