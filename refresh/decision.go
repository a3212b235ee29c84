// Package refresh decides whether a redraw cycle actually has to touch the
// panel, and whether the album art artifact must be regenerated.
package refresh

import (
	"time"

	"github.com/ascott/spotcal/model"
	"github.com/ascott/spotcal/trackcache"
)

// StaleAfter is the maximum age of a cached-but-unchanged track before a
// resync redraw is forced. Polling can fail transiently, so an identical
// fetch result is still redrawn once the last render is this old.
const StaleAfter = 3600 * time.Second

// Decision is the outcome of comparing a fresh fetch against the cache.
type Decision struct {
	// Redraw indicates the frame must be recomposed and pushed to the panel.
	Redraw bool
	// RefetchArt indicates the album art artifact must be regenerated.
	RefetchArt bool
	// Track is the effective track to render (and to cache after a redraw).
	Track model.Track
}

// Evaluate compares fetched against cached at time now.
//
// When both the fetch and the cache are empty, a placeholder is synthesized
// and drawn. When only the fetch is empty, the cached track stands and no
// redraw happens: with no live truth available, the last good render stays
// up regardless of its age.
func Evaluate(fetched *model.Track, cached *trackcache.Entry, now time.Time) Decision {
	switch {
	case fetched == nil && cached == nil:
		return Decision{Redraw: true, RefetchArt: true, Track: model.Placeholder(now)}
	case fetched == nil:
		return Decision{Track: cached.Track}
	case cached == nil:
		return Decision{Redraw: true, RefetchArt: true, Track: *fetched}
	default:
		changed := !fetched.Equal(cached.Track)
		stale := now.Sub(cached.WrittenAt) > StaleAfter
		return Decision{
			Redraw:     changed || stale,
			RefetchArt: fetched.AlbumName != cached.Track.AlbumName,
			Track:      *fetched,
		}
	}
}
