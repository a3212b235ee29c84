package model

import "time"

// ContextType identifies what a track is being played from, as reported by
// the music service.
type ContextType int

const (
	ContextUnknown ContextType = iota
	ContextPlaylist
	ContextAlbum
	ContextArtist
	ContextDJ
	ContextCollection
)

// String returns the wire/display name for the context type.
func (c ContextType) String() string {
	switch c {
	case ContextPlaylist:
		return "playlist"
	case ContextAlbum:
		return "album"
	case ContextArtist:
		return "artist"
	case ContextDJ:
		return "dj"
	case ContextCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// ParseContextType maps a provider context string to a ContextType. Anything
// unrecognised becomes ContextUnknown.
func ParseContextType(s string) ContextType {
	switch s {
	case "playlist":
		return ContextPlaylist
	case "album":
		return ContextAlbum
	case "artist":
		return ContextArtist
	case "dj":
		return ContextDJ
	case "collection":
		return ContextCollection
	default:
		return ContextUnknown
	}
}

// Track holds the metadata for one now-playing (or recently played) item.
// Values are never mutated after construction; a new fetch produces a new
// Track.
type Track struct {
	TrackName   string
	ArtistName  string
	ContextType ContextType
	ContextName string
	ImageLink   string
	AlbumName   string
	Timestamp   time.Time
}

// Equal reports structural equality over every field except Timestamp.
func (t Track) Equal(o Track) bool {
	return t.TrackName == o.TrackName &&
		t.ArtistName == o.ArtistName &&
		t.ContextType == o.ContextType &&
		t.ContextName == o.ContextName &&
		t.ImageLink == o.ImageLink &&
		t.AlbumName == o.AlbumName
}

// Placeholder is the sentinel shown when neither the service nor the cache
// can produce a track.
func Placeholder(now time.Time) Track {
	return Track{
		TrackName:   "N/A",
		ArtistName:  "N/A",
		ContextType: ContextUnknown,
		ContextName: "N/A",
		AlbumName:   "N/A",
		Timestamp:   now,
	}
}
