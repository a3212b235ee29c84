package trackcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ascott/spotcal/model"
)

// Entry is the persisted slot: the last rendered track plus the time it was
// written.
type Entry struct {
	Track     model.Track
	WrittenAt time.Time
}

// record is the on-disk shape. Context type is stored by name so the file
// stays readable and survives enum reordering.
type record struct {
	TrackName   string    `json:"track_name"`
	ArtistName  string    `json:"artist_name"`
	ContextType string    `json:"context_type"`
	ContextName string    `json:"context_name"`
	ImageLink   string    `json:"image_link,omitempty"`
	AlbumName   string    `json:"album_name"`
	Timestamp   time.Time `json:"timestamp"`
	WrittenAt   time.Time `json:"written_at"`
}

// Cache is a single-slot, file-backed store of the last successfully
// rendered track. A missing or unreadable file is simply an empty cache.
type Cache struct {
	Path string
}

// Read returns the cached entry, or false when there is none. Malformed
// content is logged and treated as absent, never surfaced as an error.
func (c *Cache) Read() (*Entry, bool) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read track cache", "path", c.Path, "error", err)
		}
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		slog.Error("Discarding malformed track cache", "path", c.Path, "error", err)
		return nil, false
	}

	return &Entry{
		Track: model.Track{
			TrackName:   rec.TrackName,
			ArtistName:  rec.ArtistName,
			ContextType: model.ParseContextType(rec.ContextType),
			ContextName: rec.ContextName,
			ImageLink:   rec.ImageLink,
			AlbumName:   rec.AlbumName,
			Timestamp:   rec.Timestamp,
		},
		WrittenAt: rec.WrittenAt,
	}, true
}

// Write replaces the slot with track, stamped with now.
func (c *Cache) Write(track model.Track, now time.Time) error {
	rec := record{
		TrackName:   track.TrackName,
		ArtistName:  track.ArtistName,
		ContextType: track.ContextType.String(),
		ContextName: track.ContextName,
		ImageLink:   track.ImageLink,
		AlbumName:   track.AlbumName,
		Timestamp:   track.Timestamp,
		WrittenAt:   now,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding track cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := os.WriteFile(c.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing track cache: %w", err)
	}

	slog.Debug("Wrote track cache", "path", c.Path, "track", track.TrackName)
	return nil
}
