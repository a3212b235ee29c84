package sources

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/supersonic-app/go-subsonic/subsonic"

	"github.com/ascott/spotcal/model"
)

// Subsonic is a source that reports playback activity from a Subsonic or
// Navidrome server. Subsonic has no recently-played-track endpoint, so only
// the currently-playing query produces results.
type Subsonic struct {
	BaseURL    string
	Username   string
	Password   string
	ClientName string

	mu     sync.Mutex
	client *subsonic.Client
}

// CurrentlyPlaying returns this user's active track, if any.
func (s *Subsonic) CurrentlyPlaying() (*model.Track, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	slog.Debug("Retrieving now playing", "source", "subsonic")

	entries, err := client.GetNowPlaying()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Username != s.Username {
			continue
		}
		return &model.Track{
			TrackName:   entry.Title,
			ArtistName:  entry.Artist,
			ContextType: model.ContextAlbum,
			ContextName: entry.Album,
			AlbumName:   entry.Album,
			Timestamp:   time.Now(),
		}, nil
	}
	return nil, nil
}

// RecentlyPlayed is unsupported by the Subsonic API; the fetcher falls
// through to the cache instead.
func (s *Subsonic) RecentlyPlayed() (*model.Track, error) {
	return nil, nil
}

// getClient lazily connects to the Subsonic server
func (s *Subsonic) getClient() (*subsonic.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client := &subsonic.Client{
		Client:     http.DefaultClient,
		BaseUrl:    s.BaseURL,
		User:       s.Username,
		ClientName: s.ClientName,
	}

	if s.Password != "" {
		if err := client.Authenticate(s.Password); err != nil {
			return nil, err
		}
	}

	s.client = client
	return s.client, nil
}

var _ model.Source = (*Subsonic)(nil)
