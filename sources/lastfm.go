package sources

import (
	"log/slog"
	"sync"
	"time"

	"github.com/twoscott/gobble-fm/lastfm"
	"github.com/twoscott/gobble-fm/session"

	"github.com/ascott/spotcal/model"
)

// Lastfm is a source that reports playback activity from Last.fm. Last.fm
// exposes no playing-context detail, so tracks default to an album context.
type Lastfm struct {
	APIKey   string
	Secret   string
	Username string
	Password string

	mu     sync.Mutex
	client *session.Client
}

// CurrentlyPlaying returns the scrobble flagged as now playing, if any.
func (l *Lastfm) CurrentlyPlaying() (*model.Track, error) {
	track, nowPlaying, err := l.latest()
	if err != nil || track == nil || !nowPlaying {
		return nil, err
	}
	return track, nil
}

// RecentlyPlayed returns the most recent finished scrobble.
func (l *Lastfm) RecentlyPlayed() (*model.Track, error) {
	track, nowPlaying, err := l.latest()
	if err != nil || track == nil || nowPlaying {
		return nil, err
	}
	return track, nil
}

// latest fetches the head of the recent-tracks list.
func (l *Lastfm) latest() (*model.Track, bool, error) {
	client, err := l.getClient()
	if err != nil {
		return nil, false, err
	}

	slog.Debug("Retrieving recent tracks", "source", "lastfm")

	recent, err := client.User.RecentTracks(lastfm.RecentTracksParams{
		User:  l.Username,
		Limit: 1,
	})
	if err != nil {
		return nil, false, err
	}
	if len(recent.Tracks) == 0 {
		return nil, false, nil
	}

	t := recent.Tracks[0]
	return &model.Track{
		TrackName:   t.Title,
		ArtistName:  t.Artist.Name,
		ContextType: model.ContextAlbum,
		ContextName: t.Album.Title,
		AlbumName:   t.Album.Title,
		Timestamp:   time.Now(),
	}, t.NowPlaying, nil
}

// getClient lazily connects to Last.fm
func (l *Lastfm) getClient() (*session.Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}

	client := session.NewClient(l.APIKey, l.Secret)
	if err := client.Login(l.Username, l.Password); err != nil {
		return nil, err
	}

	l.client = client
	return l.client, nil
}

var _ model.Source = (*Lastfm)(nil)
