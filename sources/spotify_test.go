package sources

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ascott/spotcal/fetcher"
	"github.com/ascott/spotcal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const currentlyPlayingBody = `{
	"is_playing": true,
	"context": {"type": "playlist", "uri": "spotify:playlist:pl123"},
	"item": {
		"name": "Teardrop",
		"artists": [{"name": "Massive Attack"}, {"name": "Elizabeth Fraser"}],
		"album": {
			"name": "Mezzanine",
			"uri": "spotify:album:al123",
			"images": [{"url": "https://img.example.com/mezzanine.jpg"}]
		}
	}
}`

const recentlyPlayedBody = `{
	"items": [{
		"track": {
			"name": "Angel",
			"artists": [{"name": "Massive Attack"}],
			"album": {
				"name": "Mezzanine",
				"uri": "spotify:album:al123",
				"images": [{"url": "https://img.example.com/mezzanine.jpg"}]
			}
		}
	}]
}`

func testSpotify(t *testing.T, handler http.Handler) *Spotify {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &Spotify{
		TokenFile: filepath.Join(t.TempDir(), "token.json"),
		APIBase:   srv.URL,
		token:     &oauth2.Token{AccessToken: "test-token", Expiry: time.Now().Add(time.Hour)},
		client:    srv.Client(),
	}
}

func TestSpotifyCurrentlyPlaying(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/player/currently-playing", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(currentlyPlayingBody))
	})
	mux.HandleFunc("/playlists/pl123", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "trip hop essentials"}`))
	})
	s := testSpotify(t, mux)

	track, err := s.CurrentlyPlaying()
	require.NoError(t, err)
	require.NotNil(t, track)

	assert.Equal(t, "Teardrop", track.TrackName)
	assert.Equal(t, "Massive Attack, Elizabeth Fraser", track.ArtistName)
	assert.Equal(t, model.ContextPlaylist, track.ContextType)
	assert.Equal(t, "trip hop essentials", track.ContextName)
	assert.Equal(t, "Mezzanine", track.AlbumName)
	assert.Equal(t, "https://img.example.com/mezzanine.jpg", track.ImageLink)
}

func TestSpotifyNothingPlaying(t *testing.T) {
	s := testSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	track, err := s.CurrentlyPlaying()
	assert.NoError(t, err)
	assert.Nil(t, track)
}

func TestSpotifyPausedPlaybackIsNotPlaying(t *testing.T) {
	s := testSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"is_playing": false, "item": {"name": "X", "album": {"name": "Y"}}}`))
	}))

	track, err := s.CurrentlyPlaying()
	assert.NoError(t, err)
	assert.Nil(t, track)
}

func TestSpotifyRecentlyPlayed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/player/recently-played", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(recentlyPlayedBody))
	})
	mux.HandleFunc("/albums/al123", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Mezzanine"}`))
	})
	s := testSpotify(t, mux)

	track, err := s.RecentlyPlayed()
	require.NoError(t, err)
	require.NotNil(t, track)

	// No context on the item: falls back to the album context.
	assert.Equal(t, "Angel", track.TrackName)
	assert.Equal(t, model.ContextAlbum, track.ContextType)
	assert.Equal(t, "Mezzanine", track.ContextName)
}

func TestSpotifyPlaylistLookupFailureDegradesToDJ(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/player/currently-playing", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(currentlyPlayingBody))
	})
	mux.HandleFunc("/playlists/pl123", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	s := testSpotify(t, mux)

	track, err := s.CurrentlyPlaying()
	require.NoError(t, err)
	require.NotNil(t, track)

	assert.Equal(t, model.ContextDJ, track.ContextType)
	assert.Equal(t, "DJ", track.ContextName)
}

func TestSpotifyCollectionContext(t *testing.T) {
	body := `{
		"is_playing": true,
		"context": {"type": "collection", "uri": "spotify:user:x:collection"},
		"item": {"name": "Angel", "artists": [{"name": "Massive Attack"}], "album": {"name": "Mezzanine"}}
	}`
	s := testSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))

	track, err := s.CurrentlyPlaying()
	require.NoError(t, err)
	require.NotNil(t, track)

	assert.Equal(t, model.ContextCollection, track.ContextType)
	assert.Equal(t, "Liked Songs", track.ContextName)
}

func TestSpotifyErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, sentinel: fetcher.ErrRateLimited},
		{name: "token expired", status: http.StatusUnauthorized, sentinel: fetcher.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := s.CurrentlyPlaying()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, fetcher.Recoverable(err))
		})
	}
}

func TestSpotifyServerErrorIsNotRecoverable(t *testing.T) {
	s := testSpotify(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))

	_, err := s.CurrentlyPlaying()
	require.Error(t, err)
	assert.False(t, fetcher.Recoverable(err))
	assert.False(t, fetcher.Connectivity(err))
}

func TestSpotifyNotLoggedIn(t *testing.T) {
	s := &Spotify{}
	_, err := s.CurrentlyPlaying()
	assert.Error(t, err)
}
