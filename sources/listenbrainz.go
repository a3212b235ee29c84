package sources

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ascott/spotcal/fetcher"
	"github.com/ascott/spotcal/model"
)

// ListenBrainz is a source that reports playback activity from ListenBrainz.
type ListenBrainz struct {
	Token    string
	Username string

	// BaseURL overrides the API host, for tests.
	BaseURL string
}

const listenBrainzAPI = "https://api.listenbrainz.org"

type listenBrainzPayload struct {
	Payload struct {
		Listens []struct {
			TrackMetadata struct {
				TrackName   string `json:"track_name"`
				ArtistName  string `json:"artist_name"`
				ReleaseName string `json:"release_name"`
			} `json:"track_metadata"`
		} `json:"listens"`
	} `json:"payload"`
}

// CurrentlyPlaying returns the listen ListenBrainz reports as playing now.
func (lb *ListenBrainz) CurrentlyPlaying() (*model.Track, error) {
	return lb.fetchListen(fmt.Sprintf("/1/user/%s/playing-now", lb.Username))
}

// RecentlyPlayed returns the most recent submitted listen.
func (lb *ListenBrainz) RecentlyPlayed() (*model.Track, error) {
	return lb.fetchListen(fmt.Sprintf("/1/user/%s/listens?count=1", lb.Username))
}

func (lb *ListenBrainz) fetchListen(path string) (*model.Track, error) {
	base := lb.BaseURL
	if base == "" {
		base = listenBrainzAPI
	}

	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	if err != nil {
		return nil, err
	}
	if lb.Token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Token %s", lb.Token))
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listenbrainz: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("listenbrainz: %s: %w", path, fetcher.ErrRateLimited)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("listenbrainz: %s: %w", path, fetcher.ErrTokenExpired)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("ListenBrainz API error: %s - %s", resp.Status, string(body))
	}

	var payload listenBrainzPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("listenbrainz: decoding %s: %w", path, err)
	}
	if len(payload.Payload.Listens) == 0 {
		return nil, nil
	}

	meta := payload.Payload.Listens[0].TrackMetadata
	slog.Debug("Retrieved listen", "track", meta.TrackName, "source", "listenbrainz")
	return &model.Track{
		TrackName:   meta.TrackName,
		ArtistName:  meta.ArtistName,
		ContextType: model.ContextAlbum,
		ContextName: meta.ReleaseName,
		AlbumName:   meta.ReleaseName,
		Timestamp:   time.Now(),
	}, nil
}

var _ model.Source = (*ListenBrainz)(nil)
