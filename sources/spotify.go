package sources

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/ascott/spotcal/fetcher"
	"github.com/ascott/spotcal/model"
)

const spotifyAPIBase = "https://api.spotify.com/v1"

var spotifyEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

var spotifyScopes = []string{
	"user-read-private",
	"user-read-recently-played",
	"user-read-playback-state",
	"user-read-currently-playing",
}

// Spotify is a source that reports playback activity from the Spotify Web
// API. Tokens are persisted to TokenFile; the first run walks the user
// through the authorize-URL flow on the terminal.
type Spotify struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	TokenFile    string

	// APIBase overrides the Web API host, for tests.
	APIBase string

	mu     sync.Mutex
	config *oauth2.Config
	token  *oauth2.Token
	client *http.Client
}

// Wire shapes for the two read endpoints and the context lookups.
type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyAlbum struct {
	Name   string `json:"name"`
	URI    string `json:"uri"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

type spotifyTrackItem struct {
	Name    string          `json:"name"`
	Artists []spotifyArtist `json:"artists"`
	Album   spotifyAlbum    `json:"album"`
}

type spotifyContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

type spotifyCurrentlyPlaying struct {
	IsPlaying bool              `json:"is_playing"`
	Item      *spotifyTrackItem `json:"item"`
	Context   *spotifyContext   `json:"context"`
}

type spotifyRecentlyPlayed struct {
	Items []struct {
		Track   spotifyTrackItem `json:"track"`
		Context *spotifyContext  `json:"context"`
	} `json:"items"`
}

type spotifyNamed struct {
	Name string `json:"name"`
}

// Login loads the persisted token, or runs the interactive authorization
// flow when there is none. It must be called before the draw loop starts;
// afterwards the source only refreshes silently.
func (s *Spotify) Login() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURL,
		Scopes:       spotifyScopes,
		Endpoint:     spotifyEndpoint,
	}

	if tok, err := s.loadToken(); err == nil {
		s.token = tok
		slog.Info("Spotify access token loaded", "path", s.TokenFile)
		return nil
	}

	tok, err := s.authorizeInteractively()
	if err != nil {
		return err
	}
	s.token = tok
	if err := s.saveToken(); err != nil {
		slog.Error("Failed to persist Spotify token", "path", s.TokenFile, "error", err)
	}
	slog.Info("Spotify access token granted")
	return nil
}

// authorizeInteractively prints the authorize URL and reads the redirect URL
// the user lands on, exchanging its code for a token.
func (s *Spotify) authorizeInteractively() (*oauth2.Token, error) {
	fmt.Println(s.config.AuthCodeURL("spotcal"))
	fmt.Print("Paste the above link into your browser, then paste the redirect url here: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading redirect url: %w", err)
	}

	redirect, err := url.Parse(strings.TrimSpace(line))
	if err != nil {
		return nil, fmt.Errorf("parsing redirect url: %w", err)
	}
	code := redirect.Query().Get("code")
	if code == "" {
		return nil, errors.New("redirect url carries no auth code")
	}

	tok, err := s.config.Exchange(context.Background(), code)
	if err != nil {
		return nil, fmt.Errorf("exchanging auth code: %w", err)
	}
	return tok, nil
}

// RefreshToken renews the access token using the stored refresh token. The
// fetcher calls this between recoverable failures.
func (s *Spotify) RefreshToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == nil || s.token.RefreshToken == "" {
		return errors.New("no refresh token available, login first")
	}

	// Force the token source to hit the token endpoint even if the current
	// token has not formally expired.
	stale := *s.token
	stale.Expiry = time.Now().Add(-time.Minute)

	tok, err := s.config.TokenSource(context.Background(), &stale).Token()
	if err != nil {
		return fmt.Errorf("refreshing spotify token: %w", err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = s.token.RefreshToken
	}
	s.token = tok
	if err := s.saveToken(); err != nil {
		slog.Error("Failed to persist refreshed Spotify token", "path", s.TokenFile, "error", err)
	}
	slog.Info("Spotify access token refreshed")
	return nil
}

// CurrentlyPlaying returns the active track, or nil when nothing is playing.
func (s *Spotify) CurrentlyPlaying() (*model.Track, error) {
	var payload spotifyCurrentlyPlaying
	found, err := s.get("/me/player/currently-playing", &payload)
	if err != nil {
		return nil, err
	}
	if !found || payload.Item == nil || !payload.IsPlaying {
		return nil, nil
	}

	contextType, contextName := s.resolveContext(payload.Context, &payload.Item.Album)
	track := trackFromItem(payload.Item, contextType, contextName)
	slog.Debug("Fetched currently playing track", "track", track.TrackName, "source", "spotify")
	return track, nil
}

// RecentlyPlayed returns the most recently finished track, or nil when the
// account has no history.
func (s *Spotify) RecentlyPlayed() (*model.Track, error) {
	var payload spotifyRecentlyPlayed
	found, err := s.get("/me/player/recently-played?limit=1", &payload)
	if err != nil {
		return nil, err
	}
	if !found || len(payload.Items) == 0 {
		return nil, nil
	}

	item := payload.Items[0]
	contextType, contextName := s.resolveContext(item.Context, &item.Track.Album)
	track := trackFromItem(&item.Track, contextType, contextName)
	slog.Debug("Fetched recently played track", "track", track.TrackName, "source", "spotify")
	return track, nil
}

func trackFromItem(item *spotifyTrackItem, contextType model.ContextType, contextName string) *model.Track {
	names := make([]string, 0, len(item.Artists))
	for _, artist := range item.Artists {
		names = append(names, artist.Name)
	}

	imageLink := ""
	if len(item.Album.Images) > 0 {
		imageLink = item.Album.Images[0].URL
	}

	return &model.Track{
		TrackName:   item.Name,
		ArtistName:  strings.Join(names, ", "),
		ContextType: contextType,
		ContextName: contextName,
		ImageLink:   imageLink,
		AlbumName:   item.Album.Name,
		Timestamp:   time.Now(),
	}
}

// resolveContext turns the playing-context descriptor into a display type
// and name. A missing context defaults to the track's own album. A failed
// playlist lookup degrades to "DJ" rather than failing the fetch; other
// failed lookups just leave the name blank.
func (s *Spotify) resolveContext(ctx *spotifyContext, album *spotifyAlbum) (model.ContextType, string) {
	if ctx == nil {
		return model.ContextAlbum, album.Name
	}

	contextType := model.ParseContextType(ctx.Type)
	if contextType == model.ContextCollection {
		// Liked songs have no lookup endpoint.
		return model.ContextCollection, "Liked Songs"
	}

	var path string
	switch contextType {
	case model.ContextPlaylist:
		path = "/playlists/"
	case model.ContextAlbum:
		path = "/albums/"
	case model.ContextArtist:
		path = "/artists/"
	default:
		return model.ContextUnknown, ""
	}

	id := ctx.URI[strings.LastIndex(ctx.URI, ":")+1:]
	var named spotifyNamed
	found, err := s.get(path+id, &named)
	if err != nil || !found {
		slog.Warn("Context lookup failed", "type", ctx.Type, "uri", ctx.URI, "error", err)
		if contextType == model.ContextPlaylist {
			return model.ContextDJ, "DJ"
		}
		return contextType, ""
	}
	return contextType, named.Name
}

// get performs an authenticated GET and decodes the response into out. The
// boolean is false when the endpoint returned no content (204). Failures are
// wrapped with the fetcher's sentinels where they merit a retry.
func (s *Spotify) get(path string, out any) (bool, error) {
	s.mu.Lock()
	token := s.token
	client := s.client
	s.mu.Unlock()

	if token == nil {
		return false, errors.New("spotify: not logged in")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	base := s.APIBase
	if base == "" {
		base = spotifyAPIBase
	}

	req, err := http.NewRequest(http.MethodGet, base+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("spotify: %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return false, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return false, fmt.Errorf("spotify: %s: %w", path, fetcher.ErrTokenExpired)
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, fmt.Errorf("spotify: %s: %w", path, fetcher.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("spotify: %s: %s - %s", path, resp.Status, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("spotify: decoding %s: %w", path, err)
	}
	return true, nil
}

func (s *Spotify) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.TokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		return nil, errors.New("token file has no refresh token")
	}
	return &tok, nil
}

func (s *Spotify) saveToken() error {
	data, err := json.MarshalIndent(s.token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.TokenFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.TokenFile, data, 0o600)
}

var _ model.Source = (*Spotify)(nil)
var _ model.TokenRefresher = (*Spotify)(nil)
