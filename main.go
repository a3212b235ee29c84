package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/csmith/envflag/v2"
	"github.com/csmith/slogflags"

	"github.com/ascott/spotcal/art"
	"github.com/ascott/spotcal/button"
	"github.com/ascott/spotcal/config"
	"github.com/ascott/spotcal/display"
	"github.com/ascott/spotcal/fetcher"
	"github.com/ascott/spotcal/model"
	"github.com/ascott/spotcal/refresh"
	"github.com/ascott/spotcal/render"
	"github.com/ascott/spotcal/sources"
	"github.com/ascott/spotcal/trackcache"
)

var (
	spotifyClientID     = flag.String("spotify-client-id", "", "Spotify application client ID")
	spotifyClientSecret = flag.String("spotify-client-secret", "", "Spotify application client secret")
	spotifyRedirectURL  = flag.String("spotify-redirect-url", "http://localhost:8888/callback", "Spotify OAuth redirect URL")

	lastfmKey      = flag.String("lastfm-key", "", "Last.fm API key")
	lastfmSecret   = flag.String("lastfm-secret", "", "Last.fm API secret")
	lastfmUsername = flag.String("lastfm-username", "", "Last.fm username")
	lastfmPassword = flag.String("lastfm-password", "", "Last.fm password")

	subsonicServer   = flag.String("subsonic-server", "", "Subsonic server base address")
	subsonicUsername = flag.String("subsonic-username", "", "Subsonic username")
	subsonicPassword = flag.String("subsonic-password", "", "Subsonic password")

	listenbrainzToken    = flag.String("listenbrainz-token", "", "ListenBrainz token")
	listenbrainzUsername = flag.String("listenbrainz-username", "", "ListenBrainz username")

	source         = flag.String("source", "spotify", "Music service to poll for playback activity")
	configPath     = flag.String("config", "", "Path to the display settings JSON file")
	cacheDir       = flag.String("cache-dir", "cache", "Directory for the track cache and album art artifacts")
	outputDir      = flag.String("output-dir", "out", "Directory the file panel writes frames to")
	local          = flag.Bool("local", false, "Render a single frame to disk and exit")
	interval       = flag.Duration("interval", 180*time.Second, "Time between scheduled redraws")
	buttonPin      = flag.String("button-pin", "", "GPIO pin name of the refresh button (empty to disable)")
	buttonCooldown = flag.Duration("button-cooldown", 10*time.Second, "Minimum time between button-triggered redraws")

	availableSources map[string]model.Source
)

func main() {
	envflag.Parse()
	_ = slogflags.Logger(slogflags.WithSetDefault(true))

	settings, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load display settings", "error", err)
		os.Exit(1)
	}

	initialiseSources()

	src, err := selectedSource()
	if err != nil {
		slog.Error("Failed to get source", "error", err)
		os.Exit(1)
	}

	fonts, err := render.LoadFonts()
	if err != nil {
		slog.Error("Failed to load fonts", "error", err)
		os.Exit(1)
	}

	panel := &display.FilePanel{Dir: *outputDir, OneBit: !settings.FourGrayScale}

	a := &app{
		settings:   settings,
		source:     src,
		cache:      &trackcache.Cache{Path: filepath.Join(*cacheDir, "track.json")},
		art:        &art.Manager{Dir: filepath.Join(*cacheDir, "album_art"), FourGray: settings.FourGrayScale},
		compositor: render.NewCompositor(settings, fonts),
		controller: display.NewController(panel, settings.SleepAfterDraw),
	}

	if *local {
		if err := a.cycle(time.Now()); err != nil {
			slog.Error("Render failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Both triggers funnel into one buffered channel: a single goroutine
	// owns the frame buffer and the panel, so renders never overlap, and a
	// trigger arriving mid-render coalesces instead of queueing up.
	requests := make(chan trigger, 1)

	go func() {
		requests <- trigger{}
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for range ticker.C {
			select {
			case requests <- trigger{}:
			default:
			}
		}
	}()

	if *buttonPin != "" {
		presses := make(chan struct{}, 1)
		if err := button.Watch(*buttonPin, presses); err != nil {
			slog.Error("Failed to watch refresh button", "pin", *buttonPin, "error", err)
			os.Exit(1)
		}
		go func() {
			for range presses {
				select {
				case requests <- trigger{fromButton: true}:
				default:
				}
			}
		}()
	}

	a.run(requests)
}

// trigger is one redraw request; fromButton marks it as debounceable.
type trigger struct {
	fromButton bool
}

type app struct {
	settings   *config.Settings
	source     model.Source
	cache      *trackcache.Cache
	art        *art.Manager
	compositor *render.Compositor
	controller *display.Controller

	lastDraw  time.Time
	lastClock string
	hasFrame  bool
}

// run consumes redraw requests until the channel closes. Initialization
// timeouts are fatal: the panel must not be left mid-init, so the process
// exits and lets a supervisor restart it.
func (a *app) run(requests <-chan trigger) {
	for req := range requests {
		if req.fromButton && time.Since(a.lastDraw) < *buttonCooldown {
			slog.Debug("Dropping button press inside cooldown window")
			continue
		}

		if err := a.cycle(time.Now()); err != nil {
			if errors.Is(err, display.ErrInitTimeout) {
				slog.Error("Panel initialization timed out, exiting", "error", err)
				os.Exit(1)
			}
			slog.Error("Redraw cycle failed", "error", err)
			continue
		}
		a.lastDraw = time.Now()
	}
}

// cycle runs one full pass: fetch, decide, compose and push if needed, then
// persist what was drawn.
func (a *app) cycle(now time.Time) error {
	fetched := fetcher.Fetch(a.source)
	cached, _ := a.cache.Read()
	decision := refresh.Evaluate(fetched, cached, now)

	if !decision.Redraw {
		slog.Info("No material change, skipping redraw", "track", decision.Track.TrackName)
		return a.maybeUpdateClock(now)
	}

	var artwork image.Image
	if img, err := a.art.Artifact(decision.Track, decision.RefetchArt); err != nil {
		slog.Warn("Falling back to placeholder art", "album", decision.Track.AlbumName, "error", err)
	} else {
		artwork = img
	}

	frame := a.compositor.Render(decision.Track, artwork, now)
	if err := a.controller.Draw(frame); err != nil {
		return fmt.Errorf("drawing frame: %w", err)
	}
	a.hasFrame = true
	a.lastClock = now.In(a.settings.Location()).Format("15:04")

	if err := a.cache.Write(decision.Track, now); err != nil {
		slog.Error("Failed to write track cache", "error", err)
	}

	slog.Info("Redraw complete", "track", decision.Track.TrackName, "artist", decision.Track.ArtistName)
	return nil
}

// maybeUpdateClock pushes a partial clock refresh when partial updates are
// enabled and the displayed minute went stale. A partial is only valid on
// top of a full frame pushed earlier in this process's lifetime.
func (a *app) maybeUpdateClock(now time.Time) error {
	if !a.settings.PartialUpdate || !a.hasFrame {
		return nil
	}

	current := now.In(a.settings.Location()).Format("15:04")
	if current == a.lastClock {
		return nil
	}

	strip, region := a.compositor.RenderClock(now)
	if err := a.controller.DrawPartial(strip, region); err != nil {
		return fmt.Errorf("updating clock strip: %w", err)
	}
	a.lastClock = current
	return nil
}

func initialiseSources() {
	availableSources = make(map[string]model.Source)

	if *spotifyClientID != "" && *spotifyClientSecret != "" {
		availableSources["spotify"] = &sources.Spotify{
			ClientID:     *spotifyClientID,
			ClientSecret: *spotifyClientSecret,
			RedirectURL:  *spotifyRedirectURL,
			TokenFile:    filepath.Join(*cacheDir, ".authcache.json"),
		}
	}

	if *lastfmKey != "" && *lastfmSecret != "" {
		availableSources["lastfm"] = &sources.Lastfm{
			APIKey:   *lastfmKey,
			Secret:   *lastfmSecret,
			Username: *lastfmUsername,
			Password: *lastfmPassword,
		}
	}

	if *subsonicServer != "" {
		availableSources["subsonic"] = &sources.Subsonic{
			BaseURL:    *subsonicServer,
			Username:   *subsonicUsername,
			Password:   *subsonicPassword,
			ClientName: "spotcal",
		}
	}

	if *listenbrainzToken != "" {
		availableSources["listenbrainz"] = &sources.ListenBrainz{
			Token:    *listenbrainzToken,
			Username: *listenbrainzUsername,
		}
	}
}

func selectedSource() (model.Source, error) {
	if *source == "" {
		return nil, fmt.Errorf("source must be specified")
	}

	src, ok := availableSources[*source]
	if !ok {
		return nil, fmt.Errorf("source not configured or invalid: %s", *source)
	}

	if spotify, ok := src.(*sources.Spotify); ok {
		if err := spotify.Login(); err != nil {
			return nil, fmt.Errorf("spotify login: %w", err)
		}
	}

	return src, nil
}
