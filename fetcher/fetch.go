package fetcher

import (
	"errors"
	"log/slog"
	"net"
	"os"
	"syscall"

	"github.com/ascott/spotcal/model"
)

// Sentinel failures sources wrap so fetch attempts can be classified.
var (
	// ErrRateLimited marks a rate-limiting response from the service.
	ErrRateLimited = errors.New("rate limited")
	// ErrTokenExpired marks an expired-credential response from the service.
	ErrTokenExpired = errors.New("access token expired")
)

// maxAttempts is the total query budget per fetch, shared across the
// currently-playing and recently-played queries.
const maxAttempts = 3

// Fetch retrieves the most recent playback activity from src: the
// currently-playing track when there is one, otherwise the most recently
// played track. Recoverable failures (rate limiting, timeouts, expired
// tokens) are retried with a token refresh in between, up to maxAttempts
// attempts in total. A connectivity failure aborts immediately. Fetch never
// returns an error: nil means the caller should fall back to its cache.
func Fetch(src model.Source) *model.Track {
	attempts := 0

	track, ok := query(src, "currently-playing", src.CurrentlyPlaying, &attempts)
	if !ok {
		return nil
	}
	if track != nil {
		return track
	}

	track, ok = query(src, "recently-played", src.RecentlyPlayed, &attempts)
	if !ok {
		return nil
	}
	return track
}

func query(src model.Source, kind string, op func() (*model.Track, error), attempts *int) (*model.Track, bool) {
	for *attempts < maxAttempts {
		*attempts++
		track, err := op()
		if err == nil {
			return track, true
		}
		if Connectivity(err) {
			slog.Error("Music service unreachable", "query", kind, "error", err)
			return nil, false
		}
		if !Recoverable(err) {
			slog.Error("Music service query failed", "query", kind, "error", err)
			return nil, false
		}
		slog.Warn("Recoverable fetch failure", "query", kind, "attempt", *attempts, "error", err)
		refreshToken(src, kind)
	}
	slog.Error("Fetch attempts exhausted", "query", kind, "attempts", *attempts)
	return nil, false
}

func refreshToken(src model.Source, kind string) {
	refresher, ok := src.(model.TokenRefresher)
	if !ok {
		return
	}
	if err := refresher.RefreshToken(); err != nil {
		slog.Error("Token refresh failed", "query", kind, "error", err)
	}
}

// Recoverable reports whether err merits another attempt with a refreshed
// credential.
func Recoverable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTokenExpired) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// Connectivity reports whether err means the service host cannot be reached
// at all. These are not retried: the network is down, not flaky.
func Connectivity(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}
