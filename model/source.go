package model

// Source represents a music service that can report playback activity.
// Both operations return a nil Track with a nil error when the service simply
// has nothing to report; an error always means the query itself failed.
type Source interface {
	// CurrentlyPlaying returns the track playing right now, if any.
	CurrentlyPlaying() (*Track, error)
	// RecentlyPlayed returns the most recently finished track, if any.
	RecentlyPlayed() (*Track, error)
}

// TokenRefresher is implemented by sources whose credentials expire and can
// be renewed mid-flight.
type TokenRefresher interface {
	RefreshToken() error
}
