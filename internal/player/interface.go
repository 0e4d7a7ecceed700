package player

import "time"

// Media is a decoded track held off the device until committed with
// Install, or discarded with Close when a newer load superseded it.
type Media interface {
	Duration() time.Duration
	Close() error
}

// Interface defines the output device contract for dependency
// injection and testing. One track is prepared at a time; installing a
// new one implicitly discards the previous one.
type Interface interface {
	// Load acquires (fetches or opens) and decodes the media at
	// source without touching the prepared track. The caller decides
	// whether the result is still wanted and either Installs or
	// Closes it.
	Load(source string) (Media, error)
	// Install commits a loaded Media as the prepared track, paused at
	// position zero, and returns its duration.
	Install(m Media) time.Duration
	// Start begins or resumes output. A suspended output device is
	// resumed first.
	Start() error
	Pause()
	Stop()
	SeekTo(pos time.Duration) error
	SetVolume(level float64)
	Position() time.Duration
	Duration() time.Duration
	// Finished signals natural end of media. Manual Stop or a
	// superseding Load never signal it.
	Finished() <-chan struct{}
	Close() error
}

// Verify implementations at compile time.
var (
	_ Interface = (*Player)(nil)
	_ Interface = (*Mock)(nil)
)
