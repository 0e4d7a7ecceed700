package playback

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/player"
)

// Engine is the single-active-session playback engine. All operations
// are safe for concurrent use and never panic or return errors across
// this boundary: failures degrade to an inert state and are logged.
type Engine interface {
	// Playback control
	LoadTrack(t Track)
	Play()
	Pause()
	Stop()
	SetVolume(v float64)
	SeekTo(pos time.Duration)

	// Playlist and navigation
	SetPlaylist(tracks []Track)
	PlayIndex(i int)
	Next()
	Previous()
	ToggleShuffle() bool
	SetRepeatMode(m RepeatMode)
	CycleRepeatMode() RepeatMode

	// Observation
	Subscribe(fn Observer) (unsubscribe func())
	State() State

	// Lifecycle
	Close() error
}

// Chime plays the short transition effect between tracks. Play must
// never block; implementations degrade to a no-op when audio is
// unavailable.
type Chime interface {
	Play()
	Close() error
}

// Reporter receives fire-and-forget notification that a track was
// loaded. Implementations must return promptly and never fail loudly.
type Reporter interface {
	TrackLoaded(t Track)
}

// Options configures a new Engine. Every field is optional: a zero
// Options yields an engine usable for state and playlist management
// with no audio output.
type Options struct {
	Player          player.Interface
	Chime           Chime
	Reporter        Reporter
	TransitionDelay time.Duration // pause between chime and load; 0 loads immediately
	Logger          *logrus.Logger
}

const positionInterval = 500 * time.Millisecond

// New creates a playback engine. The engine owns the player and chime
// it is given and releases both on Close.
func New(opts Options) Engine {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}
	e := &engine{
		player:          opts.Player,
		chime:           opts.Chime,
		reporter:        opts.Reporter,
		transitionDelay: opts.TransitionDelay,
		log:             log,
		done:            make(chan struct{}),
		st: State{
			Volume: 1.0,
			Index:  -1,
		},
	}
	if e.player != nil {
		go e.watchFinished()
		go e.watchPosition()
	}
	return e
}

// Verify engine implements Engine at compile time.
var _ Engine = (*engine)(nil)
