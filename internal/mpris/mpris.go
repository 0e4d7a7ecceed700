//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/playback"
)

// Adapter exposes the playback engine over D-Bus MPRIS. It is a plain
// subscriber of engine snapshots: property reads are served from the
// last snapshot, control methods map to engine mutators.
type Adapter struct {
	engine playback.Engine
	server *server.Server
	unsub  func()
}

// New creates and starts a new MPRIS adapter. The D-Bus connection is
// established in background; a missing session bus is logged and the
// player runs without media-key integration.
func New(engine playback.Engine, log *logrus.Logger) *Adapter {
	a := &Adapter{engine: engine}

	pa := &playerAdapter{engine: engine}
	a.unsub = engine.Subscribe(pa.onState)

	a.server = server.NewServer("groove", &rootAdapter{}, pa)

	go func() {
		if err := a.server.Listen(); err != nil && log != nil {
			log.WithError(err).Warn("mpris unavailable")
		}
	}()

	return a
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	a.unsub()
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil // Track list interface not implemented
}

func (r *rootAdapter) Identity() (string, error) {
	return "Groove", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/mp3"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and
// optional interfaces. It never reads engine state directly: onState
// keeps the last snapshot, so D-Bus property reads stay off the
// engine's serialization point.
type playerAdapter struct {
	engine playback.Engine

	mu   sync.Mutex
	snap playback.State
}

// onState runs on the engine's notification path; it must only record
// the snapshot.
func (p *playerAdapter) onState(s playback.State) {
	p.mu.Lock()
	p.snap = s
	p.mu.Unlock()
}

func (p *playerAdapter) state() playback.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

func (p *playerAdapter) Next() error {
	p.engine.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.engine.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	p.engine.Pause()
	return nil
}

func (p *playerAdapter) PlayPause() error {
	if p.state().IsPlaying {
		p.engine.Pause()
	} else {
		p.engine.Play()
	}
	return nil
}

func (p *playerAdapter) Stop() error {
	p.engine.Stop()
	return nil
}

func (p *playerAdapter) Play() error {
	p.engine.Play()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	s := p.state()
	p.engine.SeekTo(s.Position + time.Duration(offset)*time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.engine.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	s := p.state()
	switch {
	case s.IsPlaying:
		return types.PlaybackStatusPlaying, nil
	case s.Track != nil:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	s := p.state()
	if s.Track == nil {
		return types.Metadata{}, nil
	}

	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(s.Track.ID)),
		Length:  types.Microseconds(s.Duration.Microseconds()),
		Title:   s.Track.Title,
		Artist:  []string{s.Track.Artist},
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.state().Volume, nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.engine.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.state().Position.Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return len(p.state().Playlist) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.state().Playlist) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.state().Track != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.state().RepeatMode {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	default:
		return types.LoopStatusNone, nil
	}
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.engine.SetRepeatMode(playback.RepeatOff)
	case types.LoopStatusTrack:
		p.engine.SetRepeatMode(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.engine.SetRepeatMode(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.state().Shuffle, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	if p.state().Shuffle != shuffle {
		p.engine.ToggleShuffle()
	}
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
