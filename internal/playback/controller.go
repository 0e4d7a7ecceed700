package playback

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/player"
)

type engine struct {
	mu sync.Mutex
	st State

	player   player.Interface
	chime    Chime
	reporter Reporter
	log      *logrus.Logger

	transitionDelay time.Duration

	// Generation counters invalidate in-flight async work when a newer
	// operation supersedes it.
	loadGen uint64
	navGen  uint64

	// wantPlay carries the user's play/pause intent across the loading
	// window, so a Pause or Stop issued mid-load is not overridden by
	// the auto-start when the load completes.
	wantPlay bool

	subs  []subscriber
	subID int

	done   chan struct{}
	closed bool
}

// State returns the current snapshot, independent of any subscription.
func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.clone()
}

// LoadTrack loads and plays a track from the current playlist. The
// track is resolved against the playlist by ID so the published index
// always matches; unknown tracks are caller misuse and no-op.
func (e *engine) LoadTrack(t Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	for i := range e.st.Playlist {
		if e.st.Playlist[i].ID == t.ID {
			e.loadIndexLocked(i)
			return
		}
	}
	e.log.WithField("track", t.ID).Warn("load requested for track not in playlist")
}

// loadIndexLocked selects playlist[i] and begins asynchronous media
// acquisition. Position and duration reset to zero; duration is set
// once metadata resolves.
func (e *engine) loadIndexLocked(i int) {
	t := e.st.Playlist[i]
	tc := t
	e.st.Index = i
	e.st.Track = &tc
	e.st.IsLoading = true
	e.st.IsPlaying = false
	e.st.Position = 0
	e.st.Duration = 0
	e.wantPlay = true
	e.loadGen++
	gen := e.loadGen
	e.notifyLocked()

	if e.player == nil {
		// No audio subsystem: stay usable for state management. The
		// track remains selected with whatever duration its metadata
		// carries.
		e.st.Duration = t.Duration
		e.st.IsLoading = false
		e.notifyLocked()
		return
	}

	go e.acquire(gen, t)
}

// acquire runs the blocking fetch/decode off the serialization point,
// then funnels the result back through it. The decoded media only
// reaches the device while this load's generation is still current: a
// superseded result is discarded without ever touching the installed
// track, so overlapping loads cannot clobber each other at the device.
func (e *engine) acquire(gen uint64, t Track) {
	med, err := e.player.Load(t.MediaURL)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.loadGen {
		if med != nil {
			med.Close()
		}
		return
	}
	if err != nil {
		// Keep the track selected so the UI can show what failed.
		e.log.WithError(err).WithFields(logrus.Fields{
			"track": t.ID,
			"url":   t.MediaURL,
		}).Error("media load failed")
		e.st.IsLoading = false
		e.st.IsPlaying = false
		e.notifyLocked()
		return
	}

	e.st.Duration = e.player.Install(med)
	e.st.IsLoading = false
	if e.wantPlay {
		if err := e.player.Start(); err != nil {
			e.log.WithError(err).WithField("track", t.ID).Warn("playback start failed")
			e.st.IsPlaying = false
		} else {
			e.st.IsPlaying = true
		}
	}
	e.notifyLocked()

	if e.reporter != nil {
		e.reporter.TrackLoaded(t)
	}
}

// Play resumes or starts output. A suspended output device is resumed
// by the player before starting; failure leaves IsPlaying false.
func (e *engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.st.Track == nil || e.st.IsPlaying || e.player == nil {
		return
	}
	if e.st.IsLoading {
		e.wantPlay = true
		return
	}
	if err := e.player.Start(); err != nil {
		e.log.WithError(err).Warn("playback start failed")
		return
	}
	e.st.IsPlaying = true
	e.notifyLocked()
}

// Pause stops output without resetting the position. Pausing during a
// load lets the load finish but cancels its auto-start.
func (e *engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if e.st.IsLoading {
		e.wantPlay = false
		return
	}
	if !e.st.IsPlaying {
		return
	}
	if e.player != nil {
		e.player.Pause()
	}
	e.st.IsPlaying = false
	e.notifyLocked()
}

// Stop pauses and rewinds to the start, keeping the track selected.
func (e *engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.st.Track == nil {
		return
	}
	e.wantPlay = false
	if e.player != nil {
		e.player.Pause()
		if err := e.player.SeekTo(0); err != nil {
			e.log.WithError(err).Debug("rewind on stop failed")
		}
	}
	e.st.IsPlaying = false
	e.st.Position = 0
	e.notifyLocked()
}

// SetVolume clamps v to [0,1], applies it to the output and publishes
// the new state.
func (e *engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	if e.player != nil {
		e.player.SetVolume(v)
	}
	e.st.Volume = v
	e.notifyLocked()
}

// SeekTo clamps pos to [0, duration]. While the duration is unknown
// (nothing loaded, or metadata not yet resolved) the call is a silent
// no-op, which closes the seek-during-load race.
func (e *engine) SeekTo(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.st.Track == nil || e.st.Duration == 0 {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.st.Duration {
		pos = e.st.Duration
	}
	if e.player != nil {
		if err := e.player.SeekTo(pos); err != nil {
			e.log.WithError(err).Warn("seek failed")
			return
		}
	}
	e.st.Position = pos
	e.notifyLocked()
}

// watchFinished funnels the device's end-of-media signal through the
// engine's serialization point.
func (e *engine) watchFinished() {
	for {
		select {
		case <-e.done:
			return
		case <-e.player.Finished():
			e.handleTrackEnded()
		}
	}
}

// watchPosition periodically publishes playback progress while playing.
func (e *engine) watchPosition() {
	t := time.NewTicker(positionInterval)
	defer t.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-t.C:
			e.mu.Lock()
			if !e.closed && e.st.IsPlaying && e.st.Track != nil {
				if pos := e.player.Position(); pos != e.st.Position {
					e.st.Position = pos
					e.notifyLocked()
				}
			}
			e.mu.Unlock()
		}
	}
}

// Close shuts the engine down: stop playback, release the device,
// clear subscribers, close the chime. Idempotent, and ordered so no
// late device callback can reach a destroyed store.
func (e *engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.loadGen++
	e.navGen++
	e.st.IsPlaying = false
	close(e.done)
	e.mu.Unlock()

	if e.player != nil {
		e.player.Stop()
		if err := e.player.Close(); err != nil {
			e.log.WithError(err).Warn("player close failed")
		}
	}

	e.mu.Lock()
	e.subs = nil
	e.mu.Unlock()

	if e.chime != nil {
		if err := e.chime.Close(); err != nil {
			e.log.WithError(err).Warn("chime close failed")
		}
	}
	return nil
}
