package playback

import (
	"math/rand/v2"
	"time"
)

// SetPlaylist atomically replaces the playlist. The current selection
// is cleared and playback stops; loading a new library must never
// start audio on its own. Any in-flight load or delayed navigation is
// invalidated.
func (e *engine) SetPlaylist(tracks []Track) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.loadGen++
	e.navGen++
	pl := make([]Track, len(tracks))
	copy(pl, tracks)
	e.st.Playlist = pl
	e.st.Index = -1
	e.st.Track = nil
	e.st.IsPlaying = false
	e.st.IsLoading = false
	e.st.Position = 0
	e.st.Duration = 0
	if e.player != nil {
		e.player.Stop()
	}
	e.notifyLocked()
}

// PlayIndex plays the playlist entry at i. Out-of-range indices are
// caller misuse and no-op.
func (e *engine) PlayIndex(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || i < 0 || i >= len(e.st.Playlist) {
		return
	}
	e.transitionLocked(i)
}

// Next advances to the computed next track. With shuffle on the target
// is drawn by rejection sampling so it never repeats the current index
// (except for a single-track playlist); otherwise it wraps modulo the
// playlist length.
func (e *engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.nextLocked()
}

func (e *engine) nextLocked() {
	n := len(e.st.Playlist)
	if n == 0 {
		return
	}
	var target int
	if e.st.Shuffle {
		target = rand.IntN(n)
		for n > 1 && target == e.st.Index {
			target = rand.IntN(n)
		}
	} else {
		target = (e.st.Index + 1) % n
	}
	e.transitionLocked(target)
}

// Previous steps back one track, wrapping to the last entry from the
// start of the playlist.
func (e *engine) Previous() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	n := len(e.st.Playlist)
	if n == 0 {
		return
	}
	target := n - 1
	if e.st.Index > 0 {
		target = e.st.Index - 1
	}
	e.transitionLocked(target)
}

// transitionLocked runs the chime-then-load sequence. The short pause
// overlaps perceived load latency with the transition effect. The
// target is re-validated against the playlist when the delay fires:
// a SetPlaylist during the window strictly supersedes the stale index.
func (e *engine) transitionLocked(target int) {
	if e.chime != nil {
		e.chime.Play()
	}
	if e.transitionDelay <= 0 {
		e.loadIndexLocked(target)
		return
	}
	e.navGen++
	gen := e.navGen
	time.AfterFunc(e.transitionDelay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || gen != e.navGen {
			return
		}
		if target < 0 || target >= len(e.st.Playlist) {
			return
		}
		e.loadIndexLocked(target)
	})
}

// ToggleShuffle flips shuffle selection. Playlist order and the
// current index are untouched: shuffle only affects how the next and
// previous targets are chosen.
func (e *engine) ToggleShuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.st.Shuffle
	}
	e.st.Shuffle = !e.st.Shuffle
	e.notifyLocked()
	return e.st.Shuffle
}

// SetRepeatMode sets the repeat behavior.
func (e *engine) SetRepeatMode(m RepeatMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || m < RepeatOff || m > RepeatAll {
		return
	}
	e.st.RepeatMode = m
	e.notifyLocked()
}

// CycleRepeatMode cycles Off -> One -> All -> Off and returns the new
// mode.
func (e *engine) CycleRepeatMode() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.st.RepeatMode
	}
	e.st.RepeatMode = (e.st.RepeatMode + 1) % 3
	e.notifyLocked()
	return e.st.RepeatMode
}

// handleTrackEnded applies the end-of-track policy when the device
// reports natural end of media.
func (e *engine) handleTrackEnded() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.st.Track == nil {
		return
	}
	switch e.st.RepeatMode {
	case RepeatOne:
		// Rewind and resume the same track. No reload, and
		// deliberately no chime: repeating is not a track change.
		e.st.Position = 0
		if e.player != nil {
			if err := e.player.SeekTo(0); err != nil {
				e.log.WithError(err).Warn("repeat rewind failed")
			}
			if err := e.player.Start(); err != nil {
				e.log.WithError(err).Warn("repeat restart failed")
				e.st.IsPlaying = false
			}
		}
		e.notifyLocked()
	case RepeatAll:
		e.nextLocked()
	case RepeatOff:
		if e.st.Index < len(e.st.Playlist)-1 {
			e.nextLocked()
			return
		}
		// End of the list: clear the selection entirely rather than
		// leaving the last track selected-but-stopped.
		e.st.IsPlaying = false
		e.st.Index = -1
		e.st.Track = nil
		e.st.Position = 0
		e.st.Duration = 0
		if e.player != nil {
			e.player.Stop()
		}
		e.notifyLocked()
	}
}
