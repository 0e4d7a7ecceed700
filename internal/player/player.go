package player

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// ErrNothingLoaded is returned by operations that need a loaded track.
var ErrNothingLoaded = errors.New("nothing loaded")

// Player is the beep-backed output device. It owns at most one
// prepared track; loading a new source discards the previous one.
type Player struct {
	mu sync.Mutex

	httpc *http.Client

	src      io.Closer
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	halt     *halter
	duration time.Duration

	volumeLevel float64

	// playGen invalidates the finished callback of a superseded or
	// manually stopped voice. active tracks whether the prepared chain
	// is currently queued on the mixer. Both are touched from beep's
	// mixer goroutine, hence atomics.
	playGen atomic.Uint64
	active  atomic.Bool

	finishedCh chan struct{}
}

// New creates a player. The speaker itself is initialized lazily on
// first load.
func New() *Player {
	return &Player{
		httpc:       &http.Client{Timeout: 60 * time.Second},
		volumeLevel: 1.0,
		finishedCh:  make(chan struct{}, 1),
	}
}

// halter lets a queued voice be removed from the mixer without
// clearing the whole speaker (which would also kill the transition
// chime). halted is only written under speaker.Lock.
type halter struct {
	s      beep.Streamer
	halted bool
}

func (h *halter) Stream(samples [][2]float64) (int, bool) {
	if h.halted {
		return 0, false
	}
	return h.s.Stream(samples)
}

func (h *halter) Err() error { return h.s.Err() }

// media is a decoded track not yet committed to the device.
type media struct {
	src      io.Closer
	streamer beep.StreamSeekCloser
	format   beep.Format
	duration time.Duration
}

func (m *media) Duration() time.Duration { return m.duration }

func (m *media) Close() error {
	m.streamer.Close()
	return m.src.Close()
}

// Load acquires and decodes the media at source. It never touches the
// installed track: concurrent loads may overlap freely, and only the
// one the caller commits via Install reaches the device.
func (p *Player) Load(source string) (Media, error) {
	if err := EnsureSpeaker(); err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}

	src, kind, err := openSource(source, p.httpc)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch kind {
	case formatMP3:
		streamer, format, err = mp3.Decode(src)
	case formatFLAC:
		streamer, format, err = flac.Decode(src)
	default:
		src.Close()
		return nil, fmt.Errorf("unsupported media format: %s", source)
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("decode: %w", err)
	}

	return &media{
		src:      src,
		streamer: streamer,
		format:   format,
		duration: format.SampleRate.D(streamer.Len()),
	}, nil
}

// Install commits a loaded Media as the prepared track, paused at
// position zero, replacing any previous one.
func (p *Player) Install(m Media) time.Duration {
	med, ok := m.(*media)
	if !ok || med == nil {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	p.src = med.src
	p.streamer = med.streamer
	p.format = med.format
	p.ctrl = &beep.Ctrl{Streamer: med.streamer}
	var chain beep.Streamer = p.ctrl
	if med.format.SampleRate != mixRate {
		chain = beep.Resample(4, med.format.SampleRate, mixRate, p.ctrl)
	}
	p.volume = &effects.Volume{
		Streamer: chain,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.volumeLevel <= 0,
	}
	p.duration = med.duration
	return p.duration
}

// Start begins or resumes output, resuming a suspended speaker first.
// After natural end of media, SeekTo(0) followed by Start replays the
// prepared track without reloading.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.volume == nil {
		return ErrNothingLoaded
	}
	if err := speaker.Resume(); err != nil {
		return fmt.Errorf("resume output: %w", err)
	}

	if p.active.Load() {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		return nil
	}

	// The previous voice (if any) has left the mixer; queue a fresh one.
	p.ctrl.Paused = false
	gen := p.playGen.Load()
	h := &halter{s: p.volume}
	p.halt = h
	p.active.Store(true)
	speaker.Play(beep.Seq(h, beep.Callback(func() {
		p.voiceDone(gen)
	})))
	return nil
}

// voiceDone runs on the mixer goroutine when a voice leaves the mixer.
// It must not take p.mu. Only a current-generation voice reaching its
// natural end signals Finished.
func (p *Player) voiceDone(gen uint64) {
	p.active.Store(false)
	if gen != p.playGen.Load() {
		return
	}
	select {
	case p.finishedCh <- struct{}{}:
	default:
	}
}

// Pause suspends output without resetting the position.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Stop discards the prepared track and releases its resources.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	p.playGen.Add(1)
	if p.halt != nil {
		speaker.Lock()
		p.halt.halted = true
		speaker.Unlock()
		p.halt = nil
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	p.ctrl = nil
	p.volume = nil
	p.duration = 0
}

// SeekTo moves the playback position, clamped to the track bounds.
func (p *Player) SeekTo(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return ErrNothingLoaded
	}
	n := p.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if max := p.streamer.Len(); n > max {
		n = max
	}
	speaker.Lock()
	err := p.streamer.Seek(n)
	speaker.Unlock()
	return err
}

// Position returns the current playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	// Read without the speaker lock; may be a buffer's worth stale but
	// avoids lock-order trouble with the mixer.
	return p.format.SampleRate.D(p.streamer.Position())
}

// Duration returns the prepared track's duration.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Finished signals natural end of media.
func (p *Player) Finished() <-chan struct{} {
	return p.finishedCh
}

// Close releases the prepared track. The speaker itself is
// process-wide and left running.
func (p *Player) Close() error {
	p.Stop()
	return nil
}
