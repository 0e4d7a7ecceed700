// Package chime plays the short burst of synthesized static heard
// between tracks. The burst signals that a track change is underway
// before the next track's audio is ready, masking load latency.
package chime

import (
	"math/rand/v2"

	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/player"
)

const (
	burstSeconds = 1.5
	sampleRate   = 44100
	burstSamples = int(burstSeconds * sampleRate)

	// Full gain for a short hold, then an exponential ramp down.
	holdSamples    = sampleRate * 80 / 1000
	decayPerSample = 0.9997
	cutoffGain     = 0.001

	burstLevel = 0.18
)

// Chime owns a noise buffer generated once at initialization; each
// transition plays a fresh voice over it. When audio is unavailable
// the chime stays constructible and Play degrades to a no-op.
type Chime struct {
	buf     []float64
	enabled bool
}

// New builds the noise buffer and checks that the output device is
// usable. Audio initialization failure is never fatal: transitions are
// simply silent.
func New(log *logrus.Logger) *Chime {
	c := &Chime{buf: make([]float64, burstSamples)}
	for i := range c.buf {
		c.buf[i] = (rand.Float64()*2 - 1) * burstLevel
	}
	if err := player.EnsureSpeaker(); err != nil {
		if log != nil {
			log.WithError(err).Warn("audio unavailable, track transitions will be silent")
		}
		return c
	}
	c.enabled = true
	return c
}

// Play starts one transition voice on the mixer and returns
// immediately. The voice removes itself once its envelope decays.
func (c *Chime) Play() {
	if !c.enabled {
		return
	}
	speaker.Play(&voice{buf: c.buf, gain: 1.0})
}

// Close disables further playback. Voices already on the mixer decay
// on their own within the burst length.
func (c *Chime) Close() error {
	c.enabled = false
	return nil
}

// voice streams the shared noise buffer through a hold-then-decay gain
// envelope and ends when the envelope falls below audibility.
type voice struct {
	buf  []float64
	pos  int
	gain float64
}

func (v *voice) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if v.pos >= len(v.buf) || v.gain < cutoffGain {
			return i, i > 0
		}
		if v.pos >= holdSamples {
			v.gain *= decayPerSample
		}
		s := v.buf[v.pos] * v.gain
		samples[i][0] = s
		samples[i][1] = s
		v.pos++
	}
	return len(samples), true
}

func (v *voice) Err() error { return nil }
