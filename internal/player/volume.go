package player

import (
	"math"

	"github.com/gopxl/beep/v2/speaker"
)

// SetVolume sets the output level (0.0 to 1.0). The level persists
// across loads.
func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volumeLevel = clampLevel(level)

	if p.volume != nil {
		speaker.Lock()
		p.volume.Volume = levelToVolume(p.volumeLevel)
		p.volume.Silent = p.volumeLevel <= 0
		speaker.Unlock()
	}
}

// Volume returns the current output level.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volumeLevel
}

func clampLevel(level float64) float64 {
	if level < 0 {
		return 0
	}
	if level > 1 {
		return 1
	}
	return level
}

// levelToVolume converts a 0.0-1.0 level to beep's Volume value.
// beep uses a logarithmic scale with base 2 where 0 means no change,
// -1 half volume, -2 a quarter, and so on. 0 maps to -10, essentially
// silent (and Silent is set alongside it).
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
