package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// mixRate is the fixed mixer sample rate. Tracks at other rates are
// resampled so the transition chime and track voices can share one
// speaker.
const mixRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// EnsureSpeaker initializes the process-wide speaker exactly once.
// Callers that can degrade gracefully (the chime) treat an error as
// "audio unavailable"; the track player surfaces it as a load failure.
func EnsureSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(mixRate, mixRate.N(time.Second/10))
	})
	return speakerErr
}
