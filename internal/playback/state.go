package playback

import "time"

// RepeatMode defines the repeat behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// State is the observable playback snapshot. Observers receive a copy;
// the engine's own copy is only ever mutated under its lock.
//
// Invariants held by every published snapshot:
//   - Index is -1 or a valid index into Playlist
//   - Track is non-nil iff Index != -1, and then equals Playlist[Index]
//   - IsPlaying is false whenever Track is nil
//   - Volume is within [0, 1]
type State struct {
	IsPlaying  bool
	Track      *Track
	Position   time.Duration
	Duration   time.Duration
	Volume     float64
	IsLoading  bool
	Shuffle    bool
	RepeatMode RepeatMode
	Playlist   []Track
	Index      int // -1 means no track selected
}

// clone returns a snapshot safe to hand to observers.
func (s State) clone() State {
	out := s
	if s.Track != nil {
		t := *s.Track
		out.Track = &t
	}
	out.Playlist = make([]Track, len(s.Playlist))
	copy(out.Playlist, s.Playlist)
	return out
}
