package playback

import "time"

// Track describes one playable item. Tracks are supplied by a library
// source and never mutated by the engine.
type Track struct {
	ID           string
	OwnerID      string
	Title        string
	Artist       string
	MediaURL     string
	Duration     time.Duration // 0 when unknown until the media is decoded
	Size         int64         // bytes, 0 when unknown
	ContentType  string
	PlayCount    int64
	LastPlayedAt time.Time // zero when never played
	CreatedAt    time.Time
}
