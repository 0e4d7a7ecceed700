//go:build !linux

package mpris

import (
	"github.com/sirupsen/logrus"

	"github.com/lmeunier/groove/internal/playback"
)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ playback.Engine, _ *logrus.Logger) *Adapter {
	return &Adapter{}
}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
