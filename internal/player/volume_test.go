package player

import (
	"math"
	"testing"
)

func TestClampLevel(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{2, 1},
	}
	for _, tc := range cases {
		if got := clampLevel(tc.in); got != tc.want {
			t.Errorf("clampLevel(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLevelToVolume(t *testing.T) {
	if got := levelToVolume(0); got != -10 {
		t.Errorf("levelToVolume(0) = %v, want -10", got)
	}
	if got := levelToVolume(1); got != 0 {
		t.Errorf("levelToVolume(1) = %v, want 0", got)
	}
	if got := levelToVolume(0.5); got != -1 {
		t.Errorf("levelToVolume(0.5) = %v, want -1 (half volume)", got)
	}
	if got := levelToVolume(0.25); math.Abs(got-(-2)) > 1e-9 {
		t.Errorf("levelToVolume(0.25) = %v, want -2", got)
	}
}
