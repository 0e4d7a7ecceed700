package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestGetPlayerSettingsDefaults(t *testing.T) {
	m := openTestDB(t)

	s, err := m.GetPlayerSettings()
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Volume)
	assert.False(t, s.Shuffle)
	assert.Equal(t, 0, s.RepeatMode)
}

func TestSaveAndGetPlayerSettings(t *testing.T) {
	m := openTestDB(t)

	want := PlayerSettings{Volume: 0.35, Shuffle: true, RepeatMode: 2}
	require.NoError(t, m.SavePlayerSettings(want))

	got, err := m.GetPlayerSettings()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSavePlayerSettingsUpserts(t *testing.T) {
	m := openTestDB(t)

	require.NoError(t, m.SavePlayerSettings(PlayerSettings{Volume: 0.9}))
	require.NoError(t, m.SavePlayerSettings(PlayerSettings{Volume: 0.1, RepeatMode: 1}))

	got, err := m.GetPlayerSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.1, got.Volume)
	assert.Equal(t, 1, got.RepeatMode)
}
