package state

import (
	"database/sql"
	"errors"
)

// PlayerSettings are the persisted player preferences, restored at
// startup.
type PlayerSettings struct {
	Volume     float64
	Shuffle    bool
	RepeatMode int
}

// GetPlayerSettings returns the saved settings, with defaults when
// nothing was saved yet.
func (m *Manager) GetPlayerSettings() (*PlayerSettings, error) {
	var s PlayerSettings
	row := m.db.QueryRow(`SELECT volume, shuffle, repeat_mode FROM player_state WHERE id = 1`)
	err := row.Scan(&s.Volume, &s.Shuffle, &s.RepeatMode)
	if errors.Is(err, sql.ErrNoRows) {
		return &PlayerSettings{Volume: 1.0}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SavePlayerSettings persists the player preferences.
func (m *Manager) SavePlayerSettings(s PlayerSettings) error {
	_, err := m.db.Exec(`
		INSERT INTO player_state (id, volume, shuffle, repeat_mode)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			shuffle = excluded.shuffle,
			repeat_mode = excluded.repeat_mode
	`, s.Volume, s.Shuffle, s.RepeatMode)
	return err
}
