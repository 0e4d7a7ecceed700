package state

import (
	"database/sql"
	"time"

	dbutil "github.com/lmeunier/groove/internal/db"
)

// maxPendingPlays caps the retry queue so a long offline stretch
// cannot grow it without bound.
const maxPendingPlays = 500

// PendingPlay is a play report queued for retry after a failed
// submission.
type PendingPlay struct {
	ID        int64
	TrackID   string
	Attempts  int
	LastError string
	CreatedAt time.Time
}

// AddPendingPlay queues a play report for later submission, pruning
// the oldest rows beyond the queue cap in the same transaction.
func (m *Manager) AddPendingPlay(trackID string) error {
	now := time.Now().Unix()
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO pending_plays (track_id, attempts, last_error, created_at)
			VALUES (?, 0, NULL, ?)
		`, trackID, now); err != nil {
			return err
		}
		_, err := tx.Exec(`
			DELETE FROM pending_plays WHERE id NOT IN (
				SELECT id FROM pending_plays ORDER BY created_at DESC, id DESC LIMIT ?
			)
		`, maxPendingPlays)
		return err
	})
}

// PendingPlays returns all queued reports ordered by creation time.
func (m *Manager) PendingPlays() ([]PendingPlay, error) {
	rows, err := m.db.Query(`
		SELECT id, track_id, attempts, last_error, created_at
		FROM pending_plays
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []PendingPlay
	for rows.Next() {
		var p PendingPlay
		var lastError sql.NullString
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.TrackID, &p.Attempts, &lastError, &createdAt); err != nil {
			return nil, err
		}
		p.LastError = dbutil.NullStringValue(lastError)
		p.CreatedAt = time.Unix(createdAt, 0)
		plays = append(plays, p)
	}
	return plays, rows.Err()
}

// DeletePendingPlay removes a successfully submitted report.
func (m *Manager) DeletePendingPlay(id int64) error {
	_, err := m.db.Exec(`DELETE FROM pending_plays WHERE id = ?`, id)
	return err
}

// NotePendingPlayAttempt increments the attempt count and records the
// failure message.
func (m *Manager) NotePendingPlayAttempt(id int64, errMsg string) error {
	_, err := m.db.Exec(`
		UPDATE pending_plays
		SET attempts = attempts + 1, last_error = ?
		WHERE id = ?
	`, errMsg, id)
	return err
}

// DeleteOldPendingPlays removes queued reports older than maxAge.
func (m *Manager) DeleteOldPendingPlays(maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge).Unix()
	_, err := m.db.Exec(`DELETE FROM pending_plays WHERE created_at < ?`, cutoff)
	return err
}
