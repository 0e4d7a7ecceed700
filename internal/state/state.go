package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "groove"
	dbFileName = "groove.db"
)

// Manager persists player settings and the pending play-report queue.
type Manager struct {
	db *sql.DB
}

// Open opens (or creates) the state database at its xdg data path.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the state database at an explicit path
// (":memory:" for tests).
func OpenPath(path string) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Manager{db: db}, nil
}

// Close closes the underlying database.
func (m *Manager) Close() error {
	return m.db.Close()
}
