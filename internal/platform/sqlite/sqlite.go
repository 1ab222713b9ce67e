// Package sqlite opens the read-only lyrics index. In production this is a
// local replica of the hosted lyrics database; tests point it at a temp file.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// OpenReadOnly opens a SQLite database in read-only mode. Returns nil when no
// path is configured; the lyrics service then skips the index entirely.
func OpenReadOnly(path string) (*sql.DB, error) {
	if path == "" {
		return nil, nil
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=2000")
	if err != nil {
		return nil, fmt.Errorf("open lyrics index: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping lyrics index: %w", err)
	}

	// Single connection keeps the read-only handle predictable.
	db.SetMaxOpenConns(1)

	return db, nil
}
