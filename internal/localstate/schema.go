package localstate

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Open opens (or creates) the SQLite database at path in WAL mode and applies
// the schema.
func Open(path string) (*sql.DB, error) {
	if _, err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	// The database file holds the credential.
	if err := os.Chmod(path, 0o600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSQLiteSchema creates tables if they do not exist.
func EnsureSQLiteSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Sessions (
            SessionId INTEGER PRIMARY KEY CHECK (SessionId = 1),
            Token TEXT NOT NULL,
            UserId TEXT,
            BaseUrl TEXT,
            UpdateTime TIMESTAMP NOT NULL
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
