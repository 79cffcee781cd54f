// Package localstate keeps on-device state: the state directory and the
// SQLite database holding the signed-in session.
package localstate

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	envHome    = "JOURNAL_STATE_DIR" // override for tests and multi-profile use
	dirName    = ".mycelian-journal" // default under $HOME
	dbFilename = "journal.db"
)

// DataDir returns the directory where local state is stored (~/.mycelian-journal
// unless JOURNAL_STATE_DIR is set). It creates the directory with 0700
// permissions if it does not exist.
func DataDir() (string, error) {
	if custom := os.Getenv(envHome); custom != "" {
		return ensureDir(custom)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user home: %w", err)
	}
	return ensureDir(filepath.Join(home, dirName))
}

// DBPath returns the absolute path to the SQLite database file. A non-empty
// dir takes precedence over DataDir.
func DBPath(dir string) (string, error) {
	if dir == "" {
		d, err := DataDir()
		if err != nil {
			return "", err
		}
		dir = d
	} else if _, err := ensureDir(dir); err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFilename), nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	// MkdirAll leaves an existing directory's mode alone; the session token
	// must not be readable by other users.
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
