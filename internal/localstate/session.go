package localstate

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrNoSession is returned by Session when nobody is signed in.
var ErrNoSession = errors.New("no session")

// Session is the signed-in state persisted on the device.
type Session struct {
	Token      string
	UserID     string
	BaseURL    string
	UpdateTime time.Time
}

// SessionStore persists at most one Session. Reads always go to the database,
// so a sign-out from another process is seen on the next request.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore wraps an open database that already has the schema.
func NewSessionStore(db *sql.DB) *SessionStore { return &SessionStore{db: db} }

// OpenSessionStore opens the database under dir (DataDir when empty).
func OpenSessionStore(dir string) (*SessionStore, error) {
	path, err := DBPath(dir)
	if err != nil {
		return nil, err
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewSessionStore(db), nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error { return s.db.Close() }

// Save replaces the current session.
func (s *SessionStore) Save(ctx context.Context, sess Session) error {
	token := strings.TrimSpace(sess.Token)
	if token == "" {
		return errors.New("session token is required")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO Sessions (SessionId, Token, UserId, BaseUrl, UpdateTime)
        VALUES (1, ?, ?, ?, ?)
        ON CONFLICT(SessionId) DO UPDATE SET Token = excluded.Token, UserId = excluded.UserId,
            BaseUrl = excluded.BaseUrl, UpdateTime = excluded.UpdateTime`,
		token, sess.UserID, sess.BaseURL, time.Now().UTC())
	return err
}

// Session returns the stored session or ErrNoSession.
func (s *SessionStore) Session(ctx context.Context) (*Session, error) {
	var (
		out    Session
		userID sql.NullString
		base   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT Token, UserId, BaseUrl, UpdateTime FROM Sessions WHERE SessionId = 1`).
		Scan(&out.Token, &userID, &base, &out.UpdateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	out.UserID, out.BaseURL = userID.String, base.String
	return &out, nil
}

// Credential returns the session token, or "" when nobody is signed in.
func (s *SessionStore) Credential(ctx context.Context) (string, error) {
	sess, err := s.Session(ctx)
	if errors.Is(err, ErrNoSession) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sess.Token, nil
}

// Clear removes the session. Clearing an empty store is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM Sessions`)
	return err
}
