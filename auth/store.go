// Package auth persists the session token. The store is the single shared
// mutable resource of the client layer: written on login, read on every
// request, cleared on logout or when the server answers 401.
package auth

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaDDL string

// ErrNoToken is returned when no session is stored.
var ErrNoToken = errors.New("auth: no stored token")

// Store keeps the session token in a single-row sqlite table so a session
// survives process restarts, the way the web clients keep it in browser
// storage.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and if needed creates) the token database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Save replaces the stored session with tok. A zero ObtainedAt is stamped
// with the current time.
func (s *Store) Save(ctx context.Context, tok Token) error {
	if tok.AccessToken == "" {
		return errors.New("auth: access token is required")
	}
	if tok.ObtainedAt.IsZero() {
		tok.ObtainedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_token (id, access_token, refresh_token, expires_in, obtained_at_utc)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_in = excluded.expires_in,
			obtained_at_utc = excluded.obtained_at_utc`,
		tok.AccessToken, tok.RefreshToken, tok.ExpiresIn, tok.ObtainedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Load returns the stored session, or ErrNoToken.
func (s *Store) Load(ctx context.Context) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, expires_in, obtained_at_utc
		FROM session_token WHERE id = 1`)

	var tok Token
	var obtainedAt int64
	if err := row.Scan(&tok.AccessToken, &tok.RefreshToken, &tok.ExpiresIn, &obtainedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrNoToken
		}
		return Token{}, fmt.Errorf("load token: %w", err)
	}
	tok.ObtainedAt = time.UnixMilli(obtainedAt).UTC()
	return tok, nil
}

// Token implements api.TokenSource. A missing session yields an empty token,
// not an error: the request goes out unauthenticated and the server decides.
func (s *Store) Token(ctx context.Context) (string, error) {
	tok, err := s.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// RefreshToken returns the stored refresh token, or ErrNoToken when either
// no session or no refresh credential is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	tok, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if tok.RefreshToken == "" {
		return "", ErrNoToken
	}
	return tok.RefreshToken, nil
}

// Clear deletes the stored session. Implements api.ClearableTokenSource.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM session_token WHERE id = 1`); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
