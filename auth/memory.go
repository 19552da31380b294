package auth

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-memory token store for tests and short-lived commands.
type MemStore struct {
	mu  sync.Mutex
	tok *Token
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Save(ctx context.Context, tok Token) error {
	if tok.ObtainedAt.IsZero() {
		tok.ObtainedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = &tok
	return nil
}

func (m *MemStore) Load(ctx context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return Token{}, ErrNoToken
	}
	return *m.tok, nil
}

func (m *MemStore) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return "", nil
	}
	return m.tok.AccessToken, nil
}

func (m *MemStore) RefreshToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil || m.tok.RefreshToken == "" {
		return "", ErrNoToken
	}
	return m.tok.RefreshToken, nil
}

func (m *MemStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = nil
	return nil
}
