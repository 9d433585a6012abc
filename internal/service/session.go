package service

import (
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/security"
	"claudecode-es/backend/pkg/validators"
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultSessionTTL = 30 * 24 * time.Hour

// SessionManager maps opaque cookie tokens to emails. Sessions are never
// renewed, they live for ttl from creation or until logout.
type SessionManager struct {
	store store.Store
	ttl   time.Duration
}

func NewSessionManager(s store.Store, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionManager{
		store: s,
		ttl:   ttl,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) Create(ctx context.Context, email string) (string, error) {
	token, err := security.NewToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token, %w", err)
	}

	err = m.store.Set(ctx, store.SessionKey(token), []byte(validators.NormalizeEmail(email)), m.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to store session, %w", err)
	}

	return token, nil
}

// Verify resolves a session token to its email
func (m *SessionManager) Verify(ctx context.Context, token string) (string, error) {
	if !security.IsTokenShaped(token) {
		return "", ErrUnauthenticated
	}

	b, err := m.store.Get(ctx, store.SessionKey(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUnauthenticated
		}

		return "", fmt.Errorf("failed to read session, %w", err)
	}

	return string(b), nil
}

func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return m.store.Del(ctx, store.SessionKey(token))
}
