package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	sessions := NewSessionManager(s, 0)
	ctx := context.Background()

	token, err := sessions.Create(ctx, "User@Test.com")
	require.NoError(t, err)

	email, err := sessions.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", email)

	require.NoError(t, sessions.Destroy(ctx, token))

	_, err = sessions.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionExpiresWithoutRenewal(t *testing.T) {
	s, clock := newTestStore(t)
	sessions := NewSessionManager(s, 0)
	ctx := context.Background()

	token, err := sessions.Create(ctx, "user@test.com")
	require.NoError(t, err)

	clock.Advance(29 * 24 * time.Hour)
	_, err = sessions.Verify(ctx, token)
	require.NoError(t, err)

	// verifying above must not have pushed the expiry
	clock.Advance(24 * time.Hour)
	_, err = sessions.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionVerifyGarbage(t *testing.T) {
	s, _ := newTestStore(t)
	sessions := NewSessionManager(s, 0)

	_, err := sessions.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = sessions.Verify(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.NoError(t, sessions.Destroy(context.Background(), ""))
}
