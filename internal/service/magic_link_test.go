package service

import (
	"claudecode-es/backend/internal/store"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueStoresNormalizedRecord(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")

	token, err := issuer.Issue(context.Background(), "  User@Test.com ", "/modulos/ralph-loop")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	rec, err := issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", rec.Email)
	assert.Equal(t, "/modulos/ralph-loop", rec.Redirect)
	assert.Equal(t, epoch, rec.CreatedAt)
	assert.Equal(t, epoch.Add(15*time.Minute), rec.ExpiresAt)
}

func TestIssueRejectsBadEmail(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")

	for _, e := range []string{"", "nope", "a@b", "a b@c.io"} {
		_, err := issuer.Issue(context.Background(), e, "")
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", e)
	}
}

func TestVerifyIsSingleUse(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")
	ctx := context.Background()

	token, err := issuer.Issue(ctx, "user@test.com", "")
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, token)
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	ok, err := s.Exists(ctx, store.MagicLinkKey(token))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyExpired(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")
	ctx := context.Background()

	token, err := issuer.Issue(ctx, "user@test.com", "")
	require.NoError(t, err)

	clock.Advance(15*time.Minute + time.Second)

	_, err = issuer.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// expired tokens are consumed as well
	_, err = issuer.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyAtExactExpiryStillValid(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")
	ctx := context.Background()

	token, err := issuer.Issue(ctx, "user@test.com", "")
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)

	_, err = issuer.Verify(ctx, token)
	assert.NoError(t, err)
}

func TestVerifyDefaultsAndSanitizesRedirect(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")
	ctx := context.Background()

	for _, redirect := range []string{"", "https://evil.example", "//evil.example"} {
		token, err := issuer.Issue(ctx, "user@test.com", redirect)
		require.NoError(t, err)

		rec, err := issuer.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, DefaultRedirect, rec.Redirect, "redirect %q", redirect)
	}
}

func TestVerifyUnknownToken(t *testing.T) {
	s, clock := newTestStore(t)
	issuer := NewMagicLinkIssuer(s, clock, 0, "")

	for _, tok := range []string{"", "short", "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"} {
		_, err := issuer.Verify(context.Background(), tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}
