package service

import (
	"claudecode-es/backend/internal/model"
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/security"
	"claudecode-es/backend/pkg/util"
	"claudecode-es/backend/pkg/validators"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMagicLinkTTL = 15 * time.Minute
	DefaultRedirect     = "/empezar/introduccion"

	// Records outlive their expiry by this much so a late click is reported
	// as expired instead of unknown
	expiredGrace = time.Hour
)

// MagicLinkIssuer creates single use login tokens and consumes them
type MagicLinkIssuer struct {
	store           store.Store
	clock           util.Clock
	ttl             time.Duration
	defaultRedirect string
}

func NewMagicLinkIssuer(s store.Store, clock util.Clock, ttl time.Duration, defaultRedirect string) *MagicLinkIssuer {
	if clock == nil {
		clock = util.RealClock{}
	}

	if ttl <= 0 {
		ttl = DefaultMagicLinkTTL
	}

	if defaultRedirect == "" {
		defaultRedirect = DefaultRedirect
	}

	return &MagicLinkIssuer{
		store:           s,
		clock:           clock,
		ttl:             ttl,
		defaultRedirect: defaultRedirect,
	}
}

func (i *MagicLinkIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue stores a fresh token for email. Redirects that don't point back to
// this site are dropped.
func (i *MagicLinkIssuer) Issue(ctx context.Context, email, redirect string) (string, error) {
	if err := validators.EmailValidator(email); err != nil {
		return "", ErrInvalidEmail
	}

	token, err := security.NewToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate magic link token, %w", err)
	}

	now := i.clock.Now()
	rec := model.MagicLink{
		Email:     validators.NormalizeEmail(email),
		CreatedAt: now,
		ExpiresAt: now.Add(i.ttl),
		Redirect:  validators.SafeRedirect(redirect, ""),
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	if err := i.store.Set(ctx, store.MagicLinkKey(token), b, i.ttl+expiredGrace); err != nil {
		return "", fmt.Errorf("failed to store magic link token, %w", err)
	}

	return token, nil
}

// Verify consumes the token. The record is gone after this call whatever the
// outcome, so a link can never be replayed.
func (i *MagicLinkIssuer) Verify(ctx context.Context, token string) (*model.MagicLink, error) {
	if !security.IsTokenShaped(token) {
		return nil, ErrTokenInvalid
	}

	b, err := i.store.GetDel(ctx, store.MagicLinkKey(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenInvalid
		}

		return nil, fmt.Errorf("failed to consume magic link token, %w", err)
	}

	var rec model.MagicLink
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("corrupt magic link record, %w", err)
	}

	if i.clock.Now().After(rec.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	if rec.Redirect == "" {
		rec.Redirect = i.defaultRedirect
	}

	return &rec, nil
}
