package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"claudecode-es/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginHistoryRecordAndRecent(t *testing.T) {
	_, clock := newTestStore(t)
	h := NewLoginHistory(newTestDB(t), clock)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, "user@test.com", "10.0.0.1", "curl/8"))
	clock.Advance(time.Minute)
	require.NoError(t, h.Record(ctx, "user@test.com", "10.0.0.2", strings.Repeat("x", 600)))
	require.NoError(t, h.Record(ctx, "other@test.com", "10.0.0.3", "firefox"))

	events, err := h.recent(ctx, "user@test.com", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "10.0.0.2", events[0].IP)
	assert.Len(t, events[0].UserAgent, 512)
	assert.Equal(t, "10.0.0.1", events[1].IP)
}

func TestLoginHistoryPrune(t *testing.T) {
	_, clock := newTestStore(t)
	h := NewLoginHistory(newTestDB(t), clock)
	ctx := context.Background()

	require.NoError(t, h.Record(ctx, "user@test.com", "10.0.0.1", ""))
	clock.Advance(48 * time.Hour)
	require.NoError(t, h.Record(ctx, "user@test.com", "10.0.0.2", ""))

	n, err := h.Prune(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	events, err := h.recent(ctx, "user@test.com", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "10.0.0.2", events[0].IP)
}

// recent returns the last n logins of email, newest first
func (h *LoginHistory) recent(ctx context.Context, email string, n int) ([]model.LoginEvent, error) {
	var events []model.LoginEvent

	err := h.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at desc").
		Limit(n).
		Find(&events).
		Error

	return events, err
}
