package service

import (
	"context"
	"testing"

	"claudecode-es/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadsCaptureOnce(t *testing.T) {
	_, clock := newTestStore(t)
	l := NewLeads(newTestDB(t), clock)
	ctx := context.Background()

	created, err := l.Capture(ctx, "Lead@Test.com", "/modulos/gratis")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = l.Capture(ctx, "lead@test.com", "/otra")
	require.NoError(t, err)
	assert.False(t, created)

	n, err := l.count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = l.Capture(ctx, "not-an-email", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func (l *Leads) count(ctx context.Context) (int64, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&model.Lead{}).Count(&n).Error
	return n, err
}
