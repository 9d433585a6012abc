package service

import (
	"claudecode-es/backend/internal/store"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPurchased(t *testing.T) {
	s, _ := newTestStore(t)
	p := NewPurchases(s, []string{"ralph_loop", "curso_interactivo"})
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, store.PurchaseKey("ralph_loop", "buyer@test.com"), []byte("1"), 0))

	ok, err := p.HasPurchased(ctx, "ralph_loop", "Buyer@Test.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.HasPurchased(ctx, "curso_interactivo", "buyer@test.com")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.HasPurchased(ctx, "camiseta", "buyer@test.com")
	assert.ErrorIs(t, err, ErrUnknownProduct)
}
