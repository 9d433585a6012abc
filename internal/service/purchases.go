package service

import (
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/validators"
	"context"
	"fmt"
	"slices"
)

// Purchases answers whether an email bought a product. The records are
// written by the payment webhooks, this side only reads them.
type Purchases struct {
	store    store.Store
	products []string
}

func NewPurchases(s store.Store, products []string) *Purchases {
	return &Purchases{
		store:    s,
		products: products,
	}
}

func (p *Purchases) Known(product string) bool {
	return slices.Contains(p.products, product)
}

func (p *Purchases) HasPurchased(ctx context.Context, product, email string) (bool, error) {
	if !p.Known(product) {
		return false, ErrUnknownProduct
	}

	ok, err := p.store.Exists(ctx, store.PurchaseKey(product, validators.NormalizeEmail(email)))
	if err != nil {
		return false, fmt.Errorf("failed to look up purchase, %w", err)
	}

	return ok, nil
}
