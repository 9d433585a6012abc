// Package access decides whether a visitor may see a content bundle. Each
// bundle is guarded by a chain of small independent policies, the first one
// that allows wins and anything else ends in a deny.
package access

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type Decision int

const (
	Indeterminate Decision = iota
	Deny
	Allow
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "indeterminate"
	}
}

// Request carries everything a policy may look at. Email is the address the
// session cookie resolved to, empty for anonymous visitors.
type Request struct {
	Email         string
	CapturedEmail string
	LicenseKey    string
}

type Policy interface {
	Name() string
	Evaluate(ctx context.Context, r *Request) (Decision, error)
}

// PurchaseChecker is satisfied by *service.Purchases
type PurchaseChecker interface {
	HasPurchased(ctx context.Context, product, email string) (bool, error)
}

// LicenseChecker is satisfied by *service.LicenseValidator
type LicenseChecker interface {
	Validate(ctx context.Context, key string) (bool, error)
}

// FreeEmailPolicy passes once the visitor left an email with the lead form
type FreeEmailPolicy struct{}

func (FreeEmailPolicy) Name() string { return "free_email" }

func (FreeEmailPolicy) Evaluate(_ context.Context, r *Request) (Decision, error) {
	if strings.TrimSpace(r.CapturedEmail) != "" {
		return Allow, nil
	}

	return Deny, nil
}

type SessionPolicy struct{}

func (SessionPolicy) Name() string { return "session" }

func (SessionPolicy) Evaluate(_ context.Context, r *Request) (Decision, error) {
	if r.Email != "" {
		return Allow, nil
	}

	return Deny, nil
}

type WhitelistPolicy struct {
	List *Whitelist
}

func (WhitelistPolicy) Name() string { return "whitelist" }

func (p WhitelistPolicy) Evaluate(_ context.Context, r *Request) (Decision, error) {
	if r.Email == "" {
		return Deny, nil
	}

	if p.List.Contains(r.Email) {
		return Allow, nil
	}

	return Deny, nil
}

type PurchasePolicy struct {
	Product   string
	Purchases PurchaseChecker
}

func (p PurchasePolicy) Name() string { return "purchase:" + p.Product }

func (p PurchasePolicy) Evaluate(ctx context.Context, r *Request) (Decision, error) {
	if r.Email == "" {
		return Deny, nil
	}

	ok, err := p.Purchases.HasPurchased(ctx, p.Product, r.Email)
	if err != nil {
		return Indeterminate, err
	}

	if ok {
		return Allow, nil
	}

	return Deny, nil
}

type LicensePolicy struct {
	Licenses LicenseChecker
}

func (LicensePolicy) Name() string { return "license" }

func (p LicensePolicy) Evaluate(ctx context.Context, r *Request) (Decision, error) {
	if strings.TrimSpace(r.LicenseKey) == "" {
		return Deny, nil
	}

	ok, err := p.Licenses.Validate(ctx, r.LicenseKey)
	if err != nil {
		return Indeterminate, err
	}

	if ok {
		return Allow, nil
	}

	return Deny, nil
}

// Chain is evaluated in order. Errors are logged and count as indeterminate,
// so a broken dependency never grants access.
type Chain []Policy

func (c Chain) Allows(ctx context.Context, r *Request) bool {
	for _, p := range c {
		d, err := p.Evaluate(ctx, r)
		if err != nil {
			zap.L().Warn("Access policy failed", zap.String("policy", p.Name()), zap.Error(err))
			d = Indeterminate
		}

		if d == Allow {
			return true
		}
	}

	return false
}
