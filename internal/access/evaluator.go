package access

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownBundle = errors.New("unknown content bundle")

const (
	GateFreeEmail = "free_email"
	GateSession   = "session"
	GateWhitelist = "whitelist"
	GatePurchase  = "purchase"
	GateLicense   = "license"
)

// Bundle is one protected piece of content and the gates guarding it, in
// evaluation order. Product is required when a purchase gate is listed.
type Bundle struct {
	Name    string   `mapstructure:"-"`
	Gates   []string `mapstructure:"gates"`
	Product string   `mapstructure:"product"`
}

type Deps struct {
	Whitelist *Whitelist
	Purchases PurchaseChecker
	Licenses  LicenseChecker
}

type Evaluator struct {
	chains map[string]Chain
}

func NewEvaluator(bundles []Bundle, d Deps) (*Evaluator, error) {
	e := &Evaluator{chains: make(map[string]Chain, len(bundles))}

	for _, b := range bundles {
		if len(b.Gates) == 0 {
			return nil, fmt.Errorf("bundle %q has no gates", b.Name)
		}

		chain := make(Chain, 0, len(b.Gates))

		for _, g := range b.Gates {
			p, err := buildPolicy(g, b, d)
			if err != nil {
				return nil, fmt.Errorf("bundle %q, %w", b.Name, err)
			}

			chain = append(chain, p)
		}

		e.chains[b.Name] = chain
	}

	return e, nil
}

func buildPolicy(gate string, b Bundle, d Deps) (Policy, error) {
	switch gate {
	case GateFreeEmail:
		return FreeEmailPolicy{}, nil
	case GateSession:
		return SessionPolicy{}, nil
	case GateWhitelist:
		if d.Whitelist == nil {
			return nil, errors.New("whitelist gate without a whitelist")
		}
		return WhitelistPolicy{List: d.Whitelist}, nil
	case GatePurchase:
		if b.Product == "" {
			return nil, errors.New("purchase gate without a product")
		}
		if d.Purchases == nil {
			return nil, errors.New("purchase gate without a purchase checker")
		}
		return PurchasePolicy{Product: b.Product, Purchases: d.Purchases}, nil
	case GateLicense:
		if d.Licenses == nil {
			return nil, errors.New("license gate without a license checker")
		}
		return LicensePolicy{Licenses: d.Licenses}, nil
	default:
		return nil, fmt.Errorf("unknown gate %q", gate)
	}
}

func (e *Evaluator) Has(bundle string) bool {
	_, ok := e.chains[bundle]
	return ok
}

// Evaluate answers whether r may see bundle. Only an unknown bundle is an
// error; policy failures already ended up as a deny.
func (e *Evaluator) Evaluate(ctx context.Context, bundle string, r *Request) (bool, error) {
	chain, ok := e.chains[bundle]
	if !ok {
		return false, ErrUnknownBundle
	}

	return chain.Allows(ctx, r), nil
}
