package rates

import (
	"fmt"

	"github.com/go-payments-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Source converts a source-currency amount into settlement minor units.
// It is injected into the order service so the conversion policy can be
// replaced without touching order creation.
type Source interface {
	// Convert returns the settlement amount in minor units.
	Convert(amount decimal.Decimal, currency string) (int64, error)
	// Version identifies the policy revision in effect.
	Version() string
}

// Static is the current Source implementation: a fixed, versioned table of
// conversion factors from one source major unit to settlement minor units.
type Static struct {
	version string
	factors map[string]decimal.Decimal
}

// NewStatic returns the current conversion policy.
func NewStatic() *Static {
	return &Static{
		version: "2026-01",
		factors: map[string]decimal.Decimal{
			"INR": decimal.NewFromInt(100),
			"USD": decimal.NewFromInt(83),
			"EUR": decimal.NewFromInt(90),
			"GBP": decimal.NewFromInt(105),
		},
	}
}

func (s *Static) Version() string { return s.version }

// Supported reports whether the currency is on the allow-list.
func (s *Static) Supported(currency string) bool {
	_, ok := s.factors[currency]
	return ok
}

func (s *Static) Convert(amount decimal.Decimal, currency string) (int64, error) {
	factor, ok := s.factors[currency]
	if !ok {
		return 0, fmt.Errorf("unsupported currency %q: %w", currency, domain.ErrBadRequest)
	}
	minor := amount.Mul(factor).Round(0)
	if !minor.IsPositive() {
		return 0, fmt.Errorf("amount converts to nothing: %w", domain.ErrBadRequest)
	}
	return minor.IntPart(), nil
}
