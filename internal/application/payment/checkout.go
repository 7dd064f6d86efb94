package payment

import (
	"fmt"

	"github.com/go-payments-api/internal/domain"
)

// PaymentMethod selects the instrument subset the checkout surface presents.
type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodWallet     PaymentMethod = "wallet"
	MethodNetBanking PaymentMethod = "netbanking"
	MethodAll        PaymentMethod = "all"
)

// CheckoutDescriptor is what the client checkout surface needs to open the
// provider's payment UI for an existing order.
type CheckoutDescriptor struct {
	KeyID    string          `json:"keyId"`
	OrderID  string          `json:"orderId"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Methods  map[string]bool `json:"method"`
}

// BuildCheckoutDescriptor is a pure mapping from an order and a method filter
// to a checkout descriptor. No network, no state; the only failure is an
// unrecognized method.
func BuildCheckoutDescriptor(o *domain.Order, method PaymentMethod) (*CheckoutDescriptor, error) {
	methods := map[string]bool{
		"card":       false,
		"upi":        false,
		"wallet":     false,
		"netbanking": false,
	}
	switch method {
	case MethodAll, "":
		for k := range methods {
			methods[k] = true
		}
	case MethodCard, MethodUPI, MethodWallet, MethodNetBanking:
		methods[string(method)] = true
	default:
		return nil, fmt.Errorf("unrecognized payment method %q: %w", method, domain.ErrBadRequest)
	}
	return &CheckoutDescriptor{
		KeyID:    o.GatewayKeyID,
		OrderID:  o.OrderID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Methods:  methods,
	}, nil
}
