package razorpay

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-payments-api/internal/config"
	"github.com/go-payments-api/internal/domain"
	razorpay "github.com/razorpay/razorpay-go"
)

// Client wraps the Razorpay SDK for order registration. The SDK call carries
// the configured request timeout; a rejection or timeout surfaces as
// domain.ErrGatewayUnavailable so callers never retry blindly.
type Client struct {
	sdk   *razorpay.Client
	keyID string
}

// NewClient builds the gateway client from config.
func NewClient(cfg *config.Config) *Client {
	sdk := razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	sdk.SetTimeout(timeoutSeconds(cfg.GatewayTimeout))
	return &Client{sdk: sdk, keyID: cfg.RazorpayKeyID}
}

// timeoutSeconds converts the configured timeout to the SDK's int16 seconds,
// clamped to [1, math.MaxInt16] so a misconfigured value can't wrap negative
// or disable the timeout.
func timeoutSeconds(d time.Duration) int16 {
	secs := int64(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	if secs > math.MaxInt16 {
		secs = math.MaxInt16
	}
	return int16(secs)
}

// KeyID returns the public key identifier the checkout UI needs.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder registers an order with the gateway and returns the
// provider-issued order id. Amount is in settlement minor units.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		noteData := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			noteData[k] = v
		}
		data["notes"] = noteData
	}

	type result struct {
		id  string
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := c.sdk.Order.Create(data, nil)
		if err != nil {
			ch <- result{err: err}
			return
		}
		orderID, _ := out["id"].(string)
		if orderID == "" {
			ch <- result{err: fmt.Errorf("gateway returned no order id")}
			return
		}
		ch <- result{id: orderID}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("gateway order creation timed out: %w", domain.ErrGatewayUnavailable)
	case res := <-ch:
		if res.err != nil {
			slog.Warn("gateway order creation failed", "err", res.err)
			return "", fmt.Errorf("gateway order creation: %w", domain.ErrGatewayUnavailable)
		}
		return res.id, nil
	}
}
