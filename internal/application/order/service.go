package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-payments-api/internal/domain"
	"github.com/go-payments-api/internal/pkg/id"
	"github.com/go-payments-api/internal/pkg/rates"
	"github.com/go-payments-api/internal/pkg/validate"
	"github.com/shopspring/decimal"
)

// CreateRequest is the order-creation input. Amount is in source-currency
// major units; the conversion policy turns it into settlement minor units.
type CreateRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency" validate:"required,len=3,uppercase"`
	PackageID      string          `json:"packageId" validate:"required"`
	IdempotencyKey string          `json:"idempotencyKey"`
	SubjectID      string          `json:"-"` // set from the verified identity, never from the body
}

// Gateway is the external payment provider as seen by order creation.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)
	KeyID() string
}

// OrderStore is the minimal order persistence this service needs.
type OrderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Order, error)
}

type service struct {
	orders  OrderStore
	gateway Gateway
	rates   rates.Source
	timeout time.Duration
}

func NewService(orders OrderStore, gateway Gateway, src rates.Source, gatewayTimeout time.Duration) Service {
	return &service{orders: orders, gateway: gateway, rates: src, timeout: gatewayTimeout}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*domain.Order, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive: %w", domain.ErrBadRequest)
	}
	if _, ok := domain.PackageByID(req.PackageID); !ok {
		return nil, fmt.Errorf("unknown package %q: %w", req.PackageID, domain.ErrBadRequest)
	}
	minor, err := s.rates.Convert(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	// A repeated idempotency key returns the order it already minted.
	// Without a key every call creates a fresh order, matching arguments or not.
	if req.IdempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			slog.Info("order reused via idempotency key", "order_id", existing.OrderID)
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	receipt := id.New()
	notes := map[string]string{"package_id": req.PackageID, "receipt": receipt}
	if req.SubjectID != "" {
		notes["subject_id"] = req.SubjectID
	}

	gctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	providerOrderID, err := s.gateway.CreateOrder(gctx, minor, domain.SettlementCurrency, receipt, notes)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	o := &domain.Order{
		OrderID:        providerOrderID,
		Amount:         minor,
		Currency:       domain.SettlementCurrency,
		PackageID:      req.PackageID,
		GatewayKeyID:   s.gateway.KeyID(),
		Receipt:        receipt,
		SubjectID:      req.SubjectID,
		IdempotencyKey: req.IdempotencyKey,
		Status:         domain.OrderCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orders.Put(ctx, o); err != nil {
		return nil, err
	}
	slog.Info("order created", "order_id", o.OrderID, "amount", o.Amount, "package_id", o.PackageID, "rate_version", s.rates.Version())
	return o, nil
}
