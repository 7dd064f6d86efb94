package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-payments-api/internal/domain"
	"github.com/go-payments-api/internal/pkg/id"
	"github.com/go-payments-api/internal/pkg/validate"
)

// VerifyRequest is the completed-payment callback input.
type VerifyRequest struct {
	OrderID          string `json:"orderId" validate:"required"`
	PaymentReference string `json:"paymentReference" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// OrderStore is the order persistence verification needs: a read plus the
// atomic status compare-and-set.
type OrderStore interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
}

// VerificationStore persists the per-attempt audit records.
type VerificationStore interface {
	Put(ctx context.Context, v *domain.VerificationRecord) error
	GetLatest(ctx context.Context, orderID string) (*domain.VerificationRecord, error)
}

// Ledger issues the credit grant after a first-time successful verification.
type Ledger interface {
	Grant(ctx context.Context, o *domain.Order) (*domain.CreditGrant, error)
}

// SignatureVerifier recomputes and compares the gateway signature.
type SignatureVerifier interface {
	Verify(orderID, paymentReference, signature string) bool
}

type Service interface {
	Verify(ctx context.Context, req VerifyRequest) (*domain.VerificationRecord, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

type service struct {
	orders  OrderStore
	records VerificationStore
	ledger  Ledger
	signer  SignatureVerifier
}

func NewService(orders OrderStore, records VerificationStore, ledger Ledger, signer SignatureVerifier) Service {
	return &service{orders: orders, records: records, ledger: ledger, signer: signer}
}

// Verify validates a completed-payment callback against the order and the
// gateway secret. The created→verified transition is a compare-and-set on the
// order row: only the winner writes the verified record and credits the
// ledger; every later call for the same order returns the recorded terminal
// outcome without side effects.
func (s *service) Verify(ctx context.Context, req VerifyRequest) (*domain.VerificationRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	o, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Keep forged or stray callbacks auditable even without an order row.
			rec := s.failedRecord(req, domain.FailureOrderNotFound)
			if perr := s.records.Put(ctx, rec); perr != nil {
				slog.Warn("could not persist order-not-found attempt", "order_id", req.OrderID, "err", perr)
			}
			return nil, fmt.Errorf("order %s: %w", req.OrderID, domain.ErrNotFound)
		}
		return nil, err
	}

	if o.Terminal() {
		return s.priorOutcome(ctx, o)
	}

	if !s.signer.Verify(o.OrderID, req.PaymentReference, req.Signature) {
		rec := s.failedRecord(req, domain.FailureSignatureMismatch)
		if err := s.records.Put(ctx, rec); err != nil {
			return nil, err
		}
		if err := s.orders.TransitionStatus(ctx, o.OrderID, domain.OrderCreated, domain.OrderFailed); err != nil && !errors.Is(err, domain.ErrConflict) {
			slog.Warn("could not mark order failed", "order_id", o.OrderID, "err", err)
		}
		slog.Info("verification rejected", "order_id", o.OrderID, "reason", domain.FailureSignatureMismatch)
		return rec, nil
	}

	if err := s.orders.TransitionStatus(ctx, o.OrderID, domain.OrderCreated, domain.OrderVerified); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Lost the race — a concurrent caller owns the terminal state.
			fresh, gerr := s.orders.Get(ctx, o.OrderID)
			if gerr != nil {
				return nil, gerr
			}
			return s.priorOutcome(ctx, fresh)
		}
		return nil, err
	}

	rec := &domain.VerificationRecord{
		OrderID:          req.OrderID,
		RecordID:         id.New(),
		PaymentReference: req.PaymentReference,
		Signature:        req.Signature,
		Outcome:          domain.OutcomeVerified,
		VerifiedAt:       time.Now().UTC(),
	}
	if err := s.records.Put(ctx, rec); err != nil {
		return nil, err
	}
	if _, err := s.ledger.Grant(ctx, o); err != nil && !errors.Is(err, domain.ErrConflict) {
		return nil, err
	}
	slog.Info("payment verified", "order_id", o.OrderID, "payment_reference", req.PaymentReference)
	return rec, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// priorOutcome returns the recorded outcome of a terminal order without
// recomputation, re-crediting, or a new audit row. The order status is
// authoritative: a tampered attempt that lost the verification race writes
// its failed record after the winner's, so the newest record can disagree
// with the terminal state.
func (s *service) priorOutcome(ctx context.Context, o *domain.Order) (*domain.VerificationRecord, error) {
	outcome := domain.OutcomeFailed
	if o.Status == domain.OrderVerified {
		outcome = domain.OutcomeVerified
	}

	rec, err := s.records.GetLatest(ctx, o.OrderID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err == nil && rec.Outcome == outcome {
		return rec, nil
	}
	// No record survives (e.g. an expired order), or the newest record belongs
	// to a losing attempt — report the terminal state itself.
	return &domain.VerificationRecord{OrderID: o.OrderID, Outcome: outcome}, nil
}

func (s *service) failedRecord(req VerifyRequest, reason string) *domain.VerificationRecord {
	return &domain.VerificationRecord{
		OrderID:          req.OrderID,
		RecordID:         id.New(),
		PaymentReference: req.PaymentReference,
		Signature:        req.Signature,
		Outcome:          domain.OutcomeFailed,
		FailureReason:    reason,
		VerifiedAt:       time.Now().UTC(),
	}
}
