package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-payments-api/internal/domain"
	"github.com/go-payments-api/internal/pkg/id"
)

// GrantStore is the ledger persistence. PutNew must refuse a second grant for
// the same order.
type GrantStore interface {
	PutNew(ctx context.Context, g *domain.CreditGrant) error
	ListBySubject(ctx context.Context, subjectID string) ([]domain.CreditGrant, error)
}

type Service interface {
	Grant(ctx context.Context, o *domain.Order) (*domain.CreditGrant, error)
	ListBySubject(ctx context.Context, subjectID string) ([]domain.CreditGrant, error)
}

type service struct {
	grants GrantStore
}

func NewService(grants GrantStore) Service {
	return &service{grants: grants}
}

// Grant credits the purchased package exactly once per order. A repeated call
// surfaces ErrConflict from the store and credits nothing.
func (s *service) Grant(ctx context.Context, o *domain.Order) (*domain.CreditGrant, error) {
	pkg, ok := domain.PackageByID(o.PackageID)
	if !ok {
		return nil, fmt.Errorf("order %s references unknown package %q: %w", o.OrderID, o.PackageID, domain.ErrBadRequest)
	}
	g := &domain.CreditGrant{
		OrderID:   o.OrderID,
		GrantID:   id.New(),
		SubjectID: o.SubjectID,
		PackageID: pkg.ID,
		Credits:   pkg.Credits,
		GrantedAt: time.Now().UTC(),
	}
	if err := s.grants.PutNew(ctx, g); err != nil {
		return nil, err
	}
	slog.Info("credits granted", "order_id", o.OrderID, "package_id", pkg.ID, "credits", pkg.Credits)
	return g, nil
}

func (s *service) ListBySubject(ctx context.Context, subjectID string) ([]domain.CreditGrant, error) {
	return s.grants.ListBySubject(ctx, subjectID)
}
