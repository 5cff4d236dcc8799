package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfreshconnect/farmfresh-backend/pkg/errors"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
)

// Service exposes order retrieval and fulfillment progression.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error)
	ListForFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Order, error)
	AdvanceStatus(ctx context.Context, farmerID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	return order, nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByBuyer(ctx, buyerID)
}

func (s *service) ListForFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByFarmer(ctx, farmerID)
}

// AdvanceStatus moves an order forward in its fulfillment lifecycle. Status
// never moves backwards and only the order's farmer may change it.
func (s *service) AdvanceStatus(ctx context.Context, farmerID, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if order.FarmerID != farmerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another farmer")
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next

	logCtx := s.logg.WithFarmerID(ctx, farmerID.String())
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"order_id": orderID.String(),
		"status":   string(next),
	})
	s.logg.Info(logCtx, "order status advanced")
	return order, nil
}
