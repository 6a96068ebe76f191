package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

var ErrBadStatus = fmt.Errorf("unknown order status")

type OrderService interface {
	GetOrder(ctx context.Context, clientID uuid.UUID, code string) (*types.Order, error)
	ListOrders(ctx context.Context, clientID uuid.UUID) ([]*types.Order, error)
	UpdateStatus(ctx context.Context, code string, status string) (*types.Order, error)
}

type orderService struct {
	db        *gorm.DB
	log       *logger.Logger
	orderRepo repos.OrderRepo
}

func NewOrderService(db *gorm.DB, baseLog *logger.Logger, orderRepo repos.OrderRepo) OrderService {
	serviceLog := baseLog.With("service", "OrderService")
	return &orderService{db: db, log: serviceLog, orderRepo: orderRepo}
}

func (os *orderService) GetOrder(ctx context.Context, clientID uuid.UUID, code string) (*types.Order, error) {
	order, err := os.orderRepo.GetByCode(ctx, nil, code)
	if err != nil {
		return nil, err
	}
	if order.ClientID != clientID {
		return nil, ErrNotOwner
	}
	return order, nil
}

func (os *orderService) ListOrders(ctx context.Context, clientID uuid.UUID) ([]*types.Order, error) {
	return os.orderRepo.ListByClient(ctx, nil, clientID)
}

// UpdateStatus moves an order along pending -> in_progress -> delivered, or to
// cancelled. Snapshot rows stay frozen; only the order head changes.
func (os *orderService) UpdateStatus(ctx context.Context, code string, status string) (*types.Order, error) {
	switch status {
	case types.OrderStatusPending, types.OrderStatusInProgress, types.OrderStatusDelivered, types.OrderStatusCancelled:
	default:
		return nil, ErrBadStatus
	}
	if err := os.orderRepo.UpdateStatus(ctx, nil, code, status); err != nil {
		return nil, err
	}
	os.log.Info("Order status updated", "order_code", code, "status", status)
	return os.orderRepo.GetByCode(ctx, nil, code)
}
