package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type OrderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, order *types.Order) (*types.Order, error)
	CodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error)
	GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Order, error)
	ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, code string, status string) error

	GetPaymentBySession(ctx context.Context, tx *gorm.DB, sessionID string) (*types.PaymentSnapshot, error)

	CreatePayment(ctx context.Context, tx *gorm.DB, snap *types.PaymentSnapshot) error
	CreateJobReferenceSnapshot(ctx context.Context, tx *gorm.DB, snap *types.JobReferenceSnapshot) error
	CreateFlashingSnapshot(ctx context.Context, tx *gorm.DB, snap *types.StoredFlashingSnapshot) error
	CreateMaterialSnapshot(ctx context.Context, tx *gorm.DB, snap *types.MaterialSnapshot) error
	CreateSpecificationSnapshot(ctx context.Context, tx *gorm.DB, snap *types.SpecificationSnapshot) error
	CreateDeliveryInfo(ctx context.Context, tx *gorm.DB, snap *types.DeliveryInfoSnapshot) error
	CreatePickupInfo(ctx context.Context, tx *gorm.DB, snap *types.PickupInfoSnapshot) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	repoLog := baseLog.With("repo", "OrderRepo")
	return &orderRepo{db: db, log: repoLog}
}

func (or *orderRepo) Create(ctx context.Context, tx *gorm.DB, order *types.Order) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	if err := transaction.WithContext(ctx).
		Omit("Payment", "JobReference", "Delivery", "Pickup", "Flashings").
		Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (or *orderRepo) CodeExists(ctx context.Context, tx *gorm.DB, code string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Order{}).
		Where("code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (or *orderRepo) GetByCode(ctx context.Context, tx *gorm.DB, code string) (*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var result types.Order
	if err := transaction.WithContext(ctx).
		Preload("Payment").
		Preload("JobReference").
		Preload("Delivery").
		Preload("Pickup").
		Preload("Flashings.Material").
		Preload("Flashings.Specifications").
		Where("code = ?", code).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *orderRepo) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.Order, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var results []*types.Order
	if err := transaction.WithContext(ctx).
		Preload("Payment").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *orderRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, code string, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Order{}).
		Where("code = ?", code).
		Update("status", status).Error
}

func (or *orderRepo) GetPaymentBySession(ctx context.Context, tx *gorm.DB, sessionID string) (*types.PaymentSnapshot, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}

	var result types.PaymentSnapshot
	if err := transaction.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *orderRepo) CreatePayment(ctx context.Context, tx *gorm.DB, snap *types.PaymentSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Create(snap).Error
}

func (or *orderRepo) CreateJobReferenceSnapshot(ctx context.Context, tx *gorm.DB, snap *types.JobReferenceSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Create(snap).Error
}

func (or *orderRepo) CreateFlashingSnapshot(ctx context.Context, tx *gorm.DB, snap *types.StoredFlashingSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).
		Omit("Material", "Specifications").
		Create(snap).Error
}

func (or *orderRepo) CreateMaterialSnapshot(ctx context.Context, tx *gorm.DB, snap *types.MaterialSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Create(snap).Error
}

func (or *orderRepo) CreateSpecificationSnapshot(ctx context.Context, tx *gorm.DB, snap *types.SpecificationSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Create(snap).Error
}

func (or *orderRepo) CreateDeliveryInfo(ctx context.Context, tx *gorm.DB, snap *types.DeliveryInfoSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Create(snap).Error
}

func (or *orderRepo) CreatePickupInfo(ctx context.Context, tx *gorm.DB, snap *types.PickupInfoSnapshot) error {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	return transaction.WithContext(ctx).Create(snap).Error
}
