package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type DeliveryMethodRepo interface {
	Create(ctx context.Context, tx *gorm.DB, method *types.DeliveryMethod) (*types.DeliveryMethod, error)
	ListActiveByFactory(ctx context.Context, tx *gorm.DB, factoryID uuid.UUID) ([]*types.DeliveryMethod, error)
	GetByID(ctx context.Context, tx *gorm.DB, methodID uuid.UUID) (*types.DeliveryMethod, error)
}

type deliveryMethodRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeliveryMethodRepo(db *gorm.DB, baseLog *logger.Logger) DeliveryMethodRepo {
	repoLog := baseLog.With("repo", "DeliveryMethodRepo")
	return &deliveryMethodRepo{db: db, log: repoLog}
}

// Create assigns the next free priority (max existing + 1) when none is set,
// so newly added methods rank after everything already configured.
func (dr *deliveryMethodRepo) Create(ctx context.Context, tx *gorm.DB, method *types.DeliveryMethod) (*types.DeliveryMethod, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	if method.Priority == 0 {
		var max int
		row := transaction.WithContext(ctx).
			Model(&types.DeliveryMethod{}).
			Select("COALESCE(MAX(priority), 0)").
			Row()
		if err := row.Scan(&max); err != nil {
			return nil, err
		}
		method.Priority = max + 1
	}

	if err := transaction.WithContext(ctx).Create(method).Error; err != nil {
		return nil, err
	}
	return method, nil
}

func (dr *deliveryMethodRepo) ListActiveByFactory(ctx context.Context, tx *gorm.DB, factoryID uuid.UUID) ([]*types.DeliveryMethod, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var results []*types.DeliveryMethod
	if err := transaction.WithContext(ctx).
		Where("factory_id = ? AND is_active = ?", factoryID, true).
		Order("priority ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (dr *deliveryMethodRepo) GetByID(ctx context.Context, tx *gorm.DB, methodID uuid.UUID) (*types.DeliveryMethod, error) {
	transaction := tx
	if transaction == nil {
		transaction = dr.db
	}

	var result types.DeliveryMethod
	if err := transaction.WithContext(ctx).
		Where("id = ?", methodID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
