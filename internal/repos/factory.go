package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type FactoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, factories []*types.Factory) ([]*types.Factory, error)
	GetByID(ctx context.Context, tx *gorm.DB, factoryID uuid.UUID) (*types.Factory, error)
}

type factoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFactoryRepo(db *gorm.DB, baseLog *logger.Logger) FactoryRepo {
	repoLog := baseLog.With("repo", "FactoryRepo")
	return &factoryRepo{db: db, log: repoLog}
}

func (fr *factoryRepo) Create(ctx context.Context, tx *gorm.DB, factories []*types.Factory) ([]*types.Factory, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(factories) == 0 {
		return []*types.Factory{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&factories).Error; err != nil {
		return nil, err
	}
	return factories, nil
}

func (fr *factoryRepo) GetByID(ctx context.Context, tx *gorm.DB, factoryID uuid.UUID) (*types.Factory, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var result types.Factory
	if err := transaction.WithContext(ctx).
		Where("id = ?", factoryID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
