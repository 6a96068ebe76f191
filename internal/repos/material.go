package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, materials []*types.Material) ([]*types.Material, error)
	ListByFactory(ctx context.Context, tx *gorm.DB, factoryID uuid.UUID) ([]*types.Material, error)
	GetVariantByID(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) (*types.MaterialVariant, error)
	GetVariantMaterial(ctx context.Context, tx *gorm.DB, variant *types.MaterialVariant) (*types.Material, error)
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	repoLog := baseLog.With("repo", "MaterialRepo")
	return &materialRepo{db: db, log: repoLog}
}

func (mr *materialRepo) Create(ctx context.Context, tx *gorm.DB, materials []*types.Material) ([]*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(materials) == 0 {
		return []*types.Material{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (mr *materialRepo) ListByFactory(ctx context.Context, tx *gorm.DB, factoryID uuid.UUID) ([]*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.Material
	if err := transaction.WithContext(ctx).
		Preload("Groups.Variants").
		Where("factory_id = ?", factoryID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *materialRepo) GetVariantByID(ctx context.Context, tx *gorm.DB, variantID uuid.UUID) (*types.MaterialVariant, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.MaterialVariant
	if err := transaction.WithContext(ctx).
		Preload("Group").
		Where("id = ?", variantID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (mr *materialRepo) GetVariantMaterial(ctx context.Context, tx *gorm.DB, variant *types.MaterialVariant) (*types.Material, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	group := variant.Group
	if group == nil {
		var g types.MaterialGroup
		if err := transaction.WithContext(ctx).
			Where("id = ?", variant.GroupID).
			First(&g).Error; err != nil {
			return nil, err
		}
		group = &g
	}

	var result types.Material
	if err := transaction.WithContext(ctx).
		Where("id = ?", group.MaterialID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
