package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type FlashingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, flashing *types.StoredFlashing) (*types.StoredFlashing, error)
	GetByID(ctx context.Context, tx *gorm.DB, flashingID uuid.UUID) (*types.StoredFlashing, error)
	ListActiveByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.StoredFlashing, error)
	Save(ctx context.Context, tx *gorm.DB, flashing *types.StoredFlashing) (*types.StoredFlashing, error)
	Archive(ctx context.Context, tx *gorm.DB, flashingIDs []uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, flashingID uuid.UUID) error

	CreateSpecification(ctx context.Context, tx *gorm.DB, spec *types.Specification) (*types.Specification, error)
	GetSpecificationByID(ctx context.Context, tx *gorm.DB, specID uuid.UUID) (*types.Specification, error)
	SaveSpecification(ctx context.Context, tx *gorm.DB, spec *types.Specification) (*types.Specification, error)
	DeleteSpecification(ctx context.Context, tx *gorm.DB, specID uuid.UUID) error
}

type flashingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashingRepo(db *gorm.DB, baseLog *logger.Logger) FlashingRepo {
	repoLog := baseLog.With("repo", "FlashingRepo")
	return &flashingRepo{db: db, log: repoLog}
}

func (fr *flashingRepo) Create(ctx context.Context, tx *gorm.DB, flashing *types.StoredFlashing) (*types.StoredFlashing, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Create(flashing).Error; err != nil {
		return nil, err
	}
	return flashing, nil
}

func (fr *flashingRepo) GetByID(ctx context.Context, tx *gorm.DB, flashingID uuid.UUID) (*types.StoredFlashing, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var result types.StoredFlashing
	if err := transaction.WithContext(ctx).
		Preload("Specifications").
		Preload("MaterialVariant.Group").
		Where("id = ?", flashingID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *flashingRepo) ListActiveByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.StoredFlashing, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var results []*types.StoredFlashing
	if err := transaction.WithContext(ctx).
		Preload("Specifications").
		Preload("MaterialVariant.Group").
		Where("client_id = ? AND archived_at IS NULL", clientID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (fr *flashingRepo) Save(ctx context.Context, tx *gorm.DB, flashing *types.StoredFlashing) (*types.StoredFlashing, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Save(flashing).Error; err != nil {
		return nil, err
	}
	return flashing, nil
}

func (fr *flashingRepo) Archive(ctx context.Context, tx *gorm.DB, flashingIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if len(flashingIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.StoredFlashing{}).
		Where("id IN ?", flashingIDs).
		Update("archived_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (fr *flashingRepo) Delete(ctx context.Context, tx *gorm.DB, flashingID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(ctx).
		Select("Specifications").
		Delete(&types.StoredFlashing{ID: flashingID}).Error
}

func (fr *flashingRepo) CreateSpecification(ctx context.Context, tx *gorm.DB, spec *types.Specification) (*types.Specification, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Create(spec).Error; err != nil {
		return nil, err
	}
	return spec, nil
}

func (fr *flashingRepo) GetSpecificationByID(ctx context.Context, tx *gorm.DB, specID uuid.UUID) (*types.Specification, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	var result types.Specification
	if err := transaction.WithContext(ctx).
		Where("id = ?", specID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (fr *flashingRepo) SaveSpecification(ctx context.Context, tx *gorm.DB, spec *types.Specification) (*types.Specification, error) {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	if err := transaction.WithContext(ctx).Save(spec).Error; err != nil {
		return nil, err
	}
	return spec, nil
}

func (fr *flashingRepo) DeleteSpecification(ctx context.Context, tx *gorm.DB, specID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = fr.db
	}

	return transaction.WithContext(ctx).
		Where("id = ?", specID).
		Delete(&types.Specification{}).Error
}
