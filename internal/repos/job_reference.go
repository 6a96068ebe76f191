package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type JobReferenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, ref *types.JobReference) (*types.JobReference, error)
	GetByID(ctx context.Context, tx *gorm.DB, refID uuid.UUID) (*types.JobReference, error)
	ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.JobReference, error)
	Delete(ctx context.Context, tx *gorm.DB, refID uuid.UUID) error

	CreateAddress(ctx context.Context, tx *gorm.DB, addr *types.Address) (*types.Address, error)
	GetAddressByID(ctx context.Context, tx *gorm.DB, addressID uuid.UUID) (*types.Address, error)
	UpdateAddressDistance(ctx context.Context, tx *gorm.DB, addressID uuid.UUID, distanceKM int) error

	GetDraftByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.JobReferenceDraft, error)
	SaveDraft(ctx context.Context, tx *gorm.DB, draft *types.JobReferenceDraft) (*types.JobReferenceDraft, error)
	DeleteDraft(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error
}

type jobReferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobReferenceRepo(db *gorm.DB, baseLog *logger.Logger) JobReferenceRepo {
	repoLog := baseLog.With("repo", "JobReferenceRepo")
	return &jobReferenceRepo{db: db, log: repoLog}
}

func (jr *jobReferenceRepo) Create(ctx context.Context, tx *gorm.DB, ref *types.JobReference) (*types.JobReference, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	if err := transaction.WithContext(ctx).Create(ref).Error; err != nil {
		return nil, err
	}
	return ref, nil
}

func (jr *jobReferenceRepo) GetByID(ctx context.Context, tx *gorm.DB, refID uuid.UUID) (*types.JobReference, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	var result types.JobReference
	if err := transaction.WithContext(ctx).
		Preload("Addresses").
		Where("id = ?", refID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (jr *jobReferenceRepo) ListByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) ([]*types.JobReference, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	var results []*types.JobReference
	if err := transaction.WithContext(ctx).
		Preload("Addresses").
		Where("client_id = ?", clientID).
		Order("code ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (jr *jobReferenceRepo) Delete(ctx context.Context, tx *gorm.DB, refID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	return transaction.WithContext(ctx).
		Select("Addresses").
		Delete(&types.JobReference{ID: refID}).Error
}

func (jr *jobReferenceRepo) CreateAddress(ctx context.Context, tx *gorm.DB, addr *types.Address) (*types.Address, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	if err := transaction.WithContext(ctx).Create(addr).Error; err != nil {
		return nil, err
	}
	return addr, nil
}

func (jr *jobReferenceRepo) GetAddressByID(ctx context.Context, tx *gorm.DB, addressID uuid.UUID) (*types.Address, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	var result types.Address
	if err := transaction.WithContext(ctx).
		Where("id = ?", addressID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (jr *jobReferenceRepo) UpdateAddressDistance(ctx context.Context, tx *gorm.DB, addressID uuid.UUID, distanceKM int) error {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Address{}).
		Where("id = ?", addressID).
		Update("distance_to_factory_km", distanceKM).Error
}

func (jr *jobReferenceRepo) GetDraftByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.JobReferenceDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	var result types.JobReferenceDraft
	if err := transaction.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (jr *jobReferenceRepo) SaveDraft(ctx context.Context, tx *gorm.DB, draft *types.JobReferenceDraft) (*types.JobReferenceDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	if err := transaction.WithContext(ctx).Save(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

func (jr *jobReferenceRepo) DeleteDraft(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = jr.db
	}

	return transaction.WithContext(ctx).
		Where("client_id = ?", clientID).
		Delete(&types.JobReferenceDraft{}).Error
}
