package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type ClientRepo interface {
	Create(ctx context.Context, tx *gorm.DB, clients []*types.Client) ([]*types.Client, error)
	GetByID(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Client, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Client, error)
}

type clientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClientRepo(db *gorm.DB, baseLog *logger.Logger) ClientRepo {
	repoLog := baseLog.With("repo", "ClientRepo")
	return &clientRepo{db: db, log: repoLog}
}

func (cr *clientRepo) Create(ctx context.Context, tx *gorm.DB, clients []*types.Client) ([]*types.Client, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if len(clients) == 0 {
		return []*types.Client{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (cr *clientRepo) GetByID(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Client, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Client
	if err := transaction.WithContext(ctx).
		Where("id = ?", clientID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *clientRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.Client, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Client
	if err := transaction.WithContext(ctx).
		Where("email = ?", email).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
