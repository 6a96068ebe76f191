package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/types"
)

type CartRepo interface {
	GetOrCreateByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Cart, error)
	GetByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Cart, error)
	GetByStripeSession(ctx context.Context, tx *gorm.DB, sessionID string) (*types.Cart, error)
	Save(ctx context.Context, tx *gorm.DB, cart *types.Cart) (*types.Cart, error)

	AddFlashing(ctx context.Context, tx *gorm.DB, cart *types.Cart, flashing *types.StoredFlashing) error
	RemoveFlashing(ctx context.Context, tx *gorm.DB, cart *types.Cart, flashingID uuid.UUID) error
	HasFlashing(ctx context.Context, tx *gorm.DB, cartID, flashingID uuid.UUID) (bool, error)

	// Clear removes every flashing association and resets fulfillment state,
	// leaving the cart row itself in place.
	Clear(ctx context.Context, tx *gorm.DB, cart *types.Cart) error
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	repoLog := baseLog.With("repo", "CartRepo")
	return &cartRepo{db: db, log: repoLog}
}

func (cr *cartRepo) GetOrCreateByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Cart, error) {
	cart, err := cr.GetByClient(ctx, tx, clientID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	cart = &types.Cart{ClientID: clientID}
	if err := transaction.WithContext(ctx).Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (cr *cartRepo) GetByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) (*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Cart
	if err := transaction.WithContext(ctx).
		Preload("Flashings.Specifications").
		Preload("Flashings.MaterialVariant.Group").
		Preload("Address").
		Preload("PickupJobReference").
		Where("client_id = ?", clientID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *cartRepo) GetByStripeSession(ctx context.Context, tx *gorm.DB, sessionID string) (*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var result types.Cart
	if err := transaction.WithContext(ctx).
		Preload("Flashings.Specifications").
		Preload("Flashings.MaterialVariant.Group").
		Preload("Address").
		Preload("PickupJobReference").
		Where("stripe_session_id = ?", sessionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (cr *cartRepo) Save(ctx context.Context, tx *gorm.DB, cart *types.Cart) (*types.Cart, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).Omit("Flashings").Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

func (cr *cartRepo) AddFlashing(ctx context.Context, tx *gorm.DB, cart *types.Cart, flashing *types.StoredFlashing) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Model(cart).
		Association("Flashings").
		Append(flashing)
}

func (cr *cartRepo) RemoveFlashing(ctx context.Context, tx *gorm.DB, cart *types.Cart, flashingID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	return transaction.WithContext(ctx).
		Model(cart).
		Association("Flashings").
		Delete(&types.StoredFlashing{ID: flashingID})
}

func (cr *cartRepo) HasFlashing(ctx context.Context, tx *gorm.DB, cartID, flashingID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Table("cart_flashing").
		Where("cart_id = ? AND stored_flashing_id = ?", cartID, flashingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cr *cartRepo) Clear(ctx context.Context, tx *gorm.DB, cart *types.Cart) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}

	if err := transaction.WithContext(ctx).
		Model(cart).
		Association("Flashings").
		Clear(); err != nil {
		return err
	}

	cart.AddressID = nil
	cart.PickupJobReferenceID = nil
	cart.DeliveryDate = nil
	cart.StripeSessionID = nil

	return transaction.WithContext(ctx).
		Model(&types.Cart{}).
		Where("id = ?", cart.ID).
		Updates(map[string]interface{}{
			"address_id":              nil,
			"pickup_job_reference_id": nil,
			"delivery_date":           nil,
			"stripe_session_id":       nil,
		}).Error
}
