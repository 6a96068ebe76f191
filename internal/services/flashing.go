package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/geometry"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/pricing"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

var ErrNotOwner = fmt.Errorf("resource does not belong to client")

// FlashingOptions are the non-geometry fields a client can toggle on a draft.
type FlashingOptions struct {
	MaterialVariantID *uuid.UUID `json:"material_variant_id"`
	StartCrushFold    *bool      `json:"start_crush_fold"`
	EndCrushFold      *bool      `json:"end_crush_fold"`
	ColorSideDir      *bool      `json:"color_side_dir"`
	Tapered           *bool      `json:"tapered"`
}

type FlashingService interface {
	CreateFlashing(ctx context.Context, clientID uuid.UUID) (*types.StoredFlashing, error)
	GetFlashing(ctx context.Context, clientID, flashingID uuid.UUID) (FlashingQuote, error)
	ListFlashings(ctx context.Context, clientID uuid.UUID) ([]FlashingQuote, error)
	UpdateGeometry(ctx context.Context, clientID, flashingID uuid.UUID, nodes []geometry.Node) (FlashingQuote, error)
	UpdateOptions(ctx context.Context, clientID, flashingID uuid.UUID, opts FlashingOptions) (FlashingQuote, error)
	DeleteFlashing(ctx context.Context, clientID, flashingID uuid.UUID) error

	AddSpecification(ctx context.Context, clientID, flashingID uuid.UUID, quantity int, lengthMM float64) (FlashingQuote, error)
	UpdateSpecification(ctx context.Context, clientID, specID uuid.UUID, quantity int, lengthMM float64) (FlashingQuote, error)
	DeleteSpecification(ctx context.Context, clientID, specID uuid.UUID) (FlashingQuote, error)
}

type flashingService struct {
	db           *gorm.DB
	log          *logger.Logger
	flashingRepo repos.FlashingRepo
	cartRepo     repos.CartRepo
}

func NewFlashingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	flashingRepo repos.FlashingRepo,
	cartRepo repos.CartRepo,
) FlashingService {
	serviceLog := baseLog.With("service", "FlashingService")
	return &flashingService{
		db:           db,
		log:          serviceLog,
		flashingRepo: flashingRepo,
		cartRepo:     cartRepo,
	}
}

func (fs *flashingService) CreateFlashing(ctx context.Context, clientID uuid.UUID) (*types.StoredFlashing, error) {
	fs.log.Info("CreateFlashing", "client_id", clientID)
	flashing := &types.StoredFlashing{ClientID: clientID}
	if _, err := fs.flashingRepo.Create(ctx, nil, flashing); err != nil {
		fs.log.Error("CreateFlashing failed", "error", err)
		return nil, fmt.Errorf("create flashing: %w", err)
	}
	return flashing, nil
}

func (fs *flashingService) GetFlashing(ctx context.Context, clientID, flashingID uuid.UUID) (FlashingQuote, error) {
	flashing, err := fs.getOwned(ctx, nil, clientID, flashingID)
	if err != nil {
		return FlashingQuote{}, err
	}
	return QuoteFlashing(flashing), nil
}

func (fs *flashingService) ListFlashings(ctx context.Context, clientID uuid.UUID) ([]FlashingQuote, error) {
	flashings, err := fs.flashingRepo.ListActiveByClient(ctx, nil, clientID)
	if err != nil {
		return nil, fmt.Errorf("list flashings: %w", err)
	}
	quotes := make([]FlashingQuote, 0, len(flashings))
	for _, f := range flashings {
		quotes = append(quotes, QuoteFlashing(f))
	}
	return quotes, nil
}

// UpdateGeometry validates and stores a new node chain. The cached girth is
// recomputed only when the stored bytes actually change.
func (fs *flashingService) UpdateGeometry(ctx context.Context, clientID, flashingID uuid.UUID, nodes []geometry.Node) (FlashingQuote, error) {
	chain, err := geometry.Validate(nodes)
	if err != nil {
		return FlashingQuote{}, err
	}

	var quote FlashingQuote
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flashing, err := fs.getOwned(ctx, tx, clientID, flashingID)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(nodes)
		if err != nil {
			return fmt.Errorf("encode nodes: %w", err)
		}
		if !bytes.Equal([]byte(flashing.Nodes), encoded) {
			flashing.Nodes = datatypes.JSON(encoded)
			flashing.TotalGirth = chain.Girth()
			if _, err := fs.flashingRepo.Save(ctx, tx, flashing); err != nil {
				return fmt.Errorf("save flashing: %w", err)
			}
		}

		quote = QuoteFlashing(flashing)
		return fs.syncCart(ctx, tx, clientID, flashing, quote)
	})
	if err != nil {
		fs.log.Error("UpdateGeometry failed", "flashing_id", flashingID, "error", err)
		return FlashingQuote{}, err
	}
	return quote, nil
}

func (fs *flashingService) UpdateOptions(ctx context.Context, clientID, flashingID uuid.UUID, opts FlashingOptions) (FlashingQuote, error) {
	var quote FlashingQuote
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flashing, err := fs.getOwned(ctx, tx, clientID, flashingID)
		if err != nil {
			return err
		}

		if opts.MaterialVariantID != nil {
			flashing.MaterialVariantID = opts.MaterialVariantID
		}
		if opts.StartCrushFold != nil {
			flashing.StartCrushFold = *opts.StartCrushFold
		}
		if opts.EndCrushFold != nil {
			flashing.EndCrushFold = *opts.EndCrushFold
		}
		if opts.ColorSideDir != nil {
			flashing.ColorSideDir = *opts.ColorSideDir
		}
		if opts.Tapered != nil {
			flashing.Tapered = *opts.Tapered
		}
		if _, err := fs.flashingRepo.Save(ctx, tx, flashing); err != nil {
			return fmt.Errorf("save flashing: %w", err)
		}

		// Reload so a changed variant carries its group coefficients.
		flashing, err = fs.getOwned(ctx, tx, clientID, flashingID)
		if err != nil {
			return err
		}
		quote = QuoteFlashing(flashing)
		return fs.syncCart(ctx, tx, clientID, flashing, quote)
	})
	if err != nil {
		fs.log.Error("UpdateOptions failed", "flashing_id", flashingID, "error", err)
		return FlashingQuote{}, err
	}
	return quote, nil
}

func (fs *flashingService) DeleteFlashing(ctx context.Context, clientID, flashingID uuid.UUID) error {
	return fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flashing, err := fs.getOwned(ctx, tx, clientID, flashingID)
		if err != nil {
			return err
		}
		cart, err := fs.cartRepo.GetByClient(ctx, tx, clientID)
		if err == nil {
			if err := fs.cartRepo.RemoveFlashing(ctx, tx, cart, flashing.ID); err != nil {
				return fmt.Errorf("remove from cart: %w", err)
			}
		}
		return fs.flashingRepo.Delete(ctx, tx, flashing.ID)
	})
}

func (fs *flashingService) AddSpecification(ctx context.Context, clientID, flashingID uuid.UUID, quantity int, lengthMM float64) (FlashingQuote, error) {
	var quote FlashingQuote
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flashing, err := fs.getOwned(ctx, tx, clientID, flashingID)
		if err != nil {
			return err
		}
		spec := &types.Specification{
			FlashingID: flashing.ID,
			Quantity:   quantity,
			LengthMM:   lengthMM,
		}
		if _, err := fs.flashingRepo.CreateSpecification(ctx, tx, spec); err != nil {
			return fmt.Errorf("create specification: %w", err)
		}
		flashing, err = fs.getOwned(ctx, tx, clientID, flashingID)
		if err != nil {
			return err
		}
		quote = QuoteFlashing(flashing)
		return fs.syncCart(ctx, tx, clientID, flashing, quote)
	})
	if err != nil {
		return FlashingQuote{}, err
	}
	return quote, nil
}

func (fs *flashingService) UpdateSpecification(ctx context.Context, clientID, specID uuid.UUID, quantity int, lengthMM float64) (FlashingQuote, error) {
	var quote FlashingQuote
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spec, err := fs.flashingRepo.GetSpecificationByID(ctx, tx, specID)
		if err != nil {
			return err
		}
		flashing, err := fs.getOwned(ctx, tx, clientID, spec.FlashingID)
		if err != nil {
			return err
		}
		spec.Quantity = quantity
		spec.LengthMM = lengthMM
		if _, err := fs.flashingRepo.SaveSpecification(ctx, tx, spec); err != nil {
			return fmt.Errorf("save specification: %w", err)
		}
		flashing, err = fs.getOwned(ctx, tx, clientID, flashing.ID)
		if err != nil {
			return err
		}
		quote = QuoteFlashing(flashing)
		return fs.syncCart(ctx, tx, clientID, flashing, quote)
	})
	if err != nil {
		return FlashingQuote{}, err
	}
	return quote, nil
}

func (fs *flashingService) DeleteSpecification(ctx context.Context, clientID, specID uuid.UUID) (FlashingQuote, error) {
	var quote FlashingQuote
	err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		spec, err := fs.flashingRepo.GetSpecificationByID(ctx, tx, specID)
		if err != nil {
			return err
		}
		flashing, err := fs.getOwned(ctx, tx, clientID, spec.FlashingID)
		if err != nil {
			return err
		}
		if err := fs.flashingRepo.DeleteSpecification(ctx, tx, spec.ID); err != nil {
			return fmt.Errorf("delete specification: %w", err)
		}
		flashing, err = fs.getOwned(ctx, tx, clientID, flashing.ID)
		if err != nil {
			return err
		}
		quote = QuoteFlashing(flashing)
		return fs.syncCart(ctx, tx, clientID, flashing, quote)
	})
	if err != nil {
		return FlashingQuote{}, err
	}
	return quote, nil
}

func (fs *flashingService) getOwned(ctx context.Context, tx *gorm.DB, clientID, flashingID uuid.UUID) (*types.StoredFlashing, error) {
	flashing, err := fs.flashingRepo.GetByID(ctx, tx, flashingID)
	if err != nil {
		return nil, err
	}
	if flashing.ClientID != clientID {
		return nil, ErrNotOwner
	}
	return flashing, nil
}

// syncCart keeps the cart invariant: a flashing sits in its owner's cart
// exactly while it is fully priced. Completeness changes in either direction
// move it in or out automatically.
func (fs *flashingService) syncCart(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, flashing *types.StoredFlashing, quote FlashingQuote) error {
	if flashing.ArchivedAt != nil {
		return nil
	}

	cart, err := fs.cartRepo.GetOrCreateByClient(ctx, tx, clientID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	inCart, err := fs.cartRepo.HasFlashing(ctx, tx, cart.ID, flashing.ID)
	if err != nil {
		return fmt.Errorf("check cart membership: %w", err)
	}

	priced := quote.Cost.Status == pricing.StatusPriced
	switch {
	case priced && !inCart:
		fs.log.Info("Flashing complete, adding to cart", "flashing_id", flashing.ID)
		return fs.cartRepo.AddFlashing(ctx, tx, cart, flashing)
	case !priced && inCart:
		fs.log.Info("Flashing no longer complete, removing from cart", "flashing_id", flashing.ID)
		return fs.cartRepo.RemoveFlashing(ctx, tx, cart, flashing.ID)
	}
	return nil
}
