package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/delivery"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/pricing"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

// Minimum fabrication lead time before any delivery or pickup date.
const minLeadDays = 2

var (
	ErrCartIncomplete  = fmt.Errorf("cart is not ready for checkout")
	ErrDateTooEarly    = fmt.Errorf("date is earlier than the earliest feasible date")
	ErrUnknownDistance = fmt.Errorf("address distance not resolved yet")
)

type CartService interface {
	GetCart(ctx context.Context, clientID uuid.UUID) (CartQuote, error)
	SetDeliveryAddress(ctx context.Context, clientID, addressID uuid.UUID) (CartQuote, error)
	SetPickup(ctx context.Context, clientID, jobReferenceID uuid.UUID) (CartQuote, error)
	SetDeliveryDate(ctx context.Context, clientID uuid.UUID, date time.Time) (CartQuote, error)
	RemoveFlashing(ctx context.Context, clientID, flashingID uuid.UUID) (CartQuote, error)

	// EarliestDate is the floor applied to delivery/pickup date selection.
	EarliestDate(ctx context.Context, clientID uuid.UUID) (time.Time, error)

	// Quote prices a loaded cart inside an existing transaction; checkout uses
	// it to freeze totals atomically with snapshot creation.
	Quote(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, cart *types.Cart) (CartQuote, error)
}

type cartService struct {
	db           *gorm.DB
	log          *logger.Logger
	cartRepo     repos.CartRepo
	clientRepo   repos.ClientRepo
	factoryRepo  repos.FactoryRepo
	jobRefRepo   repos.JobReferenceRepo
	methodRepo   repos.DeliveryMethodRepo
	flashingRepo repos.FlashingRepo

	now func() time.Time
}

func NewCartService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cartRepo repos.CartRepo,
	clientRepo repos.ClientRepo,
	factoryRepo repos.FactoryRepo,
	jobRefRepo repos.JobReferenceRepo,
	methodRepo repos.DeliveryMethodRepo,
	flashingRepo repos.FlashingRepo,
) CartService {
	serviceLog := baseLog.With("service", "CartService")
	return &cartService{
		db:           db,
		log:          serviceLog,
		cartRepo:     cartRepo,
		clientRepo:   clientRepo,
		factoryRepo:  factoryRepo,
		jobRefRepo:   jobRefRepo,
		methodRepo:   methodRepo,
		flashingRepo: flashingRepo,
		now:          time.Now,
	}
}

func (cs *cartService) GetCart(ctx context.Context, clientID uuid.UUID) (CartQuote, error) {
	var quote CartQuote
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetOrCreateByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if err := cs.clean(ctx, tx, cart); err != nil {
			return err
		}
		quote, err = cs.Quote(ctx, tx, clientID, cart)
		return err
	})
	if err != nil {
		return CartQuote{}, err
	}
	return quote, nil
}

// SetDeliveryAddress switches the cart to delivery fulfillment; any selected
// pickup and any chosen date are cleared.
func (cs *cartService) SetDeliveryAddress(ctx context.Context, clientID, addressID uuid.UUID) (CartQuote, error) {
	var quote CartQuote
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetOrCreateByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		addr, err := cs.jobRefRepo.GetAddressByID(ctx, tx, addressID)
		if err != nil {
			return err
		}
		ref, err := cs.jobRefRepo.GetByID(ctx, tx, addr.JobReferenceID)
		if err != nil {
			return err
		}
		if ref.ClientID != clientID {
			return ErrNotOwner
		}

		cart.AddressID = &addr.ID
		cart.PickupJobReferenceID = nil
		cart.DeliveryDate = nil
		if _, err := cs.cartRepo.Save(ctx, tx, cart); err != nil {
			return err
		}

		reloaded, err := cs.cartRepo.GetByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		quote, err = cs.Quote(ctx, tx, clientID, reloaded)
		return err
	})
	if err != nil {
		return CartQuote{}, err
	}
	return quote, nil
}

// SetPickup switches the cart to pickup at the factory against a job
// reference; any selected address and any chosen date are cleared.
func (cs *cartService) SetPickup(ctx context.Context, clientID, jobReferenceID uuid.UUID) (CartQuote, error) {
	var quote CartQuote
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetOrCreateByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		ref, err := cs.jobRefRepo.GetByID(ctx, tx, jobReferenceID)
		if err != nil {
			return err
		}
		if ref.ClientID != clientID {
			return ErrNotOwner
		}

		cart.PickupJobReferenceID = &ref.ID
		cart.AddressID = nil
		cart.DeliveryDate = nil
		if _, err := cs.cartRepo.Save(ctx, tx, cart); err != nil {
			return err
		}

		reloaded, err := cs.cartRepo.GetByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		quote, err = cs.Quote(ctx, tx, clientID, reloaded)
		return err
	})
	if err != nil {
		return CartQuote{}, err
	}
	return quote, nil
}

func (cs *cartService) SetDeliveryDate(ctx context.Context, clientID uuid.UUID, date time.Time) (CartQuote, error) {
	var quote CartQuote
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		earliest, err := cs.earliest(ctx, tx, clientID, cart)
		if err != nil {
			return err
		}
		day := date.Truncate(24 * time.Hour)
		if day.Before(earliest) {
			return ErrDateTooEarly
		}

		cart.DeliveryDate = &day
		if _, err := cs.cartRepo.Save(ctx, tx, cart); err != nil {
			return err
		}
		quote, err = cs.Quote(ctx, tx, clientID, cart)
		return err
	})
	if err != nil {
		return CartQuote{}, err
	}
	return quote, nil
}

func (cs *cartService) RemoveFlashing(ctx context.Context, clientID, flashingID uuid.UUID) (CartQuote, error) {
	var quote CartQuote
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cs.cartRepo.GetByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		if err := cs.cartRepo.RemoveFlashing(ctx, tx, cart, flashingID); err != nil {
			return err
		}
		reloaded, err := cs.cartRepo.GetByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		quote, err = cs.Quote(ctx, tx, clientID, reloaded)
		return err
	})
	if err != nil {
		return CartQuote{}, err
	}
	return quote, nil
}

func (cs *cartService) EarliestDate(ctx context.Context, clientID uuid.UUID) (time.Time, error) {
	cart, err := cs.cartRepo.GetByClient(ctx, nil, clientID)
	if err != nil {
		return time.Time{}, err
	}
	return cs.earliest(ctx, nil, clientID, cart)
}

// clean drops archived flashings that linger from past sessions. Membership in
// the join table survives archiving, so carts are swept on read.
func (cs *cartService) clean(ctx context.Context, tx *gorm.DB, cart *types.Cart) error {
	for _, f := range cart.Flashings {
		if f.ArchivedAt != nil {
			if err := cs.cartRepo.RemoveFlashing(ctx, tx, cart, f.ID); err != nil {
				return fmt.Errorf("sweep archived flashing: %w", err)
			}
		}
	}
	kept := cart.Flashings[:0]
	for _, f := range cart.Flashings {
		if f.ArchivedAt == nil {
			kept = append(kept, f)
		}
	}
	cart.Flashings = kept
	return nil
}

// earliest computes the date floor: fabrication lead time, plus transit when
// the cart is set up for delivery.
func (cs *cartService) earliest(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, cart *types.Cart) (time.Time, error) {
	today := cs.now().Truncate(24 * time.Hour)
	floor := today.AddDate(0, 0, minLeadDays)

	if cart.AddressID == nil {
		return floor, nil
	}

	addr, err := cs.jobRefRepo.GetAddressByID(ctx, tx, *cart.AddressID)
	if err != nil {
		return time.Time{}, err
	}
	if addr.DistanceToFactoryKM == nil {
		return time.Time{}, ErrUnknownDistance
	}

	client, err := cs.clientRepo.GetByID(ctx, tx, clientID)
	if err != nil {
		return time.Time{}, err
	}
	methods, err := cs.methodRepo.ListActiveByFactory(ctx, tx, client.FactoryID)
	if err != nil {
		return time.Time{}, err
	}

	weight := 0.0
	for _, f := range cart.Flashings {
		weight += QuoteFlashing(f).WeightKG
	}
	distance := float64(*addr.DistanceToFactoryKM)

	method, err := delivery.Select(methods, distance, weight)
	if err != nil {
		return time.Time{}, err
	}
	days, err := delivery.EstimateDays(method, distance, weight)
	if err != nil {
		return time.Time{}, err
	}

	transit := today.AddDate(0, 0, days)
	if transit.After(floor) {
		return transit, nil
	}
	return floor, nil
}

// Quote builds the full cart view: per-flashing pricing, delivery selection
// and the grand total with GST.
func (cs *cartService) Quote(ctx context.Context, tx *gorm.DB, clientID uuid.UUID, cart *types.Cart) (CartQuote, error) {
	quote := CartQuote{Complete: true}

	subtotal := 0.0
	weight := 0.0
	for _, f := range cart.Flashings {
		fq := QuoteFlashing(f)
		quote.Flashings = append(quote.Flashings, fq)
		if fq.Cost.Status == pricing.StatusPriced {
			subtotal += fq.Cost.Amount
			weight += fq.WeightKG
		} else {
			quote.Complete = false
			quote.Reasons = append(quote.Reasons, fmt.Sprintf("flashing %s: %s", f.ID, fq.Cost.Reason))
		}
	}
	quote.Subtotal = subtotal
	quote.WeightKG = weight

	if len(cart.Flashings) == 0 {
		quote.Complete = false
		quote.Reasons = append(quote.Reasons, "cart is empty")
	}

	client, err := cs.clientRepo.GetByID(ctx, tx, clientID)
	if err != nil {
		return CartQuote{}, err
	}
	factory, err := cs.factoryRepo.GetByID(ctx, tx, client.FactoryID)
	if err != nil {
		return CartQuote{}, err
	}

	switch cart.FulfillmentType() {
	case types.FulfillmentDelivery:
		addr, err := cs.jobRefRepo.GetAddressByID(ctx, tx, *cart.AddressID)
		if err != nil {
			return CartQuote{}, err
		}
		if addr.DistanceToFactoryKM == nil {
			quote.Complete = false
			quote.Reasons = append(quote.Reasons, "address distance not resolved yet")
			break
		}
		methods, err := cs.methodRepo.ListActiveByFactory(ctx, tx, client.FactoryID)
		if err != nil {
			return CartQuote{}, err
		}
		distance := float64(*addr.DistanceToFactoryKM)
		method, err := delivery.Select(methods, distance, weight)
		if err != nil {
			quote.Complete = false
			quote.Reasons = append(quote.Reasons, err.Error())
			break
		}
		quote.DeliveryCost = pricing.Round2(delivery.Cost(method, distance, weight))
	case types.FulfillmentPickup:
		quote.DeliveryCost = 0
	default:
		quote.Complete = false
		quote.Reasons = append(quote.Reasons, "no fulfillment selected")
	}

	if cart.DeliveryDate == nil {
		quote.Complete = false
		quote.Reasons = append(quote.Reasons, "no date selected")
	}

	if quote.Complete {
		total, err := pricing.CartTotal(subtotal, quote.DeliveryCost, factory.GSTRatio)
		if err != nil {
			return CartQuote{}, err
		}
		quote.Total = total
	}
	return quote, nil
}
