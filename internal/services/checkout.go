package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/clients/stripe"
	"github.com/yarff/flashing-backend/internal/delivery"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/pricing"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

var ErrPaymentNotCaptured = fmt.Errorf("payment session not captured")

type CheckoutService interface {
	// RequestPayment freezes nothing: it prices the cart, opens a hosted
	// checkout session for the total and remembers the session on the cart.
	RequestPayment(ctx context.Context, clientID uuid.UUID) (*stripe.CheckoutSession, error)

	// ConfirmPayment is the webhook path: verifies capture with the provider
	// and finalizes the cart into an immutable order in one transaction.
	// Redelivered webhooks return the already-created order.
	ConfirmPayment(ctx context.Context, sessionID string) (*types.Order, error)
}

type checkoutService struct {
	db           *gorm.DB
	log          *logger.Logger
	cartRepo     repos.CartRepo
	clientRepo   repos.ClientRepo
	factoryRepo  repos.FactoryRepo
	jobRefRepo   repos.JobReferenceRepo
	methodRepo   repos.DeliveryMethodRepo
	materialRepo repos.MaterialRepo
	flashingRepo repos.FlashingRepo
	orderRepo    repos.OrderRepo
	cartService  CartService
	payments     stripe.Client

	successURL string
	cancelURL  string
	now        func() time.Time
}

func NewCheckoutService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cartRepo repos.CartRepo,
	clientRepo repos.ClientRepo,
	factoryRepo repos.FactoryRepo,
	jobRefRepo repos.JobReferenceRepo,
	methodRepo repos.DeliveryMethodRepo,
	materialRepo repos.MaterialRepo,
	flashingRepo repos.FlashingRepo,
	orderRepo repos.OrderRepo,
	cartService CartService,
	payments stripe.Client,
	successURL string,
	cancelURL string,
) CheckoutService {
	serviceLog := baseLog.With("service", "CheckoutService")
	return &checkoutService{
		db:           db,
		log:          serviceLog,
		cartRepo:     cartRepo,
		clientRepo:   clientRepo,
		factoryRepo:  factoryRepo,
		jobRefRepo:   jobRefRepo,
		methodRepo:   methodRepo,
		materialRepo: materialRepo,
		flashingRepo: flashingRepo,
		orderRepo:    orderRepo,
		cartService:  cartService,
		payments:     payments,
		successURL:   successURL,
		cancelURL:    cancelURL,
		now:          time.Now,
	}
}

func (cks *checkoutService) RequestPayment(ctx context.Context, clientID uuid.UUID) (*stripe.CheckoutSession, error) {
	cks.log.Info("RequestPayment", "client_id", clientID)

	quote, err := cks.cartService.GetCart(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !quote.Complete {
		cks.log.Warn("Cart not ready for payment", "client_id", clientID, "reasons", quote.Reasons)
		return nil, fmt.Errorf("%w: %v", ErrCartIncomplete, quote.Reasons)
	}

	session, err := cks.payments.CreateCheckoutSession(ctx, stripe.CheckoutParams{
		Amount:      quote.Total,
		Description: fmt.Sprintf("Custom flashing order (%d items)", len(quote.Flashings)),
		ClientRef:   clientID.String(),
		SuccessURL:  cks.successURL,
		CancelURL:   cks.cancelURL,
	})
	if err != nil {
		cks.log.Error("Checkout session creation failed", "client_id", clientID, "error", err)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	err = cks.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cks.cartRepo.GetByClient(ctx, tx, clientID)
		if err != nil {
			return err
		}
		cart.StripeSessionID = &session.ID
		_, err = cks.cartRepo.Save(ctx, tx, cart)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("record checkout session: %w", err)
	}
	return session, nil
}

func (cks *checkoutService) ConfirmPayment(ctx context.Context, sessionID string) (*types.Order, error) {
	cks.log.Info("ConfirmPayment", "session_id", sessionID)

	// Webhooks get redelivered; an existing payment snapshot for this session
	// means the order was already finalized.
	if existing, err := cks.orderRepo.GetPaymentBySession(ctx, nil, sessionID); err == nil {
		cks.log.Info("Session already finalized", "session_id", sessionID, "order_code", existing.OrderCode)
		return cks.orderRepo.GetByCode(ctx, nil, existing.OrderCode)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session, err := cks.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve checkout session: %w", err)
	}
	if !session.Paid() {
		return nil, ErrPaymentNotCaptured
	}

	var code string
	err = cks.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := cks.cartRepo.GetByStripeSession(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("cart for session: %w", err)
		}
		client, err := cks.clientRepo.GetByID(ctx, tx, cart.ClientID)
		if err != nil {
			return err
		}
		factory, err := cks.factoryRepo.GetByID(ctx, tx, client.FactoryID)
		if err != nil {
			return err
		}

		quote, err := cks.cartService.Quote(ctx, tx, client.ID, cart)
		if err != nil {
			return err
		}
		if !quote.Complete {
			return fmt.Errorf("%w: %v", ErrCartIncomplete, quote.Reasons)
		}

		// The provider is the source of truth for what was captured; a cart that
		// drifted since the session was opened must not finalize at a stale price.
		quotedCents := int64(quote.Total*100 + 0.5)
		if session.AmountTotal != quotedCents {
			return fmt.Errorf("captured amount %d does not match cart total %d", session.AmountTotal, quotedCents)
		}

		code, err = types.GenerateOrderCode(func(c string) (bool, error) {
			return cks.orderRepo.CodeExists(ctx, tx, c)
		})
		if err != nil {
			return fmt.Errorf("generate order code: %w", err)
		}

		order := &types.Order{
			Code:     code,
			ClientID: client.ID,
			Status:   types.OrderStatusPending,
		}
		if _, err := cks.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := cks.orderRepo.CreatePayment(ctx, tx, &types.PaymentSnapshot{
			OrderCode:       code,
			TransactionID:   session.PaymentIntent,
			StripeSessionID: session.ID,
			Method:          "card",
			TotalAmount:     float64(session.AmountTotal) / 100,
			GSTRatio:        factory.GSTRatio,
			PaidAt:          cks.now(),
		}); err != nil {
			return fmt.Errorf("payment snapshot: %w", err)
		}

		jobRef, err := cks.fulfillmentJobRef(ctx, tx, cart)
		if err != nil {
			return err
		}
		if err := cks.orderRepo.CreateJobReferenceSnapshot(ctx, tx, &types.JobReferenceSnapshot{
			OrderCode:   code,
			Code:        jobRef.Code,
			ProjectName: jobRef.ProjectName,
		}); err != nil {
			return fmt.Errorf("job reference snapshot: %w", err)
		}

		flashingIDs := make([]uuid.UUID, 0, len(quote.Flashings))
		for _, fq := range quote.Flashings {
			if err := cks.snapshotFlashing(ctx, tx, code, fq); err != nil {
				return err
			}
			flashingIDs = append(flashingIDs, fq.Flashing.ID)
		}

		switch cart.FulfillmentType() {
		case types.FulfillmentDelivery:
			if err := cks.snapshotDelivery(ctx, tx, code, cart, client.FactoryID, quote); err != nil {
				return err
			}
		case types.FulfillmentPickup:
			if err := cks.orderRepo.CreatePickupInfo(ctx, tx, &types.PickupInfoSnapshot{
				OrderCode:      code,
				Date:           cart.DeliveryDate,
				FactoryAddress: factory.FullAddress(),
				FactoryHours:   factory.WorkingHoursDesc(),
			}); err != nil {
				return fmt.Errorf("pickup snapshot: %w", err)
			}
		}

		if err := cks.flashingRepo.Archive(ctx, tx, flashingIDs); err != nil {
			return fmt.Errorf("archive flashings: %w", err)
		}
		if err := cks.cartRepo.Clear(ctx, tx, cart); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		cks.log.Error("Finalization failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	cks.log.Info("Order finalized", "order_code", code)
	return cks.orderRepo.GetByCode(ctx, nil, code)
}

func (cks *checkoutService) fulfillmentJobRef(ctx context.Context, tx *gorm.DB, cart *types.Cart) (*types.JobReference, error) {
	switch cart.FulfillmentType() {
	case types.FulfillmentDelivery:
		addr, err := cks.jobRefRepo.GetAddressByID(ctx, tx, *cart.AddressID)
		if err != nil {
			return nil, err
		}
		return cks.jobRefRepo.GetByID(ctx, tx, addr.JobReferenceID)
	case types.FulfillmentPickup:
		return cks.jobRefRepo.GetByID(ctx, tx, *cart.PickupJobReferenceID)
	}
	return nil, fmt.Errorf("cart has no fulfillment")
}

func (cks *checkoutService) snapshotFlashing(ctx context.Context, tx *gorm.DB, code string, fq FlashingQuote) error {
	f := fq.Flashing

	snap := &types.StoredFlashingSnapshot{
		OrderCode:        code,
		SourceFlashingID: f.ID,
		StartCrushFold:   f.StartCrushFold,
		EndCrushFold:     f.EndCrushFold,
		ColorSideDir:     f.ColorSideDir,
		Tapered:          f.Tapered,
		Nodes:            f.Nodes,
		TotalGirth:       f.TotalGirth,
	}
	if err := cks.orderRepo.CreateFlashingSnapshot(ctx, tx, snap); err != nil {
		return fmt.Errorf("flashing snapshot: %w", err)
	}

	variant := f.MaterialVariant
	material, err := cks.materialRepo.GetVariantMaterial(ctx, tx, variant)
	if err != nil {
		return fmt.Errorf("variant material: %w", err)
	}
	group := variant.Group
	if err := cks.orderRepo.CreateMaterialSnapshot(ctx, tx, &types.MaterialSnapshot{
		FlashingSnapshotID: snap.ID,
		VariantType:        material.VariantType,
		Name:               material.Name,
		VariantLabel:       variant.Label,
		VariantValue:       variant.Value,
		BasePrice:          group.BasePrice,
		PricePerFold:       group.PricePerFold,
		PricePer100Girth:   group.PricePer100Girth,
		PricePerCrushFold:  group.PricePerCrushFold,
		SampleWeight:       group.SampleWeight,
		SampleWeightPerSqm: group.SampleWeightPerSqm,
	}); err != nil {
		return fmt.Errorf("material snapshot: %w", err)
	}

	for _, sq := range fq.Specifications {
		if sq.Cost.Status != pricing.StatusPriced {
			return fmt.Errorf("unpriced specification reached finalization")
		}
		if err := cks.orderRepo.CreateSpecificationSnapshot(ctx, tx, &types.SpecificationSnapshot{
			FlashingSnapshotID: snap.ID,
			Quantity:           sq.Specification.Quantity,
			LengthMM:           sq.Specification.LengthMM,
			Cost:               pricing.Round2(sq.Cost.Amount),
			Weight:             sq.WeightKG,
		}); err != nil {
			return fmt.Errorf("specification snapshot: %w", err)
		}
	}
	return nil
}

func (cks *checkoutService) snapshotDelivery(ctx context.Context, tx *gorm.DB, code string, cart *types.Cart, factoryID uuid.UUID, quote CartQuote) error {
	addr, err := cks.jobRefRepo.GetAddressByID(ctx, tx, *cart.AddressID)
	if err != nil {
		return err
	}
	methods, err := cks.methodRepo.ListActiveByFactory(ctx, tx, factoryID)
	if err != nil {
		return err
	}
	distance := float64(*addr.DistanceToFactoryKM)
	method, err := delivery.Select(methods, distance, quote.WeightKG)
	if err != nil {
		return err
	}

	return cks.orderRepo.CreateDeliveryInfo(ctx, tx, &types.DeliveryInfoSnapshot{
		OrderCode:           code,
		Cost:                quote.DeliveryCost,
		Date:                cart.DeliveryDate,
		Title:               addr.Title,
		StreetAddress:       addr.StreetAddress,
		Suburb:              addr.Suburb,
		State:               addr.State,
		Postcode:            addr.Postcode,
		DistanceToFactoryKM: *addr.DistanceToFactoryKM,
		RecipientName:       addr.RecipientName,
		RecipientPhone:      addr.RecipientPhone,
		MethodType:          method.MethodType,
		MethodName:          method.Name,
		MethodDescription:   method.Description,
		MethodBaseCost:      method.BaseCost,
		MethodCostPerKG:     method.CostPerKG,
		MethodCostPerKM:     method.CostPerKM,
	})
}
