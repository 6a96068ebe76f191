package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/yarff/flashing-backend/internal/types"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if strings.Contains(r, want) {
			return true
		}
	}
	return false
}

func TestGetCartEmptyReasons(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quote, err := f.cartService().GetCart(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if quote.Complete {
		t.Fatalf("empty cart must not be complete")
	}
	for _, want := range []string{"cart is empty", "no fulfillment selected", "no date selected"} {
		if !hasReason(quote.Reasons, want) {
			t.Fatalf("missing reason %q in %v", want, quote.Reasons)
		}
	}
}

func TestCartDeliveryQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 2, 1000)

	quote, err := cs.SetDeliveryAddress(ctx, f.client.ID, f.address.ID)
	if err != nil {
		t.Fatalf("set delivery address: %v", err)
	}
	if quote.Complete {
		t.Fatalf("cart without a date must not be complete")
	}
	if !hasReason(quote.Reasons, "no date selected") {
		t.Fatalf("expected date reason, got %v", quote.Reasons)
	}

	quote, err = cs.SetDeliveryDate(ctx, f.client.ID, futureDate(10))
	if err != nil {
		t.Fatalf("set delivery date: %v", err)
	}
	if !quote.Complete {
		t.Fatalf("cart should be complete, reasons: %v", quote.Reasons)
	}

	// Girth 250mm rounds up to 3 girth units: unit cost 100 + 3*2 = 106.
	// Two 1m pieces make the subtotal 212; weight is 5 kg/sqm over 0.5 sqm.
	if !approx(quote.Subtotal, 212) {
		t.Fatalf("subtotal = %v, want 212", quote.Subtotal)
	}
	if !approx(quote.WeightKG, 2.5) {
		t.Fatalf("weight = %v, want 2.5", quote.WeightKG)
	}
	// Factory truck over 20km: 40 + 0.2*2.5 + 1.1*20 = 62.50.
	if !approx(quote.DeliveryCost, 62.5) {
		t.Fatalf("delivery cost = %v, want 62.5", quote.DeliveryCost)
	}
	// (212 + 62.50) * 1.1 GST.
	if !approx(quote.Total, 301.95) {
		t.Fatalf("total = %v, want 301.95", quote.Total)
	}
}

func TestCartPickupQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 2, 1000)

	quote, err := cs.SetPickup(ctx, f.client.ID, f.jobRef.ID)
	if err != nil {
		t.Fatalf("set pickup: %v", err)
	}
	if quote.DeliveryCost != 0 {
		t.Fatalf("pickup must carry no delivery cost, got %v", quote.DeliveryCost)
	}

	quote, err = cs.SetDeliveryDate(ctx, f.client.ID, futureDate(5))
	if err != nil {
		t.Fatalf("set pickup date: %v", err)
	}
	if !quote.Complete {
		t.Fatalf("pickup cart should be complete, reasons: %v", quote.Reasons)
	}
	if !approx(quote.Total, 233.2) {
		t.Fatalf("total = %v, want 233.2", quote.Total)
	}
}

func TestFulfillmentSwitchClearsOther(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 1, 1000)

	if _, err := cs.SetDeliveryAddress(ctx, f.client.ID, f.address.ID); err != nil {
		t.Fatalf("set delivery address: %v", err)
	}
	if _, err := cs.SetDeliveryDate(ctx, f.client.ID, futureDate(10)); err != nil {
		t.Fatalf("set delivery date: %v", err)
	}

	if _, err := cs.SetPickup(ctx, f.client.ID, f.jobRef.ID); err != nil {
		t.Fatalf("set pickup: %v", err)
	}

	cart, err := f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if cart.FulfillmentType() != types.FulfillmentPickup {
		t.Fatalf("fulfillment = %q, want pickup", cart.FulfillmentType())
	}
	if cart.AddressID != nil {
		t.Fatalf("address should be cleared on pickup switch")
	}
	if cart.DeliveryDate != nil {
		t.Fatalf("date should be cleared on fulfillment switch")
	}
}

func TestSetDeliveryDateTooEarly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 1, 1000)
	if _, err := cs.SetDeliveryAddress(ctx, f.client.ID, f.address.ID); err != nil {
		t.Fatalf("set delivery address: %v", err)
	}

	if _, err := cs.SetDeliveryDate(ctx, f.client.ID, futureDate(1)); !errors.Is(err, ErrDateTooEarly) {
		t.Fatalf("expected ErrDateTooEarly, got %v", err)
	}
	if _, err := cs.SetDeliveryDate(ctx, f.client.ID, futureDate(2)); err != nil {
		t.Fatalf("date at the floor should be accepted: %v", err)
	}
}

func TestEarliestDateUsesTransitEstimate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 1, 1000)

	// Lead time alone while no address is chosen.
	earliest, err := cs.EarliestDate(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("earliest date: %v", err)
	}
	if !earliest.Equal(futureDate(2)) {
		t.Fatalf("earliest = %v, want %v", earliest, futureDate(2))
	}

	// Push the site out of the truck's range so freight, with its two-day
	// carrier lead, takes over: ceil(100/1200) + 2 = 3 days of transit.
	freight := &types.DeliveryMethod{
		FactoryID:     f.factory.ID,
		MethodType:    types.MethodTypeFreight,
		Name:          "Contract freight",
		IsActive:      true,
		Priority:      2,
		BaseCost:      90,
		CostPerKG:     0.35,
		CostPerKM:     0.8,
		MaxWeightKG:   5000,
		MaxDistanceKM: 1200,
		ExtraDays:     2,
	}
	if err := f.db.Create(freight).Error; err != nil {
		t.Fatalf("create freight method: %v", err)
	}
	if err := f.jobRefRepo.UpdateAddressDistance(ctx, nil, f.address.ID, 100); err != nil {
		t.Fatalf("update distance: %v", err)
	}
	if _, err := cs.SetDeliveryAddress(ctx, f.client.ID, f.address.ID); err != nil {
		t.Fatalf("set delivery address: %v", err)
	}

	earliest, err = cs.EarliestDate(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("earliest date with address: %v", err)
	}
	if !earliest.Equal(futureDate(3)) {
		t.Fatalf("earliest = %v, want %v", earliest, futureDate(3))
	}
}

func TestEarliestDateUnresolvedDistance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 1, 1000)

	unresolved := &types.Address{
		JobReferenceID: f.jobRef.ID,
		Title:          "New site",
		StreetAddress:  "9 Gully Rd",
		Suburb:         "Deer Park",
		State:          "VIC",
		Postcode:       3023,
		RecipientName:  "Dana",
		RecipientPhone: "0400000000",
	}
	if err := f.db.Create(unresolved).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}
	if _, err := cs.SetDeliveryAddress(ctx, f.client.ID, unresolved.ID); err != nil {
		t.Fatalf("set delivery address: %v", err)
	}

	if _, err := cs.EarliestDate(ctx, f.client.ID); !errors.Is(err, ErrUnknownDistance) {
		t.Fatalf("expected ErrUnknownDistance, got %v", err)
	}

	quote, err := cs.GetCart(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if quote.Complete {
		t.Fatalf("cart with unresolved distance must not be complete")
	}
	if !hasReason(quote.Reasons, "distance not resolved") {
		t.Fatalf("expected distance reason, got %v", quote.Reasons)
	}
}

func TestCartOwnershipOnFulfillment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()

	other := &types.Client{
		Email:     "other@example.com",
		FirstName: "Rae",
		FactoryID: f.factory.ID,
	}
	if err := f.db.Create(other).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}

	if _, err := cs.SetDeliveryAddress(ctx, other.ID, f.address.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign address, got %v", err)
	}
	if _, err := cs.SetPickup(ctx, other.ID, f.jobRef.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign job reference, got %v", err)
	}
}
