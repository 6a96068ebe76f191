package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yarff/flashing-backend/internal/geometry"
	"github.com/yarff/flashing-backend/internal/pricing"
)

func TestFlashingEntersCartOnceComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.flashingService()

	flashing, err := svc.CreateFlashing(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("create flashing: %v", err)
	}

	quote, err := svc.UpdateGeometry(ctx, f.client.ID, flashing.ID, straightNodes(250))
	if err != nil {
		t.Fatalf("update geometry: %v", err)
	}
	if quote.Cost.Status != pricing.StatusIncomplete {
		t.Fatalf("expected incomplete before material, got %v", quote.Cost.Status)
	}

	cart, err := f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(cart.Flashings) != 0 {
		t.Fatalf("incomplete flashing should not be in cart, found %d", len(cart.Flashings))
	}

	if _, err := svc.UpdateOptions(ctx, f.client.ID, flashing.ID, FlashingOptions{
		MaterialVariantID: &f.variant.ID,
	}); err != nil {
		t.Fatalf("update options: %v", err)
	}
	quote, err = svc.AddSpecification(ctx, f.client.ID, flashing.ID, 2, 1200)
	if err != nil {
		t.Fatalf("add specification: %v", err)
	}
	if quote.Cost.Status != pricing.StatusPriced {
		t.Fatalf("expected priced flashing, got %v (%s)", quote.Cost.Status, quote.Cost.Reason)
	}

	cart, err = f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if len(cart.Flashings) != 1 || cart.Flashings[0].ID != flashing.ID {
		t.Fatalf("priced flashing should sit in cart, got %d entries", len(cart.Flashings))
	}
}

func TestFlashingLeavesCartWhenUnpriced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.flashingService()

	quote := f.completeFlashing(t, 1, 1000)
	if len(quote.Specifications) != 1 {
		t.Fatalf("expected one specification, got %d", len(quote.Specifications))
	}

	after, err := svc.DeleteSpecification(ctx, f.client.ID, quote.Specifications[0].Specification.ID)
	if err != nil {
		t.Fatalf("delete specification: %v", err)
	}
	if after.Cost.Status != pricing.StatusIncomplete {
		t.Fatalf("expected incomplete after last specification removed, got %v", after.Cost.Status)
	}

	cart, err := f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(cart.Flashings) != 0 {
		t.Fatalf("unpriced flashing should leave cart, found %d", len(cart.Flashings))
	}
}

func TestUpdateGeometryRecomputesGirth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.flashingService()

	flashing, err := svc.CreateFlashing(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("create flashing: %v", err)
	}

	quote, err := svc.UpdateGeometry(ctx, f.client.ID, flashing.ID, straightNodes(250))
	if err != nil {
		t.Fatalf("update geometry: %v", err)
	}
	if quote.Flashing.TotalGirth != 250 {
		t.Fatalf("girth = %v, want 250", quote.Flashing.TotalGirth)
	}

	quote, err = svc.UpdateGeometry(ctx, f.client.ID, flashing.ID, straightNodes(480))
	if err != nil {
		t.Fatalf("replace geometry: %v", err)
	}
	if quote.Flashing.TotalGirth != 480 {
		t.Fatalf("girth after change = %v, want 480", quote.Flashing.TotalGirth)
	}

	// Resubmitting identical nodes must not disturb the stored girth.
	quote, err = svc.UpdateGeometry(ctx, f.client.ID, flashing.ID, straightNodes(480))
	if err != nil {
		t.Fatalf("resubmit geometry: %v", err)
	}
	if quote.Flashing.TotalGirth != 480 {
		t.Fatalf("girth after no-op = %v, want 480", quote.Flashing.TotalGirth)
	}
}

func TestUpdateGeometryRejectsBrokenChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.flashingService()

	flashing, err := svc.CreateFlashing(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("create flashing: %v", err)
	}

	// Two nodes that do not reference each other.
	nodes := []geometry.Node{
		{ID: "a", Left: 0, Top: 0},
		{ID: "b", Left: 100, Top: 0},
	}
	_, err = svc.UpdateGeometry(ctx, f.client.ID, flashing.ID, nodes)
	var verr *geometry.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFlashingOwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.flashingService()

	quote := f.completeFlashing(t, 1, 1000)

	intruder := f.client.ID
	intruder[0] ^= 0xff
	if _, err := svc.GetFlashing(ctx, intruder, quote.Flashing.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.DeleteFlashing(ctx, intruder, quote.Flashing.ID); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner on delete, got %v", err)
	}
}

func TestDeleteFlashingRemovesFromCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.flashingService()

	quote := f.completeFlashing(t, 1, 1000)
	if err := svc.DeleteFlashing(ctx, f.client.ID, quote.Flashing.ID); err != nil {
		t.Fatalf("delete flashing: %v", err)
	}

	cart, err := f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(cart.Flashings) != 0 {
		t.Fatalf("deleted flashing still in cart")
	}
	if _, err := svc.GetFlashing(ctx, f.client.ID, quote.Flashing.ID); err == nil {
		t.Fatalf("expected lookup of deleted flashing to fail")
	}
}
