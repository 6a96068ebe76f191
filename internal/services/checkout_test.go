package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yarff/flashing-backend/internal/clients/stripe"
	"github.com/yarff/flashing-backend/internal/types"
)

// readyDeliveryCart stages a complete delivery cart and opens a checkout
// session for it.
func readyDeliveryCart(t *testing.T, f *fixture, payments stripe.Client) *stripe.CheckoutSession {
	t.Helper()
	ctx := context.Background()
	cs := f.cartService()

	f.completeFlashing(t, 2, 1000)
	if _, err := cs.SetDeliveryAddress(ctx, f.client.ID, f.address.ID); err != nil {
		t.Fatalf("set delivery address: %v", err)
	}
	if _, err := cs.SetDeliveryDate(ctx, f.client.ID, futureDate(10)); err != nil {
		t.Fatalf("set delivery date: %v", err)
	}

	session, err := f.checkoutService(payments).RequestPayment(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("request payment: %v", err)
	}
	return session
}

func TestRequestPaymentRejectsIncompleteCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.completeFlashing(t, 1, 1000)

	_, err := f.checkoutService(newFakePayments()).RequestPayment(ctx, f.client.ID)
	if !errors.Is(err, ErrCartIncomplete) {
		t.Fatalf("expected ErrCartIncomplete, got %v", err)
	}
}

func TestConfirmPaymentFinalizesDeliveryOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := newFakePayments()
	svc := f.checkoutService(payments)

	session := readyDeliveryCart(t, f, payments)

	order, err := svc.ConfirmPayment(ctx, session.ID)
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}

	if len(order.Code) != 6 {
		t.Fatalf("order code %q is not 6 digits", order.Code)
	}
	if order.Status != types.OrderStatusPending {
		t.Fatalf("status = %q, want pending", order.Status)
	}
	if order.Payment == nil {
		t.Fatalf("missing payment snapshot")
	}
	if order.Payment.StripeSessionID != session.ID {
		t.Fatalf("payment session = %q, want %q", order.Payment.StripeSessionID, session.ID)
	}
	if !approx(order.Payment.TotalAmount, 301.95) {
		t.Fatalf("payment total = %v, want 301.95", order.Payment.TotalAmount)
	}
	if order.JobReference == nil || order.JobReference.Code != f.jobRef.Code {
		t.Fatalf("job reference snapshot missing or wrong: %+v", order.JobReference)
	}
	if order.Delivery == nil {
		t.Fatalf("missing delivery snapshot")
	}
	if order.Delivery.Suburb != "Sunshine" || order.Delivery.DistanceToFactoryKM != 20 {
		t.Fatalf("delivery snapshot did not copy the address: %+v", order.Delivery)
	}
	if order.Pickup != nil {
		t.Fatalf("delivery order must not carry a pickup snapshot")
	}

	if len(order.Flashings) != 1 {
		t.Fatalf("flashing snapshots = %d, want 1", len(order.Flashings))
	}
	fs := order.Flashings[0]
	if fs.Material == nil || fs.Material.Name != "Colorbond 0.55" {
		t.Fatalf("material snapshot missing or wrong: %+v", fs.Material)
	}
	if len(fs.Specifications) != 1 {
		t.Fatalf("specification snapshots = %d, want 1", len(fs.Specifications))
	}
	if !approx(fs.Specifications[0].Cost, 212) {
		t.Fatalf("specification cost = %v, want 212", fs.Specifications[0].Cost)
	}
	if !approx(fs.TotalCost(), 212) {
		t.Fatalf("snapshot total = %v, want 212", fs.TotalCost())
	}

	// The source flashing is archived and the cart emptied for the next order.
	active, err := f.flashingRepo.ListActiveByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("list active flashings: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("flashings still active after finalization: %d", len(active))
	}
	cart, err := f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	if len(cart.Flashings) != 0 || cart.AddressID != nil || cart.DeliveryDate != nil || cart.StripeSessionID != nil {
		t.Fatalf("cart not cleared: %+v", cart)
	}
}

func TestConfirmPaymentFinalizesPickupOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cs := f.cartService()
	payments := newFakePayments()
	svc := f.checkoutService(payments)

	f.completeFlashing(t, 1, 1000)
	if _, err := cs.SetPickup(ctx, f.client.ID, f.jobRef.ID); err != nil {
		t.Fatalf("set pickup: %v", err)
	}
	if _, err := cs.SetDeliveryDate(ctx, f.client.ID, futureDate(5)); err != nil {
		t.Fatalf("set pickup date: %v", err)
	}
	session, err := svc.RequestPayment(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("request payment: %v", err)
	}

	order, err := svc.ConfirmPayment(ctx, session.ID)
	if err != nil {
		t.Fatalf("confirm payment: %v", err)
	}
	if order.Delivery != nil {
		t.Fatalf("pickup order must not carry a delivery snapshot")
	}
	if order.Pickup == nil {
		t.Fatalf("missing pickup snapshot")
	}
	if order.Pickup.FactoryAddress != f.factory.FullAddress() {
		t.Fatalf("pickup address = %q, want %q", order.Pickup.FactoryAddress, f.factory.FullAddress())
	}
	if order.Pickup.Date == nil || !order.Pickup.Date.Equal(futureDate(5)) {
		t.Fatalf("pickup date = %v, want %v", order.Pickup.Date, futureDate(5))
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := newFakePayments()
	svc := f.checkoutService(payments)

	session := readyDeliveryCart(t, f, payments)

	first, err := svc.ConfirmPayment(ctx, session.ID)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	second, err := svc.ConfirmPayment(ctx, session.ID)
	if err != nil {
		t.Fatalf("redelivered confirm: %v", err)
	}
	if first.Code != second.Code {
		t.Fatalf("redelivery created a second order: %q then %q", first.Code, second.Code)
	}

	var orders int64
	if err := f.db.Model(&types.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 1 {
		t.Fatalf("order count = %d, want 1", orders)
	}
	var pays int64
	if err := f.db.Model(&types.PaymentSnapshot{}).Count(&pays).Error; err != nil {
		t.Fatalf("count payments: %v", err)
	}
	if pays != 1 {
		t.Fatalf("payment snapshot count = %d, want 1", pays)
	}
}

func TestConfirmPaymentRequiresCapture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := newFakePayments()
	payments.paid = false
	svc := f.checkoutService(payments)

	session := readyDeliveryCart(t, f, payments)

	if _, err := svc.ConfirmPayment(ctx, session.ID); !errors.Is(err, ErrPaymentNotCaptured) {
		t.Fatalf("expected ErrPaymentNotCaptured, got %v", err)
	}

	// Nothing may be finalized on an uncaptured session.
	var orders int64
	if err := f.db.Model(&types.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 0 {
		t.Fatalf("order count = %d, want 0", orders)
	}
	active, err := f.flashingRepo.ListActiveByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("list active flashings: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("flashings must stay active, got %d", len(active))
	}
}

func TestConfirmPaymentRejectsDriftedCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := newFakePayments()
	svc := f.checkoutService(payments)

	session := readyDeliveryCart(t, f, payments)

	// Another line added after the session was opened changes the cart total;
	// the captured amount no longer covers it.
	cart, err := f.cartRepo.GetByClient(ctx, nil, f.client.ID)
	if err != nil {
		t.Fatalf("load cart: %v", err)
	}
	flashingSvc := f.flashingService()
	if _, err := flashingSvc.AddSpecification(ctx, f.client.ID, cart.Flashings[0].ID, 1, 500); err != nil {
		t.Fatalf("add specification: %v", err)
	}

	if _, err := svc.ConfirmPayment(ctx, session.ID); err == nil {
		t.Fatalf("expected drifted cart to be rejected")
	}
	var orders int64
	if err := f.db.Model(&types.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 0 {
		t.Fatalf("order count = %d, want 0", orders)
	}
}

func TestConfirmPaymentUnknownSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.checkoutService(newFakePayments())

	if _, err := svc.ConfirmPayment(ctx, "cs_missing"); err == nil {
		t.Fatalf("expected error for unknown session")
	}
}
