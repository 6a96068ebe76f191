package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yarff/flashing-backend/internal/clients/stripe"
	"github.com/yarff/flashing-backend/internal/db"
	"github.com/yarff/flashing-backend/internal/geometry"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type fixture struct {
	db  *gorm.DB
	log *logger.Logger

	factory *types.Factory
	client  *types.Client
	variant *types.MaterialVariant
	method  *types.DeliveryMethod
	jobRef  *types.JobReference
	address *types.Address

	clientRepo   repos.ClientRepo
	factoryRepo  repos.FactoryRepo
	materialRepo repos.MaterialRepo
	methodRepo   repos.DeliveryMethodRepo
	jobRefRepo   repos.JobReferenceRepo
	flashingRepo repos.FlashingRepo
	cartRepo     repos.CartRepo
	orderRepo    repos.OrderRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.Nop()

	f := &fixture{
		db:           gdb,
		log:          log,
		clientRepo:   repos.NewClientRepo(gdb, log),
		factoryRepo:  repos.NewFactoryRepo(gdb, log),
		materialRepo: repos.NewMaterialRepo(gdb, log),
		methodRepo:   repos.NewDeliveryMethodRepo(gdb, log),
		jobRefRepo:   repos.NewJobReferenceRepo(gdb, log),
		flashingRepo: repos.NewFlashingRepo(gdb, log),
		cartRepo:     repos.NewCartRepo(gdb, log),
		orderRepo:    repos.NewOrderRepo(gdb, log),
	}

	f.factory = &types.Factory{
		Name:              "Westside Flashings",
		Email:             "orders@example.com",
		Phone:             "03 9310 0000",
		StreetAddress:     "1 Foundry Rd",
		Suburb:            "Tottenham",
		State:             "VIC",
		Postcode:          3012,
		WorkingHoursStart: "07:00",
		WorkingHoursEnd:   "15:30",
		GSTRatio:          0.1,
		IsActive:          true,
	}
	if err := gdb.Create(f.factory).Error; err != nil {
		t.Fatalf("create factory: %v", err)
	}

	f.client = &types.Client{
		Email:     "builder@example.com",
		FirstName: "Dana",
		FactoryID: f.factory.ID,
	}
	if err := gdb.Create(f.client).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}

	material := &types.Material{
		FactoryID:   f.factory.ID,
		Name:        "Colorbond 0.55",
		VariantType: types.VariantTypeColor,
		Groups: []types.MaterialGroup{{
			Name:               "Standard Colours",
			BasePrice:          100,
			PricePerFold:       5,
			PricePer100Girth:   2,
			PricePerCrushFold:  1.5,
			SampleWeight:       5,
			SampleWeightPerSqm: 1,
			Variants: []types.MaterialVariant{{
				Label: "Monument",
				Value: "#3b3b3c",
			}},
		}},
	}
	if err := gdb.Create(material).Error; err != nil {
		t.Fatalf("create material: %v", err)
	}
	f.variant = &material.Groups[0].Variants[0]

	f.method = &types.DeliveryMethod{
		FactoryID:     f.factory.ID,
		MethodType:    types.MethodTypeFactory,
		Name:          "Factory truck",
		IsActive:      true,
		Priority:      1,
		BaseCost:      40,
		CostPerKG:     0.2,
		CostPerKM:     1.1,
		MaxWeightKG:   800,
		MaxDistanceKM: 60,
	}
	if err := gdb.Create(f.method).Error; err != nil {
		t.Fatalf("create delivery method: %v", err)
	}

	distance := 20
	f.jobRef = &types.JobReference{
		ClientID:    f.client.ID,
		Code:        42,
		ProjectName: "Roof job",
	}
	if err := gdb.Create(f.jobRef).Error; err != nil {
		t.Fatalf("create job reference: %v", err)
	}
	f.address = &types.Address{
		JobReferenceID:      f.jobRef.ID,
		Title:               "Site",
		StreetAddress:       "5 Ridge St",
		Suburb:              "Sunshine",
		State:               "VIC",
		Postcode:            3020,
		RecipientName:       "Dana",
		RecipientPhone:      "0400000000",
		DistanceToFactoryKM: &distance,
	}
	if err := gdb.Create(f.address).Error; err != nil {
		t.Fatalf("create address: %v", err)
	}

	return f
}

func (f *fixture) flashingService() FlashingService {
	return NewFlashingService(f.db, f.log, f.flashingRepo, f.cartRepo)
}

func (f *fixture) cartService() CartService {
	return NewCartService(f.db, f.log, f.cartRepo, f.clientRepo, f.factoryRepo, f.jobRefRepo, f.methodRepo, f.flashingRepo)
}

// straightNodes is a two-node horizontal chain of the given span in mm.
func straightNodes(spanMM float64) []geometry.Node {
	return []geometry.Node{
		{ID: "a", NextID: "b", Left: 0, Top: 0},
		{ID: "b", PrevID: "a", Left: spanMM, Top: 0},
	}
}

// completeFlashing builds a priced flashing through the service path: geometry,
// material and one (quantity, length) line, which also lands it in the cart.
func (f *fixture) completeFlashing(t *testing.T, quantity int, lengthMM float64) FlashingQuote {
	t.Helper()
	ctx := context.Background()
	svc := f.flashingService()

	flashing, err := svc.CreateFlashing(ctx, f.client.ID)
	if err != nil {
		t.Fatalf("create flashing: %v", err)
	}
	if _, err := svc.UpdateGeometry(ctx, f.client.ID, flashing.ID, straightNodes(250)); err != nil {
		t.Fatalf("update geometry: %v", err)
	}
	if _, err := svc.UpdateOptions(ctx, f.client.ID, flashing.ID, FlashingOptions{
		MaterialVariantID: &f.variant.ID,
	}); err != nil {
		t.Fatalf("update options: %v", err)
	}
	quote, err := svc.AddSpecification(ctx, f.client.ID, flashing.ID, quantity, lengthMM)
	if err != nil {
		t.Fatalf("add specification: %v", err)
	}
	return quote
}

// fakePayments is an in-memory payment provider double.
type fakePayments struct {
	sessions map[string]*stripe.CheckoutSession
	nextID   int
	paid     bool
}

func newFakePayments() *fakePayments {
	return &fakePayments{sessions: map[string]*stripe.CheckoutSession{}, paid: true}
}

func (p *fakePayments) CreateCheckoutSession(ctx context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error) {
	p.nextID++
	id := fmt.Sprintf("cs_test_%d", p.nextID)
	status := "unpaid"
	if p.paid {
		status = "paid"
	}
	session := &stripe.CheckoutSession{
		ID:            id,
		URL:           "https://checkout.example.com/" + id,
		PaymentStatus: status,
		PaymentIntent: fmt.Sprintf("pi_test_%d", p.nextID),
		AmountTotal:   int64(params.Amount*100 + 0.5),
		Currency:      "aud",
	}
	p.sessions[id] = session
	return session, nil
}

func (p *fakePayments) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	session, ok := p.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", sessionID)
	}
	return session, nil
}

func (f *fixture) checkoutService(payments stripe.Client) CheckoutService {
	return NewCheckoutService(
		f.db, f.log,
		f.cartRepo, f.clientRepo, f.factoryRepo, f.jobRefRepo, f.methodRepo,
		f.materialRepo, f.flashingRepo, f.orderRepo,
		f.cartService(), payments,
		"https://example.com/ok", "https://example.com/cancel",
	)
}

func futureDate(days int) time.Time {
	return time.Now().Truncate(24 * time.Hour).AddDate(0, 0, days)
}
