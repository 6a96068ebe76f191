package types

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	models := []interface{}{
		&Order{},
		&PaymentSnapshot{},
		&JobReferenceSnapshot{},
		&StoredFlashingSnapshot{},
		&MaterialSnapshot{},
		&SpecificationSnapshot{},
		&DeliveryInfoSnapshot{},
		&PickupInfoSnapshot{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSnapshotsRejectUpdates(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	cases := []struct {
		name   string
		create func() interface{}
		mutate func(v interface{})
	}{
		{
			name: "payment",
			create: func() interface{} {
				return &PaymentSnapshot{
					OrderCode:       "100001",
					TransactionID:   "pi_1",
					StripeSessionID: "cs_1",
					Method:          "card",
					TotalAmount:     797.5,
					GSTRatio:        0.1,
					PaidAt:          now,
				}
			},
			mutate: func(v interface{}) { v.(*PaymentSnapshot).TotalAmount = 1 },
		},
		{
			name: "job_reference",
			create: func() interface{} {
				return &JobReferenceSnapshot{OrderCode: "100002", Code: 42, ProjectName: "Roof"}
			},
			mutate: func(v interface{}) { v.(*JobReferenceSnapshot).ProjectName = "changed" },
		},
		{
			name: "flashing",
			create: func() interface{} {
				return &StoredFlashingSnapshot{
					OrderCode:        "100003",
					SourceFlashingID: uuid.New(),
					TotalGirth:       250,
				}
			},
			mutate: func(v interface{}) { v.(*StoredFlashingSnapshot).TotalGirth = 1 },
		},
		{
			name: "material",
			create: func() interface{} {
				return &MaterialSnapshot{
					FlashingSnapshotID: uuid.New(),
					VariantType:        VariantTypeColor,
					Name:               "Colorbond",
					VariantLabel:       "Monument",
					VariantValue:       "#3b3b3c",
					BasePrice:          100,
				}
			},
			mutate: func(v interface{}) { v.(*MaterialSnapshot).BasePrice = 1 },
		},
		{
			name: "specification",
			create: func() interface{} {
				return &SpecificationSnapshot{
					FlashingSnapshotID: uuid.New(),
					Quantity:           3,
					LengthMM:           2000,
					Cost:               675,
					Weight:             6,
				}
			},
			mutate: func(v interface{}) { v.(*SpecificationSnapshot).Cost = 1 },
		},
		{
			name: "delivery_info",
			create: func() interface{} {
				return &DeliveryInfoSnapshot{
					OrderCode:           "100004",
					Cost:                120,
					Title:               "Site",
					StreetAddress:       "1 Foundry Rd",
					Suburb:              "Tottenham",
					State:               "VIC",
					Postcode:            3012,
					DistanceToFactoryKM: 18,
					RecipientName:       "Dana",
					RecipientPhone:      "0400000000",
					MethodType:          MethodTypeFactory,
					MethodName:          "Factory truck",
				}
			},
			mutate: func(v interface{}) { v.(*DeliveryInfoSnapshot).Cost = 1 },
		},
		{
			name: "pickup_info",
			create: func() interface{} {
				return &PickupInfoSnapshot{
					OrderCode:      "100005",
					FactoryAddress: "1 Foundry Rd, Tottenham, VIC 3012, Australia",
					FactoryHours:   "Mon-Fri 7:00-15:30",
				}
			},
			mutate: func(v interface{}) { v.(*PickupInfoSnapshot).FactoryHours = "changed" },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := tc.create()
			if err := db.Create(row).Error; err != nil {
				t.Fatalf("create: %v", err)
			}
			tc.mutate(row)
			err := db.Save(row).Error
			if !errors.Is(err, ErrImmutable) {
				t.Fatalf("save after mutate: got %v, want ErrImmutable", err)
			}
		})
	}
}

func TestPaymentSessionIDUnique(t *testing.T) {
	db := testDB(t)
	now := time.Now()

	first := &PaymentSnapshot{
		OrderCode:       "200001",
		TransactionID:   "pi_a",
		StripeSessionID: "cs_dup",
		Method:          "card",
		TotalAmount:     10,
		GSTRatio:        0.1,
		PaidAt:          now,
	}
	if err := db.Create(first).Error; err != nil {
		t.Fatalf("create first: %v", err)
	}

	dup := &PaymentSnapshot{
		OrderCode:       "200002",
		TransactionID:   "pi_b",
		StripeSessionID: "cs_dup",
		Method:          "card",
		TotalAmount:     10,
		GSTRatio:        0.1,
		PaidAt:          now,
	}
	if err := db.Create(dup).Error; err == nil {
		t.Fatal("expected unique violation on duplicate session id")
	}
}
