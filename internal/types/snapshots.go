package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The snapshot family materialized at order finalization. Every row is a plain
// value copy with no foreign key into mutable catalog tables, and every model
// rejects UPDATEs through its BeforeUpdate hook. GORM runs BeforeUpdate for
// Save/Updates on persisted rows, so a second save anywhere in the codebase
// fails with ErrImmutable.

// PaymentSnapshot records what the payment provider actually captured. The
// unique session id is the idempotency key for webhook redelivery.
type PaymentSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode string    `gorm:"size:6;not null;uniqueIndex" json:"order_code"`

	TransactionID   string `gorm:"not null;uniqueIndex" json:"transaction_id"`
	StripeSessionID string `gorm:"not null;uniqueIndex" json:"-"`

	Method      string  `gorm:"size:20;not null" json:"method"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`
	GSTRatio    float64 `gorm:"not null" json:"gst_ratio"`

	PaidAt    time.Time `gorm:"not null" json:"paid_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PaymentSnapshot) TableName() string { return "payment_snapshot" }

func (s *PaymentSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *PaymentSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

type JobReferenceSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode string    `gorm:"size:6;not null;uniqueIndex" json:"order_code"`

	Code        int    `gorm:"not null" json:"code"`
	ProjectName string `gorm:"not null" json:"project_name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (JobReferenceSnapshot) TableName() string { return "job_reference_snapshot" }

func (s *JobReferenceSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *JobReferenceSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

// StoredFlashingSnapshot freezes one cart flashing: fold flags, the validated
// node chain and the girth it was priced on.
type StoredFlashingSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode string    `gorm:"size:6;not null;index" json:"order_code"`

	// Provenance only; never dereferenced when rendering history.
	SourceFlashingID uuid.UUID `gorm:"type:uuid;not null" json:"source_flashing_id"`

	StartCrushFold bool `gorm:"not null" json:"start_crush_fold"`
	EndCrushFold   bool `gorm:"not null" json:"end_crush_fold"`
	ColorSideDir   bool `gorm:"not null" json:"color_side_dir"`
	Tapered        bool `gorm:"not null" json:"tapered"`

	Nodes      datatypes.JSON `json:"nodes"`
	TotalGirth float64        `gorm:"not null" json:"total_girth"`

	Material       *MaterialSnapshot       `gorm:"foreignKey:FlashingSnapshotID" json:"material,omitempty"`
	Specifications []SpecificationSnapshot `gorm:"foreignKey:FlashingSnapshotID" json:"specifications,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (StoredFlashingSnapshot) TableName() string { return "stored_flashing_snapshot" }

func (s *StoredFlashingSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *StoredFlashingSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

// TotalCost sums the frozen specification costs.
func (s *StoredFlashingSnapshot) TotalCost() float64 {
	total := 0.0
	for _, spec := range s.Specifications {
		total += spec.Cost
	}
	return total
}

// MaterialSnapshot copies the variant identity and every group pricing
// coefficient current at finalization time.
type MaterialSnapshot struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlashingSnapshotID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"flashing_snapshot_id"`

	VariantType  string `gorm:"size:10;not null" json:"variant_type"`
	Name         string `gorm:"not null" json:"name"`
	VariantLabel string `gorm:"not null" json:"variant_label"`
	VariantValue string `gorm:"not null" json:"variant_value"`

	BasePrice          float64 `gorm:"not null" json:"base_price"`
	PricePerFold       float64 `gorm:"not null" json:"price_per_fold"`
	PricePer100Girth   float64 `gorm:"not null" json:"price_per_100girth"`
	PricePerCrushFold  float64 `gorm:"not null" json:"price_per_crush_fold"`
	SampleWeight       float64 `gorm:"not null" json:"sample_weight"`
	SampleWeightPerSqm float64 `gorm:"not null" json:"sample_weight_per_sqm"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (MaterialSnapshot) TableName() string { return "material_snapshot" }

func (s *MaterialSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *MaterialSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

// Rates re-exposes the frozen coefficients for re-pricing checks.
type SpecificationSnapshot struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlashingSnapshotID uuid.UUID `gorm:"type:uuid;not null;index" json:"flashing_snapshot_id"`

	Quantity int     `gorm:"not null" json:"quantity"`
	LengthMM float64 `gorm:"not null" json:"length"`
	Cost     float64 `gorm:"not null" json:"cost"`
	Weight   float64 `gorm:"not null" json:"weight"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SpecificationSnapshot) TableName() string { return "specification_snapshot" }

func (s *SpecificationSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *SpecificationSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

// DeliveryInfoSnapshot copies the address and the chosen delivery method by
// value, so later edits to either leave order history untouched.
type DeliveryInfoSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode string    `gorm:"size:6;not null;uniqueIndex" json:"order_code"`

	Cost float64    `gorm:"not null" json:"cost"`
	Date *time.Time `json:"date"`

	Title         string `gorm:"not null" json:"title"`
	StreetAddress string `gorm:"not null" json:"street_address"`
	Suburb        string `gorm:"not null" json:"suburb"`
	State         string `gorm:"size:3;not null" json:"state"`
	Postcode      int    `gorm:"not null" json:"postcode"`

	DistanceToFactoryKM int `gorm:"not null" json:"distance_to_factory_km"`

	RecipientName  string `gorm:"not null" json:"recipient_name"`
	RecipientPhone string `gorm:"not null" json:"recipient_phone"`

	MethodType        string  `gorm:"size:20;not null" json:"method_type"`
	MethodName        string  `gorm:"not null" json:"method_name"`
	MethodDescription string  `json:"method_description"`
	MethodBaseCost    float64 `gorm:"not null" json:"method_base_cost"`
	MethodCostPerKG   float64 `gorm:"not null" json:"method_cost_per_kg"`
	MethodCostPerKM   float64 `gorm:"not null" json:"method_cost_per_km"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DeliveryInfoSnapshot) TableName() string { return "delivery_info_snapshot" }

func (s *DeliveryInfoSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *DeliveryInfoSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }

// PickupInfoSnapshot records where and when a pickup order can be collected.
type PickupInfoSnapshot struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderCode string    `gorm:"size:6;not null;uniqueIndex" json:"order_code"`

	Date *time.Time `json:"date"`

	FactoryAddress string `gorm:"not null" json:"factory_address"`
	FactoryHours   string `gorm:"not null" json:"factory_hours"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PickupInfoSnapshot) TableName() string { return "pickup_info_snapshot" }

func (s *PickupInfoSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *PickupInfoSnapshot) BeforeUpdate(tx *gorm.DB) error { return ErrImmutable }
