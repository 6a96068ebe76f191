package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fulfillment kinds a cart can be configured for.
const (
	FulfillmentDelivery = "delivery"
	FulfillmentPickup   = "pickup"
)

// Cart is the per-client staging area: exactly one per client. Flashings enter
// automatically once complete; fulfillment is either a delivery address or a
// pickup job reference, never both. Totals are computed live and only frozen
// into snapshots at finalization.
type Cart struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"client_id"`

	Flashings []*StoredFlashing `gorm:"many2many:cart_flashing" json:"flashings,omitempty"`

	AddressID *uuid.UUID `gorm:"type:uuid" json:"address_id"`
	Address   *Address   `gorm:"foreignKey:AddressID" json:"-"`

	PickupJobReferenceID *uuid.UUID    `gorm:"type:uuid" json:"pickup_job_reference_id"`
	PickupJobReference   *JobReference `gorm:"foreignKey:PickupJobReferenceID" json:"-"`

	DeliveryDate *time.Time `json:"delivery_date"`

	// Payment provider session recorded at checkout; lets the provider webhook
	// find this cart again, and makes confirmation idempotent.
	StripeSessionID *string `gorm:"uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Cart) TableName() string {
	return "cart"
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FulfillmentType reports the currently selected fulfillment, or "" if none.
func (c *Cart) FulfillmentType() string {
	switch {
	case c.AddressID != nil:
		return FulfillmentDelivery
	case c.PickupJobReferenceID != nil:
		return FulfillmentPickup
	}
	return ""
}
