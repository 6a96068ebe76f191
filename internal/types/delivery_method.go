package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Delivery method families. Factory-fleet ETAs depend on distance and load
// weight; freight ETAs depend on distance plus a fixed carrier lead time.
const (
	MethodTypeFactory = "factory"
	MethodTypeFreight = "freight"
)

// DeliveryMethod is a factory-owned pricing/ETA profile. Priority is globally
// unique and assigned on creation (max existing + 1); selection walks active
// methods in ascending priority and takes the first whose constraints fit.
type DeliveryMethod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FactoryID  uuid.UUID `gorm:"type:uuid;not null;index" json:"factory_id"`
	MethodType string    `gorm:"size:20;not null" json:"method_type"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
	Priority    int    `gorm:"not null;uniqueIndex" json:"priority"`

	BaseCost  float64 `gorm:"not null;default:0" json:"base_cost"`
	CostPerKG float64 `gorm:"not null;default:0" json:"cost_per_kg"`
	CostPerKM float64 `gorm:"not null;default:0" json:"cost_per_km"`

	MaxWeightKG   float64 `gorm:"not null" json:"max_weight_kg"`
	MaxDistanceKM int     `gorm:"not null" json:"max_distance_km"`

	// Fixed carrier lead time, freight only.
	ExtraDays int `gorm:"not null;default:0" json:"extra_days"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (DeliveryMethod) TableName() string {
	return "delivery_method"
}

func (m *DeliveryMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
