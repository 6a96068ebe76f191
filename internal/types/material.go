package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Variant axes a material can be configured on.
const (
	VariantTypeColor     = "color"
	VariantTypeThickness = "thickness"
)

// Material is the top of the catalog hierarchy: a named product line whose
// variants differ along one axis (color or thickness). Pricing coefficients
// live one level down on the group so several variants can share them.
type Material struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FactoryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"factory_id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	VariantType string    `gorm:"size:10;not null;default:color" json:"variant_type"`

	Groups []MaterialGroup `gorm:"foreignKey:MaterialID;constraint:OnDelete:CASCADE" json:"groups,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string {
	return "material"
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MaterialGroup carries the pricing coefficients the cost formula reads.
type MaterialGroup struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Name       string    `gorm:"not null;default:'Base Group'" json:"name"`

	BasePrice          float64 `gorm:"not null" json:"base_price"`
	PricePerFold       float64 `gorm:"not null" json:"price_per_fold"`
	PricePer100Girth   float64 `gorm:"not null" json:"price_per_100girth"`
	PricePerCrushFold  float64 `gorm:"not null" json:"price_per_crush_fold"`
	SampleWeight       float64 `gorm:"not null" json:"sample_weight"`
	SampleWeightPerSqm float64 `gorm:"not null;default:1" json:"sample_weight_per_sqm"`

	Variants []MaterialVariant `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
}

func (MaterialGroup) TableName() string {
	return "material_group"
}

func (g *MaterialGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// MaterialVariant is the leaf a flashing actually references, e.g. a specific
// color or sheet thickness.
type MaterialVariant struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;index" json:"group_id"`
	Label   string    `gorm:"not null" json:"label"`
	Value   string    `gorm:"not null" json:"value"`

	Group *MaterialGroup `gorm:"foreignKey:GroupID" json:"-"`
}

func (MaterialVariant) TableName() string {
	return "material_variant"
}

func (v *MaterialVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
