package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yarff/flashing-backend/internal/geometry"
)

// StoredFlashing is a client-owned draft: geometry, material choice and fold
// options. It stays mutable until order finalization snapshots it, after which
// it is archived rather than deleted.
type StoredFlashing struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	// Nil until the client has picked a material.
	MaterialVariantID *uuid.UUID       `gorm:"type:uuid" json:"material_variant_id"`
	MaterialVariant   *MaterialVariant `gorm:"foreignKey:MaterialVariantID" json:"-"`

	StartCrushFold bool `gorm:"not null;default:false" json:"start_crush_fold"`
	EndCrushFold   bool `gorm:"not null;default:false" json:"end_crush_fold"`
	ColorSideDir   bool `gorm:"not null;default:false" json:"color_side_dir"`
	Tapered        bool `gorm:"not null;default:false" json:"tapered"`

	// Validated node chain as submitted by the client editor.
	Nodes datatypes.JSON `json:"nodes"`

	// Cached girth, recomputed only when Nodes actually change.
	TotalGirth float64 `gorm:"not null;default:0" json:"total_girth"`

	Specifications []Specification `gorm:"foreignKey:FlashingID;constraint:OnDelete:CASCADE" json:"specifications,omitempty"`

	// Set when the flashing has been consumed by a finalized order.
	ArchivedAt *time.Time `gorm:"index" json:"archived_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (StoredFlashing) TableName() string {
	return "stored_flashing"
}

func (f *StoredFlashing) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Chain decodes and revalidates the stored nodes. Stored geometry was
// validated on write, so an error here means the row was corrupted.
func (f *StoredFlashing) Chain() (geometry.Chain, error) {
	if len(f.Nodes) == 0 {
		return geometry.Chain{}, nil
	}
	var nodes []geometry.Node
	if err := json.Unmarshal(f.Nodes, &nodes); err != nil {
		return nil, err
	}
	return geometry.Validate(nodes)
}

// CrushFoldCount counts the start/end crush-fold flags that are set.
func (f *StoredFlashing) CrushFoldCount() int {
	count := 0
	if f.StartCrushFold {
		count++
	}
	if f.EndCrushFold {
		count++
	}
	return count
}

// Specification is one (quantity, length) pricing line of a flashing. Cost and
// weight are always derived from live flashing and catalog state, never stored
// here, so catalog changes keep propagating until checkout freezes them.
type Specification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlashingID uuid.UUID `gorm:"type:uuid;not null;index" json:"flashing_id"`

	Quantity int     `gorm:"not null" json:"quantity"`
	LengthMM float64 `gorm:"not null" json:"length"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Specification) TableName() string {
	return "specification"
}

func (s *Specification) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
