package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobReference is a client-side job/site identifier; pickup orders are tied to
// one, and delivery addresses are grouped under one.
type JobReference struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Code        int       `gorm:"not null" json:"code"`
	ProjectName string    `gorm:"not null" json:"project_name"`

	Addresses []Address `gorm:"foreignKey:JobReferenceID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (JobReference) TableName() string {
	return "job_reference"
}

func (j *JobReference) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// Address is a delivery target. DistanceToFactoryKM is enriched asynchronously
// after creation; nil means the lookup has not happened or failed.
type Address struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobReferenceID uuid.UUID `gorm:"type:uuid;not null;index" json:"job_reference_id"`

	Title         string `gorm:"not null" json:"title"`
	StreetAddress string `gorm:"not null" json:"street_address"`
	Suburb        string `gorm:"not null" json:"suburb"`
	State         string `gorm:"size:3;not null" json:"state"`
	Postcode      int    `gorm:"not null" json:"postcode"`

	RecipientName  string `gorm:"not null" json:"recipient_name"`
	RecipientPhone string `gorm:"not null" json:"recipient_phone"`

	DistanceToFactoryKM *int `json:"distance_to_factory_km"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Address) TableName() string {
	return "address"
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Address) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %d, Australia", a.StreetAddress, a.Suburb, a.State, a.Postcode)
}

// JobReferenceDraft is the per-client staging row the frontend fills in
// piecewise before committing a job reference with its first address. All
// fields are nullable until committed.
type JobReferenceDraft struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"client_id"`

	Code        *int    `json:"code"`
	ProjectName *string `json:"project_name"`

	Title         *string `json:"title"`
	StreetAddress *string `json:"street_address"`
	Suburb        *string `json:"suburb"`
	State         *string `gorm:"size:3" json:"state"`
	Postcode      *int    `json:"postcode"`

	RecipientName  *string `json:"recipient_name"`
	RecipientPhone *string `json:"recipient_phone"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (JobReferenceDraft) TableName() string {
	return "job_reference_draft"
}

func (d *JobReferenceDraft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
