package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is the authenticated customer identity. Credentials and session
// issuance live with the identity provider; we only mirror the fields the
// order flow needs, plus the factory affiliation every request is scoped to.
type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`

	FactoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"factory_id"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Client) TableName() string {
	return "client"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
