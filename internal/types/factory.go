package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Australian state codes accepted in addresses.
var AustralianStates = []string{"NSW", "VIC", "QLD", "WA", "SA", "TAS", "ACT", "NT"}

func IsAustralianState(code string) bool {
	for _, s := range AustralianStates {
		if s == code {
			return true
		}
	}
	return false
}

type Factory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Phone       string    `gorm:"not null" json:"phone"`
	Description string    `json:"description"`

	StreetAddress string `gorm:"not null" json:"street_address"`
	Suburb        string `gorm:"not null" json:"suburb"`
	State         string `gorm:"size:3;not null" json:"state"`
	Postcode      int    `gorm:"not null" json:"postcode"`

	// Working hours as "HH:MM" local time.
	WorkingHoursStart string `gorm:"not null" json:"working_hours_start"`
	WorkingHoursEnd   string `gorm:"not null" json:"working_hours_end"`

	GSTRatio float64 `gorm:"not null;default:0.1" json:"gst_ratio"`
	IsActive bool    `gorm:"not null;default:true;index" json:"is_active"`

	MaxConcurrentOrders int `gorm:"not null;default:50" json:"max_concurrent_orders"`
	DailyOrderLimit     int `gorm:"not null;default:100" json:"daily_order_limit"`

	// 0=Monday .. 6=Sunday for weekly off days; specific off days are dates.
	WeeklyOffDays   datatypes.JSON `json:"weekly_off_days"`
	SpecificOffDays datatypes.JSON `json:"specific_off_days"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Factory) TableName() string {
	return "factory"
}

func (f *Factory) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

func (f *Factory) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %d, Australia", f.StreetAddress, f.Suburb, f.State, f.Postcode)
}

// WorkingHoursDesc is the human line shown on pickup records.
func (f *Factory) WorkingHoursDesc() string {
	return fmt.Sprintf("Open: %s - %s", f.WorkingHoursStart, f.WorkingHoursEnd)
}
