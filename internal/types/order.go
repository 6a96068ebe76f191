package types

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Order status lifecycle after finalization.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	orderCodeMin = 100000
	orderCodeMax = 999999
)

// Order is the immutable head of a finalized purchase, identified by a
// human-friendly 6-digit code. Everything a past order needs to be rendered is
// copied by value into the snapshot rows; nothing references mutable catalog
// state.
type Order struct {
	Code     string    `gorm:"primaryKey;size:6" json:"code"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`

	Status string `gorm:"size:20;not null;default:pending" json:"status"`

	Payment      *PaymentSnapshot         `gorm:"foreignKey:OrderCode" json:"payment,omitempty"`
	JobReference *JobReferenceSnapshot    `gorm:"foreignKey:OrderCode" json:"job_reference,omitempty"`
	Delivery     *DeliveryInfoSnapshot    `gorm:"foreignKey:OrderCode" json:"delivery,omitempty"`
	Pickup       *PickupInfoSnapshot      `gorm:"foreignKey:OrderCode" json:"pickup,omitempty"`
	Flashings    []StoredFlashingSnapshot `gorm:"foreignKey:OrderCode" json:"flashings,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string {
	return "order"
}

// GenerateOrderCode picks a free 6-digit code, consulting taken() for
// collisions. Random probing handles the common sparse case; once the probes
// keep colliding it sweeps the codespace from a random offset so the loop
// always terminates while any code remains free.
func GenerateOrderCode(taken func(code string) (bool, error)) (string, error) {
	span := orderCodeMax - orderCodeMin + 1

	for i := 0; i < 20; i++ {
		code := fmt.Sprintf("%06d", orderCodeMin+rand.Intn(span))
		used, err := taken(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}

	start := rand.Intn(span)
	for i := 0; i < span; i++ {
		code := fmt.Sprintf("%06d", orderCodeMin+(start+i)%span)
		used, err := taken(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}

	return "", fmt.Errorf("order codespace exhausted")
}
