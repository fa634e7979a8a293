package receipt

import (
	"time"

	"github.com/gofrs/uuid"
)

// Receipt is the durable record of a completed purchase.
type Receipt struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	CartID       uuid.UUID `json:"cart_id" db:"cart_id"`
	Price        int64     `json:"price" db:"price"`
	TrackingCode string    `json:"tracking_code" db:"tracking_code"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
