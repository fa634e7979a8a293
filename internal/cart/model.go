package cart

import (
	"time"

	"github.com/gofrs/uuid"
)

type CartStatus string

const (
	StatusOpen    CartStatus = "OPEN"
	StatusPaid    CartStatus = "PAID"
	StatusExpired CartStatus = "EXPIRED"
)

func (cs CartStatus) String() string {
	return string(cs)
}

// MaxCartItems caps a cart's load. The check compares the current quantity
// sum plus the number of incoming line items against this limit (not the sum
// of incoming quantities).
const MaxCartItems = 10

// CapacityExceeded reports whether an add-items batch would overfill a cart
// whose active quantities sum to currentQuantity. Each incoming line item
// counts once, whatever its quantity.
func CapacityExceeded(currentQuantity, incomingItems int) bool {
	return currentQuantity+incomingItems > MaxCartItems
}

type Cart struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	Status    CartStatus `json:"status" db:"status"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CartID    uuid.UUID `json:"cart_id" db:"cart_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ItemInput is one requested line item of an add-items batch.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}
