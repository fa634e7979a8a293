package address

import (
	"time"

	"github.com/gofrs/uuid"
)

type Address struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CityID    uuid.UUID `json:"city_id" db:"city_id"`
	CityName  string    `json:"city_name" db:"city_name"`
	Address   string    `json:"address" db:"address"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateInput carries a partial address update. Nil means keep.
type UpdateInput struct {
	AddressID  uuid.UUID
	NewAddress *string
	NewCity    *string
}
