package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type Product struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Price       int64         `json:"price" db:"price"`
	CategoryID  uuid.NullUUID `json:"category_id" db:"category_id"`
	CityID      uuid.NullUUID `json:"city_id" db:"city_id"`
	IsActive    bool          `json:"is_active" db:"is_active"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

type ProductCategory struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

type City struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// ProductFilter narrows SearchProducts. Zero values mean "no constraint".
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *int64
	MaxPrice *int64
	City     string
	OrderBy  string
}

// UpdateProductInput carries the fields an admin may change. Nil means keep.
// Category and City are names; the service resolves them into CategoryID and
// CityID before the repository runs the update.
type UpdateProductInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Price       *int64
	Category    *string
	City        *string
	CategoryID  *uuid.UUID
	CityID      *uuid.UUID
	IsActive    *bool
}

type UpdateCategoryInput struct {
	CurrentName string
	NewName     *string
	IsActive    *bool
}
