package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrCityNotFound    = errors.New("city not found")
)

type Repository interface {
	Create(ctx context.Context, addr *Address) error
	Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*Address, error)
	Deactivate(ctx context.Context, userID, addressID uuid.UUID) (*Address, error)
	ListActive(ctx context.Context, userID uuid.UUID) ([]Address, error)
	GetActiveAddress(ctx context.Context, userID, addressID uuid.UUID) (*Address, error)
	GetCityIDByName(ctx context.Context, name string) (uuid.UUID, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const addressColumns = `a.id, a.user_id, a.city_id, c.name, a.address, a.is_active, a.created_at, a.updated_at`

func scanAddress(row pgx.Row, a *Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.CityID, &a.CityName, &a.Address, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
}

func (r *postgresRepository) Create(ctx context.Context, addr *Address) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate address ID: %w", err)
	}
	addr.ID = id
	addr.IsActive = true
	addr.CreatedAt = time.Now().UTC()
	addr.UpdatedAt = addr.CreatedAt

	query := `
		INSERT INTO addresses (id, user_id, city_id, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		addr.ID,
		addr.UserID,
		addr.CityID,
		addr.Address,
		addr.IsActive,
		addr.CreatedAt,
		addr.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert address: %w", err)
	}

	return nil
}

func (r *postgresRepository) Update(ctx context.Context, userID uuid.UUID, input UpdateInput) (*Address, error) {
	var newCityID *uuid.UUID
	if input.NewCity != nil {
		cityID, err := r.GetCityIDByName(ctx, *input.NewCity)
		if err != nil {
			return nil, err
		}
		newCityID = &cityID
	}

	query := `
		UPDATE addresses a
		SET address = COALESCE($3, a.address),
		    city_id = COALESCE($4, a.city_id),
		    updated_at = $5
		FROM cities c
		WHERE a.id = $1 AND a.user_id = $2 AND a.is_active
		  AND c.id = COALESCE($4, a.city_id)
		RETURNING ` + addressColumns

	var addr Address
	err := scanAddress(r.db.QueryRow(ctx, query,
		input.AddressID,
		userID,
		input.NewAddress,
		newCityID,
		time.Now().UTC(),
	), &addr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("repository: failed to update address %s: %w", input.AddressID, err)
	}

	return &addr, nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, userID, addressID uuid.UUID) (*Address, error) {
	query := `
		UPDATE addresses a
		SET is_active = FALSE, updated_at = $3
		FROM cities c
		WHERE a.id = $1 AND a.user_id = $2 AND a.is_active AND c.id = a.city_id
		RETURNING ` + addressColumns

	var addr Address
	err := scanAddress(r.db.QueryRow(ctx, query, addressID, userID, time.Now().UTC()), &addr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("repository: failed to deactivate address %s: %w", addressID, err)
	}

	return &addr, nil
}

func (r *postgresRepository) ListActive(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses a
		JOIN cities c ON c.id = a.city_id
		WHERE a.user_id = $1 AND a.is_active
		ORDER BY a.created_at
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query addresses for user %s: %w", userID, err)
	}
	defer rows.Close()

	addresses := make([]Address, 0)
	for rows.Next() {
		var addr Address
		if err := scanAddress(rows, &addr); err != nil {
			return nil, fmt.Errorf("repository: failed to scan address: %w", err)
		}
		addresses = append(addresses, addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating addresses for user %s: %w", userID, err)
	}

	return addresses, nil
}

func (r *postgresRepository) GetActiveAddress(ctx context.Context, userID, addressID uuid.UUID) (*Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses a
		JOIN cities c ON c.id = a.city_id
		WHERE a.id = $1 AND a.user_id = $2 AND a.is_active
	`

	var addr Address
	err := scanAddress(r.db.QueryRow(ctx, query, addressID, userID), &addr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("repository: failed to select address %s: %w", addressID, err)
	}

	return &addr, nil
}

func (r *postgresRepository) GetCityIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	var cityID uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT id FROM cities WHERE name = $1 AND is_active`, name).Scan(&cityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrCityNotFound
		}
		return uuid.Nil, fmt.Errorf("repository: failed to select city %q: %w", name, err)
	}
	return cityID, nil
}
