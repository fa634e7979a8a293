package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Email and phone number are stored as NULL when absent (the partial unique
// constraints must not collide on ''), but the model carries plain strings,
// so selects coalesce them back.
const userColumns = "id, COALESCE(email, ''), COALESCE(phone_number, ''), password_hash, is_admin, created_at, updated_at"

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
}

func (r *postgresRepository) Create(ctx context.Context, u *User) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate user ID: %w", err)
	}
	u.ID = id
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt

	query := `
		INSERT INTO users (id, email, phone_number, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7)
	`
	_, err = r.db.Exec(ctx, query,
		u.ID,
		u.Email,
		u.PhoneNumber,
		u.PasswordHash,
		u.IsAdmin,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyExists
		}
		return fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u User
	err := scanUser(r.db.QueryRow(ctx, query, id), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user %s: %w", id, err)
	}

	return &u, nil
}

// GetByLogin matches either email or phone number.
func (r *postgresRepository) GetByLogin(ctx context.Context, login string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR phone_number = $1`

	var u User
	err := scanUser(r.db.QueryRow(ctx, query, login), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by login: %w", err)
	}

	return &u, nil
}
