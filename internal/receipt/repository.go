package receipt

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, rcpt *Receipt) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Receipt, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, rcpt *Receipt) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate receipt ID: %w", err)
	}
	rcpt.ID = id
	rcpt.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO receipts (id, user_id, cart_id, price, tracking_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query,
		rcpt.ID,
		rcpt.UserID,
		rcpt.CartID,
		rcpt.Price,
		rcpt.TrackingCode,
		rcpt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert receipt: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Receipt, error) {
	query := `
		SELECT id, user_id, cart_id, price, tracking_code, created_at
		FROM receipts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query receipts for user %s: %w", userID, err)
	}
	defer rows.Close()

	receipts := make([]Receipt, 0)
	for rows.Next() {
		var rcpt Receipt
		err := rows.Scan(&rcpt.ID, &rcpt.UserID, &rcpt.CartID, &rcpt.Price, &rcpt.TrackingCode, &rcpt.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan receipt: %w", err)
		}
		receipts = append(receipts, rcpt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating receipts for user %s: %w", userID, err)
	}

	return receipts, nil
}
