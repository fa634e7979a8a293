package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	CreateComment(ctx context.Context, comment *Comment) error
	ReplaceRate(ctx context.Context, rate *ProductRate) error
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateComment(ctx context.Context, comment *Comment) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate comment ID: %w", err)
	}
	comment.ID = id
	comment.IsActive = true
	comment.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO comments (id, user_id, product_id, comment, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query,
		comment.ID,
		comment.UserID,
		comment.ProductID,
		comment.Comment,
		comment.IsActive,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert comment: %w", err)
	}

	return nil
}

// ReplaceRate drops any previous rate the user gave the product and records
// the new one. Last write wins.
func (r *postgresRepository) ReplaceRate(ctx context.Context, rate *ProductRate) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("product_id", rate.ProductID).Msg("repository: failed to rollback rate transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	_, err = tx.Exec(ctx, `DELETE FROM product_rates WHERE user_id = $1 AND product_id = $2`, rate.UserID, rate.ProductID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete previous rate: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate rate ID: %w", err)
	}
	rate.ID = id
	rate.IsActive = true
	rate.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO product_rates (id, user_id, product_id, rate, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Exec(ctx, query,
		rate.ID,
		rate.UserID,
		rate.ProductID,
		rate.Rate,
		rate.IsActive,
		rate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert rate: %w", err)
	}

	return nil
}

func (r *postgresRepository) ProductExists(ctx context.Context, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check product %s: %w", productID, err)
	}
	return exists, nil
}
