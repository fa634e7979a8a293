package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrProductNotFound = errors.New("product not found")
	ErrTooManyItems    = errors.New("too many items in cart")
	ErrCartConflict    = errors.New("cart was modified concurrently")
)

type Repository interface {
	GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItemsToCart(ctx context.Context, userID uuid.UUID, items []ItemInput) (*Cart, []CartItem, error)
	DeactivateCart(ctx context.Context, userID, cartID uuid.UUID) (*Cart, error)
	ListUserCarts(ctx context.Context, userID uuid.UUID, status *CartStatus) ([]Cart, error)
	GetActiveCart(ctx context.Context, userID, cartID uuid.UUID) (*Cart, error)
	GetCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error)
	MarkCartPaid(ctx context.Context, userID, cartID uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const cartColumns = "id, user_id, status, is_active, created_at"

func scanCart(row pgx.Row, c *Cart) error {
	return row.Scan(&c.ID, &c.UserID, &c.Status, &c.IsActive, &c.CreatedAt)
}

func (r *postgresRepository) GetOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (cart *Cart, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("user_id", userID).Msg("repository: failed to rollback get-or-create cart")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
		}
	}()

	cart, err = r.getOrCreateOpenCartTx(ctx, tx, userID)
	return cart, err
}

// getOrCreateOpenCartTx resolves the user's single open cart, creating it if
// absent, and leaves its row locked for the remainder of the transaction.
// The partial unique index on (user_id) WHERE status='OPEN' AND is_active
// makes concurrent first-add calls safe: the insert uses ON CONFLICT DO
// NOTHING so a lost race does not abort the transaction, and the loser
// re-selects and locks the winner's row.
func (r *postgresRepository) getOrCreateOpenCartTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*Cart, error) {
	selectQuery := `
		SELECT ` + cartColumns + `
		FROM carts
		WHERE user_id = $1 AND status = $2 AND is_active
		FOR UPDATE
	`

	var cart Cart
	err := scanCart(tx.QueryRow(ctx, selectQuery, userID, StatusOpen), &cart)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repository: failed to select open cart for user %s: %w", userID, err)
	}

	cartID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to generate cart ID: %w", err)
	}

	insertQuery := `
		INSERT INTO carts (id, user_id, status, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (user_id) WHERE status = 'OPEN' AND is_active DO NOTHING
		RETURNING ` + cartColumns

	err = scanCart(tx.QueryRow(ctx, insertQuery, cartID, userID, StatusOpen, time.Now().UTC()), &cart)
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repository: failed to insert cart for user %s: %w", userID, err)
	}

	// A concurrent request inserted the open cart between our select and
	// insert. DO NOTHING returned no row, so lock the winner's.
	if err := scanCart(tx.QueryRow(ctx, selectQuery, userID, StatusOpen), &cart); err != nil {
		return nil, fmt.Errorf("repository: failed to re-select open cart for user %s: %w", userID, err)
	}

	return &cart, nil
}

func (r *postgresRepository) AddItemsToCart(ctx context.Context, userID uuid.UUID, items []ItemInput) (cart *Cart, cartItems []CartItem, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("user_id", userID).Msg("repository: failed to rollback after panic")
			}
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("user_id", userID).Msg("repository: failed to rollback add-items transaction")
			}
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			cart, cartItems = nil, nil
		}
	}()

	cart, err = r.getOrCreateOpenCartTx(ctx, tx, userID)
	if err != nil {
		return nil, nil, err
	}

	currentQuantity, err := r.sumCartQuantityTx(ctx, tx, cart.ID)
	if err != nil {
		return nil, nil, err
	}

	// The limit counts incoming line items, not their quantities.
	if CapacityExceeded(currentQuantity, len(items)) {
		return nil, nil, ErrTooManyItems
	}

	cartItems = make([]CartItem, 0, len(items))
	for _, item := range items {
		cartItem, addErr := r.addItemTx(ctx, tx, cart.ID, item.ProductID, item.Quantity)
		if addErr != nil {
			err = addErr
			return nil, nil, err
		}
		cartItems = append(cartItems, *cartItem)
	}

	return cart, cartItems, nil
}

// addItemTx upserts one (cart, product) line: an existing active line gets
// its quantity incremented, otherwise a new row is inserted.
func (r *postgresRepository) addItemTx(ctx context.Context, tx pgx.Tx, cartID, productID uuid.UUID, quantity int) (*CartItem, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to check product %s: %w", productID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	const itemColumns = "id, cart_id, product_id, quantity, is_active, created_at"

	updateQuery := `
		UPDATE cart_items
		SET quantity = quantity + $3
		WHERE cart_id = $1 AND product_id = $2 AND is_active
		RETURNING ` + itemColumns

	var item CartItem
	err = tx.QueryRow(ctx, updateQuery, cartID, productID, quantity).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.IsActive, &item.CreatedAt)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("repository: failed to increment cart item: %w", err)
	}

	itemID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("repository: failed to generate cart item ID: %w", err)
	}

	insertQuery := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING ` + itemColumns

	err = tx.QueryRow(ctx, insertQuery, itemID, cartID, productID, quantity, time.Now().UTC()).
		Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.IsActive, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to insert cart item: %w", err)
	}

	return &item, nil
}

func (r *postgresRepository) sumCartQuantityTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) (int, error) {
	var total int
	query := `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = $1 AND is_active`
	if err := tx.QueryRow(ctx, query, cartID).Scan(&total); err != nil {
		return 0, fmt.Errorf("repository: failed to sum cart %s quantities: %w", cartID, err)
	}
	return total, nil
}

// DeactivateCart soft-deletes the cart. Items are left untouched.
func (r *postgresRepository) DeactivateCart(ctx context.Context, userID, cartID uuid.UUID) (*Cart, error) {
	query := `
		UPDATE carts
		SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active
		RETURNING ` + cartColumns

	var cart Cart
	err := scanCart(r.db.QueryRow(ctx, query, cartID, userID), &cart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("repository: failed to deactivate cart %s: %w", cartID, err)
	}

	return &cart, nil
}

func (r *postgresRepository) ListUserCarts(ctx context.Context, userID uuid.UUID, status *CartStatus) ([]Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND is_active`
	args := []interface{}{userID}
	if status != nil {
		args = append(args, *status)
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query carts for user %s: %w", userID, err)
	}
	defer rows.Close()

	carts := make([]Cart, 0)
	for rows.Next() {
		var cart Cart
		if err := scanCart(rows, &cart); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart: %w", err)
		}
		carts = append(carts, cart)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating carts for user %s: %w", userID, err)
	}

	return carts, nil
}

func (r *postgresRepository) GetActiveCart(ctx context.Context, userID, cartID uuid.UUID) (*Cart, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1 AND user_id = $2 AND is_active`

	var cart Cart
	err := scanCart(r.db.QueryRow(ctx, query, cartID, userID), &cart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart %s: %w", cartID, err)
	}

	return &cart, nil
}

func (r *postgresRepository) GetCartItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, quantity, is_active, created_at
		FROM cart_items
		WHERE cart_id = $1 AND is_active
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query items for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	items := make([]CartItem, 0)
	for rows.Next() {
		var item CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.IsActive, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating items for cart %s: %w", cartID, err)
	}

	return items, nil
}

// MarkCartPaid flips OPEN to PAID with a compare-and-swap so a concurrent
// writer cannot be overwritten. Callers verify the cart exists first; zero
// rows affected here therefore means the status changed underneath us.
func (r *postgresRepository) MarkCartPaid(ctx context.Context, userID, cartID uuid.UUID) error {
	query := `
		UPDATE carts
		SET status = $1
		WHERE id = $2 AND user_id = $3 AND status = $4 AND is_active
	`

	cmdTag, err := r.db.Exec(ctx, query, StatusPaid, cartID, userID, StatusOpen)
	if err != nil {
		log.Error().Err(err).Stringer("cart_id", cartID).Msg("repository: failed to mark cart paid")
		return fmt.Errorf("repository: failed to mark cart %s paid: %w", cartID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Stringer("cart_id", cartID).Msg("repository: cart changed concurrently, paid transition lost")
		return ErrCartConflict
	}

	return nil
}
