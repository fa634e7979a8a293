package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCityNotFound     = errors.New("city not found")
)

type Repository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	SearchProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, input UpdateProductInput) (*Product, error)
	SearchCategories(ctx context.Context, search, orderBy string) ([]ProductCategory, error)
	CreateCategory(ctx context.Context, category *ProductCategory) error
	UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*ProductCategory, error)
	GetCategoryByName(ctx context.Context, name string) (*ProductCategory, error)
	GetCityByName(ctx context.Context, name string) (*City, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = "id, name, description, price, category_id, city_id, is_active, created_at, updated_at"

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.CategoryID,
		&p.CityID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// GetProductByID does not filter by is_active: cart and checkout resolve
// products regardless of catalog visibility.
func (r *postgresRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var product Product
	err := scanProduct(r.db.QueryRow(ctx, query, id), &product)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &product, nil
}

func (r *postgresRepository) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products by ids: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, len(ids))
	for rows.Next() {
		var product Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

var allowedProductOrder = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

func (r *postgresRepository) SearchProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT p.` + strings.ReplaceAll(productColumns, ", ", ", p.") + ` FROM products p`)

	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "p.is_active = TRUE")

	if filter.Search != "" {
		ph := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", ph, ph))
	}
	if filter.Category != "" {
		sb.WriteString(" JOIN product_categories c ON c.id = p.category_id")
		conds = append(conds, "c.name = "+arg(filter.Category))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "p.price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "p.price <= "+arg(*filter.MaxPrice))
	}
	if filter.City != "" {
		sb.WriteString(" JOIN cities ct ON ct.id = p.city_id")
		conds = append(conds, "ct.name ILIKE "+arg("%"+filter.City+"%"))
	}

	sb.WriteString(" WHERE " + strings.Join(conds, " AND "))

	orderBy, ok := allowedProductOrder[filter.OrderBy]
	if !ok {
		orderBy = "name"
	}
	sb.WriteString(" ORDER BY p." + orderBy)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var product Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}

func (r *postgresRepository) CreateProduct(ctx context.Context, product *Product) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate product ID: %w", err)
	}
	product.ID = id
	product.CreatedAt = time.Now().UTC()
	product.UpdatedAt = product.CreatedAt

	query := `
		INSERT INTO products (id, name, description, price, category_id, city_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.CityID,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateProduct(ctx context.Context, input UpdateProductInput) (*Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price = COALESCE($4, price),
		    category_id = COALESCE($5, category_id),
		    city_id = COALESCE($6, city_id),
		    is_active = COALESCE($7, is_active),
		    updated_at = $8
		WHERE id = $1
		RETURNING ` + productColumns

	var product Product
	err := scanProduct(r.db.QueryRow(ctx, query,
		input.ID,
		input.Name,
		input.Description,
		input.Price,
		input.CategoryID,
		input.CityID,
		input.IsActive,
		time.Now().UTC(),
	), &product)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to update product %s: %w", input.ID, err)
	}

	return &product, nil
}

func (r *postgresRepository) SearchCategories(ctx context.Context, search, orderBy string) ([]ProductCategory, error) {
	query := `SELECT id, name, is_active FROM product_categories WHERE is_active = TRUE`
	var args []interface{}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += " AND name ILIKE $1"
	}
	query += " ORDER BY name"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to search categories: %w", err)
	}
	defer rows.Close()

	categories := make([]ProductCategory, 0)
	for rows.Next() {
		var category ProductCategory
		if err := rows.Scan(&category.ID, &category.Name, &category.IsActive); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}

	return categories, nil
}

func (r *postgresRepository) CreateCategory(ctx context.Context, category *ProductCategory) error {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate category ID: %w", err)
	}
	category.ID = id

	query := `INSERT INTO product_categories (id, name, is_active) VALUES ($1, $2, $3)`
	_, err = r.db.Exec(ctx, query, category.ID, category.Name, category.IsActive)
	if err != nil {
		return fmt.Errorf("repository: failed to insert category: %w", err)
	}

	return nil
}

func (r *postgresRepository) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*ProductCategory, error) {
	query := `
		UPDATE product_categories
		SET name = COALESCE($2, name),
		    is_active = COALESCE($3, is_active)
		WHERE name = $1
		RETURNING id, name, is_active
	`

	var category ProductCategory
	err := r.db.QueryRow(ctx, query, input.CurrentName, input.NewName, input.IsActive).
		Scan(&category.ID, &category.Name, &category.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("repository: failed to update category %q: %w", input.CurrentName, err)
	}

	return &category, nil
}

func (r *postgresRepository) GetCategoryByName(ctx context.Context, name string) (*ProductCategory, error) {
	query := `SELECT id, name, is_active FROM product_categories WHERE name = $1`

	var category ProductCategory
	err := r.db.QueryRow(ctx, query, name).Scan(&category.ID, &category.Name, &category.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("repository: failed to select category %q: %w", name, err)
	}

	return &category, nil
}

func (r *postgresRepository) GetCityByName(ctx context.Context, name string) (*City, error) {
	query := `SELECT id, name, is_active FROM cities WHERE name = $1 AND is_active = TRUE`

	var city City
	err := r.db.QueryRow(ctx, query, name).Scan(&city.ID, &city.Name, &city.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCityNotFound
		}
		return nil, fmt.Errorf("repository: failed to select city %q: %w", name, err)
	}

	return &city, nil
}
