package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type CreateProductInput struct {
	Name         string
	Description  string
	Price        int64
	CategoryName string
	CityName     string
	IsActive     bool
}

type Service interface {
	SearchProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	SearchCategories(ctx context.Context, search, orderBy string) ([]ProductCategory, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, input UpdateProductInput) (*Product, error)
	CreateCategory(ctx context.Context, name string, isActive bool) (*ProductCategory, error)
	UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*ProductCategory, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SearchProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := s.repo.SearchProducts(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to search products")
		return nil, fmt.Errorf("service: failed to search products: %w", err)
	}
	return products, nil
}

func (s *service) SearchCategories(ctx context.Context, search, orderBy string) ([]ProductCategory, error) {
	categories, err := s.repo.SearchCategories(ctx, search, orderBy)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to search categories")
		return nil, fmt.Errorf("service: failed to search categories: %w", err)
	}
	return categories, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	if input.Price < 0 {
		return nil, errors.New("service: product price cannot be negative")
	}

	product := Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		IsActive:    input.IsActive,
	}

	if input.CategoryName != "" {
		category, err := s.repo.GetCategoryByName(ctx, input.CategoryName)
		if err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("service: failed to resolve category: %w", err)
		}
		product.CategoryID = uuid.NullUUID{UUID: category.ID, Valid: true}
	}

	if input.CityName != "" {
		city, err := s.repo.GetCityByName(ctx, input.CityName)
		if err != nil {
			if errors.Is(err, ErrCityNotFound) {
				return nil, ErrCityNotFound
			}
			return nil, fmt.Errorf("service: failed to resolve city: %w", err)
		}
		product.CityID = uuid.NullUUID{UUID: city.ID, Valid: true}
	}

	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		log.Error().Err(err).Str("name", input.Name).Msg("service: failed to create product")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", product.ID).Str("name", product.Name).Msg("service: product created")
	return &product, nil
}

func (s *service) UpdateProduct(ctx context.Context, input UpdateProductInput) (*Product, error) {
	if input.Price != nil && *input.Price < 0 {
		return nil, errors.New("service: product price cannot be negative")
	}

	if input.Category != nil {
		category, err := s.repo.GetCategoryByName(ctx, *input.Category)
		if err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("service: failed to resolve category: %w", err)
		}
		input.CategoryID = &category.ID
	}

	if input.City != nil {
		city, err := s.repo.GetCityByName(ctx, *input.City)
		if err != nil {
			if errors.Is(err, ErrCityNotFound) {
				return nil, ErrCityNotFound
			}
			return nil, fmt.Errorf("service: failed to resolve city: %w", err)
		}
		input.CityID = &city.ID
	}

	product, err := s.repo.UpdateProduct(ctx, input)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error().Err(err).Stringer("product_id", input.ID).Msg("service: failed to update product")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return product, nil
}

func (s *service) CreateCategory(ctx context.Context, name string, isActive bool) (*ProductCategory, error) {
	category := ProductCategory{Name: name, IsActive: isActive}
	if err := s.repo.CreateCategory(ctx, &category); err != nil {
		log.Error().Err(err).Str("name", name).Msg("service: failed to create category")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}
	return &category, nil
}

func (s *service) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*ProductCategory, error) {
	category, err := s.repo.UpdateCategory(ctx, input)
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		log.Error().Err(err).Str("category", input.CurrentName).Msg("service: failed to update category")
		return nil, fmt.Errorf("service: failed to update category: %w", err)
	}
	return category, nil
}

func (s *service) GetProductByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to get product by id: %w", err)
	}
	return product, nil
}

func (s *service) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	products, err := s.repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get products by ids: %w", err)
	}
	return products, nil
}
