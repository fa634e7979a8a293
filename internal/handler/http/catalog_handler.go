package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/catalog"
)

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2500"`
	Price       int64  `json:"price" validate:"min=0"`
	Category    string `json:"category"`
	City        string `json:"city"`
	IsActive    bool   `json:"is_active"`
}

type UpdateProductRequest struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2500"`
	Price       *int64    `json:"price,omitempty" validate:"omitempty,min=0"`
	Category    *string   `json:"category,omitempty" validate:"omitempty,max=100"`
	City        *string   `json:"city,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive bool   `json:"is_active"`
}

type UpdateCategoryRequest struct {
	CurrentName string  `json:"current_name" validate:"required"`
	NewName     *string `json:"new_name,omitempty" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CatalogHandler struct {
	catalog  catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(catalogSvc catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		catalog:  catalogSvc,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes mounts the unauthenticated search endpoints.
func (h *CatalogHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/products", h.handleSearchProducts)
	router.Get("/categories", h.handleSearchCategories)
}

// RegisterAdminRoutes mounts the catalog management endpoints.
func (h *CatalogHandler) RegisterAdminRoutes(router chi.Router) {
	router.Post("/products/create", h.handleCreateProduct)
	router.Post("/products/update", h.handleUpdateProduct)
	router.Post("/categories/create", h.handleCreateCategory)
	router.Post("/categories/update", h.handleUpdateCategory)
}

func (h *CatalogHandler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := catalog.ProductFilter{
		Search:   query.Get("search"),
		Category: query.Get("category"),
		City:     query.Get("city"),
		OrderBy:  query.Get("order_by"),
	}

	if raw := query.Get("min_price"); raw != "" {
		minPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid min_price parameter")
			return
		}
		filter.MinPrice = &minPrice
	}
	if raw := query.Get("max_price"); raw != "" {
		maxPrice, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid max_price parameter")
			return
		}
		filter.MaxPrice = &maxPrice
	}

	products, err := h.catalog.SearchProducts(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to search products")
		respondWithError(w, http.StatusInternalServerError, "Failed to search products")
		return
	}

	respondWithJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	categories, err := h.catalog.SearchCategories(r.Context(), query.Get("search"), query.Get("order_by"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to search categories")
		respondWithError(w, http.StatusInternalServerError, "Failed to search categories")
		return
	}

	respondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), catalog.CreateProductInput{
		Name:         requestPayload.Name,
		Description:  requestPayload.Description,
		Price:        requestPayload.Price,
		CategoryName: requestPayload.Category,
		CityName:     requestPayload.City,
		IsActive:     requestPayload.IsActive,
	})
	if err != nil {
		log.Warn().Err(err).Str("name", requestPayload.Name).Msg("Failed to create product")

		switch {
		case errors.Is(err, catalog.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, catalog.ErrCityNotFound):
			respondWithError(w, http.StatusNotFound, "City not found")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to create product")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, product)
}

func (h *CatalogHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), catalog.UpdateProductInput{
		ID:          requestPayload.ID,
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Category:    requestPayload.Category,
		City:        requestPayload.City,
		IsActive:    requestPayload.IsActive,
	})
	if err != nil {
		log.Warn().Err(err).Stringer("product_id", requestPayload.ID).Msg("Failed to update product")

		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, catalog.ErrCategoryNotFound):
			respondWithError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, catalog.ErrCityNotFound):
			respondWithError(w, http.StatusNotFound, "City not found")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to update product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateCategoryRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), requestPayload.Name, requestPayload.IsActive)
	if err != nil {
		log.Warn().Err(err).Str("name", requestPayload.Name).Msg("Failed to create category")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to create category")
		return
	}

	respondWithJSON(w, http.StatusCreated, category)
}

func (h *CatalogHandler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var requestPayload UpdateCategoryRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), catalog.UpdateCategoryInput{
		CurrentName: requestPayload.CurrentName,
		NewName:     requestPayload.NewName,
		IsActive:    requestPayload.IsActive,
	})
	if err != nil {
		log.Warn().Err(err).Str("category", requestPayload.CurrentName).Msg("Failed to update category")

		if errors.Is(err, catalog.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
		} else {
			respondWithError(w, mapErrorToStatusCode(err), "Failed to update category")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, category)
}
