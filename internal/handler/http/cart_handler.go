package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/cart"
	"github.com/M0h4mmadH/ex-online-shop/internal/checkout"
	"github.com/M0h4mmadH/ex-online-shop/internal/receipt"
)

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type DeleteCartRequest struct {
	CartID uuid.UUID `json:"cart_id" validate:"required"`
}

type PurchaseRequest struct {
	CartID    uuid.UUID `json:"cart_id" validate:"required"`
	AddressID uuid.UUID `json:"address_id" validate:"required"`
}

type AddItemsResponse struct {
	Cart  *cart.Cart      `json:"cart"`
	Items []cart.CartItem `json:"items"`
}

type CartHandler struct {
	carts    cart.Service
	checkout checkout.Service
	receipts receipt.Repository
	validate *validator.Validate
}

func NewCartHandler(carts cart.Service, checkoutSvc checkout.Service, receipts receipt.Repository) *CartHandler {
	return &CartHandler{
		carts:    carts,
		checkout: checkoutSvc,
		receipts: receipts,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Post("/cart/add-items", h.handleAddItems)
	router.Post("/cart/delete", h.handleDeleteCart)
	router.Post("/cart/purchase", h.handlePurchase)
	router.Get("/user/get-active-carts", h.handleGetActiveCarts)
	router.Get("/user/get-purchase", h.handleGetPurchases)
}

func (h *CartHandler) handleAddItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload []AddItemRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode add-items payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := h.validate.Var(requestPayload, "required,min=1,dive"); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed")
		return
	}

	items := make([]cart.ItemInput, 0, len(requestPayload))
	for _, item := range requestPayload {
		items = append(items, cart.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	userCart, cartItems, err := h.carts.AddItemsToCart(r.Context(), userID, items)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to add items to cart")

		switch {
		case errors.Is(err, cart.ErrTooManyItems):
			respondWithError(w, http.StatusBadRequest, "Too many items")
		case errors.Is(err, cart.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to add items to cart")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, AddItemsResponse{Cart: userCart, Items: cartItems})
}

func (h *CartHandler) handleDeleteCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload DeleteCartRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	deleted, err := h.carts.DeleteCart(r.Context(), userID, requestPayload.CartID)
	if err != nil {
		log.Warn().Err(err).Stringer("cart_id", requestPayload.CartID).Msg("Failed to delete cart")

		if errors.Is(err, cart.ErrCartNotFound) {
			respondWithError(w, http.StatusNotFound, "Cart not found")
		} else {
			respondWithError(w, mapErrorToStatusCode(err), "Failed to delete cart")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]uuid.UUID{"id": deleted.ID})
}

func (h *CartHandler) handlePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload PurchaseRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	result, err := h.checkout.Purchase(r.Context(), userID, requestPayload.CartID, requestPayload.AddressID)
	if err != nil {
		log.Warn().Err(err).Stringer("cart_id", requestPayload.CartID).Msg("Purchase failed")

		var cityMismatch *checkout.CityMismatchError
		switch {
		case errors.Is(err, checkout.ErrAddressNotFound):
			respondWithError(w, http.StatusNotFound, "Address not found")
		case errors.Is(err, checkout.ErrCartNotFound):
			respondWithError(w, http.StatusNotFound, "Cart not found")
		case errors.Is(err, checkout.ErrEmptyCart):
			respondWithError(w, http.StatusBadRequest, "Cart is empty")
		case errors.As(err, &cityMismatch):
			respondWithError(w, http.StatusBadRequest,
				fmt.Sprintf("Product with id %s address city mismatch", cityMismatch.ProductID))
		case errors.Is(err, checkout.ErrCartConflict):
			respondWithError(w, http.StatusConflict, "Cart conflict")
		case errors.Is(err, checkout.ErrPaymentFailed):
			respondWithError(w, http.StatusBadGateway, "Payment failed")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to purchase cart")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *CartHandler) handleGetActiveCarts(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var status *cart.CartStatus
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		switch cs := cart.CartStatus(statusParam); cs {
		case cart.StatusOpen, cart.StatusPaid, cart.StatusExpired:
			status = &cs
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
	}

	carts, err := h.carts.ListUserCarts(r.Context(), userID, status)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list carts")
		respondWithError(w, http.StatusInternalServerError, "Failed to list carts")
		return
	}

	respondWithJSON(w, http.StatusOK, carts)
}

func (h *CartHandler) handleGetPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	receipts, err := h.receipts.ListByUser(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list receipts")
		respondWithError(w, http.StatusInternalServerError, "Failed to list receipts")
		return
	}

	respondWithJSON(w, http.StatusOK, receipts)
}
