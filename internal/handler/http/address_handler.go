package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/address"
)

type CreateAddressRequest struct {
	City    string `json:"city" validate:"required,max=50"`
	Address string `json:"address" validate:"required,max=250"`
}

type UpdateAddressRequest struct {
	AddressID  uuid.UUID `json:"address_id" validate:"required"`
	NewAddress *string   `json:"new_address,omitempty" validate:"omitempty,max=250"`
	NewCity    *string   `json:"new_city,omitempty" validate:"omitempty,max=50"`
}

type DeleteAddressRequest struct {
	AddressID uuid.UUID `json:"address_id" validate:"required"`
}

type AddressHandler struct {
	addresses address.Service
	validate  *validator.Validate
}

func NewAddressHandler(addresses address.Service) *AddressHandler {
	return &AddressHandler{
		addresses: addresses,
		validate:  validator.New(),
	}
}

func (h *AddressHandler) RegisterRoutes(router chi.Router) {
	router.Post("/address/create", h.handleCreateAddress)
	router.Post("/address/update", h.handleUpdateAddress)
	router.Post("/address/delete", h.handleDeleteAddress)
	router.Get("/address", h.handleListAddresses)
}

func (h *AddressHandler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload CreateAddressRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	addr, err := h.addresses.CreateAddress(r.Context(), userID, requestPayload.City, requestPayload.Address)
	if err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("Failed to create address")

		if errors.Is(err, address.ErrCityNotFound) {
			respondWithError(w, http.StatusNotFound, "City not found")
		} else {
			respondWithError(w, mapErrorToStatusCode(err), "Failed to create address")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, addr)
}

func (h *AddressHandler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload UpdateAddressRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	addr, err := h.addresses.UpdateAddress(r.Context(), userID, address.UpdateInput{
		AddressID:  requestPayload.AddressID,
		NewAddress: requestPayload.NewAddress,
		NewCity:    requestPayload.NewCity,
	})
	if err != nil {
		log.Warn().Err(err).Stringer("address_id", requestPayload.AddressID).Msg("Failed to update address")

		switch {
		case errors.Is(err, address.ErrAddressNotFound):
			respondWithError(w, http.StatusNotFound, "Address not found")
		case errors.Is(err, address.ErrCityNotFound):
			respondWithError(w, http.StatusNotFound, "City not found")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to update address")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload DeleteAddressRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	addr, err := h.addresses.DeleteAddress(r.Context(), userID, requestPayload.AddressID)
	if err != nil {
		log.Warn().Err(err).Stringer("address_id", requestPayload.AddressID).Msg("Failed to delete address")

		if errors.Is(err, address.ErrAddressNotFound) {
			respondWithError(w, http.StatusNotFound, "Address not found")
		} else {
			respondWithError(w, mapErrorToStatusCode(err), "Failed to delete address")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]uuid.UUID{"id": addr.ID})
}

func (h *AddressHandler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	addresses, err := h.addresses.ListAddresses(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list addresses")
		respondWithError(w, http.StatusInternalServerError, "Failed to list addresses")
		return
	}

	respondWithJSON(w, http.StatusOK, addresses)
}
