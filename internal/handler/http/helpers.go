package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/address"
	"github.com/M0h4mmadH/ex-online-shop/internal/cart"
	"github.com/M0h4mmadH/ex-online-shop/internal/catalog"
	"github.com/M0h4mmadH/ex-online-shop/internal/checkout"
	"github.com/M0h4mmadH/ex-online-shop/internal/social"
	"github.com/M0h4mmadH/ex-online-shop/internal/user"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithError sends the conventional {"error": message} body.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrCityNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, address.ErrCityNotFound),
		errors.Is(err, social.ErrProductNotFound),
		errors.Is(err, checkout.ErrCartNotFound),
		errors.Is(err, checkout.ErrAddressNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrTooManyItems),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, social.ErrInvalidRate),
		errors.Is(err, user.ErrInvalidOTP):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrCartConflict),
		errors.Is(err, checkout.ErrCartConflict),
		errors.Is(err, user.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrPaymentFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate decodes the request body into dst and runs struct
// validation. It writes the error response itself and reports success.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}

	return true
}
