package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/social"
)

type CommentProductRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Comment   string    `json:"comment" validate:"required,max=2500"`
}

type RateProductRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Rate      int       `json:"rate" validate:"required,min=1,max=10"`
}

type SocialHandler struct {
	social   social.Service
	validate *validator.Validate
}

func NewSocialHandler(socialSvc social.Service) *SocialHandler {
	return &SocialHandler{
		social:   socialSvc,
		validate: validator.New(),
	}
}

func (h *SocialHandler) RegisterRoutes(router chi.Router) {
	router.Post("/products/comment", h.handleCommentProduct)
	router.Post("/products/rate", h.handleRateProduct)
}

func (h *SocialHandler) handleCommentProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload CommentProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	comment, err := h.social.CommentProduct(r.Context(), userID, requestPayload.ProductID, requestPayload.Comment)
	if err != nil {
		log.Warn().Err(err).Stringer("product_id", requestPayload.ProductID).Msg("Failed to comment product")

		if errors.Is(err, social.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
		} else {
			respondWithError(w, mapErrorToStatusCode(err), "Failed to comment product")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, comment)
}

func (h *SocialHandler) handleRateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var requestPayload RateProductRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	rate, err := h.social.RateProduct(r.Context(), userID, requestPayload.ProductID, requestPayload.Rate)
	if err != nil {
		log.Warn().Err(err).Stringer("product_id", requestPayload.ProductID).Msg("Failed to rate product")

		switch {
		case errors.Is(err, social.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, social.ErrInvalidRate):
			respondWithError(w, http.StatusBadRequest, "Invalid rate")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to rate product")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, rate)
}
