package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/user"
)

type RegisterRequest struct {
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,numeric,min=10,max=15"`
	Password    string `json:"password" validate:"required,min=8"`
}

type VerifyOTPRequest struct {
	Login string `json:"login" validate:"required"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type UserHandler struct {
	users    user.Service
	validate *validator.Validate
}

func NewUserHandler(users user.Service) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: validator.New(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Post("/user/register", h.handleRegister)
	router.Post("/user/verify-otp", h.handleVerifyOTP)
}

func (h *UserHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	if requestPayload.Email == "" && requestPayload.PhoneNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Email or phone number is required")
		return
	}

	err := h.users.Register(r.Context(), user.Registration{
		Email:       requestPayload.Email,
		PhoneNumber: requestPayload.PhoneNumber,
		Password:    requestPayload.Password,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user")
		respondWithError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
}

func (h *UserHandler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var requestPayload VerifyOTPRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	createdUser, err := h.users.VerifyOTP(r.Context(), requestPayload.Login, requestPayload.OTP)
	if err != nil {
		log.Warn().Err(err).Str("login", requestPayload.Login).Msg("OTP verification failed")

		switch {
		case errors.Is(err, user.ErrInvalidOTP):
			respondWithError(w, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, user.ErrAlreadyExists):
			respondWithError(w, http.StatusConflict, "User already exists")
		default:
			respondWithError(w, mapErrorToStatusCode(err), "Failed to verify OTP")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, createdUser)
}
