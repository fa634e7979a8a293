package http

import (
	"context"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M0h4mmadH/ex-online-shop/internal/user"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Authenticator trusts the X-User-ID header set by the auth layer in front
// of this service. Token verification itself is not this service's job.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("X-User-ID")
		if header == "" {
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := uuid.FromString(header)
		if err != nil {
			log.Warn().Str("x_user_id", header).Msg("Malformed X-User-ID header")
			respondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin guards admin-only routes. Must run after Authenticator.
func RequireAdmin(users user.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := userIDFromContext(r.Context())
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			u, err := users.GetByID(r.Context(), userID)
			if err != nil {
				respondWithError(w, mapErrorToStatusCode(err), "Forbidden")
				return
			}
			if !u.IsAdmin {
				respondWithError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func userIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
