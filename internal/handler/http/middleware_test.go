package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M0h4mmadH/ex-online-shop/internal/user"
)

type mockUserService struct {
	RegisterFunc  func(ctx context.Context, reg user.Registration) error
	VerifyOTPFunc func(ctx context.Context, login, code string) (*user.User, error)
	GetByIDFunc   func(ctx context.Context, id uuid.UUID) (*user.User, error)
}

func (m *mockUserService) Register(ctx context.Context, reg user.Registration) error {
	return m.RegisterFunc(ctx, reg)
}

func (m *mockUserService) VerifyOTP(ctx context.Context, login, code string) (*user.User, error) {
	return m.VerifyOTPFunc(ctx, login, code)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func TestAuthenticator(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := userIDFromContext(r.Context())
		require.True(t, ok)
		assert.NotEqual(t, uuid.Nil, userID)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid header passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", uuid.Must(uuid.NewV4()).String())
		rec := httptest.NewRecorder()

		Authenticator(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		Authenticator(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-User-ID", "not-a-uuid")
		rec := httptest.NewRecorder()

		Authenticator(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	adminRequest := func(t *testing.T) *http.Request {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), userIDKey, uuid.Must(uuid.NewV4()))
		return req.WithContext(ctx)
	}

	t.Run("admin passes", func(t *testing.T) {
		users := &mockUserService{
			GetByIDFunc: func(_ context.Context, id uuid.UUID) (*user.User, error) {
				return &user.User{ID: id, IsAdmin: true}, nil
			},
		}
		rec := httptest.NewRecorder()

		RequireAdmin(users)(next).ServeHTTP(rec, adminRequest(t))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("regular user rejected", func(t *testing.T) {
		users := &mockUserService{
			GetByIDFunc: func(_ context.Context, id uuid.UUID) (*user.User, error) {
				return &user.User{ID: id, IsAdmin: false}, nil
			},
		}
		rec := httptest.NewRecorder()

		RequireAdmin(users)(next).ServeHTTP(rec, adminRequest(t))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		users := &mockUserService{
			GetByIDFunc: func(_ context.Context, _ uuid.UUID) (*user.User, error) {
				return nil, user.ErrNotFound
			},
		}
		rec := httptest.NewRecorder()

		RequireAdmin(users)(next).ServeHTTP(rec, adminRequest(t))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		users := &mockUserService{}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		RequireAdmin(users)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
