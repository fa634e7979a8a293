package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGateway_Charge(t *testing.T) {
	t.Run("charge accepted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req chargeRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, int64(1250), req.Amount)

			_ = json.NewEncoder(w).Encode(chargeResponse{TrackingCode: "track-123"})
		}))
		defer server.Close()

		gateway := NewHTTPGateway(server.URL, 5*time.Second)
		code, err := gateway.Charge(context.Background(), 1250)
		require.NoError(t, err)
		assert.Equal(t, "track-123", code)
	})

	t.Run("non-200 is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
		}))
		defer server.Close()

		gateway := NewHTTPGateway(server.URL, 5*time.Second)
		_, err := gateway.Charge(context.Background(), 1250)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected")
	})

	t.Run("missing tracking code is rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(chargeResponse{})
		}))
		defer server.Close()

		gateway := NewHTTPGateway(server.URL, 5*time.Second)
		_, err := gateway.Charge(context.Background(), 1250)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing tracking code")
	})
}

func TestLocalGateway_Charge(t *testing.T) {
	first, err := LocalGateway{}.Charge(context.Background(), 100)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := LocalGateway{}.Charge(context.Background(), 100)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
