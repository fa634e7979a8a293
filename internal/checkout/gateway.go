package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// HTTPGateway charges through an external payment provider over HTTP.
type HTTPGateway struct {
	url    string
	client *http.Client
}

func NewHTTPGateway(url string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type chargeRequest struct {
	Amount int64 `json:"amount"`
}

type chargeResponse struct {
	TrackingCode string `json:"tracking_code"`
}

func (g *HTTPGateway) Charge(ctx context.Context, amount int64) (string, error) {
	body, err := json.Marshal(chargeRequest{Amount: amount})
	if err != nil {
		return "", fmt.Errorf("gateway: failed to marshal charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gateway: failed to build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway: charge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway: charge rejected with status %d", resp.StatusCode)
	}

	var chargeResp chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&chargeResp); err != nil {
		return "", fmt.Errorf("gateway: failed to decode charge response: %w", err)
	}
	if chargeResp.TrackingCode == "" {
		return "", fmt.Errorf("gateway: charge response missing tracking code")
	}

	return chargeResp.TrackingCode, nil
}

// LocalGateway approves every charge with a generated tracking code. Used
// when no PAYMENT_GATEWAY_URL is configured (development and tests).
type LocalGateway struct{}

func (LocalGateway) Charge(_ context.Context, amount int64) (string, error) {
	code, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("gateway: failed to generate tracking code: %w", err)
	}
	log.Debug().Int64("amount", amount).Str("tracking_code", code.String()).Msg("gateway: local charge approved")
	return code.String(), nil
}
