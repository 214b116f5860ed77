package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/FullStackParihar/navodya-backend-sub000/internal/cart"
)

// Intent is the gateway-side handle for a charge attempt.
type Intent struct {
	ProviderRef  string
	ClientSecret string
}

// DeclineError carries the gateway's human-readable refusal verbatim; it is
// surfaced to the shopper unchanged.
type DeclineError struct {
	Reason string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined: %s", e.Reason)
}

// Gateway is the client-visible contract of the external payment provider.
type Gateway interface {
	CreateIntent(ctx context.Context, amount cart.Money, currency string) (*Intent, error)
	Confirm(ctx context.Context, providerRef string) error
}

// HTTPGateway talks to the provider's REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type intentResponse struct {
	ID            string `json:"id"`
	ClientSecret  string `json:"client_secret"`
	Status        string `json:"status"`
	DeclineReason string `json:"decline_reason"`
}

func (g *HTTPGateway) CreateIntent(ctx context.Context, amount cart.Money, currency string) (*Intent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal intent request: %w", err)
	}

	resp, err := g.post(ctx, "/v1/payment_intents", payload)
	if err != nil {
		return nil, err
	}

	return &Intent{ProviderRef: resp.ID, ClientSecret: resp.ClientSecret}, nil
}

func (g *HTTPGateway) Confirm(ctx context.Context, providerRef string) error {
	resp, err := g.post(ctx, fmt.Sprintf("/v1/payment_intents/%s/confirm", providerRef), nil)
	if err != nil {
		return err
	}

	if resp.Status != "succeeded" {
		reason := resp.DeclineReason
		if reason == "" {
			reason = resp.Status
		}
		return &DeclineError{Reason: reason}
	}
	return nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, body []byte) (*intentResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 500 {
		return nil, fmt.Errorf("gateway returned %d", httpResp.StatusCode)
	}

	var resp intentResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		reason := resp.DeclineReason
		if reason == "" {
			reason = fmt.Sprintf("gateway returned %d", httpResp.StatusCode)
		}
		return nil, &DeclineError{Reason: reason}
	}

	return &resp, nil
}
