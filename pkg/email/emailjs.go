package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultEmailJSURL is the public EmailJS REST endpoint
const DefaultEmailJSURL = "https://api.emailjs.com"

const emailJSSendPath = "/api/v1.0/email/send"

// maxErrorBody caps how much of an error response is kept for logs
const maxErrorBody = 512

// EmailJSRelay sends contact messages through the EmailJS REST API
type EmailJSRelay struct {
	baseURL     string
	accessToken string
	client      *http.Client
}

// EmailJSOption configures an EmailJSRelay
type EmailJSOption func(*EmailJSRelay)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) EmailJSOption {
	return func(r *EmailJSRelay) {
		if client != nil {
			r.client = client
		}
	}
}

// WithAccessToken sets the private key sent as accessToken, required when
// the EmailJS account enforces strict mode for API calls
func WithAccessToken(token string) EmailJSOption {
	return func(r *EmailJSRelay) {
		r.accessToken = token
	}
}

// NewEmailJSRelay creates a relay for the given base URL (empty means DefaultEmailJSURL)
func NewEmailJSRelay(baseURL string, timeout time.Duration, opts ...EmailJSOption) *EmailJSRelay {
	if baseURL == "" {
		baseURL = DefaultEmailJSURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	r := &EmailJSRelay{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type emailJSPayload struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Deliver performs exactly one send call. It never retries.
func (r *EmailJSRelay) Deliver(ctx context.Context, req RelayRequest) error {
	payload := emailJSPayload{
		ServiceID:      req.ServiceID,
		TemplateID:     req.TemplateID,
		UserID:         req.PublicKey,
		AccessToken:    r.accessToken,
		TemplateParams: req.Params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode relay payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+emailJSSendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("failed to read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	// EmailJS acknowledges with a plain "OK"
	if ack := strings.TrimSpace(string(respBody)); ack != "" && !strings.EqualFold(ack, "OK") {
		return fmt.Errorf("unexpected relay acknowledgement: %q", ack)
	}

	return nil
}
