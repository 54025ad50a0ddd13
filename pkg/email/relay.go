package email

import (
	"context"
	"fmt"
)

// TemplateParams are the values substituted into the relay's email template
type TemplateParams struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// RelayRequest carries one message plus the routing identifiers of the provider account
type RelayRequest struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	Params     TemplateParams
}

// Relay delivers a contact message through an external email provider
type Relay interface {
	Deliver(ctx context.Context, req RelayRequest) error
}

// StatusError is returned when the provider answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("relay responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("relay responded with status %d: %s", e.StatusCode, e.Body)
}
