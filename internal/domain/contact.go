package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Contact form field names, used as keys in validation results
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var (
	// ErrNotConfigured is returned when the relay credentials are missing
	ErrNotConfigured = errors.New("contact relay is not configured")
	// ErrSubmissionInFlight is returned when a form instance is already submitting
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	// ErrFormDisposed is returned when a result arrives for a torn down form instance
	ErrFormDisposed = errors.New("contact form has been disposed")
)

// ContactRequest represents the raw contact form fields as typed by the visitor
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// IsEmpty reports whether every field is blank
func (r ContactRequest) IsEmpty() bool {
	return r.Name == "" && r.Email == "" && r.Subject == "" && r.Message == ""
}

// ContactSubmission is a contact request that passed validation
type ContactSubmission struct {
	Name    string `validate:"min=2"`
	Email   string `validate:"email,dotted_domain"`
	Subject string `validate:"min=5"`
	Message string `validate:"min=10"`
}

// NewContactSubmission trims the raw request fields
func NewContactSubmission(req ContactRequest) ContactSubmission {
	return ContactSubmission{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
}

// ViolationKind classifies a field validation failure
type ViolationKind string

const (
	ViolationTooShort      ViolationKind = "TooShort"
	ViolationInvalidFormat ViolationKind = "InvalidFormat"
)

// FieldViolation describes why a single field was rejected
type FieldViolation struct {
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// ValidationResult is the outcome of validating a contact request.
// Errors is empty when the request was accepted.
type ValidationResult struct {
	Submission ContactSubmission         `json:"-"`
	Errors     map[string]FieldViolation `json:"errors,omitempty"`
}

// Valid reports whether no field was violated
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Fields returns the violated field names in sorted order
func (r ValidationResult) Fields() []string {
	fields := make([]string, 0, len(r.Errors))
	for field := range r.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// ValidationError wraps a failed ValidationResult
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("contact form invalid: %s", strings.Join(e.Result.Fields(), ", "))
}

// DeliveryError is returned when the relay could not deliver a submission.
// The cause is meant for logs, never for the visitor.
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("contact delivery failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("contact delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// SubmissionConfig holds the relay identifiers. It is built once at start-up.
type SubmissionConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Configured reports whether all identifiers are present
func (c SubmissionConfig) Configured() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

// FeedbackStatus is the variant of the form's transient feedback
type FeedbackStatus string

const (
	FeedbackIdle       FeedbackStatus = "idle"
	FeedbackSubmitting FeedbackStatus = "submitting"
	FeedbackSucceeded  FeedbackStatus = "succeeded"
	FeedbackFailed     FeedbackStatus = "failed"
)

// Visitor facing feedback text
const (
	MessageSent          = "Message sent successfully!"
	MessageFailed        = "Failed to send message. Please try again."
	MessageNotConfigured = "Contact form is not configured. Please try later."

	ToastSent          = "Message sent successfully! I'll get back to you soon."
	ToastFailed        = "Failed to send message. Please try again."
	ToastNotConfigured = "Contact not configured. Please contact the site owner."
)

// FeedbackState is the current inline feedback of a form instance
type FeedbackState struct {
	Status  FeedbackStatus `json:"status"`
	Message string         `json:"message,omitempty"`
}

// ContactFeedback is what the UI renders for a form instance
type ContactFeedback struct {
	State         FeedbackState  `json:"state"`
	SubmitEnabled bool           `json:"submit_enabled"`
	Fields        ContactRequest `json:"fields"`
}

// ContactOutcome is returned from a completed submit
type ContactOutcome struct {
	Feedback ContactFeedback `json:"feedback"`
	Toast    string          `json:"toast,omitempty"`
}

// Contact attempt outcomes recorded in the audit log and metrics
const (
	OutcomeSent          = "sent"
	OutcomeInvalid       = "invalid"
	OutcomeNotConfigured = "not_configured"
	OutcomeFailed        = "failed"
	OutcomeRejected      = "in_flight"
	OutcomeDiscarded     = "discarded"
)

// ContactAttempt is one audit record. Message content is never stored.
type ContactAttempt struct {
	ID             string    `json:"id"`
	SessionHash    string    `json:"session_hash"`
	Outcome        string    `json:"outcome"`
	ViolatedFields []string  `json:"violated_fields,omitempty"`
	ErrorKind      string    `json:"error_kind,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ContactAttemptRepository persists contact attempts
type ContactAttemptRepository interface {
	Record(ctx context.Context, attempt *ContactAttempt) error
	ListRecent(ctx context.Context, limit int) ([]ContactAttempt, error)
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Validate checks the fields without touching any form instance
	Validate(req ContactRequest) ValidationResult
	// Submit runs validate, relay and feedback for the session's form instance
	Submit(ctx context.Context, sessionID string, req ContactRequest) (*ContactOutcome, error)
	// Feedback returns the session's current form state
	Feedback(sessionID string) ContactFeedback
	// Dispose tears down the session's form instance
	Dispose(sessionID string)
	// Configured reports whether real submission is possible
	Configured() bool
	// FeedbackClearDelay is the auto-clear delay of inline feedback
	FeedbackClearDelay() time.Duration
	// RecentAttempts lists audit records, newest first
	RecentAttempts(ctx context.Context, limit int) ([]ContactAttempt, error)
	// Close disposes every form instance
	Close()
}
