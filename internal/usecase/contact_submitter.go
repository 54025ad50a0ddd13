package usecase

import (
	"context"
	"errors"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/email"
	"portfolio-backend/pkg/metrics"
)

// ContactSubmitter hands validated submissions to the email relay
type ContactSubmitter struct {
	relay email.Relay
}

// NewContactSubmitter creates a submitter on top of relay
func NewContactSubmitter(relay email.Relay) *ContactSubmitter {
	return &ContactSubmitter{relay: relay}
}

// Submit delivers one submission. Missing configuration is reported before any
// network I/O; relay failures come back as *domain.DeliveryError and are not retried.
func (s *ContactSubmitter) Submit(ctx context.Context, submission domain.ContactSubmission, cfg domain.SubmissionConfig) error {
	if !cfg.Configured() || s.relay == nil {
		return domain.ErrNotConfigured
	}

	start := time.Now()
	err := s.relay.Deliver(ctx, email.RelayRequest{
		ServiceID:  cfg.ServiceID,
		TemplateID: cfg.TemplateID,
		PublicKey:  cfg.PublicKey,
		Params: email.TemplateParams{
			Name:    submission.Name,
			Email:   submission.Email,
			Subject: submission.Subject,
			Message: submission.Message,
		},
	})
	metrics.ObserveRelay(err == nil, time.Since(start))
	if err == nil {
		return nil
	}

	deliveryErr := &domain.DeliveryError{Err: err}
	var statusErr *email.StatusError
	if errors.As(err, &statusErr) {
		deliveryErr.StatusCode = statusErr.StatusCode
	}
	return deliveryErr
}
