package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/email"
	"portfolio-backend/pkg/logger"
	"portfolio-backend/pkg/metrics"
	"portfolio-backend/pkg/security"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"k8s.io/utils/clock"
)

// DefaultSessionTTL is how long an untouched form instance is kept
const DefaultSessionTTL = 30 * time.Minute

// ContactOptions configures the contact usecase
type ContactOptions struct {
	Config             domain.SubmissionConfig
	Relay              email.Relay
	Validate           *validator.Validate
	Clock              clock.WithDelayedExecution
	FeedbackClearDelay time.Duration
	SessionTTL         time.Duration
	Attempts           domain.ContactAttemptRepository // optional
	Events             *security.SecurityLogger        // optional
}

type contactUsecase struct {
	cfg       domain.SubmissionConfig
	validator *ContactValidator
	submitter *ContactSubmitter
	clock     clock.WithDelayedExecution
	delay     time.Duration
	attempts  domain.ContactAttemptRepository
	events    *security.SecurityLogger

	mu        sync.Mutex
	sessions  *ttlcache.Cache[string, *ContactWorkflow]
	active    atomic.Int64
	closeOnce sync.Once
}

// NewContactUsecase creates a new contact usecase. Form instances are kept
// per session and disposed when they expire, are deleted, or on Close.
func NewContactUsecase(opts ContactOptions) domain.ContactUsecase {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.FeedbackClearDelay <= 0 {
		opts.FeedbackClearDelay = DefaultFeedbackClearDelay
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}

	uc := &contactUsecase{
		cfg:       opts.Config,
		validator: NewContactValidator(opts.Validate),
		submitter: NewContactSubmitter(opts.Relay),
		clock:     opts.Clock,
		delay:     opts.FeedbackClearDelay,
		attempts:  opts.Attempts,
		events:    opts.Events,
	}

	uc.sessions = ttlcache.New(
		ttlcache.WithTTL[string, *ContactWorkflow](opts.SessionTTL),
	)
	uc.sessions.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *ContactWorkflow]) {
		item.Value().Dispose()
		metrics.SetActiveForms(int(uc.active.Add(-1)))
	})
	go uc.sessions.Start()

	return uc
}

// Validate checks the fields without touching any form instance
func (uc *contactUsecase) Validate(req domain.ContactRequest) domain.ValidationResult {
	return uc.validator.Validate(req)
}

// Submit runs the workflow of the session's form instance
func (uc *contactUsecase) Submit(ctx context.Context, sessionID string, req domain.ContactRequest) (*domain.ContactOutcome, error) {
	wf := uc.workflow(sessionID)
	outcome, err := wf.Submit(ctx, req)

	var validationErr *domain.ValidationError
	switch {
	case err == nil:
		uc.record(ctx, sessionID, domain.OutcomeSent, nil, "")
	case errors.As(err, &validationErr):
		uc.record(ctx, sessionID, domain.OutcomeInvalid, validationErr.Result.Fields(), "ValidationError")
	case errors.Is(err, domain.ErrFormDisposed):
		uc.events.LogContactResultDiscarded(ctx, sessionID)
		uc.record(ctx, sessionID, domain.OutcomeDiscarded, nil, "")
	case errors.Is(err, domain.ErrNotConfigured):
		uc.events.LogContactNotConfigured(ctx, sessionID, uc.missingConfig())
		uc.record(ctx, sessionID, domain.OutcomeNotConfigured, nil, "NotConfigured")
	case errors.Is(err, domain.ErrSubmissionInFlight):
		uc.record(ctx, sessionID, domain.OutcomeRejected, nil, "")
	default:
		uc.events.LogContactDeliveryFailed(ctx, sessionID, err)
		logger.Log.ErrorContext(ctx, "Contact delivery failed", "error", err)
		uc.record(ctx, sessionID, domain.OutcomeFailed, nil, "DeliveryFailed")
	}

	return outcome, err
}

// Feedback returns the session's form state, Idle when no instance exists
func (uc *contactUsecase) Feedback(sessionID string) domain.ContactFeedback {
	if item := uc.sessions.Get(sessionID); item != nil {
		return item.Value().Feedback()
	}
	return domain.ContactFeedback{
		State:         domain.FeedbackState{Status: domain.FeedbackIdle},
		SubmitEnabled: true,
	}
}

// Dispose tears down the session's form instance
func (uc *contactUsecase) Dispose(sessionID string) {
	uc.mu.Lock()
	item := uc.sessions.Get(sessionID, ttlcache.WithDisableTouchOnHit[string, *ContactWorkflow]())
	uc.mu.Unlock()
	if item == nil {
		return
	}
	// Dispose before the eviction callback runs so teardown is synchronous
	item.Value().Dispose()
	uc.sessions.Delete(sessionID)
}

// Configured reports whether real submission is possible
func (uc *contactUsecase) Configured() bool {
	return uc.cfg.Configured()
}

// FeedbackClearDelay is the auto-clear delay of inline feedback
func (uc *contactUsecase) FeedbackClearDelay() time.Duration {
	return uc.delay
}

// RecentAttempts lists audit records, newest first
func (uc *contactUsecase) RecentAttempts(ctx context.Context, limit int) ([]domain.ContactAttempt, error) {
	if uc.attempts == nil {
		return []domain.ContactAttempt{}, nil
	}
	return uc.attempts.ListRecent(ctx, limit)
}

// Close stops expiry and disposes every form instance
func (uc *contactUsecase) Close() {
	uc.closeOnce.Do(func() {
		uc.sessions.Stop()
		for _, item := range uc.sessions.Items() {
			item.Value().Dispose()
		}
		uc.sessions.DeleteAll()
	})
}

func (uc *contactUsecase) workflow(sessionID string) *ContactWorkflow {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if item := uc.sessions.Get(sessionID); item != nil {
		return item.Value()
	}

	wf := NewContactWorkflow(
		uc.validator,
		uc.submitter,
		NewFeedbackController(uc.clock, uc.delay),
		uc.cfg,
	)
	uc.sessions.Set(sessionID, wf, ttlcache.DefaultTTL)
	metrics.SetActiveForms(int(uc.active.Add(1)))
	return wf
}

func (uc *contactUsecase) record(ctx context.Context, sessionID, outcome string, fields []string, errKind string) {
	metrics.RecordSubmission(outcome)
	if uc.attempts == nil {
		return
	}

	attempt := &domain.ContactAttempt{
		ID:             uuid.NewString(),
		SessionHash:    security.HashValue(sessionID),
		Outcome:        outcome,
		ViolatedFields: fields,
		ErrorKind:      errKind,
		CreatedAt:      time.Now().UTC(),
	}

	// The visitor's request must not fail because the audit log did
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := uc.attempts.Record(recordCtx, attempt); err != nil {
		logger.Log.WarnContext(ctx, "Failed to record contact attempt", "error", err, "outcome", outcome)
	}
}

func (uc *contactUsecase) missingConfig() []string {
	var missing []string
	if uc.cfg.ServiceID == "" {
		missing = append(missing, "service_id")
	}
	if uc.cfg.TemplateID == "" {
		missing = append(missing, "template_id")
	}
	if uc.cfg.PublicKey == "" {
		missing = append(missing, "public_key")
	}
	return missing
}
