package usecase

import (
	"context"
	"errors"
	"sync"

	"portfolio-backend/internal/domain"
)

// Submitter sends a validated submission to the relay
type Submitter interface {
	Submit(ctx context.Context, submission domain.ContactSubmission, cfg domain.SubmissionConfig) error
}

// ContactWorkflow is one contact form instance: validate, submit, feedback.
// Its lifetime context is cancelled by Dispose, which also cancels any relay
// call still in flight.
type ContactWorkflow struct {
	validator *ContactValidator
	submitter Submitter
	feedback  *FeedbackController
	cfg       domain.SubmissionConfig

	lifetime context.Context
	cancel   context.CancelFunc

	mu     sync.Mutex
	fields domain.ContactRequest
}

// NewContactWorkflow wires a form instance. cfg is copied and never re-read.
func NewContactWorkflow(validator *ContactValidator, submitter Submitter, feedback *FeedbackController, cfg domain.SubmissionConfig) *ContactWorkflow {
	lifetime, cancel := context.WithCancel(context.Background())
	return &ContactWorkflow{
		validator: validator,
		submitter: submitter,
		feedback:  feedback,
		cfg:       cfg,
		lifetime:  lifetime,
		cancel:    cancel,
	}
}

// Validate runs the validator only
func (w *ContactWorkflow) Validate(req domain.ContactRequest) domain.ValidationResult {
	return w.validator.Validate(req)
}

// Submit chains validate, relay and feedback. It blocks for the duration of
// the relay call. Validation failures leave the feedback state untouched.
func (w *ContactWorkflow) Submit(ctx context.Context, req domain.ContactRequest) (*domain.ContactOutcome, error) {
	if w.feedback.Disposed() {
		return nil, domain.ErrFormDisposed
	}
	// The outstanding submission owns the retained fields until it completes
	if !w.feedback.SubmitEnabled() {
		return nil, domain.ErrSubmissionInFlight
	}

	result := w.validator.Validate(req)
	if !result.Valid() {
		w.retainFields(req)
		return nil, &domain.ValidationError{Result: result}
	}

	if !w.cfg.Configured() {
		w.retainFields(req)
		toast := w.feedback.OnSubmitResult(domain.ErrNotConfigured)
		return w.outcome(toast), domain.ErrNotConfigured
	}

	if !w.feedback.OnSubmitAccepted() {
		if w.feedback.Disposed() {
			return nil, domain.ErrFormDisposed
		}
		return nil, domain.ErrSubmissionInFlight
	}
	w.setFields(req)

	relayCtx, stop := w.relayContext(ctx)
	err := w.submitter.Submit(relayCtx, result.Submission, w.cfg)
	stop()

	// The owning view may have gone away while the relay call was suspended
	if w.lifetime.Err() != nil {
		return nil, errors.Join(domain.ErrFormDisposed, err)
	}

	if err == nil {
		w.setFields(domain.ContactRequest{})
	}
	toast := w.feedback.OnSubmitResult(err)
	return w.outcome(toast), err
}

// Feedback returns the current state for rendering
func (w *ContactWorkflow) Feedback() domain.ContactFeedback {
	w.mu.Lock()
	fields := w.fields
	w.mu.Unlock()

	return domain.ContactFeedback{
		State:         w.feedback.State(),
		SubmitEnabled: w.feedback.SubmitEnabled(),
		Fields:        fields,
	}
}

// Dispose cancels the pending auto-clear and any in-flight relay call
func (w *ContactWorkflow) Dispose() {
	w.cancel()
	w.feedback.Dispose()
}

// relayContext keeps the caller's values but is cancelled only by the form's
// own lifetime, so a dropped HTTP connection does not abort a delivery
func (w *ContactWorkflow) relayContext(ctx context.Context) (context.Context, func()) {
	relayCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stopAfter := context.AfterFunc(w.lifetime, cancel)
	return relayCtx, func() {
		stopAfter()
		cancel()
	}
}

func (w *ContactWorkflow) setFields(req domain.ContactRequest) {
	w.mu.Lock()
	w.fields = req
	w.mu.Unlock()
}

// retainFields keeps rejected input unless a submission was accepted meanwhile
func (w *ContactWorkflow) retainFields(req domain.ContactRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.feedback.SubmitEnabled() {
		w.fields = req
	}
}

func (w *ContactWorkflow) outcome(toast string) *domain.ContactOutcome {
	return &domain.ContactOutcome{
		Feedback: w.Feedback(),
		Toast:    toast,
	}
}
