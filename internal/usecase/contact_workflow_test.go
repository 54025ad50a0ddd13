package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func newWorkflow(relay email.Relay, cfg domain.SubmissionConfig) (*usecase.ContactWorkflow, *testingclock.FakeClock) {
	fb, clk := newFeedback()
	wf := usecase.NewContactWorkflow(
		usecase.NewContactValidator(nil),
		usecase.NewContactSubmitter(relay),
		fb,
		cfg,
	)
	return wf, clk
}

// blockingRelay holds Deliver until release is closed, ignoring cancellation.
// With awaitCancel set it also waits (bounded) for its context to end before
// reporting ctx.Err().
type blockingRelay struct {
	started     chan struct{}
	release     chan struct{}
	err         error
	ctxErr      chan error
	awaitCancel bool
}

func newBlockingRelay(err error) *blockingRelay {
	return &blockingRelay{
		started: make(chan struct{}),
		release: make(chan struct{}),
		err:     err,
		ctxErr:  make(chan error, 1),
	}
}

func (r *blockingRelay) Deliver(ctx context.Context, _ email.RelayRequest) error {
	close(r.started)
	<-r.release
	if r.awaitCancel {
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
		}
	}
	r.ctxErr <- ctx.Err()
	return r.err
}

func TestContactWorkflowSuccess(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Deliver", mock.Anything, mock.Anything).Return(nil).Once()
	wf, clk := newWorkflow(relay, testConfig)

	outcome, err := wf.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	t.Run("Should report success and clear every field", func(t *testing.T) {
		assert.Equal(t, domain.ToastSent, outcome.Toast)
		assert.Equal(t, domain.FeedbackSucceeded, outcome.Feedback.State.Status)
		assert.Equal(t, domain.ContactRequest{}, outcome.Feedback.Fields)
		assert.True(t, outcome.Feedback.SubmitEnabled)
	})

	t.Run("Should return to idle after five seconds", func(t *testing.T) {
		clk.Step(clearDelay - time.Millisecond)
		assert.Equal(t, domain.FeedbackSucceeded, wf.Feedback().State.Status)
		clk.Step(time.Millisecond)
		assert.Equal(t, domain.FeedbackIdle, wf.Feedback().State.Status)
	})

	relay.AssertExpectations(t)
}

func TestContactWorkflowFailure(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Deliver", mock.Anything, mock.Anything).Return(&email.StatusError{StatusCode: 500}).Once()
	wf, clk := newWorkflow(relay, testConfig)

	req := validRequest()
	outcome, err := wf.Submit(context.Background(), req)

	var deliveryErr *domain.DeliveryError
	require.ErrorAs(t, err, &deliveryErr)

	t.Run("Should report failure and keep the entered values", func(t *testing.T) {
		assert.Equal(t, domain.ToastFailed, outcome.Toast)
		assert.Equal(t, domain.FeedbackState{Status: domain.FeedbackFailed, Message: domain.MessageFailed}, outcome.Feedback.State)
		assert.Equal(t, req, outcome.Feedback.Fields)
	})

	t.Run("Should return to idle after five seconds", func(t *testing.T) {
		clk.Step(clearDelay)
		assert.Equal(t, domain.FeedbackIdle, wf.Feedback().State.Status)
		assert.Equal(t, req, wf.Feedback().Fields)
	})
}

func TestContactWorkflowValidation(t *testing.T) {
	relay := new(MockRelay)
	wf, clk := newWorkflow(relay, testConfig)

	req := validRequest()
	req.Email = "not-an-email"
	outcome, err := wf.Submit(context.Background(), req)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Nil(t, outcome)
	assert.Equal(t, []string{domain.FieldEmail}, validationErr.Result.Fields())

	t.Run("Should leave feedback untouched and make no calls", func(t *testing.T) {
		assert.Equal(t, domain.FeedbackIdle, wf.Feedback().State.Status)
		assert.Equal(t, req, wf.Feedback().Fields)
		assert.False(t, clk.HasWaiters())
		relay.AssertNumberOfCalls(t, "Deliver", 0)
	})
}

func TestContactWorkflowNotConfigured(t *testing.T) {
	relay := new(MockRelay)
	wf, clk := newWorkflow(relay, domain.SubmissionConfig{TemplateID: "t", PublicKey: "k"})

	outcome, err := wf.Submit(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrNotConfigured)

	t.Run("Should fail immediately with zero relay calls", func(t *testing.T) {
		relay.AssertNumberOfCalls(t, "Deliver", 0)
		assert.Equal(t, domain.ToastNotConfigured, outcome.Toast)
		assert.Equal(t, domain.FeedbackState{Status: domain.FeedbackFailed, Message: domain.MessageNotConfigured}, outcome.Feedback.State)
	})

	t.Run("Should still validate first", func(t *testing.T) {
		_, err := wf.Submit(context.Background(), domain.ContactRequest{})
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Should clear after five seconds", func(t *testing.T) {
		clk.Step(clearDelay)
		assert.Equal(t, domain.FeedbackIdle, wf.Feedback().State.Status)
	})
}

func TestContactWorkflowResubmitCancelsTimer(t *testing.T) {
	var wf *usecase.ContactWorkflow
	var seen []domain.FeedbackStatus
	calls := 0
	relay := relayFunc(func(ctx context.Context, req email.RelayRequest) error {
		seen = append(seen, wf.Feedback().State.Status)
		calls++
		if calls == 1 {
			return errors.New("relay down")
		}
		return nil
	})
	wf, clk := newWorkflow(relay, testConfig)

	_, err := wf.Submit(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, domain.FeedbackFailed, wf.Feedback().State.Status)

	clk.Step(3 * time.Second)
	_, err = wf.Submit(context.Background(), validRequest())
	require.NoError(t, err)

	t.Run("Should enter submitting immediately", func(t *testing.T) {
		assert.Equal(t, []domain.FeedbackStatus{domain.FeedbackSubmitting, domain.FeedbackSubmitting}, seen)
	})

	t.Run("Should not clear at the original deadline", func(t *testing.T) {
		clk.Step(2 * time.Second)
		assert.Equal(t, domain.FeedbackSucceeded, wf.Feedback().State.Status)
	})

	t.Run("Should clear five seconds after the second result", func(t *testing.T) {
		clk.Step(3 * time.Second)
		assert.Equal(t, domain.FeedbackIdle, wf.Feedback().State.Status)
	})
}

func TestContactWorkflowSingleInFlight(t *testing.T) {
	relay := newBlockingRelay(nil)
	wf, _ := newWorkflow(relay, testConfig)

	done := make(chan error, 1)
	go func() {
		_, err := wf.Submit(context.Background(), validRequest())
		done <- err
	}()
	<-relay.started

	t.Run("Should reject a second submit while one is outstanding", func(t *testing.T) {
		assert.False(t, wf.Feedback().SubmitEnabled)
		_, err := wf.Submit(context.Background(), validRequest())
		assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	})

	close(relay.release)
	require.NoError(t, <-done)
	assert.Equal(t, domain.FeedbackSucceeded, wf.Feedback().State.Status)
}

func TestContactWorkflowKeepsFieldsOfOutstandingSubmit(t *testing.T) {
	relay := newBlockingRelay(errors.New("relay down"))
	wf, _ := newWorkflow(relay, testConfig)

	done := make(chan error, 1)
	go func() {
		_, err := wf.Submit(context.Background(), validRequest())
		done <- err
	}()
	<-relay.started

	t.Run("Should reject invalid input without touching the fields", func(t *testing.T) {
		outcome, err := wf.Submit(context.Background(), domain.ContactRequest{Name: "x"})
		assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
		assert.Nil(t, outcome)
		assert.Equal(t, validRequest(), wf.Feedback().Fields)
	})

	close(relay.release)
	var deliveryErr *domain.DeliveryError
	require.ErrorAs(t, <-done, &deliveryErr)

	t.Run("Should show the values that were sent after the failure", func(t *testing.T) {
		assert.Equal(t, domain.FeedbackFailed, wf.Feedback().State.Status)
		assert.Equal(t, validRequest(), wf.Feedback().Fields)
	})
}

func TestContactWorkflowDisposeWhileSubmitting(t *testing.T) {
	relay := newBlockingRelay(nil)
	relay.awaitCancel = true
	wf, clk := newWorkflow(relay, testConfig)

	type result struct {
		outcome *domain.ContactOutcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		outcome, err := wf.Submit(context.Background(), validRequest())
		done <- result{outcome, err}
	}()
	<-relay.started

	require.NotPanics(t, wf.Dispose)
	close(relay.release)
	res := <-done

	t.Run("Should cancel the relay context", func(t *testing.T) {
		assert.ErrorIs(t, <-relay.ctxErr, context.Canceled)
	})

	t.Run("Should discard the late result without a state change", func(t *testing.T) {
		assert.ErrorIs(t, res.err, domain.ErrFormDisposed)
		assert.Nil(t, res.outcome)
		assert.Equal(t, domain.FeedbackSubmitting, wf.Feedback().State.Status)
		assert.Equal(t, validRequest(), wf.Feedback().Fields)
		assert.False(t, clk.HasWaiters())
	})

	t.Run("Should refuse further submits", func(t *testing.T) {
		_, err := wf.Submit(context.Background(), validRequest())
		assert.ErrorIs(t, err, domain.ErrFormDisposed)
	})
}

func TestContactWorkflowIgnoresCallerCancellation(t *testing.T) {
	relay := newBlockingRelay(nil)
	wf, _ := newWorkflow(relay, testConfig)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := wf.Submit(ctx, validRequest())
		done <- err
	}()
	<-relay.started

	cancel()
	close(relay.release)

	require.NoError(t, <-done)
	assert.NoError(t, <-relay.ctxErr)
	assert.Equal(t, domain.FeedbackSucceeded, wf.Feedback().State.Status)
}
