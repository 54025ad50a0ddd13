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

func newContactUsecase(t *testing.T, relay email.Relay, cfg domain.SubmissionConfig, attempts domain.ContactAttemptRepository) (domain.ContactUsecase, *testingclock.FakeClock) {
	t.Helper()
	clk := testingclock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	uc := usecase.NewContactUsecase(usecase.ContactOptions{
		Config:             cfg,
		Relay:              relay,
		Clock:              clk,
		FeedbackClearDelay: clearDelay,
		Attempts:           attempts,
	})
	t.Cleanup(uc.Close)
	return uc, clk
}

func outcomeIs(outcome string) interface{} {
	return mock.MatchedBy(func(a *domain.ContactAttempt) bool {
		return a.Outcome == outcome
	})
}

func TestContactUsecaseSessions(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("relay down"))
	uc, clk := newContactUsecase(t, relay, testConfig, nil)

	t.Run("Should report idle for an unknown session", func(t *testing.T) {
		fb := uc.Feedback("unknown")
		assert.Equal(t, domain.FeedbackIdle, fb.State.Status)
		assert.True(t, fb.SubmitEnabled)
		assert.Equal(t, domain.ContactRequest{}, fb.Fields)
	})

	t.Run("Should keep feedback per session", func(t *testing.T) {
		_, err := uc.Submit(context.Background(), "session-a", validRequest())
		require.Error(t, err)

		assert.Equal(t, domain.FeedbackFailed, uc.Feedback("session-a").State.Status)
		assert.Equal(t, validRequest(), uc.Feedback("session-a").Fields)
		assert.Equal(t, domain.FeedbackIdle, uc.Feedback("session-b").State.Status)

		clk.Step(clearDelay)
		assert.Equal(t, domain.FeedbackIdle, uc.Feedback("session-a").State.Status)
	})

	t.Run("Should forget a disposed session", func(t *testing.T) {
		_, _ = uc.Submit(context.Background(), "session-c", validRequest())
		require.True(t, clk.HasWaiters())

		uc.Dispose("session-c")
		assert.False(t, clk.HasWaiters())
		assert.Equal(t, domain.ContactRequest{}, uc.Feedback("session-c").Fields)
	})

	t.Run("Should ignore disposing an unknown session", func(t *testing.T) {
		assert.NotPanics(t, func() { uc.Dispose("never-seen") })
	})
}

func TestContactUsecaseRecordsAttempts(t *testing.T) {
	t.Run("Should record a sent attempt without message content", func(t *testing.T) {
		relay := new(MockRelay)
		relay.On("Deliver", mock.Anything, mock.Anything).Return(nil).Once()
		repo := new(MockAttemptRepo)
		repo.On("Record", mock.Anything, mock.MatchedBy(func(a *domain.ContactAttempt) bool {
			return a.Outcome == domain.OutcomeSent &&
				a.SessionHash != "" && a.SessionHash != "session-1" &&
				a.ID != "" && len(a.ViolatedFields) == 0
		})).Return(nil).Once()

		uc, _ := newContactUsecase(t, relay, testConfig, repo)
		outcome, err := uc.Submit(context.Background(), "session-1", validRequest())

		require.NoError(t, err)
		assert.Equal(t, domain.ToastSent, outcome.Toast)
		repo.AssertExpectations(t)
	})

	t.Run("Should record violated fields", func(t *testing.T) {
		repo := new(MockAttemptRepo)
		repo.On("Record", mock.Anything, mock.MatchedBy(func(a *domain.ContactAttempt) bool {
			return a.Outcome == domain.OutcomeInvalid &&
				assert.ObjectsAreEqual([]string{domain.FieldMessage, domain.FieldName}, a.ViolatedFields)
		})).Return(nil).Once()

		uc, _ := newContactUsecase(t, new(MockRelay), testConfig, repo)
		req := validRequest()
		req.Name = "A"
		req.Message = "short"
		_, err := uc.Submit(context.Background(), "session-2", req)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		repo.AssertExpectations(t)
	})

	t.Run("Should record a missing configuration", func(t *testing.T) {
		relay := new(MockRelay)
		repo := new(MockAttemptRepo)
		repo.On("Record", mock.Anything, outcomeIs(domain.OutcomeNotConfigured)).Return(nil).Once()

		uc, _ := newContactUsecase(t, relay, domain.SubmissionConfig{}, repo)
		outcome, err := uc.Submit(context.Background(), "session-3", validRequest())

		require.ErrorIs(t, err, domain.ErrNotConfigured)
		assert.Equal(t, domain.ToastNotConfigured, outcome.Toast)
		relay.AssertNumberOfCalls(t, "Deliver", 0)
		repo.AssertExpectations(t)
	})

	t.Run("Should not fail the submit when recording fails", func(t *testing.T) {
		relay := new(MockRelay)
		relay.On("Deliver", mock.Anything, mock.Anything).Return(nil).Once()
		repo := new(MockAttemptRepo)
		repo.On("Record", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		uc, _ := newContactUsecase(t, relay, testConfig, repo)
		_, err := uc.Submit(context.Background(), "session-4", validRequest())
		assert.NoError(t, err)
	})
}

func TestContactUsecaseRecentAttempts(t *testing.T) {
	t.Run("Should return an empty list without a repository", func(t *testing.T) {
		uc, _ := newContactUsecase(t, nil, testConfig, nil)
		attempts, err := uc.RecentAttempts(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, attempts)
		assert.NotNil(t, attempts)
	})

	t.Run("Should list from the repository", func(t *testing.T) {
		repo := new(MockAttemptRepo)
		want := []domain.ContactAttempt{{ID: "1", Outcome: domain.OutcomeSent}}
		repo.On("ListRecent", mock.Anything, 10).Return(want, nil).Once()

		uc, _ := newContactUsecase(t, nil, testConfig, repo)
		got, err := uc.RecentAttempts(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestContactUsecaseConfiguration(t *testing.T) {
	uc, _ := newContactUsecase(t, nil, testConfig, nil)
	assert.True(t, uc.Configured())
	assert.Equal(t, clearDelay, uc.FeedbackClearDelay())

	unconfigured, _ := newContactUsecase(t, nil, domain.SubmissionConfig{ServiceID: "s"}, nil)
	assert.False(t, unconfigured.Configured())
}

func TestContactUsecaseClose(t *testing.T) {
	relay := new(MockRelay)
	relay.On("Deliver", mock.Anything, mock.Anything).Return(nil)
	uc, clk := newContactUsecase(t, relay, testConfig, nil)

	_, err := uc.Submit(context.Background(), "session-1", validRequest())
	require.NoError(t, err)
	require.True(t, clk.HasWaiters())

	uc.Close()
	assert.False(t, clk.HasWaiters())
	assert.NotPanics(t, uc.Close)
}
