package usecase_test

import (
	"context"
	"errors"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"
	"portfolio-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Relay
type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Deliver(ctx context.Context, req email.RelayRequest) error {
	return m.Called(ctx, req).Error(0)
}

// Mock Repositories
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Record(ctx context.Context, attempt *domain.ContactAttempt) error {
	return m.Called(ctx, attempt).Error(0)
}

func (m *MockAttemptRepo) ListRecent(ctx context.Context, limit int) ([]domain.ContactAttempt, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContactAttempt), args.Error(1)
}

// relayFunc adapts a function to email.Relay
type relayFunc func(ctx context.Context, req email.RelayRequest) error

func (f relayFunc) Deliver(ctx context.Context, req email.RelayRequest) error {
	return f(ctx, req)
}

var testConfig = domain.SubmissionConfig{
	ServiceID:  "service_abc",
	TemplateID: "template_xyz",
	PublicKey:  "public_key",
}

func TestContactSubmitterNotConfigured(t *testing.T) {
	submission := domain.NewContactSubmission(validRequest())

	missing := map[string]domain.SubmissionConfig{
		"service_id":  {TemplateID: "t", PublicKey: "k"},
		"template_id": {ServiceID: "s", PublicKey: "k"},
		"public_key":  {ServiceID: "s", TemplateID: "t"},
	}

	for name, cfg := range missing {
		t.Run("Should fail without network calls when "+name+" is empty", func(t *testing.T) {
			relay := new(MockRelay)
			s := usecase.NewContactSubmitter(relay)

			err := s.Submit(context.Background(), submission, cfg)
			assert.ErrorIs(t, err, domain.ErrNotConfigured)
			relay.AssertNumberOfCalls(t, "Deliver", 0)
		})
	}

	t.Run("Should fail when no relay is wired", func(t *testing.T) {
		s := usecase.NewContactSubmitter(nil)
		assert.ErrorIs(t, s.Submit(context.Background(), submission, testConfig), domain.ErrNotConfigured)
	})
}

func TestContactSubmitterDelivery(t *testing.T) {
	submission := domain.NewContactSubmission(validRequest())

	t.Run("Should deliver exactly once with the configured identifiers", func(t *testing.T) {
		relay := new(MockRelay)
		relay.On("Deliver", mock.Anything, email.RelayRequest{
			ServiceID:  testConfig.ServiceID,
			TemplateID: testConfig.TemplateID,
			PublicKey:  testConfig.PublicKey,
			Params: email.TemplateParams{
				Name:    submission.Name,
				Email:   submission.Email,
				Subject: submission.Subject,
				Message: submission.Message,
			},
		}).Return(nil).Once()

		err := usecase.NewContactSubmitter(relay).Submit(context.Background(), submission, testConfig)
		require.NoError(t, err)
		relay.AssertExpectations(t)
	})

	t.Run("Should wrap relay failures as DeliveryError with the status code", func(t *testing.T) {
		relay := new(MockRelay)
		relay.On("Deliver", mock.Anything, mock.Anything).
			Return(&email.StatusError{StatusCode: 400, Body: "The Public Key is invalid"}).Once()

		err := usecase.NewContactSubmitter(relay).Submit(context.Background(), submission, testConfig)

		var deliveryErr *domain.DeliveryError
		require.ErrorAs(t, err, &deliveryErr)
		assert.Equal(t, 400, deliveryErr.StatusCode)
		relay.AssertNumberOfCalls(t, "Deliver", 1)
	})

	t.Run("Should not retry transport failures", func(t *testing.T) {
		relay := new(MockRelay)
		relay.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

		err := usecase.NewContactSubmitter(relay).Submit(context.Background(), submission, testConfig)

		var deliveryErr *domain.DeliveryError
		require.ErrorAs(t, err, &deliveryErr)
		assert.Zero(t, deliveryErr.StatusCode)
		relay.AssertNumberOfCalls(t, "Deliver", 1)
	})
}
