package usecase_test

import (
	"strings"
	"testing"

	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/usecase"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() domain.ContactRequest {
	return domain.ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello there",
		Message: "I would like to talk about a project.",
	}
}

func TestContactValidatorBoundaries(t *testing.T) {
	v := usecase.NewContactValidator(nil)

	cases := []struct {
		field string
		min   int
		set   func(*domain.ContactRequest, string)
	}{
		{domain.FieldName, 2, func(r *domain.ContactRequest, s string) { r.Name = s }},
		{domain.FieldSubject, 5, func(r *domain.ContactRequest, s string) { r.Subject = s }},
		{domain.FieldMessage, 10, func(r *domain.ContactRequest, s string) { r.Message = s }},
	}

	for _, tc := range cases {
		t.Run("Should accept "+tc.field+" at exactly the minimum length", func(t *testing.T) {
			req := validRequest()
			tc.set(&req, strings.Repeat("x", tc.min))
			assert.True(t, v.Validate(req).Valid())
		})

		t.Run("Should reject "+tc.field+" one character short as TooShort", func(t *testing.T) {
			req := validRequest()
			tc.set(&req, strings.Repeat("x", tc.min-1))

			result := v.Validate(req)
			require.False(t, result.Valid())
			assert.Equal(t, []string{tc.field}, result.Fields())
			assert.Equal(t, domain.ViolationTooShort, result.Errors[tc.field].Kind)
		})

		t.Run("Should count "+tc.field+" after trimming", func(t *testing.T) {
			req := validRequest()
			tc.set(&req, "   "+strings.Repeat("x", tc.min-1)+"\t\n")
			assert.Equal(t, domain.ViolationTooShort, v.Validate(req).Errors[tc.field].Kind)
		})
	}

	t.Run("Should count characters, not bytes", func(t *testing.T) {
		req := validRequest()
		req.Name = "Åø"
		assert.True(t, v.Validate(req).Valid())
	})
}

func TestContactValidatorEmail(t *testing.T) {
	v := usecase.NewContactValidator(nil)

	t.Run("Should accept a@b.co", func(t *testing.T) {
		req := validRequest()
		req.Email = "a@b.co"
		assert.True(t, v.Validate(req).Valid())
	})

	for _, email := range []string{"", "ab.co", "a@bco", "a@localhost", "a@b.", "a@", "@b.co"} {
		t.Run("Should reject "+email+" as InvalidFormat", func(t *testing.T) {
			req := validRequest()
			req.Email = email

			result := v.Validate(req)
			require.Contains(t, result.Errors, domain.FieldEmail)
			assert.Equal(t, domain.ViolationInvalidFormat, result.Errors[domain.FieldEmail].Kind)
			assert.Equal(t, "Please enter a valid email address", result.Errors[domain.FieldEmail].Message)
		})
	}
}

func TestContactValidatorReportsAllFields(t *testing.T) {
	v := usecase.NewContactValidator(nil)

	result := v.Validate(domain.ContactRequest{})

	want := map[string]domain.FieldViolation{
		domain.FieldName:    {Kind: domain.ViolationTooShort, Message: "Name must be at least 2 characters"},
		domain.FieldEmail:   {Kind: domain.ViolationInvalidFormat, Message: "Please enter a valid email address"},
		domain.FieldSubject: {Kind: domain.ViolationTooShort, Message: "Subject must be at least 5 characters"},
		domain.FieldMessage: {Kind: domain.ViolationTooShort, Message: "Message must be at least 10 characters"},
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestContactValidatorTrimsAcceptedSubmission(t *testing.T) {
	v := usecase.NewContactValidator(nil)

	req := validRequest()
	req.Name = "  Ada  "
	req.Email = " ada@example.com "

	result := v.Validate(req)
	require.True(t, result.Valid())
	assert.Equal(t, "Ada", result.Submission.Name)
	assert.Equal(t, "ada@example.com", result.Submission.Email)
}
