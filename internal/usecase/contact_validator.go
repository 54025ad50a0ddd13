package usecase

import (
	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// ContactValidator checks contact requests against the form schema
type ContactValidator struct {
	validate *validator.Validate
}

// NewContactValidator creates a validator. A nil validate gets a fresh
// instance with the custom rules registered.
func NewContactValidator(validate *validator.Validate) *ContactValidator {
	if validate == nil {
		validate = validation.New()
	}
	return &ContactValidator{validate: validate}
}

// Validate trims the fields and reports every violated field at once
func (v *ContactValidator) Validate(req domain.ContactRequest) domain.ValidationResult {
	submission := domain.NewContactSubmission(req)
	result := domain.ValidationResult{Submission: submission}

	err := v.validate.Struct(submission)
	if err == nil {
		return result
	}

	result.Errors = make(map[string]domain.FieldViolation)
	for _, fe := range validation.FormatValidationErrors(err) {
		if _, seen := result.Errors[fe.Field]; seen {
			continue
		}
		result.Errors[fe.Field] = domain.FieldViolation{
			Kind:    violationKind(fe.Tag),
			Message: fe.Message,
		}
	}
	return result
}

func violationKind(tag string) domain.ViolationKind {
	switch tag {
	case "min", "required":
		return domain.ViolationTooShort
	default:
		return domain.ViolationInvalidFormat
	}
}
