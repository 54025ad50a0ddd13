package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("dotted_domain", DottedDomain)
}

// New returns a validator with the custom rules registered
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

// DottedDomain requires the part after the last '@' to contain a dot that is
// neither leading nor trailing ("a@b.co" passes, "a@localhost" and "a@b." fail)
func DottedDomain(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	at := strings.LastIndex(val, "@")
	if at <= 0 || at == len(val)-1 {
		return false
	}
	domain := val[at+1:]
	dot := strings.Index(domain, ".")
	if dot <= 0 {
		return false
	}
	return !strings.HasSuffix(domain, ".")
}
