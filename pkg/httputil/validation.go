package httputil

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
)

var validate = validator.New()

func init() {
	if err := RegisterCustomValidation("mrzline", validateMRZLine); err != nil {
		panic("httputil: register mrzline validation: " + err.Error())
	}
}

// validateMRZLine accepts MRZ charset text. Surrounding whitespace is allowed
// since decoders trim it.
func validateMRZLine(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '<' {
			return false
		}
	}
	return true
}

// Validate validates a struct using go-playground/validator
func Validate(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return errors.BadRequest(err.Error())
		}
		details := make(map[string]string)

		for _, e := range validationErrors {
			details[e.Field()] = formatValidationError(e)
		}

		return errors.Validation(details)
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return "this field is required"
	case "min":
		return "must have at least " + e.Param() + " items or characters"
	case "max":
		return "must have at most " + e.Param() + " items or characters"
	case "oneof":
		return "must be one of: " + e.Param()
	case "hexadecimal":
		return "must be hex encoded"
	case "mrzline":
		return "may only contain A-Z, 0-9 and <"
	default:
		return "invalid value"
	}
}

// RegisterCustomValidation registers a custom validation function
func RegisterCustomValidation(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}
