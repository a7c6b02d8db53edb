package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/portal/backend/internal/domain/shared"
)

// SetupValidator makes validation errors name fields by their form tag
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// BindingError turns a form binding failure into an INVALID_INPUT domain
// error naming the first offending field.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return shared.InvalidInput(e.Field() + ": " + validationMessage(e))
	}
	return shared.InvalidInput("Invalid form submission")
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "max":
		return "Must be at most " + e.Param() + " characters"
	case "min":
		return "Must be at least " + e.Param() + " characters"
	case "uuid":
		return "Invalid identifier"
	default:
		return "Invalid value"
	}
}
