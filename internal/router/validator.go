package router

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "sakubijak/internal/errors"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. The first failing field
// becomes a validation error with a readable message.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("invalid request")
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperrors.Validation("%s is required", fe.Field())
	case "email":
		return apperrors.Validation("%s must be a valid email address", fe.Field())
	case "min":
		return apperrors.Validation("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return apperrors.Validation("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return apperrors.Validation("%s must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return apperrors.Validation("%s is invalid", fe.Field())
	}
}
