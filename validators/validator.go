package validators

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidationError carries field-level messages for a failed request body.
// The router's error handler renders it as {message, errors}.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed."
}

// CustomValidator adapts go-playground/validator to echo.Validator
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator creates a CustomValidator with Audora's custom rules registered
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	return &CustomValidator{validate: v}
}

// Validate implements echo.Validator. Failures come back as a
// *ValidationError with one message per offending field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field()[:1])+fe.Field()[1:]] = messageFor(fe)
	}
	return &ValidationError{Fields: fields}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Cannot exceed %s characters.", fe.Param())
	case "username":
		return "Username can only contain letters, numbers, and underscores."
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
