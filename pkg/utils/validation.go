package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"kellerliste/domain/inventory"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// category accepts the closed set plus its legacy alias
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := inventory.ParseCategory(fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "category":
		return fmt.Sprintf("%s must be one of: %s", field, categoryList())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func categoryList() string {
	names := make([]string, 0, 6)
	for _, c := range inventory.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, " ")
}
