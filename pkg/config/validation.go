package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	// Generate custom message based on tag
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "gt", "gte":
		return fmt.Sprintf("%s is too small", e.Field)
	case "lt", "lte":
		return fmt.Sprintf("%s is too large", e.Field)
	case "oneof":
		return fmt.Sprintf("%s must be one of the allowed values", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks a configuration against its declarative constraints.
func Validate(config *Config) error {
	validateOnce.Do(func() {
		validate = validator.New()
	})

	if err := validate.Struct(config); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		// Convert validator errors to our typed error format
		verrs := make(ValidationErrors, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			verrs = append(verrs, ValidationError{
				Field: fe.Namespace(),
				Tag:   fe.Tag(),
				Value: fe.Value(),
			})
		}
		return verrs
	}
	return nil
}
