package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/example/meeting-rooms/internal/application"
)

// requestValidator checks request DTOs and reports failures keyed by JSON field name.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("identifier", validateIdentifier)
	return &requestValidator{validate: v}
}

// validateIdentifier accepts printable tokens without whitespace, as used for user
// ids and room codes.
func validateIdentifier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	for _, r := range value {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// Struct validates a DTO and converts failures into an application.ValidationError.
func (v *requestValidator) Struct(payload any) error {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	vErr := &application.ValidationError{FieldErrors: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		vErr.FieldErrors[fe.Field()] = fieldMessage(fe)
	}
	return vErr
}

// Var validates a single query parameter.
func (v *requestValidator) Var(field string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return &application.ValidationError{FieldErrors: map[string]string{field: fieldMessage(fieldErrs[0])}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "identifier":
		return "must not contain whitespace"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
