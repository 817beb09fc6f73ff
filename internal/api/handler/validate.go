package handler

import (
	"strings"

	"github.com/amlaw/client-portal/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("case_type", func(fl validator.FieldLevel) bool {
		return domain.IsCaseType(strings.TrimSpace(fl.Field().String()))
	})
	v.RegisterValidation("jurisdiction", func(fl validator.FieldLevel) bool {
		return domain.IsJurisdiction(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

// validationErrors renders validator failures as field -> message
func validationErrors(err error) any {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}

	errors := make(map[string]string)
	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errors[field] = "field is required"
		case "max":
			errors[field] = "must be at most " + e.Param() + " characters"
		case "case_type":
			errors[field] = "unknown case type"
		case "jurisdiction":
			errors[field] = "unknown jurisdiction"
		default:
			errors[field] = "validation failed on " + e.Tag()
		}
	}
	return errors
}
