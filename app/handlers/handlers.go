// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/medops/core-engine/utils"
)

// NewValidator builds the request validator with the custom tags the wire
// types use
func NewValidator() *validator.Validate {
	v := validator.New()
	// usdate accepts user-entered MM/DD/YYYY calendar dates
	_ = v.RegisterValidation("usdate", func(fl validator.FieldLevel) bool {
		return utils.IsValidUSDate(fl.Field().String())
	})
	return v
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must have at least " + err.Param() + " item(s)"
	case "max":
		return err.Field() + " must have at most " + err.Param() + " item(s)"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "usdate":
		return err.Field() + " must be a valid MM/DD/YYYY date"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

func validationErrorMessages(err error) []string {
	var out []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range verrs {
			out = append(out, getValidationErrorMessage(e))
		}
		return out
	}
	return []string{err.Error()}
}
