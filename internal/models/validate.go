package models

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	teamIDRegex = regexp.MustCompile(`^(?i)\d{3}_SIH$`)
	phoneRegex  = regexp.MustCompile(`^[0-9]{10}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("team_id", func(fl validator.FieldLevel) bool {
		return teamIDRegex.MatchString(fl.Field().String())
	})
	v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	return v
}

// FieldErrors flattens validator output into one field name per failure, so
// callers can report every bad field instead of just the first one.
func FieldErrors(err error) []string {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" is invalid ("+fe.Tag()+")")
	}
	return fields
}
