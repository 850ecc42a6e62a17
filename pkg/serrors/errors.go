package serrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BaseError is a coded error. Sentinels are compared by identity, so wrap
// them with %w and test with errors.Is.
type BaseError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	LocaleKey string `json:"locale_key,omitempty"`
}

func NewError(code, message, localeKey string) *BaseError {
	return &BaseError{
		Code:      code,
		Message:   message,
		LocaleKey: localeKey,
	}
}

func (e *BaseError) Error() string {
	return e.Message
}

// ValidationErrors maps a field name to its validation failure.
type ValidationErrors map[string]error

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f].Error()))
	}
	return strings.Join(parts, "; ")
}

func NewFieldRequiredError(field, localeKey string) *BaseError {
	return NewError("FIELD_REQUIRED", field+" is required", localeKey)
}

// ProcessValidatorErrors converts validator output into ValidationErrors keyed
// by struct field name.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fieldError(fe)
	}
	return out
}

func fieldError(fe validator.FieldError) *BaseError {
	switch fe.Tag() {
	case "required":
		return NewFieldRequiredError(fe.Field(), "")
	case "gt", "gte", "min":
		return NewError("FIELD_TOO_SMALL", fmt.Sprintf("%s must be %s %s", fe.Field(), tagWord(fe.Tag()), fe.Param()), "")
	case "lte", "max":
		return NewError("FIELD_TOO_LARGE", fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()), "")
	default:
		return NewError("FIELD_INVALID", fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag()), "")
	}
}

func tagWord(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}
