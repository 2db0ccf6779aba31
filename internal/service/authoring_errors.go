package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidDateFormat indicates a local date/time string could not be parsed.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrFormNotFound indicates the authoring form is unknown or expired.
	ErrFormNotFound = errors.New("assignment form not found")
	// ErrFormSubmitting indicates a submit attempt is already in flight for the form.
	ErrFormSubmitting = errors.New("assignment form is already submitting")
	// ErrFormAlreadySubmitted indicates the form was saved and cannot be submitted again.
	ErrFormAlreadySubmitted = errors.New("assignment form has already been submitted")
	// ErrStagingIncomplete indicates the development submission exists but was not staged.
	ErrStagingIncomplete = errors.New("submission created but not staged")
)

// ValidationError lists the fields that block a submit attempt.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validationErrorFrom folds validator output into a ValidationError.
func validationErrorFrom(err error) *ValidationError {
	result := &ValidationError{}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		result.add("form", err.Error())
		return result
	}

	for _, fieldErr := range fieldErrors {
		result.add(fieldErr.Field(), describeValidationTag(fieldErr))
	}
	return result
}

func describeValidationTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fieldErr.Param()
	case "max", "lte":
		return "must be at most " + fieldErr.Param()
	case "gt":
		return "must be greater than " + fieldErr.Param()
	case "oneof":
		return "must be one of " + fieldErr.Param()
	default:
		return "is invalid"
	}
}

// ServiceError wraps a failure reported by the assignment or submission service.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// CompensationError reports a failed step together with failed compensating actions.
type CompensationError struct {
	Cause    error
	Failures []error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%v (compensation failed: %v)", e.Cause, errors.Join(e.Failures...))
}

func (e *CompensationError) Unwrap() []error {
	return append([]error{e.Cause}, e.Failures...)
}
