// Package validation collects field errors for multipart and query input that gin binding does not cover.
package validation

import (
	"fmt"

	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

// Result accumulates field errors in the order they were found.
type Result struct {
	errors []utils.ValidationError
}

// New creates an empty Result.
func New() *Result {
	return &Result{}
}

// AddError records a message against field.
func (r *Result) AddError(field, message string) *Result {
	r.errors = append(r.errors, utils.ValidationError{Field: field, Message: message})
	return r
}

// AddErrorf records a formatted message against field.
func (r *Result) AddErrorf(field, format string, args ...any) *Result {
	return r.AddError(field, fmt.Sprintf(format, args...))
}

// AddAll records errors produced by binding validation.
func (r *Result) AddAll(errs []utils.ValidationError) *Result {
	r.errors = append(r.errors, errs...)
	return r
}

// Merge appends the errors of other.
func (r *Result) Merge(other *Result) *Result {
	if other != nil {
		r.errors = append(r.errors, other.errors...)
	}
	return r
}

// HasErrors reports whether any error was recorded.
func (r *Result) HasErrors() bool {
	return len(r.errors) > 0
}

// Has reports whether field already has an error.
func (r *Result) Has(field string) bool {
	for _, e := range r.errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Errors returns the recorded errors in problem detail form.
func (r *Result) Errors() []utils.ValidationError {
	return r.errors
}
