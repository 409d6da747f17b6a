package pkg

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationIssues flattens a validator error into field issues fit for
// an error response. Returns nil when err is nil.
func ValidationIssues(err error) []FieldIssue {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []FieldIssue{{Field: "", Message: err.Error()}}
	}

	issues := make([]FieldIssue, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		issues = append(issues, FieldIssue{
			Field:   fieldErr.Field(),
			Message: fmt.Sprintf("failed on the '%s' rule", fieldErr.Tag()),
		})
	}
	return issues
}
