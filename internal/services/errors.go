// Package services provides the business logic of the mixdown service.
package services

import (
	"errors"

	"github.com/oszuidwest/zwfm-mixdown/internal/apperrors"
	"github.com/oszuidwest/zwfm-mixdown/pkg/logger"
)

// MapRepoError translates repository errors to application-level errors.
// It preserves the operation context.
func MapRepoError(op string, err error) error {
	return apperrors.TranslateRepoError(op, err)
}

// userMessage returns the client safe message of err.
func userMessage(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Mix failed"
}

// logAppError logs the internal details of an application error.
func logAppError(op string, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Internal != "" {
		logger.Error("%s: %s (internal: %s)", op, appErr.Message, appErr.Internal)
		return
	}
	logger.Error("%s: %v", op, err)
}
