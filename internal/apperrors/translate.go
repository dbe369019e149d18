package apperrors

import (
	"errors"
	"fmt"

	"github.com/oszuidwest/zwfm-mixdown/internal/audio"
	"github.com/oszuidwest/zwfm-mixdown/internal/repository"
	"github.com/oszuidwest/zwfm-mixdown/internal/storage"
)

// TranslateRepoError converts repository errors to domain errors with operation context.
// Returns nil if err is nil. The operation name is prefixed to provide call-site context.
func TranslateRepoError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	case errors.Is(err, repository.ErrInvalidTransition):
		return fmt.Errorf("%s: %w", op, ErrConflict)
	case errors.Is(err, repository.ErrDataTooLong):
		return fmt.Errorf("%s: %w", op, ErrDataTooLong)
	default:
		return Database("Database operation failed").WithInternal("%s: %v", op, err).Wrap(err)
	}
}

// TranslateAudioError converts audio pipeline errors to typed errors. The
// user-safe message names the failing input but never the underlying cause.
func TranslateAudioError(op string, err error) error {
	if err == nil {
		return nil
	}

	var audioErr *audio.AudioError
	source := ""
	if errors.As(err, &audioErr) {
		source = audioErr.Source
	}

	var appErr *Error
	switch {
	case errors.Is(err, audio.ErrDecode):
		appErr = &Error{Code: CodeDecode, Message: fmt.Sprintf("Audio could not be decoded: %s", source)}
	case errors.Is(err, audio.ErrConcatenation):
		appErr = &Error{Code: CodeConcatenation, Message: fmt.Sprintf("Audio could not be concatenated: %s", source)}
	case errors.Is(err, audio.ErrMixing):
		appErr = &Error{Code: CodeMixing, Message: fmt.Sprintf("Audio could not be mixed: %s", source), Field: source}
	default:
		appErr = &Error{Code: CodeUnknown, Message: "Audio processing failed"}
	}
	return appErr.WithInternal("%s: %v", op, err).Wrap(err)
}

// TranslateStorageError converts stored file errors to typed errors.
func TranslateStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return NotFound("Audio file not found").WithInternal("%s: %v", op, err).Wrap(err)
	}
	return Storage("Audio file could not be stored or read").WithInternal("%s: %v", op, err).Wrap(err)
}
