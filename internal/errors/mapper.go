package errors

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
)

// Map converts repo/infra errors into categorized domain errors.
// Keeps the service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var e *Error
	if stderrors.As(err, &e) {
		return e
	}

	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict("record already exists")

	case stderrors.Is(err, context.DeadlineExceeded):
		return Dependency("request timed out", err)

	case stderrors.Is(err, context.Canceled):
		return Dependency("request was canceled", err)

	default:
		return Internal(err)
	}
}
