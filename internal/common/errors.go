package common

import (
	"errors"
	"fmt"
)

// AppError carries a stable machine-readable code next to the human
// message, so callers can branch on Code while logs keep the full chain.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Sentinels for errors.Is checks across package boundaries.
var (
	// ErrInvalidInput marks rejected configuration or request input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtraction marks a failed text or field extraction stage; the
	// HTTP layer maps it to an upstream-failure status since the fault
	// lies with an external collaborator (pdftotext, tesseract, the LLM).
	ErrExtraction = errors.New("extraction failed")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError annotates err with stage context while preserving the chain
// for errors.Is/As. A nil err stays nil so call sites can wrap returns
// unconditionally.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
