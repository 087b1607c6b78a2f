package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecords = errors.New("source returned no records")

	ErrRunInProgress  = errors.New("another script run is in progress")
	ErrScriptNotFound = errors.New("script not found")
)

// Error codes for the failure taxonomy. SOURCE_ERROR and RENDER_ERROR abort
// the run; truncation and secondary-lookup failures are logged as warnings
// and never surface as errors.
const (
	CodeSourceError = "SOURCE_ERROR"
	CodeRenderError = "RENDER_ERROR"
	CodeConfigError = "CONFIG_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewSourceError(message string, err error) *AppError {
	return NewAppError(CodeSourceError, message, err)
}

func NewRenderError(message string, err error) *AppError {
	return NewAppError(CodeRenderError, message, err)
}

func NewConfigError(message string, err error) *AppError {
	return NewAppError(CodeConfigError, message, err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
