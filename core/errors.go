package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrAuthenticationRequired is returned when a request carries no valid session.
var ErrAuthenticationRequired = errors.New("please join first")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// QuotaExceededError is returned when a member has used up their daily messages.
type QuotaExceededError struct {
	Limit int
	Used  int
}

func (err QuotaExceededError) Error() string {
	return fmt.Sprintf("Daily limit reached (%d messages).", err.Limit)
}

func IsQuotaExceeded(err error) bool {
	_, ok := errors.Cause(err).(*QuotaExceededError)
	return ok
}

// UpstreamError is a non-recoverable failure of the completion API.
// Detail holds a truncated copy of the upstream response for diagnostics.
type UpstreamError struct {
	StatusCode  int
	Detail      string
	RateLimited bool
}

func (err UpstreamError) Error() string {
	if err.RateLimited {
		return fmt.Sprintf("upstream rate limited (status %d): %s", err.StatusCode, err.Detail)
	}
	return fmt.Sprintf("upstream error (status %d): %s", err.StatusCode, err.Detail)
}

// ConfigurationError reports a required setting that is absent.
type ConfigurationError struct {
	Key string
}

func NewConfigurationError(key string) error {
	return &ConfigurationError{Key: key}
}

func (err ConfigurationError) Error() string {
	return "missing required configuration: " + err.Key
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
