package core

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is raised client-side, before any request is issued.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fErr := range err.Fields {
		msgs = append(msgs, fErr.Field+": "+fErr.Error)
	}
	return strings.Join(msgs, "; ")
}

// FieldMap returns the field errors keyed by field name.
func (err ValidationError) FieldMap() map[string]string {
	m := make(map[string]string, len(err.Fields))
	for _, fErr := range err.Fields {
		m[fErr.Field] = fErr.Error
	}
	return m
}

// APIError is a request the remote API answered with a non-2xx status
// (or with a body it should not have sent).
type APIError struct {
	Status  int
	Message string
}

func NewAPIError(status int, msg string) error {
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

func (err APIError) Error() string {
	return err.Message
}

func (err APIError) NotFound() bool     { return err.Status == http.StatusNotFound }
func (err APIError) Unauthorized() bool { return err.Status == http.StatusUnauthorized }
func (err APIError) Forbidden() bool    { return err.Status == http.StatusForbidden }
func (err APIError) Conflict() bool     { return err.Status == http.StatusConflict }

// TransportError wraps a failure to reach the remote API at all.
type TransportError struct {
	Err error
}

func (err TransportError) Error() string {
	return "transport: " + err.Err.Error()
}

func (err TransportError) Cause() error {
	return err.Err
}

func (err TransportError) Unwrap() error {
	return err.Err
}

const networkErrorMessage = "network error, please try again"

// UserMessage renders err as the single line a front end displays.
// fallback is used for errors outside the known taxonomy.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return networkErrorMessage
	}
	if fallback == "" {
		return err.Error()
	}
	return fallback
}

// AsAPIError reports whether err carries an *APIError, and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
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
