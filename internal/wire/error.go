// Package wire implements the shared request framing of the emulated
// services: JSON-over-POST dispatch keyed by the X-Amz-Target header, XML
// response bodies for the REST services, the form-encoded query protocol,
// and the uniform mapping from typed service errors to wire errors.
package wire

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the typed error every service operation returns on failure.
// Code is the provider's error code literal (e.g. "QueueDoesNotExist"),
// Status the HTTP status it maps to at the transport boundary.
type APIError struct {
	Code        string
	Message     string
	Status      int
	SenderFault bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a sender-fault APIError.
func NewError(code string, status int, format string, args ...any) *APIError {
	return &APIError{
		Code:        code,
		Message:     fmt.Sprintf(format, args...),
		Status:      status,
		SenderFault: true,
	}
}

// AsAPIError extracts an APIError from err, wrapping unknown errors as an
// InternalFailure so nothing leaks through the transport untyped.
func AsAPIError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	return &APIError{
		Code:    "InternalFailure",
		Message: err.Error(),
		Status:  http.StatusInternalServerError,
	}
}
