package dynamodb

import (
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

// Error codes carry the modeled exception prefix the SDKs match on.
const typePrefix = "com.amazonaws.dynamodb.v20120810#"

func errResourceNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError(typePrefix+"ResourceNotFoundException", http.StatusBadRequest, format, args...)
}

func errResourceInUse(format string, args ...any) *wire.APIError {
	return wire.NewError(typePrefix+"ResourceInUseException", http.StatusBadRequest, format, args...)
}

func errValidation(format string, args ...any) *wire.APIError {
	return wire.NewError(typePrefix+"ValidationException", http.StatusBadRequest, format, args...)
}

func errConditionalCheckFailed() *wire.APIError {
	return wire.NewError(typePrefix+"ConditionalCheckFailedException", http.StatusBadRequest,
		"The conditional request failed")
}
