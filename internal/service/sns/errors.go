package sns

import (
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("NotFound", http.StatusNotFound, format, args...)
}

func errInvalidParameter(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidParameter", http.StatusBadRequest, format, args...)
}

func errMissingParameter(format string, args ...any) *wire.APIError {
	return wire.NewError("MissingParameter", http.StatusBadRequest, format, args...)
}

func errResourceNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusNotFound, format, args...)
}
