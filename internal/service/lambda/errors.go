package lambda

import (
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

func errResourceNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusNotFound, format, args...)
}

func errResourceConflict(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceConflictException", http.StatusConflict, format, args...)
}

func errInvalidParameterValue(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidParameterValueException", http.StatusBadRequest, format, args...)
}
