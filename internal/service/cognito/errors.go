package cognito

import (
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

func errResourceNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusBadRequest, format, args...)
}

func errUserNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("UserNotFoundException", http.StatusBadRequest, format, args...)
}

func errUsernameExists(format string, args ...any) *wire.APIError {
	return wire.NewError("UsernameExistsException", http.StatusBadRequest, format, args...)
}

func errGroupExists(format string, args ...any) *wire.APIError {
	return wire.NewError("GroupExistsException", http.StatusBadRequest, format, args...)
}

func errNotAuthorized(format string, args ...any) *wire.APIError {
	return wire.NewError("NotAuthorizedException", http.StatusBadRequest, format, args...)
}

func errInvalidParameter(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidParameterException", http.StatusBadRequest, format, args...)
}
