package sqs

import (
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

// One constructor per documented error. Every operation returns either a
// typed response or one of these; the transport surfaces them verbatim.

func errQueueAlreadyExists(format string, args ...any) *wire.APIError {
	return wire.NewError("QueueAlreadyExists", http.StatusBadRequest, format, args...)
}

func errQueueDoesNotExist(format string, args ...any) *wire.APIError {
	return wire.NewError("QueueDoesNotExist", http.StatusBadRequest, format, args...)
}

func errInvalidAttributeName(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidAttributeName", http.StatusBadRequest, format, args...)
}

func errInvalidAttributeValue(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidAttributeValue", http.StatusBadRequest, format, args...)
}

func errInvalidParameterValue(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidParameterValue", http.StatusBadRequest, format, args...)
}

func errMissingParameter(format string, args ...any) *wire.APIError {
	return wire.NewError("MissingParameter", http.StatusBadRequest, format, args...)
}

func errPurgeQueueInProgress(format string, args ...any) *wire.APIError {
	return wire.NewError("PurgeQueueInProgress", http.StatusForbidden, format, args...)
}

func errMessageNotInflight(format string, args ...any) *wire.APIError {
	return wire.NewError("MessageNotInflight", http.StatusBadRequest, format, args...)
}

func errOverLimit(format string, args ...any) *wire.APIError {
	return wire.NewError("OverLimit", http.StatusForbidden, format, args...)
}

func errEmptyBatchRequest(format string, args ...any) *wire.APIError {
	return wire.NewError("EmptyBatchRequest", http.StatusBadRequest, format, args...)
}

func errTooManyEntriesInBatchRequest(format string, args ...any) *wire.APIError {
	return wire.NewError("TooManyEntriesInBatchRequest", http.StatusBadRequest, format, args...)
}

func errBatchEntryIdsNotDistinct(format string, args ...any) *wire.APIError {
	return wire.NewError("BatchEntryIdsNotDistinct", http.StatusBadRequest, format, args...)
}

func errInvalidBatchEntryID(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidBatchEntryId", http.StatusBadRequest, format, args...)
}

func errResourceNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusBadRequest, format, args...)
}
