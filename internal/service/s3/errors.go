package s3

import (
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

func errNoSuchBucket(name string) *wire.APIError {
	return wire.NewError("NoSuchBucket", http.StatusNotFound, "The specified bucket does not exist: %s", name)
}

func errNoSuchKey(key string) *wire.APIError {
	return wire.NewError("NoSuchKey", http.StatusNotFound, "The specified key does not exist: %s", key)
}

func errNoSuchVersion(key string) *wire.APIError {
	return wire.NewError("NoSuchVersion", http.StatusNotFound, "The specified version does not exist: %s", key)
}

func errInvalidBucketName(name string) *wire.APIError {
	return wire.NewError("InvalidBucketName", http.StatusBadRequest, "The specified bucket is not valid: %s", name)
}

func errBucketAlreadyOwnedByYou(name string) *wire.APIError {
	return wire.NewError("BucketAlreadyOwnedByYou", http.StatusConflict,
		"Your previous request to create the named bucket succeeded and you already own it: %s", name)
}

func errBucketNotEmpty(name string) *wire.APIError {
	return wire.NewError("BucketNotEmpty", http.StatusConflict,
		"The bucket you tried to delete is not empty: %s", name)
}

func errNoSuchTagSet() *wire.APIError {
	return wire.NewError("NoSuchTagSet", http.StatusNotFound, "The TagSet does not exist.")
}

func errNoSuchUpload(id string) *wire.APIError {
	return wire.NewError("NoSuchUpload", http.StatusNotFound,
		"The specified multipart upload does not exist: %s", id)
}

func errInvalidPart(number int) *wire.APIError {
	return wire.NewError("InvalidPart", http.StatusBadRequest,
		"One or more of the specified parts could not be found: part %d", number)
}

func errInvalidPartOrder() *wire.APIError {
	return wire.NewError("InvalidPartOrder", http.StatusBadRequest,
		"The list of parts was not in ascending order. Parts must be ordered by part number.")
}

func errInvalidPartNumber() *wire.APIError {
	return wire.NewError("InvalidArgument", http.StatusBadRequest,
		"Part number must be an integer between 1 and 10000, inclusive.")
}

func errInvalidRange() *wire.APIError {
	return wire.NewError("InvalidRange", http.StatusRequestedRangeNotSatisfiable,
		"The requested range is not satisfiable.")
}

func errMalformedXML() *wire.APIError {
	return wire.NewError("MalformedXML", http.StatusBadRequest,
		"The XML you provided was not well-formed or did not validate against our published schema.")
}

func errInvalidArgument(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidArgument", http.StatusBadRequest, format, args...)
}
