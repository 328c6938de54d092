package source

import "errors"

var (
	// ErrUpstreamStatus is returned when the read endpoint answers with a
	// non-200 status.
	ErrUpstreamStatus = errors.New("read endpoint returned an error status")

	// ErrInvalidPayload is returned when the read endpoint body is not a JSON
	// array of objects.
	ErrInvalidPayload = errors.New("read endpoint returned an invalid payload")
)
