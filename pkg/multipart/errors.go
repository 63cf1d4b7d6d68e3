package multipart

import "errors"

var (
	// ErrInvalidBoundary indicates a missing, non-ASCII or overlong
	// boundary parameter.
	ErrInvalidBoundary = errors.New("multipart: invalid boundary")

	// ErrBadBoundaryLine indicates a line that should have been a
	// boundary but was not; the stream position is undefined beyond it.
	ErrBadBoundaryLine = errors.New("multipart: malformed boundary line")

	// ErrLengthRequired indicates a chunked read on a part without a
	// Content-Length header.
	ErrLengthRequired = errors.New("multipart: Content-Length required for chunked read")

	// ErrLengthMismatch indicates that the stream and the declared
	// Content-Length disagree: the mandatory line terminator after the
	// declared payload size was absent.
	ErrLengthMismatch = errors.New("multipart: missing line terminator after declared length")

	// ErrUnknownPayload indicates a part payload that no serializer
	// handles.
	ErrUnknownPayload = errors.New("multipart: unknown payload type")

	// ErrUnknownLength indicates a content-length computation over a
	// part whose payload size is unknowable.
	ErrUnknownLength = errors.New("multipart: part length is not knowable")
)
