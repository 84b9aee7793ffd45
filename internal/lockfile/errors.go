package lockfile

import "go.trai.ch/zerr"

var (
	// ErrReadFailed is returned when the lock file cannot be read.
	ErrReadFailed = zerr.New("failed to read lock file")

	// ErrParseFailed is returned when the lock file cannot be decoded.
	ErrParseFailed = zerr.New("failed to parse lock file")

	// ErrMarshalFailed is returned when the lock file cannot be encoded.
	ErrMarshalFailed = zerr.New("failed to marshal lock file")

	// ErrWriteFailed is returned when the lock file cannot be written.
	ErrWriteFailed = zerr.New("failed to write lock file")

	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = zerr.New("unknown lock file format")
)
