package manifest

import "go.trai.ch/zerr"

var (
	// ErrReadFailed is returned when the manifest file cannot be read.
	ErrReadFailed = zerr.New("failed to read manifest")

	// ErrParseFailed is returned when the manifest is not valid TOML.
	ErrParseFailed = zerr.New("failed to parse manifest")

	// ErrSchemaInvalid is returned when the manifest does not match the manifest schema.
	ErrSchemaInvalid = zerr.New("manifest does not match schema")

	// ErrMarshalFailed is returned when the manifest cannot be encoded.
	ErrMarshalFailed = zerr.New("failed to marshal manifest")

	// ErrWriteFailed is returned when the manifest file cannot be written.
	ErrWriteFailed = zerr.New("failed to write manifest")
)
