package chunking

import "errors"

var (
	// ErrInvalidConfig is returned before any record is processed when
	// chunk size or overlap are out of range.
	ErrInvalidConfig = errors.New("invalid chunking configuration")

	// ErrUnsupportedSource is returned when a record's source cannot be
	// classified as tabular or non-tabular from its extension.
	ErrUnsupportedSource = errors.New("unsupported source format")

	// ErrMalformedRecord is returned when a record arrives with null
	// text. Zero-length text is valid; null text is not.
	ErrMalformedRecord = errors.New("malformed record: null text")
)
