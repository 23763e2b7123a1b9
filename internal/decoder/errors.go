package decoder

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrWrongType     = errors.New("wrong type")
	ErrInvalidPieces = errors.New("pieces length is not a multiple of 20")
	ErrInvalidUTF8   = errors.New("invalid UTF-8")
	ErrOutOfRange    = errors.New("value out of range")
	ErrTooLarge      = errors.New("metafile too large")
)

// SchemaError reports a well-formed bencode document that does not describe a
// valid torrent. Field is a dotted path such as "info.files[2].path[0]".
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("metainfo: %v", e.Err)
	}
	return fmt.Sprintf("metainfo: field %q: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &SchemaError{Field: field, Err: ErrMissingField}
}

func invalid(field string, err error, format string, args ...any) error {
	return &SchemaError{Field: field, Err: errors.Wrapf(err, format, args...)}
}
