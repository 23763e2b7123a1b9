package decoder

import (
	"io"

	"github.com/pkg/errors"
)

// DefaultMaxSize caps how much a single metafile read may buffer.
const DefaultMaxSize int64 = 10 << 20

// ReadAll buffers r completely. Sources longer than limit fail with ErrTooLarge
// instead of being truncated.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "read metafile")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrTooLarge, "more than %d bytes", limit)
	}
	return data, nil
}
