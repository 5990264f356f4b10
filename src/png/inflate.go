package png

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Inflate decompresses the zlib-wrapped deflate stream assembled from the
// IDAT chunks. Any corruption — bad zlib header, invalid deflate codes, a
// truncated stream, or an adler32 trailer mismatch — comes back as a
// DecompressionError.
func Inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecompressionError{Err: err}
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecompressionError{Err: err}
	}
	return out, nil
}
