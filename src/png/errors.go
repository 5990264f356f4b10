package png

import "fmt"

// FormatError reports a violation of the PNG container or scanline format.
// Offset is the byte position where the violation was detected, or -1 when
// no single position applies.
type FormatError struct {
	Offset int64
	Msg    string
}

func (e *FormatError) Error() string {
	if e.Offset < 0 {
		return "invalid png: " + e.Msg
	}
	return fmt.Sprintf("invalid png at byte %d: %s", e.Offset, e.Msg)
}

func formatErr(offset int64, format string, args ...interface{}) *FormatError {
	return &FormatError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// DecompressionError reports a corrupt or truncated zlib stream inside the
// assembled IDAT data.
type DecompressionError struct {
	Err error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("corrupt compressed data: %v", e.Err)
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// IntegrityError records a stored chunk CRC that disagrees with the CRC
// recomputed over the chunk's type and data. It is a warning unless the
// caller chooses to treat it as fatal.
type IntegrityError struct {
	Index    int
	Type     string
	Stored   uint32
	Computed uint32
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("chunk %d (%s): stored crc %08x, computed %08x", e.Index, e.Type, e.Stored, e.Computed)
}

// UnsupportedError reports a well-formed feature this decoder does not
// handle, like interlacing or a nonzero compression method.
type UnsupportedError struct {
	Feature string
}

func (e *UnsupportedError) Error() string {
	return "unsupported png feature: " + e.Feature
}
