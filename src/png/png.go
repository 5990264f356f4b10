// Package png pulls apart the PNG container: chunk framing, IDAT assembly,
// zlib inflation, and scanline unfiltering. It recovers raw pixel bytes; it
// does not interpret them as an image.
package png

import (
	"encoding/binary"

	"github.com/pngtap/pngtap/src/crc"
)

const Signature = "\x89PNG\r\n\x1a\n"

// Chunk is one length/type/data/crc unit of the container. The stored CRC
// covers the type tag and data, never the length field.
type Chunk struct {
	Offset int64 // of the chunk's length field within the file
	Length uint32
	Type   string
	Data   []byte
	CRC    uint32
}

// ComputedCRC recomputes the checksum over the chunk's type and data using
// the standard convention.
func (c *Chunk) ComputedCRC() uint32 {
	buf := make([]byte, 0, 4+len(c.Data))
	buf = append(buf, c.Type...)
	buf = append(buf, c.Data...)
	return crc.Standard.Checksum(buf)
}

// CRCIsValid reports whether the stored CRC matches the recomputed one.
func (c *Chunk) CRCIsValid() bool {
	return c.ComputedCRC() == c.CRC
}

// File is a parsed PNG container: the IHDR fields plus every chunk through
// IEND, in file order.
type File struct {
	Header Header
	Chunks []Chunk
}

// Parse walks the chunk stream of a whole PNG file held in memory. It stops
// at IEND; a stream that ends before IEND, or a chunk whose declared length
// runs past the end of the file, is a FormatError.
func Parse(data []byte) (*File, error) {
	if len(data) < len(Signature) || string(data[:len(Signature)]) != Signature {
		return nil, formatErr(0, "missing png signature")
	}

	f := &File{}
	off := int64(len(Signature))
	for {
		if off == int64(len(data)) {
			return nil, formatErr(off, "no IEND chunk before end of file")
		}
		chunk, next, err := readChunk(data, off)
		if err != nil {
			return nil, err
		}
		f.Chunks = append(f.Chunks, chunk)
		off = next

		if len(f.Chunks) == 1 {
			if chunk.Type != "IHDR" {
				return nil, formatErr(chunk.Offset, "first chunk is %q, want IHDR", chunk.Type)
			}
			f.Header, err = parseHeader(chunk)
			if err != nil {
				return nil, err
			}
		}
		if chunk.Type == "IEND" {
			return f, nil
		}
	}
}

func readChunk(data []byte, off int64) (Chunk, int64, error) {
	rest := int64(len(data)) - off
	if rest < 8 {
		return Chunk{}, 0, formatErr(off, "truncated chunk header (%d bytes left)", rest)
	}
	length := binary.BigEndian.Uint32(data[off : off+4])
	typ := string(data[off+4 : off+8])
	if rest-8 < int64(length)+4 {
		return Chunk{}, 0, formatErr(off, "chunk %q declares %d data bytes but only %d remain", typ, length, rest-8)
	}
	dataStart := off + 8
	dataEnd := dataStart + int64(length)
	chunk := Chunk{
		Offset: off,
		Length: length,
		Type:   typ,
		Data:   data[dataStart:dataEnd],
		CRC:    binary.BigEndian.Uint32(data[dataEnd : dataEnd+4]),
	}
	return chunk, dataEnd + 4, nil
}

// IDAT concatenates the payloads of every IDAT chunk in encounter order.
// The chunks do not have to be contiguous in the file.
func (f *File) IDAT() []byte {
	var out []byte
	for i := range f.Chunks {
		if f.Chunks[i].Type == "IDAT" {
			out = append(out, f.Chunks[i].Data...)
		}
	}
	return out
}

// VerifyIntegrity recomputes every chunk's CRC and returns one IntegrityError
// per mismatch. An empty result means the container checks out.
func (f *File) VerifyIntegrity() []IntegrityError {
	var bad []IntegrityError
	for i := range f.Chunks {
		c := &f.Chunks[i]
		if computed := c.ComputedCRC(); computed != c.CRC {
			bad = append(bad, IntegrityError{
				Index:    i,
				Type:     c.Type,
				Stored:   c.CRC,
				Computed: computed,
			})
		}
	}
	return bad
}
