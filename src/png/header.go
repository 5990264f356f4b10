package png

import (
	"encoding/binary"
	"strconv"
)

// Color types, as per the PNG spec.
const (
	ColorGrayscale      = 0
	ColorTrueColor      = 2
	ColorPaletted       = 3
	ColorGrayscaleAlpha = 4
	ColorTrueColorAlpha = 6
)

// Header holds the fields of the IHDR chunk.
type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          byte
	ColorType         byte
	CompressionMethod byte
	FilterMethod      byte
	InterlaceMethod   byte
}

// Channels returns the number of samples per pixel for the color type.
func (h Header) Channels() int {
	switch h.ColorType {
	case ColorGrayscale, ColorPaletted:
		return 1
	case ColorGrayscaleAlpha:
		return 2
	case ColorTrueColor:
		return 3
	case ColorTrueColorAlpha:
		return 4
	}
	return 0
}

func (h Header) bitsPerPixel() int {
	return int(h.BitDepth) * h.Channels()
}

// BytesPerPixel returns the byte span of one complete pixel, which is the
// filters' lookback distance. Sub-byte depths round up to one byte.
func (h Header) BytesPerPixel() int {
	bpp := (h.bitsPerPixel() + 7) / 8
	if bpp < 1 {
		bpp = 1
	}
	return bpp
}

// Stride returns the byte length of one scanline, excluding the leading
// filter-type byte.
func (h Header) Stride() int {
	return (int(h.Width)*h.bitsPerPixel() + 7) / 8
}

// validDepth mirrors the allowed bit depth / color type combinations from
// the PNG spec (table 11.1).
func validDepth(colorType, bitDepth byte) bool {
	switch colorType {
	case ColorGrayscale:
		return bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8 || bitDepth == 16
	case ColorPaletted:
		return bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8
	case ColorTrueColor, ColorGrayscaleAlpha, ColorTrueColorAlpha:
		return bitDepth == 8 || bitDepth == 16
	}
	return false
}

func parseHeader(chunk Chunk) (Header, error) {
	if len(chunk.Data) != 13 {
		return Header{}, formatErr(chunk.Offset, "IHDR data is %d bytes, want 13", len(chunk.Data))
	}
	h := Header{
		Width:             binary.BigEndian.Uint32(chunk.Data[0:4]),
		Height:            binary.BigEndian.Uint32(chunk.Data[4:8]),
		BitDepth:          chunk.Data[8],
		ColorType:         chunk.Data[9],
		CompressionMethod: chunk.Data[10],
		FilterMethod:      chunk.Data[11],
		InterlaceMethod:   chunk.Data[12],
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, formatErr(chunk.Offset, "zero image dimension %dx%d", h.Width, h.Height)
	}
	if !validDepth(h.ColorType, h.BitDepth) {
		return Header{}, formatErr(chunk.Offset, "invalid color type / bit depth combination %d/%d", h.ColorType, h.BitDepth)
	}
	if h.CompressionMethod != 0 {
		return Header{}, &UnsupportedError{Feature: "compression method " + strconv.Itoa(int(h.CompressionMethod))}
	}
	if h.FilterMethod != 0 {
		return Header{}, &UnsupportedError{Feature: "filter method " + strconv.Itoa(int(h.FilterMethod))}
	}
	return h, nil
}
