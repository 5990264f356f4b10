package png

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/pngtap/pngtap/src/crc"
	"github.com/pngtap/pngtap/src/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkBytes(typ string, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(data)))
	buf.WriteString(typ)
	buf.Write(data)
	binary.Write(&buf, binary.BigEndian, crc.Standard.Checksum(append([]byte(typ), data...)))
	return buf.Bytes()
}

func ihdrData(width, height uint32, bitDepth, colorType byte) []byte {
	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], width)
	binary.BigEndian.PutUint32(data[4:8], height)
	data[8] = bitDepth
	data[9] = colorType
	return data
}

func buildPNG(chunks ...[]byte) []byte {
	out := []byte(Signature)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func deflate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	utils.Must1(zw.Write(data))
	utils.Must(zw.Close())
	return buf.Bytes()
}

func TestParse(t *testing.T) {
	idat1 := deflate(make([]byte, 39))
	file := buildPNG(
		chunkBytes("IHDR", ihdrData(4, 3, 8, ColorTrueColor)),
		chunkBytes("IDAT", idat1[:5]),
		chunkBytes("tEXt", []byte("Comment\x00between idats")),
		chunkBytes("IDAT", idat1[5:]),
		chunkBytes("IEND", nil),
	)

	f, err := Parse(file)
	require.NoError(t, err)

	t.Run("header fields", func(t *testing.T) {
		assert.Equal(t, uint32(4), f.Header.Width)
		assert.Equal(t, uint32(3), f.Header.Height)
		assert.Equal(t, byte(8), f.Header.BitDepth)
		assert.Equal(t, byte(ColorTrueColor), f.Header.ColorType)
		assert.Equal(t, byte(0), f.Header.InterlaceMethod)
	})
	t.Run("chunks in file order", func(t *testing.T) {
		require.Len(t, f.Chunks, 5)
		assert.Equal(t, "IHDR", f.Chunks[0].Type)
		assert.Equal(t, "IDAT", f.Chunks[1].Type)
		assert.Equal(t, "tEXt", f.Chunks[2].Type)
		assert.Equal(t, "IDAT", f.Chunks[3].Type)
		assert.Equal(t, "IEND", f.Chunks[4].Type)
		assert.Equal(t, int64(8), f.Chunks[0].Offset)
	})
	t.Run("idat assembly spans non-contiguous chunks", func(t *testing.T) {
		assert.Equal(t, idat1, f.IDAT())
	})
	t.Run("stored crcs all valid", func(t *testing.T) {
		assert.Empty(t, f.VerifyIntegrity())
		for i := range f.Chunks {
			assert.True(t, f.Chunks[i].CRCIsValid())
		}
	})
}

func TestParseErrors(t *testing.T) {
	ihdr := chunkBytes("IHDR", ihdrData(4, 3, 8, ColorTrueColor))

	t.Run("bad signature", func(t *testing.T) {
		_, err := Parse([]byte("\x89JPG\r\n\x1a\nnope"))
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, int64(0), ferr.Offset)
	})
	t.Run("declared length exceeds remaining bytes", func(t *testing.T) {
		file := buildPNG(ihdr, chunkBytes("IDAT", []byte{1, 2, 3, 4, 5, 6, 7, 8}))
		file = file[:len(file)-6] // cut into the data bytes
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
		assert.Equal(t, int64(8+len(ihdr)), ferr.Offset)
	})
	t.Run("stream ends before IEND", func(t *testing.T) {
		file := buildPNG(ihdr, chunkBytes("IDAT", []byte{1, 2, 3}))
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, ferr.Msg, "IEND")
	})
	t.Run("truncated chunk header", func(t *testing.T) {
		file := buildPNG(ihdr)
		file = append(file, 0, 0) // half a length field
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
	})
	t.Run("first chunk not IHDR", func(t *testing.T) {
		file := buildPNG(chunkBytes("IDAT", []byte{1}), chunkBytes("IEND", nil))
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
	})
	t.Run("IHDR wrong length", func(t *testing.T) {
		file := buildPNG(chunkBytes("IHDR", make([]byte, 12)), chunkBytes("IEND", nil))
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
	})
	t.Run("invalid bit depth for color type", func(t *testing.T) {
		file := buildPNG(chunkBytes("IHDR", ihdrData(4, 3, 4, ColorTrueColor)), chunkBytes("IEND", nil))
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
	})
	t.Run("zero dimensions", func(t *testing.T) {
		file := buildPNG(chunkBytes("IHDR", ihdrData(0, 3, 8, ColorTrueColor)), chunkBytes("IEND", nil))
		_, err := Parse(file)
		var ferr *FormatError
		require.ErrorAs(t, err, &ferr)
	})
	t.Run("nonzero compression method", func(t *testing.T) {
		data := ihdrData(4, 3, 8, ColorTrueColor)
		data[10] = 1
		file := buildPNG(chunkBytes("IHDR", data), chunkBytes("IEND", nil))
		_, err := Parse(file)
		var uerr *UnsupportedError
		require.ErrorAs(t, err, &uerr)
	})
}

func TestVerifyIntegrity(t *testing.T) {
	ihdr := chunkBytes("IHDR", ihdrData(4, 3, 8, ColorTrueColor))
	idat := chunkBytes("IDAT", []byte{1, 2, 3})
	idat[len(idat)-1] ^= 0xFF // corrupt the stored crc
	file := buildPNG(ihdr, idat, chunkBytes("IEND", nil))

	f, err := Parse(file)
	require.NoError(t, err, "a crc mismatch must not stop parsing")

	bad := f.VerifyIntegrity()
	require.Len(t, bad, 1)
	assert.Equal(t, 1, bad[0].Index)
	assert.Equal(t, "IDAT", bad[0].Type)
	assert.NotEqual(t, bad[0].Stored, bad[0].Computed)
	assert.Equal(t, f.Chunks[1].ComputedCRC(), bad[0].Computed)
}

// End-to-end: container -> idat assembly -> inflate -> unfilter recovers the
// pixel bytes that went in.
func TestDecodePipeline(t *testing.T) {
	h := Header{Width: 4, Height: 3, BitDepth: 8, ColorType: ColorTrueColor}
	raw := make([]byte, int(h.Height)*h.Stride())
	for i := range raw {
		raw[i] = byte(i*31 + 7)
	}

	var filtered []byte
	for y := 0; y < int(h.Height); y++ {
		filtered = append(filtered, ftNone)
		filtered = append(filtered, raw[y*h.Stride():(y+1)*h.Stride()]...)
	}

	compressed := deflate(filtered)
	file := buildPNG(
		chunkBytes("IHDR", ihdrData(h.Width, h.Height, h.BitDepth, h.ColorType)),
		chunkBytes("IDAT", compressed[:9]),
		chunkBytes("IDAT", compressed[9:]),
		chunkBytes("IEND", nil),
	)

	f, err := Parse(file)
	require.NoError(t, err)
	assert.Empty(t, f.VerifyIntegrity())

	inflated, err := Inflate(f.IDAT())
	require.NoError(t, err)

	out, err := Unfilter(inflated, f.Header)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestHeaderDerived(t *testing.T) {
	cases := []struct {
		name          string
		header        Header
		channels, bpp int
		stride        int
	}{
		{"rgb8", Header{Width: 4, BitDepth: 8, ColorType: ColorTrueColor}, 3, 3, 12},
		{"rgba8", Header{Width: 5, BitDepth: 8, ColorType: ColorTrueColorAlpha}, 4, 4, 20},
		{"rgba16", Header{Width: 2, BitDepth: 16, ColorType: ColorTrueColorAlpha}, 4, 8, 16},
		{"gray1", Header{Width: 10, BitDepth: 1, ColorType: ColorGrayscale}, 1, 1, 2},
		{"gray16", Header{Width: 7, BitDepth: 16, ColorType: ColorGrayscale}, 1, 2, 14},
		{"palette4", Header{Width: 3, BitDepth: 4, ColorType: ColorPaletted}, 1, 1, 2},
		{"graya8", Header{Width: 6, BitDepth: 8, ColorType: ColorGrayscaleAlpha}, 2, 2, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.channels, tc.header.Channels())
			assert.Equal(t, tc.bpp, tc.header.BytesPerPixel())
			assert.Equal(t, tc.stride, tc.header.Stride())
		})
	}
}
