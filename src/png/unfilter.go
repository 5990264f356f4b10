package png

import "github.com/pngtap/pngtap/src/logging"

// Filter types, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// Unfilter reverses the per-scanline predictive filtering of a decompressed
// IDAT stream and returns the concatenated raw pixel bytes, filter-type
// bytes discarded.
//
// Each of the height rows is 1+stride bytes: the filter type, then the
// filtered payload. Rows are reconstructed strictly in order because every
// filter except None reads the previous row's reconstructed bytes and the
// current row's already-reconstructed bytes bpp positions back. Two row
// buffers are enough; they swap as the rows advance.
func Unfilter(decompressed []byte, h Header) ([]byte, error) {
	if h.InterlaceMethod != 0 {
		return nil, &UnsupportedError{Feature: "interlaced (Adam7) image"}
	}

	height := int(h.Height)
	stride := h.Stride()
	bpp := h.BytesPerPixel()
	rowLen := 1 + stride
	if len(decompressed) != height*rowLen {
		return nil, formatErr(-1, "decompressed data is %d bytes, want %d (%d rows of 1+%d)",
			len(decompressed), height*rowLen, height, stride)
	}

	out := make([]byte, 0, height*stride)
	cur := make([]byte, stride)
	prev := make([]byte, stride) // all zero for the first row
	for y := 0; y < height; y++ {
		ft := decompressed[y*rowLen]
		row := decompressed[y*rowLen+1 : (y+1)*rowLen]
		logging.Debug().Int("scanline", y).Uint8("filter", ft).Msg("unfiltering scanline")

		switch ft {
		case ftNone:
			copy(cur, row)
		case ftSub:
			for x := 0; x < stride; x++ {
				var a byte
				if x >= bpp {
					a = cur[x-bpp]
				}
				cur[x] = row[x] + a
			}
		case ftUp:
			for x := 0; x < stride; x++ {
				cur[x] = row[x] + prev[x]
			}
		case ftAverage:
			for x := 0; x < stride; x++ {
				var a byte
				if x >= bpp {
					a = cur[x-bpp]
				}
				cur[x] = row[x] + byte((int(a)+int(prev[x]))/2)
			}
		case ftPaeth:
			for x := 0; x < stride; x++ {
				var a, c byte
				if x >= bpp {
					a = cur[x-bpp]
					c = prev[x-bpp]
				}
				cur[x] = row[x] + paeth(a, prev[x], c)
			}
		default:
			return nil, formatErr(-1, "scanline %d has filter type %d, want 0-4", y, ft)
		}

		out = append(out, cur...)
		cur, prev = prev, cur
	}
	return out, nil
}

// paeth picks whichever of a (left), b (above), c (upper left) is closest
// to a+b-c. Ties break toward a, then b.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
