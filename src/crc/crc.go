// Package crc computes CRC32 checksums under configurable bit-order and
// polynomial conventions. The PNG container uses the Standard preset; the
// other presets exist for the standalone checksum tool.
package crc

// Config fully describes one CRC32 convention. Polynomial is given in the
// bit order the register is processed in: reflected (LSB-first) when
// ReflectIn is set, MSB-first otherwise.
type Config struct {
	Polynomial uint32
	Init       uint32
	ReflectIn  bool
	ReflectOut bool
	FinalXor   uint32
}

// Standard is the reflected CRC-32 used by zlib, PNG, and ZIP
// (polynomial 0xEDB88320 in its reflected representation).
var Standard = Config{
	Polynomial: 0xEDB88320,
	Init:       0xFFFFFFFF,
	ReflectIn:  true,
	ReflectOut: true,
	FinalXor:   0xFFFFFFFF,
}

// Reversed processes the same generator polynomial MSB-first
// (0x04C11DB7), with the init and final-xor constants of Standard.
// This matches the CRC-32/BZIP2 convention.
var Reversed = Config{
	Polynomial: 0x04C11DB7,
	Init:       0xFFFFFFFF,
	ReflectIn:  false,
	ReflectOut: false,
	FinalXor:   0xFFFFFFFF,
}

// Custom is the Standard convention with a caller-supplied reflected
// polynomial. Only the polynomial differs.
func Custom(polynomial uint32) Config {
	c := Standard
	c.Polynomial = polynomial
	return c
}

// Checksum runs the bitwise CRC over data. The register starts at Init and
// shifts toward the reflected or MSB-first end depending on ReflectIn; a
// reflected register already produces reflected output, so an extra bit
// reversal is only needed when ReflectOut disagrees with ReflectIn.
func (c Config) Checksum(data []byte) uint32 {
	crc := c.Init
	if c.ReflectIn {
		for _, b := range data {
			crc ^= uint32(b)
			for i := 0; i < 8; i++ {
				if crc&1 != 0 {
					crc = crc>>1 ^ c.Polynomial
				} else {
					crc >>= 1
				}
			}
		}
	} else {
		for _, b := range data {
			crc ^= uint32(b) << 24
			for i := 0; i < 8; i++ {
				if crc&0x80000000 != 0 {
					crc = crc<<1 ^ c.Polynomial
				} else {
					crc <<= 1
				}
			}
		}
	}
	if c.ReflectOut != c.ReflectIn {
		crc = reflect32(crc)
	}
	return crc ^ c.FinalXor
}

// Validate reports whether data checksums to expected under this config.
// A mismatch is not an error; the caller decides what to do with it.
func (c Config) Validate(data []byte, expected uint32) bool {
	return c.Checksum(data) == expected
}

func reflect32(v uint32) uint32 {
	var out uint32
	for i := 0; i < 32; i++ {
		out = out<<1 | v&1
		v >>= 1
	}
	return out
}
