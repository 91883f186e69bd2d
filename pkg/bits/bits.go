// Package bits provides helpers for single-byte bit fields, numbered 1 (LSB) to 8 (MSB)
// as in the NXP and ISO datasheets.
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// GetRange extracts the value from a range of bits (e.g., bits 3 to 1).
// Example: GetRange(0b00000101, 3, 1) returns 5 (AUTHLIM field of the NTAG ACCESS byte).
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// Set sets bit n.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Clear clears bit n.
func Clear(b byte, n uint) byte {
	return b &^ Bit(n)
}
