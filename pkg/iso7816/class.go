package iso7816

import (
	"github.com/gregLibert/ntag-pwd/pkg/bits"
)

// Class Byte (CLA) according to ISO/IEC 7816-4 and PC/SC Part 3.
//
// Bit 8 set means proprietary. 0xFF is invalid for cards but PC/SC reserves it for commands
// addressed to the reader itself (pseudo-APDUs); it is decoded as a reader class here.
// For interindustry classes only the chaining bit (bit 5) is interpreted; secure messaging
// and logical channel bits are carried through Raw untouched.

// ReaderClass is the CLA byte of PC/SC reader pseudo-APDUs.
const ReaderClass byte = 0xFF

// Class represents a decoded CLA byte.
type Class struct {
	Raw           byte
	IsReader      bool
	IsProprietary bool
	IsChained     bool
}

// NewClass decodes a raw CLA byte.
func NewClass(cla byte) (Class, error) {
	if cla == ReaderClass {
		return Class{Raw: cla, IsReader: true, IsProprietary: true}, nil
	}
	if bits.IsSet(cla, 8) {
		return Class{Raw: cla, IsProprietary: true}, nil
	}
	return Class{Raw: cla, IsChained: bits.IsSet(cla, 5)}, nil
}

// Encode converts the Class back to its byte representation.
// Reader and proprietary classes are returned verbatim; interindustry classes get the
// chaining bit from IsChained.
func (c *Class) Encode() (byte, error) {
	if c.IsReader || c.IsProprietary {
		return c.Raw, nil
	}
	if c.IsChained {
		return bits.Set(c.Raw, 5), nil
	}
	return bits.Clear(c.Raw, 5), nil
}
