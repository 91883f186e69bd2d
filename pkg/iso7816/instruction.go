package iso7816

import (
	"fmt"
)

// Instruction Byte (INS).
//
// Under the reader class 0xFF the INS byte selects a reader service: 0x00 relays the
// data field to the reader chip (Direct Transmit), 0xCA returns card data such as the UID,
// 0xC0 fetches pending response bytes.
//
// INS values whose upper nibble is 6 or 9 are reserved for SW1 and rejected.

// InsCode is a typed representation of the instruction byte.
type InsCode byte

const (
	INS_DIRECT_TRANSMIT InsCode = 0x00
	INS_GET_RESPONSE    InsCode = 0xC0
	INS_GET_DATA        InsCode = 0xCA
)

var insNames = map[InsCode]string{
	INS_DIRECT_TRANSMIT: "INS_DIRECT_TRANSMIT",
	INS_GET_RESPONSE:    "INS_GET_RESPONSE",
	INS_GET_DATA:        "INS_GET_DATA",
}

func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("InsCode(0x%02X)", byte(i))
}

// Instruction represents a validated INS byte.
type Instruction struct {
	Raw InsCode
}

// NewInstruction creates an Instruction, rejecting the reserved 6X and 9X values.
func NewInstruction(ins InsCode) (Instruction, error) {
	highNibble := byte(ins) & 0xF0
	if highNibble == 0x60 || highNibble == 0x90 {
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}
	return Instruction{Raw: ins}, nil
}

// Verbose returns a human-readable description of the instruction.
func (i Instruction) Verbose() string {
	return fmt.Sprintf("INS: 0x%02X | Command: %s", byte(i.Raw), i.Raw.String())
}
