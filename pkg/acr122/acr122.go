// Package acr122 encodes tag commands into the pseudo-APDUs understood by PN532 based PC/SC
// readers (ACS ACR122U and compatibles) and interprets what comes back.
//
// A tag command travels inside a Direct Transmit pseudo-APDU whose data field is a PN532
// InCommunicateThru request:
//
//	FF 00 00 00 Lc | D4 42 | tag command...
//
// Lc counts the two PN532 bytes plus the tag command. The reader answers with the PN532
// reply followed by the reader status word:
//
//	D5 43 status | tag answer... | 90 00
//
// A 90 00 trailer only says the reader relayed the exchange. Whether the tag accepted the
// command is in the PN532 status byte.
package acr122

import (
	"github.com/gregLibert/ntag-pwd/pkg/iso7816"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// Passthrough groups the constants of the relay path. Values are immutable by convention;
// obtain them with Default.
type Passthrough struct {
	Class byte // reader pseudo-APDU class
	Ins   byte // Direct Transmit
	P1    byte
	P2    byte

	TFI     byte // host to PN532
	Command byte // InCommunicateThru

	ReplyClass    byte // PN532 to host
	ReplySubclass byte // InCommunicateThru answer

	SuccessSW1 byte
	SuccessSW2 byte
}

var defaultPassthrough = Passthrough{
	Class:         iso7816.ReaderClass,
	Ins:           byte(iso7816.INS_DIRECT_TRANSMIT),
	P1:            0x00,
	P2:            0x00,
	TFI:           0xD4,
	Command:       0x42,
	ReplyClass:    0xD5,
	ReplySubclass: 0x43,
	SuccessSW1:    0x90,
	SuccessSW2:    0x00,
}

// Default returns the ACR122 InCommunicateThru relay constants.
func Default() Passthrough {
	return defaultPassthrough
}

// PreambleLen is the size of the fixed header placed in front of every tag command.
const PreambleLen = 7

// Wrap prepends the passthrough preamble to tagCmd. The tag command is copied verbatim and
// never validated. Wrap is Command encoded to bytes: Lc is one byte up to 255 bytes of data
// (a 253 byte tag command) and switches to the extended 00 HH LL form above that. Past the
// extended limit there is no valid frame and Wrap returns nil.
func (p Passthrough) Wrap(tagCmd []byte) []byte {
	raw, err := p.Command(tagCmd).Bytes()
	if err != nil {
		return nil
	}
	return raw
}

// Command returns the passthrough frame as an APDU value for iso7816.Client.
func (p Passthrough) Command(tagCmd []byte) *iso7816.CommandAPDU {
	cls, _ := iso7816.NewClass(p.Class)
	ins, _ := iso7816.NewInstruction(iso7816.InsCode(p.Ins))
	return iso7816.NewCommandAPDU(cls, ins, p.P1, p.P2, tlv.Concat([]byte{p.TFI, p.Command}, tagCmd), 0)
}

// Wrap encodes tagCmd with the default passthrough.
func Wrap(tagCmd []byte) []byte {
	return defaultPassthrough.Wrap(tagCmd)
}

// Command encodes tagCmd with the default passthrough as an APDU value.
func Command(tagCmd []byte) *iso7816.CommandAPDU {
	return defaultPassthrough.Command(tagCmd)
}

// GetUID builds the GET DATA pseudo-APDU returning the UID of the tag in the field.
func GetUID() *iso7816.CommandAPDU {
	cls, _ := iso7816.NewClass(iso7816.ReaderClass)
	ins, _ := iso7816.NewInstruction(iso7816.INS_GET_DATA)
	return iso7816.NewCommandAPDU(cls, ins, 0x00, 0x00, nil, iso7816.MaxShortLe)
}

// GetFirmware builds the pseudo-APDU returning the reader firmware version as ASCII.
// Readers answer with the version string and no status word on some firmware; callers
// treat the whole answer as text.
func GetFirmware() *iso7816.CommandAPDU {
	cls, _ := iso7816.NewClass(iso7816.ReaderClass)
	ins, _ := iso7816.NewInstruction(iso7816.INS_DIRECT_TRANSMIT)
	return iso7816.NewCommandAPDU(cls, ins, 0x48, 0x00, nil, iso7816.MaxShortLe)
}
