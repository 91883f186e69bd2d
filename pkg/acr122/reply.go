package acr122

import (
	"fmt"

	"github.com/gregLibert/ntag-pwd/pkg/bits"
)

// ReplyHeaderLen is the size of the PN532 envelope in front of the tag answer.
const ReplyHeaderLen = 3

// Status is the PN532 status byte of an InCommunicateThru answer.
//
// Bits 6-1 hold the error code. 0x00 is success. 0x02 is accepted as success too: the 4-bit
// ACK a Type 2 tag sends after WRITE has no CRC, and the PN532 reports it with the CRC error code.
type Status byte

const (
	StatusOK       Status = 0x00
	StatusTimeout  Status = 0x01
	StatusAckNoCRC Status = 0x02
)

var statusText = map[byte]string{
	0x00: "Success",
	0x01: "Timeout, the target did not answer",
	0x02: "CRC error (4-bit ACK accepted)",
	0x03: "Parity error",
	0x04: "Erroneous bit count during anticollision",
	0x05: "Framing error",
	0x06: "Abnormal bit collision",
	0x07: "Communication buffer too small",
	0x09: "RF buffer overflow",
	0x0A: "RF field not switched on in time",
	0x0B: "RF protocol error",
	0x0D: "Temperature error",
	0x0E: "Internal buffer overflow",
	0x10: "Invalid parameter",
	0x12: "DEP unsupported command",
	0x13: "DEP data format error",
	0x14: "Authentication error",
	0x23: "Wrong UID check byte",
	0x25: "Invalid device state",
	0x26: "Operation not allowed",
	0x27: "Command not acceptable in context",
	0x29: "Target released",
	0x2A: "Card ID mismatch",
	0x2B: "Card disappeared",
	0x2C: "NFCID3 mismatch",
	0x2D: "Over-current",
	0x2E: "NAD missing",
}

// IsAck reports whether the status counts as a tag-level success.
func (s Status) IsAck() bool {
	return s == StatusOK || s == StatusAckNoCRC
}

// Code returns the error code without the MI/NAD flags.
func (s Status) Code() byte {
	return bits.GetRange(byte(s), 6, 1)
}

// Verbose returns a human-readable description of the status byte.
func (s Status) Verbose() string {
	if text, ok := statusText[s.Code()]; ok {
		return fmt.Sprintf("[%02X] %s", byte(s), text)
	}
	return fmt.Sprintf("[%02X] Unknown PN532 status", byte(s))
}

// Reply is a view over a successful reader payload.
type Reply struct {
	Class    byte
	Subclass byte
	Status   Status
	Data     []byte // tag answer after the envelope
}

// ParseReply splits payload into the PN532 envelope and the tag answer.
// It returns false when payload is shorter than the envelope.
func ParseReply(payload []byte) (Reply, bool) {
	if len(payload) < ReplyHeaderLen {
		return Reply{}, false
	}
	return Reply{
		Class:    payload[0],
		Subclass: payload[1],
		Status:   Status(payload[2]),
		Data:     payload[ReplyHeaderLen:],
	}, true
}

// IsTransportSuccess reports whether the status pair equals the success pair (144, 0).
func (p Passthrough) IsTransportSuccess(sw1, sw2 byte) bool {
	return sw1 == p.SuccessSW1 && sw2 == p.SuccessSW2
}

// IsTagAck reports whether payload carries the expected envelope with an accepted status.
// Short or empty payloads are not acks.
func (p Passthrough) IsTagAck(payload []byte) bool {
	r, ok := ParseReply(payload)
	if !ok {
		return false
	}
	return r.Class == p.ReplyClass && r.Subclass == p.ReplySubclass && r.Status.IsAck()
}

// IsTransportSuccess checks the status pair against the default passthrough.
func IsTransportSuccess(sw1, sw2 byte) bool {
	return defaultPassthrough.IsTransportSuccess(sw1, sw2)
}

// IsTagAck checks payload against the default passthrough.
func IsTagAck(payload []byte) bool {
	return defaultPassthrough.IsTagAck(payload)
}
