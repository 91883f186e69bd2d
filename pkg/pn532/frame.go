package pn532

import (
	"errors"
	"fmt"
)

// Frame identifiers.
const (
	HostToPN532 byte = 0xD4
	PN532ToHost byte = 0xD5
)

// MaxFrameData is the largest TFI+PD payload of a normal information frame.
const MaxFrameData = 255

var (
	ackFrame  = []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00}
	nackFrame = []byte{0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00}
)

var (
	// ErrIncompleteFrame means more bytes are needed before a frame can be decoded.
	ErrIncompleteFrame = errors.New("incomplete frame")
	// ErrChecksum is returned when LCS or DCS does not match.
	ErrChecksum = errors.New("frame checksum mismatch")
	// ErrFrameTooLarge is returned for payloads that need an extended frame.
	ErrFrameTooLarge = errors.New("frame payload exceeds normal frame size")
)

// FrameKind tells information frames from flow-control frames.
type FrameKind int

const (
	FrameData FrameKind = iota
	FrameAck
	FrameNack
)

func (k FrameKind) String() string {
	switch k {
	case FrameData:
		return "data"
	case FrameAck:
		return "ACK"
	case FrameNack:
		return "NACK"
	default:
		return fmt.Sprintf("FrameKind(%d)", int(k))
	}
}

// Frame is a decoded frame. Data holds TFI and PD for information frames.
type Frame struct {
	Kind FrameKind
	Data []byte
}

// checksum returns the two's complement of the byte sum, so that sum(data)+checksum == 0.
func checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1
}

// EncodeFrame builds 00 00 FF LEN LCS <data> DCS 00.
func EncodeFrame(data []byte) ([]byte, error) {
	if len(data) == 0 || len(data) > MaxFrameData {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	n := byte(len(data))
	out := make([]byte, 0, len(data)+7)
	out = append(out, 0x00, 0x00, 0xFF, n, ^n+1)
	out = append(out, data...)
	return append(out, checksum(data), 0x00), nil
}

// EncodeCommand builds the frame for a host command.
func EncodeCommand(cmd byte, args []byte) ([]byte, error) {
	data := make([]byte, 0, len(args)+2)
	data = append(data, HostToPN532, cmd)
	return EncodeFrame(append(data, args...))
}

// DecodeFrame decodes the first frame in buf and returns the number of bytes consumed.
// Garbage before the start code is skipped. ErrIncompleteFrame asks for more input;
// on ErrChecksum the consumed count covers the broken frame.
func DecodeFrame(buf []byte) (Frame, int, error) {
	start := -1
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == 0x00 && buf[i+1] == 0xFF {
			start = i
			break
		}
	}
	if start < 0 || len(buf) < start+4 {
		return Frame{}, 0, ErrIncompleteFrame
	}

	length, lcs := buf[start+2], buf[start+3]
	body := start + 4

	switch {
	case length == 0x00 && lcs == 0xFF:
		return Frame{Kind: FrameAck}, consumed(buf, body), nil
	case length == 0xFF && lcs == 0x00:
		return Frame{Kind: FrameNack}, consumed(buf, body), nil
	case length+lcs != 0:
		return Frame{}, body, ErrChecksum
	}

	end := body + int(length)
	if len(buf) < end+1 {
		return Frame{}, 0, ErrIncompleteFrame
	}
	data := buf[body:end]
	if checksum(data) != buf[end] {
		return Frame{}, consumed(buf, end+1), ErrChecksum
	}

	out := make([]byte, len(data))
	copy(out, data)
	return Frame{Kind: FrameData, Data: out}, consumed(buf, end+1), nil
}

// consumed adds the postamble when it already arrived.
func consumed(buf []byte, n int) int {
	if n < len(buf) && buf[n] == 0x00 {
		return n + 1
	}
	return n
}
