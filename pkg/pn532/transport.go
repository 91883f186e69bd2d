// Package pn532 drives a bare PN532 over its high speed UART and presents it as an ACR122
// style reader, so the ntag package can run unchanged on either transport.
package pn532

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"

	"github.com/gregLibert/ntag-pwd/internal/syncutil"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// PN532 commands.
const (
	cmdGetFirmwareVersion  byte = 0x02
	cmdSAMConfiguration    byte = 0x14
	cmdRFConfiguration     byte = 0x32
	cmdInCommunicateThru   byte = 0x42
	cmdInListPassiveTarget byte = 0x4A
)

const (
	baudRate        = 115200
	readTimeout     = 50 * time.Millisecond
	commandTimeout  = time.Second
	maxNacks        = 3
	maxListAttempts = 0x10 // MxRtyPassiveActivation, keeps InListPassiveTarget bounded
)

var wakeUp = []byte{0x55, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

var (
	// ErrTimeout is returned when the PN532 did not answer within the command timeout.
	ErrTimeout = errors.New("pn532 did not answer in time")
	// ErrNoAck is returned when the PN532 answered a command without acknowledging it.
	ErrNoAck = errors.New("pn532 did not acknowledge the command")
	// ErrNoTarget is returned when no tag entered the field before the presence timeout.
	ErrNoTarget = errors.New("no tag in the field")
	// ErrUnexpectedResponse is returned for a response that does not match the command.
	ErrUnexpectedResponse = errors.New("unexpected pn532 response")
)

// Port is the part of serial.Port the transport needs.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	Close() error
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger logs every frame at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Transport) {
		t.log = l
	}
}

// WithCommandTimeout bounds the wait for a single command response.
func WithCommandTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.timeout = d
	}
}

// Transport is a PN532 on a serial line with one ISO/IEC 14443 type A target selected.
type Transport struct {
	mu      syncutil.Mutex
	port    Port
	name    string
	pending []byte
	uid     []byte
	timeout time.Duration
	log     zerolog.Logger
}

// Open opens the serial port at 115200 8N1 and waits up to presence for a tag.
func Open(name string, presence time.Duration, opts ...Option) (*Transport, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}

	t := New(port, name, opts...)
	if err := t.Init(presence); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

// New wraps an already opened port. Init must run before Transmit.
func New(port Port, name string, opts ...Option) *Transport {
	t := &Transport{
		port:    port,
		name:    name,
		timeout: commandTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Init configures the SAM in normal mode, bounds passive activation retries and polls for a
// type A target until one answers or presence elapses.
func (t *Transport) Init(presence time.Duration) error {
	if _, err := t.SendCommand(cmdSAMConfiguration, []byte{0x01, 0x14, 0x01}); err != nil {
		return fmt.Errorf("SAMConfiguration: %w", err)
	}
	if _, err := t.SendCommand(cmdRFConfiguration, []byte{0x05, 0xFF, 0x01, maxListAttempts}); err != nil {
		return fmt.Errorf("RFConfiguration: %w", err)
	}

	deadline := time.Now().Add(presence)
	for {
		resp, err := t.SendCommand(cmdInListPassiveTarget, []byte{0x01, 0x00})
		if err != nil {
			return fmt.Errorf("InListPassiveTarget: %w", err)
		}
		if uid, ok := parseTarget(resp); ok {
			t.mu.Lock()
			t.uid = uid
			t.mu.Unlock()
			t.log.Info().Str("port", t.name).Str("uid", tlv.HexString(uid)).Msg("tag selected")
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%s: %w", t.name, ErrNoTarget)
		}
	}
}

// parseTarget extracts the UID from D5 4B NbTg Tg SENS_RES(2) SEL_RES NFCIDLength NFCID1.
func parseTarget(resp []byte) ([]byte, bool) {
	if len(resp) < 3 || resp[2] == 0 {
		return nil, false
	}
	const uidLenAt = 7
	if len(resp) <= uidLenAt {
		return nil, false
	}
	uid := tlv.Extract(resp, uidLenAt+1, int(resp[uidLenAt]))
	return uid, len(uid) > 0
}

// UID returns the UID of the selected target.
func (t *Transport) UID() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tlv.Concat(t.uid)
}

// Close closes the port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", t.name, err)
	}
	return nil
}

// SendCommand sends cmd with args and returns the response data, starting with D5 and cmd+1.
func (t *Transport) SendCommand(cmd byte, args []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, fmt.Errorf("%s: port closed", t.name)
	}

	raw, err := EncodeCommand(cmd, args)
	if err != nil {
		return nil, err
	}

	t.pending = nil
	if err := t.write(tlv.Concat(wakeUp, raw)); err != nil {
		return nil, err
	}
	t.log.Debug().Str("port", t.name).Str("tx", tlv.HexString(raw)).Msg("pn532 frame")

	deadline := time.Now().Add(t.timeout)
	if err := t.waitAck(deadline); err != nil {
		return nil, err
	}

	data, err := t.readResponse(deadline)
	if err != nil {
		return nil, err
	}
	t.log.Debug().Str("port", t.name).Str("rx", tlv.HexString(data)).Msg("pn532 frame")

	if len(data) < 2 || data[0] != PN532ToHost || data[1] != cmd+1 {
		return nil, fmt.Errorf("%w: % X to command %02X", ErrUnexpectedResponse, data, cmd)
	}
	return data, nil
}

func (t *Transport) write(p []byte) error {
	n, err := t.port.Write(p)
	if err != nil {
		return fmt.Errorf("write %s: %w", t.name, err)
	}
	if n != len(p) {
		return fmt.Errorf("write %s: short write %d of %d bytes", t.name, n, len(p))
	}
	if err := t.port.Drain(); err != nil {
		return fmt.Errorf("drain %s: %w", t.name, err)
	}
	return nil
}

func (t *Transport) waitAck(deadline time.Time) error {
	f, err := t.nextFrame(deadline)
	if err != nil {
		return err
	}
	if f.Kind != FrameAck {
		return fmt.Errorf("%s: %w (got %s frame)", t.name, ErrNoAck, f.Kind)
	}
	return nil
}

// readResponse reads the information frame, asking for a resend on checksum errors.
func (t *Transport) readResponse(deadline time.Time) ([]byte, error) {
	for nacks := 0; ; nacks++ {
		f, err := t.nextFrame(deadline)
		switch {
		case errors.Is(err, ErrChecksum) && nacks < maxNacks:
			t.log.Warn().Str("port", t.name).Int("attempt", nacks+1).Msg("checksum mismatch, sending NACK")
			t.pending = nil
			if err := t.write(nackFrame); err != nil {
				return nil, err
			}
			continue
		case err != nil:
			return nil, err
		case f.Kind != FrameData:
			return nil, fmt.Errorf("%w: %s frame instead of a response", ErrUnexpectedResponse, f.Kind)
		}
		return f.Data, nil
	}
}

// nextFrame decodes the next frame, reading from the port until one is complete.
func (t *Transport) nextFrame(deadline time.Time) (Frame, error) {
	chunk := make([]byte, 64)
	for {
		f, n, err := DecodeFrame(t.pending)
		if !errors.Is(err, ErrIncompleteFrame) {
			t.pending = t.pending[n:]
			return f, err
		}
		if !time.Now().Before(deadline) {
			return Frame{}, fmt.Errorf("%s: %w", t.name, ErrTimeout)
		}
		n, err = t.port.Read(chunk)
		if err != nil {
			return Frame{}, fmt.Errorf("read %s: %w", t.name, err)
		}
		t.pending = append(t.pending, chunk[:n]...)
	}
}
