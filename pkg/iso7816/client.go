package iso7816

import (
	"errors"
	"fmt"
)

// The Client drives a Transmitter and resolves the two transport procedures of ISO 7816-3
// that leak into the application layer:
//
//  1. "61 XX": XX bytes are waiting. A GET RESPONSE is sent on the same class, which for
//     reader pseudo-APDUs gives the ACR122 form FF C0 00 00 XX.
//  2. "6C XX": wrong Le. The command is re-sent with Le = XX.
//
// Send returns the whole conversation as a Trace.

// maxFollowUps bounds the GET RESPONSE / re-issue chain of a single Send.
const maxFollowUps = 8

// ErrTooManyFollowUps is returned when a reader keeps answering 61XX/6CXX.
var ErrTooManyFollowUps = errors.New("too many 61XX/6CXX follow-ups")

// Transmitter abstracts the physical connection. *scard.Card satisfies it.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the communication with the reader.
type Client struct {
	Card Transmitter
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits a command and follows 61XX/6CXX answers.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	return c.send(cmd, 0)
}

func (c *Client) send(cmd *CommandAPDU, depth int) (Trace, error) {
	if depth > maxFollowUps {
		return nil, ErrTooManyFollowUps
	}

	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return nil, err
	}

	trace := Trace{{Command: cmd, Response: resp}}

	next := c.followUp(cmd, resp.Status)
	if next == nil {
		return trace, nil
	}

	sub, err := c.send(next, depth+1)
	if err != nil {
		return trace, err
	}
	return append(trace, sub...), nil
}

// followUp returns the command implied by sw, or nil when the exchange is complete.
func (c *Client) followUp(cmd *CommandAPDU, sw StatusWord) *CommandAPDU {
	ne := int(sw.SW2())
	if ne == 0 {
		ne = MaxShortLe
	}

	switch sw.SW1() {
	case 0x61:
		cls := cmd.Class
		cls.IsChained = false
		ins, _ := NewInstruction(INS_GET_RESPONSE)
		return NewCommandAPDU(cls, ins, 0x00, 0x00, nil, ne)
	case 0x6C:
		again := *cmd
		again.Ne = ne
		return &again
	}
	return nil
}
