package ntag

import (
	"fmt"

	"github.com/gregLibert/ntag-pwd/pkg/acr122"
	"github.com/gregLibert/ntag-pwd/pkg/iso7816"
)

// Outcome classifies a single step.
type Outcome int

const (
	// OK means the reader relayed the command and the tag acknowledged it.
	OK Outcome = iota
	// TransportFailure means the channel failed or the reader status was not 90 00.
	TransportFailure
	// TagRejection means the reader relayed the command but the tag reply is not an ack.
	TagRejection
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case TransportFailure:
		return "transport-failure"
	case TagRejection:
		return "tag-rejection"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// StepResult is the outcome of one encode, transmit, interpret step.
type StepResult struct {
	Name    string
	Command []byte // tag command, before wrapping
	Outcome Outcome
	Status  iso7816.StatusWord // final reader status, 0 when nothing came back
	Payload []byte             // reader payload, PN532 envelope included
	Err     error              // channel error behind a TransportFailure
}

// OK reports whether the step succeeded.
func (r StepResult) OK() bool {
	return r.Outcome == OK
}

// Data returns the tag answer that follows the PN532 envelope.
func (r StepResult) Data() []byte {
	reply, ok := acr122.ParseReply(r.Payload)
	if !ok {
		return nil
	}
	return reply.Data
}

func (r StepResult) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %s (%v)", r.Name, r.Outcome, r.Err)
	case r.Outcome == TagRejection:
		if reply, ok := acr122.ParseReply(r.Payload); ok {
			return fmt.Sprintf("%s: %s %s", r.Name, r.Outcome, reply.Status.Verbose())
		}
	}
	return fmt.Sprintf("%s: %s [%04X]", r.Name, r.Outcome, uint16(r.Status))
}

// Sequence is the ordered result of a multi-step operation. Every step runs even when an
// earlier one failed, and nothing is rolled back.
type Sequence []StepResult

// OK is true when the sequence ran at least one step and every step succeeded.
func (s Sequence) OK() bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Failed returns the steps that did not succeed.
func (s Sequence) Failed() Sequence {
	var out Sequence
	for _, r := range s {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
