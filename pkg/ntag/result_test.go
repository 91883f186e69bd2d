package ntag

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

func TestSequenceOK(t *testing.T) {
	ok := StepResult{Name: "a", Outcome: OK}
	bad := StepResult{Name: "b", Outcome: TagRejection}

	assert.False(t, Sequence{}.OK(), "empty sequence proves nothing")
	assert.True(t, Sequence{ok, ok}.OK())
	assert.False(t, Sequence{ok, bad}.OK())
	assert.False(t, Sequence{bad, ok}.OK())
	assert.Equal(t, Sequence{bad}, Sequence{ok, bad, ok}.Failed())
}

func TestStepResultString(t *testing.T) {
	r := StepResult{Name: "PWD_AUTH", Outcome: TransportFailure, Err: errors.New("card removed")}
	assert.Equal(t, "PWD_AUTH: transport-failure (card removed)", r.String())

	r = StepResult{Name: "write PWD", Outcome: TagRejection, Status: 0x9000, Payload: tlv.Hex("D5 43 01")}
	assert.True(t, strings.HasSuffix(r.String(), "Timeout, the target did not answer"), r.String())

	r = StepResult{Name: "read CFG0", Outcome: OK, Status: 0x9000}
	assert.Equal(t, "read CFG0: ok [9000]", r.String())

	assert.Equal(t, "Outcome(7)", Outcome(7).String())
}
