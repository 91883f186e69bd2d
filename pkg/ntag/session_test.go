package ntag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

func TestSessionRoundTrip(t *testing.T) {
	tag := newSimTag(NTAG213)
	s := NewSession(tag)

	require.False(t, s.CheckProtectionState(), "factory tag must read as unprotected")

	require.True(t, s.SetPassword("toto"))
	assert.Equal(t, [PageSize]byte{0xF7, 0x1D, 0xBE, 0x52}, tag.password())

	tag.reactivate()
	require.True(t, s.CheckProtectionState())

	assert.True(t, s.Authenticate("toto"))
	assert.False(t, s.Authenticate("wrong"))

	// the failed attempt dropped the authenticated state
	assert.False(t, s.UnsetPassword("toto"))

	require.True(t, s.Authenticate("toto"))
	require.True(t, s.UnsetPassword("toto"))
	assert.Equal(t, ClearedPassword, tag.password())

	tag.reactivate()
	assert.False(t, s.CheckProtectionState())
}

func TestSetPasswordFrames(t *testing.T) {
	tag := newSimTag(NTAG213)
	s := NewSession(tag)

	seq := s.Set("toto")
	require.Len(t, seq, 2)
	assert.True(t, seq.OK())

	want := [][]byte{
		tlv.Hex("FF 00 00 00 08 D4 42 A2 29 04 00 00 00"),
		tlv.Hex("FF 00 00 00 08 D4 42 A2 2B F7 1D BE 52"),
	}
	assert.Equal(t, want, tag.sent)
}

func TestUnsetPasswordFrames(t *testing.T) {
	tag := newSimTag(NTAG215)
	s := NewSession(tag, WithProfile(NTAG215))

	require.True(t, s.UnsetPassword("ignored"))

	want := [][]byte{
		tlv.Hex("FF 00 00 00 08 D4 42 A2 83 04 00 00 FF"),
		tlv.Hex("FF 00 00 00 08 D4 42 A2 85 FF FF FF FF"),
	}
	assert.Equal(t, want, tag.sent)
}

func TestSequenceAttemptsEveryStep(t *testing.T) {
	tag := newSimTag(NTAG216)
	s := NewSession(tag, WithProfile(NTAG216))
	require.True(t, s.SetPassword("toto"))
	tag.reactivate()
	tag.sent = nil

	seq := s.Unset()

	require.Len(t, seq, 2)
	assert.Len(t, tag.sent, 2, "second write must be sent after the first was rejected")
	assert.False(t, seq.OK())
	for _, r := range seq {
		assert.Equal(t, TagRejection, r.Outcome, r.Name)
	}
	assert.Len(t, seq.Failed(), 2)
	assert.Equal(t, [PageSize]byte{0xF7, 0x1D, 0xBE, 0x52}, tag.password())
}

func TestSequenceTransportFailure(t *testing.T) {
	reader := &cannedReader{err: errors.New("card removed")}
	s := NewSession(reader)

	seq := s.Set("toto")

	assert.Equal(t, 2, reader.calls)
	assert.False(t, seq.OK())
	for _, r := range seq {
		assert.Equal(t, TransportFailure, r.Outcome)
		assert.Error(t, r.Err)
	}
}

func TestWriteAckWithoutCRC(t *testing.T) {
	tag := newSimTag(NTAG213)
	tag.writeAck = 0x02
	s := NewSession(tag)

	assert.True(t, s.SetPassword("toto"))
}

func TestCheckProtectionState(t *testing.T) {
	page := func(auth0 byte, n int) []byte {
		data := make([]byte, n)
		if n > auth0Offset {
			data[0] = 0x04
			data[auth0Offset] = auth0
		}
		return data
	}
	ok := []byte{0x90, 0x00}

	tests := []struct {
		name  string
		resp  []byte
		err   error
		want  bool
		state State
		out   Outcome
	}{
		{"AUTH0 00", tlv.Concat([]byte{0xD5, 0x43, 0x00}, page(0x00, 16), ok), nil, true, Enabled, OK},
		{"AUTH0 FF", tlv.Concat([]byte{0xD5, 0x43, 0x00}, page(0xFF, 16), ok), nil, false, Disabled, OK},
		{"AUTH0 10", tlv.Concat([]byte{0xD5, 0x43, 0x00}, page(0x10, 16), ok), nil, false, Disabled, OK},
		{"short payload", tlv.Concat([]byte{0xD5, 0x43, 0x00}, page(0x00, 15), ok), nil, false, Disabled, OK},
		{"long payload", tlv.Concat([]byte{0xD5, 0x43, 0x00}, page(0x00, 17), ok), nil, false, Disabled, OK},
		{"tag timeout", tlv.Hex("D5 43 01 90 00"), nil, false, Disabled, TagRejection},
		{"reader error", tlv.Hex("63 00"), nil, false, Disabled, TransportFailure},
		{"channel error", nil, errors.New("not connected"), false, Disabled, TransportFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&cannedReader{resp: tt.resp, err: tt.err})

			assert.Equal(t, tt.want, s.CheckProtectionState())

			state, r := s.ProtectionState()
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.out, r.Outcome)
		})
	}
}

func TestAuthOutcomes(t *testing.T) {
	tests := []struct {
		name string
		resp []byte
		err  error
		want Outcome
		data []byte
	}{
		{"accepted", tlv.Hex("D5 43 00 AB CD 90 00"), nil, OK, tlv.Hex("AB CD")},
		{"rejected", tlv.Hex("D5 43 01 90 00"), nil, TagRejection, []byte{}},
		{"wrong envelope", tlv.Hex("D5 41 00 AB CD 90 00"), nil, TagRejection, tlv.Hex("AB CD")},
		{"reader status", tlv.Hex("6A 81"), nil, TransportFailure, nil},
		{"channel error", nil, errors.New("reader unplugged"), TransportFailure, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(&cannedReader{resp: tt.resp, err: tt.err})

			r := s.Auth("toto")
			assert.Equal(t, tt.want, r.Outcome)
			assert.Equal(t, tt.data, r.Data())
			assert.Equal(t, tt.want == OK, s.Authenticate("toto"))
		})
	}
}

func TestSessionLogsRedactSecrets(t *testing.T) {
	var buf bytes.Buffer
	tag := newSimTag(NTAG213)
	s := NewSession(tag, WithLogger(zerolog.New(&buf)))

	require.True(t, s.SetPassword("toto"))
	require.True(t, s.Authenticate("toto"))

	out := buf.String()
	assert.Contains(t, out, "PWD_AUTH")
	assert.Contains(t, out, "A2 29 04 00 00 00")
	assert.NotContains(t, out, "F7 1D BE 52")
}

func TestReadConfiguration(t *testing.T) {
	tag := newSimTag(NTAG213)
	tag.pages[NTAG213.CFG1Page] = [PageSize]byte{0x95, 0x05, 0x00, 0x00}
	s := NewSession(tag)

	cfg, r := s.ReadConfiguration()
	require.True(t, r.OK())

	assert.Equal(t, uint8(0xFF), cfg.Auth0)
	assert.True(t, cfg.Prot)
	assert.True(t, cfg.NfcCntEn)
	assert.Equal(t, uint8(5), cfg.AuthLim)

	_, protected := cfg.ProtectsFrom(NTAG213)
	assert.False(t, protected)
}

func TestReadConfigurationShortAnswer(t *testing.T) {
	s := NewSession(&cannedReader{resp: tlv.Hex("D5 43 00 04 00 00 90 00")})

	_, r := s.ReadConfiguration()
	assert.Equal(t, TagRejection, r.Outcome)
	assert.Error(t, r.Err)
}

func TestProtectionStateAcrossGetResponse(t *testing.T) {
	page := make([]byte, ReadLen)
	page[0] = 0x04
	page[auth0Offset] = 0x00

	// The envelope comes back with 61 10 and the page through GET RESPONSE.
	q := &queuedReader{resps: [][]byte{
		tlv.Hex("D5 43 00 61 10"),
		tlv.Concat(page, []byte{0x90, 0x00}),
	}}
	s := NewSession(q)

	state, r := s.ProtectionState()
	require.True(t, r.OK(), r.String())
	assert.Equal(t, Enabled, state)
	assert.Equal(t, page, r.Data())
	require.Len(t, q.sent, 2)
	assert.Equal(t, tlv.Hex("FF C0 00 00 10"), q.sent[1])
}
