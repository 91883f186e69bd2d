package ntag

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gregLibert/ntag-pwd/pkg/acr122"
	"github.com/gregLibert/ntag-pwd/pkg/iso7816"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// auth0Offset is the position of AUTH0 in the CFG0 page.
const auth0Offset = 3

// State is the write protection state read from AUTH0.
type State int

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Option configures a Session.
type Option func(*Session)

// WithProfile selects the tag model. The default is NTAG213.
func WithProfile(p Profile) Option {
	return func(s *Session) {
		s.profile = p
	}
}

// WithLogger sets the step logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// WithPassthrough overrides the reader envelope constants.
func WithPassthrough(p acr122.Passthrough) Option {
	return func(s *Session) {
		s.passthrough = p
	}
}

// Session runs protection operations against the tag currently in the field.
type Session struct {
	client      *iso7816.Client
	passthrough acr122.Passthrough
	profile     Profile
	log         zerolog.Logger
}

// NewSession binds a session to card.
func NewSession(card iso7816.Transmitter, opts ...Option) *Session {
	s := &Session{
		client:      iso7816.NewClient(card),
		passthrough: acr122.Default(),
		profile:     NTAG213,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the tag model the session addresses.
func (s *Session) Profile() Profile {
	return s.profile
}

// CheckProtectionState reads AUTH0 and reports whether protection starts at page 0.
// A failed exchange reads as disabled.
func (s *Session) CheckProtectionState() bool {
	state, _ := s.ProtectionState()
	return state == Enabled
}

// ProtectionState is CheckProtectionState with the underlying step.
//
// The state is Enabled only when the reader relayed a full 16-byte READ answer and AUTH0 is 0x00.
// Callers that must tell "disabled" apart from "could not read" inspect the StepResult outcome.
func (s *Session) ProtectionState() (State, StepResult) {
	r := s.exchange(step{name: "read CFG0", cmd: ReadCommand(s.profile.CFG0Page)})
	if r.Outcome == TransportFailure {
		return Disabled, r
	}
	if len(r.Payload) == acr122.ReplyHeaderLen+ReadLen && r.Payload[acr122.ReplyHeaderLen+auth0Offset] == 0x00 {
		return Enabled, r
	}
	return Disabled, r
}

// Authenticate sends PWD_AUTH with the secret derived from password.
// False covers both a wrong password and a failed exchange.
func (s *Session) Authenticate(password string) bool {
	return s.Auth(password).OK()
}

// Auth is Authenticate with the underlying step. On success Data() holds the 2-byte PACK.
func (s *Session) Auth(password string) StepResult {
	return s.exchange(step{name: "PWD_AUTH", cmd: AuthCommand(Secret(password)), sensitive: true})
}

// SetPassword enables protection from page 0 and writes the secret derived from password.
func (s *Session) SetPassword(password string) bool {
	return s.Set(password).OK()
}

// Set is SetPassword with every step result.
func (s *Session) Set(password string) Sequence {
	seq := s.run(
		step{name: "write AUTH0=00", cmd: WriteCommand(s.profile.CFG0Page, EnableProtection)},
		step{name: "write PWD", cmd: WriteCommand(s.profile.PWDPage, Secret(password)), sensitive: true},
	)
	s.logSequence("set password", seq)
	return seq
}

// UnsetPassword disables protection and restores the factory password.
// The password is not sent to the tag; authenticate first when protection is active.
func (s *Session) UnsetPassword(_ string) bool {
	return s.Unset().OK()
}

// Unset is UnsetPassword with every step result.
func (s *Session) Unset() Sequence {
	seq := s.run(
		step{name: "write AUTH0=FF", cmd: WriteCommand(s.profile.CFG0Page, DisableProtection)},
		step{name: "write PWD=FFFFFFFF", cmd: WriteCommand(s.profile.PWDPage, ClearedPassword)},
	)
	s.logSequence("unset password", seq)
	return seq
}

// ReadConfiguration reads and decodes the CFG0 and CFG1 pages.
func (s *Session) ReadConfiguration() (Configuration, StepResult) {
	r := s.exchange(step{name: "read CFG0/CFG1", cmd: ReadCommand(s.profile.CFG0Page)})
	if !r.OK() {
		return Configuration{}, r
	}
	cfg, err := ParseConfiguration(r.Data())
	if err != nil {
		r.Outcome = TagRejection
		r.Err = err
		return Configuration{}, r
	}
	return cfg, r
}

type step struct {
	name      string
	cmd       []byte
	sensitive bool // carries password material, kept out of logs
}

// run executes every step in order. A failed step does not stop the ones after it.
func (s *Session) run(steps ...step) Sequence {
	seq := make(Sequence, 0, len(steps))
	for _, st := range steps {
		seq = append(seq, s.exchange(st))
	}
	return seq
}

// exchange wraps, transmits and classifies one tag command. It never returns an error:
// channel failures become TransportFailure.
func (s *Session) exchange(st step) StepResult {
	r := StepResult{Name: st.name, Command: st.cmd}

	trace, err := s.client.Send(s.passthrough.Command(st.cmd))
	r.Status = trace.Status()
	r.Payload = trace.Data()

	switch {
	case err != nil:
		r.Outcome = TransportFailure
		r.Err = err
	case !s.passthrough.IsTransportSuccess(r.Status.SW1(), r.Status.SW2()):
		r.Outcome = TransportFailure
	case !s.passthrough.IsTagAck(r.Payload):
		r.Outcome = TagRejection
	default:
		r.Outcome = OK
	}

	s.logStep(st, r)
	return r
}

func (s *Session) logStep(st step, r StepResult) {
	ev := s.log.Debug()
	if !r.OK() {
		ev = s.log.Warn()
	}
	if !st.sensitive {
		ev = ev.Str("cmd", tlv.HexString(st.cmd))
	}
	ev.Str("step", r.Name).
		Str("profile", s.profile.Name).
		Str("sw", fmt.Sprintf("%04X", uint16(r.Status))).
		Str("reply", tlv.HexString(r.Payload)).
		Stringer("outcome", r.Outcome).
		Err(r.Err).
		Msg("tag exchange")
}

func (s *Session) logSequence(op string, seq Sequence) {
	if seq.OK() {
		s.log.Info().Str("op", op).Int("steps", len(seq)).Msg("sequence complete")
		return
	}
	ev := s.log.Warn().Str("op", op).Int("steps", len(seq))
	for _, r := range seq.Failed() {
		ev = ev.Str(r.Name, r.Outcome.String())
	}
	ev.Msg("sequence failed")
}
