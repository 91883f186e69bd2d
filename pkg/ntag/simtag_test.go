package ntag

import (
	"bytes"

	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// simTag emulates an ACR122 with an NTAG21x in the field. AUTH0 changes take effect on
// reactivate, as on the real tag.
type simTag struct {
	profile       Profile
	pages         [][PageSize]byte
	auth0         byte // AUTH0 latched at the last activation
	authenticated bool
	writeAck      byte // PN532 status reported for a WRITE ack
	sent          [][]byte
}

func newSimTag(p Profile) *simTag {
	t := &simTag{
		profile: p,
		pages:   make([][PageSize]byte, p.TotalPages),
	}
	t.pages[p.CFG0Page] = DisableProtection
	t.pages[p.PWDPage] = ClearedPassword
	t.reactivate()
	return t
}

func (t *simTag) reactivate() {
	t.auth0 = t.pages[t.profile.CFG0Page][auth0Offset]
	t.authenticated = false
}

func (t *simTag) password() [PageSize]byte {
	return t.pages[t.profile.PWDPage]
}

func simReply(status byte, data ...byte) []byte {
	return tlv.Concat([]byte{0xD5, 0x43, status}, data, []byte{0x90, 0x00})
}

func simNak() []byte {
	return simReply(0x01)
}

func (t *simTag) Transmit(apdu []byte) ([]byte, error) {
	t.sent = append(t.sent, append([]byte(nil), apdu...))

	if len(apdu) < 8 || !bytes.Equal(apdu[:4], []byte{0xFF, 0x00, 0x00, 0x00}) ||
		int(apdu[4]) != len(apdu)-5 || apdu[5] != 0xD4 || apdu[6] != 0x42 {
		return []byte{0x6A, 0x81}, nil
	}

	cmd := apdu[7:]
	switch cmd[0] {
	case CmdRead:
		return t.read(cmd), nil
	case CmdWrite:
		return t.write(cmd), nil
	case CmdPwdAuth:
		return t.auth(cmd), nil
	}
	return simNak(), nil
}

func (t *simTag) read(cmd []byte) []byte {
	if len(cmd) != 2 || int(cmd[1]) >= t.profile.TotalPages {
		return simNak()
	}
	var out []byte
	for i := 0; i < 4; i++ {
		page := (int(cmd[1]) + i) % t.profile.TotalPages
		if page == int(t.profile.PWDPage) || page == int(t.profile.PACKPage) {
			out = append(out, 0, 0, 0, 0)
			continue
		}
		out = append(out, t.pages[page][:]...)
	}
	return simReply(0x00, out...)
}

func (t *simTag) write(cmd []byte) []byte {
	if len(cmd) != 6 || int(cmd[1]) >= t.profile.TotalPages {
		return simNak()
	}
	if cmd[1] >= t.auth0 && !t.authenticated {
		return simNak()
	}
	copy(t.pages[cmd[1]][:], cmd[2:])
	return simReply(t.writeAck)
}

func (t *simTag) auth(cmd []byte) []byte {
	if len(cmd) != 5 || !bytes.Equal(cmd[1:], t.pages[t.profile.PWDPage][:]) {
		t.authenticated = false
		return simNak()
	}
	t.authenticated = true
	pack := t.pages[t.profile.PACKPage]
	return simReply(0x00, pack[0], pack[1])
}

// cannedReader answers every command with the same response.
type cannedReader struct {
	resp  []byte
	err   error
	calls int
}

func (c *cannedReader) Transmit([]byte) ([]byte, error) {
	c.calls++
	return c.resp, c.err
}

// queuedReader answers commands from a fixed queue and records what it receives.
type queuedReader struct {
	resps [][]byte
	sent  [][]byte
}

func (q *queuedReader) Transmit(apdu []byte) ([]byte, error) {
	q.sent = append(q.sent, append([]byte(nil), apdu...))
	if len(q.resps) == 0 {
		return []byte{0x6F, 0x00}, nil
	}
	resp := q.resps[0]
	q.resps = q.resps[1:]
	return resp, nil
}
