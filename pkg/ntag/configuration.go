package ntag

import (
	"fmt"
	"strings"

	"github.com/gregLibert/ntag-pwd/pkg/bits"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// configurationLen covers CFG0 and CFG1.
const configurationLen = 2 * PageSize

// Configuration is the decoded content of the CFG0 and CFG1 pages.
type Configuration struct {
	Mirror     uint8 `fmt:"bits"`
	MirrorPage uint8
	Auth0      uint8
	Access     uint8 `fmt:"bits"`

	// ACCESS flags
	Prot          bool // read access protected as well as write access
	CfgLck        bool // configuration pages permanently locked
	NfcCntEn      bool // NFC counter enabled
	NfcCntPwdProt bool // NFC counter password protected

	// Up to 2^AuthLim failed PWD_AUTH attempts are allowed, 0 disables the limit.
	AuthLim uint8 `fmt:"int"`
}

// ParseConfiguration decodes the first 8 bytes of a READ at the CFG0 page.
func ParseConfiguration(data []byte) (Configuration, error) {
	if len(data) < configurationLen {
		return Configuration{}, fmt.Errorf("configuration needs %d bytes, got %d", configurationLen, len(data))
	}
	access := data[4]
	return Configuration{
		Mirror:        data[0],
		MirrorPage:    data[2],
		Auth0:         data[3],
		Access:        access,
		Prot:          bits.IsSet(access, 8),
		CfgLck:        bits.IsSet(access, 7),
		NfcCntEn:      bits.IsSet(access, 5),
		NfcCntPwdProt: bits.IsSet(access, 4),
		AuthLim:       bits.GetRange(access, 3, 1),
	}, nil
}

// ProtectsFrom reports the first protected page, and false when AUTH0 lies past the tag memory.
func (c Configuration) ProtectsFrom(p Profile) (byte, bool) {
	if int(c.Auth0) >= p.TotalPages {
		return 0, false
	}
	return c.Auth0, true
}

// Describe returns a report of every configuration field.
func (c Configuration) Describe() string {
	var sb strings.Builder
	sb.WriteString("NTAG Configuration:")
	tlv.WriteStructFields(&sb, "Config", c)
	return sb.String()
}
