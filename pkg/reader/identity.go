package reader

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// PC/SC Part 3 builds the ATR of a contactless card from its historical bytes:
//
//	3B 8F 80 01 | 80 | 4F 0C | A0 00 00 03 06 | SS | NN NN | 00 00 00 00 | TCK
//
// SS is the standard the card follows, NN NN the card name.

// categoryCompactTLV is the category indicator of the historical bytes.
const categoryCompactTLV = 0x80

var ridPCSC = []byte{0xA0, 0x00, 0x00, 0x03, 0x06}

// ErrNotPCSCIdentity is returned for ATRs that do not carry the PC/SC Part 3 identifier.
var ErrNotPCSCIdentity = errors.New("ATR does not carry a PC/SC card identifier")

var standardNames = map[byte]string{
	0x01: "ISO 14443 A, part 1",
	0x02: "ISO 14443 A, part 2",
	0x03: "ISO 14443 A, part 3",
	0x05: "ISO 14443 B, part 1",
	0x06: "ISO 14443 B, part 2",
	0x07: "ISO 14443 B, part 3",
	0x09: "ISO 15693, part 1",
	0x0A: "ISO 15693, part 2",
	0x0B: "ISO 15693, part 3",
	0x0C: "ISO 15693, part 4",
	0x11: "FeliCa",
}

var cardNames = map[uint16]string{
	0x0001: "MIFARE Classic 1K",
	0x0002: "MIFARE Classic 4K",
	0x0003: "MIFARE Ultralight / NTAG",
	0x0026: "MIFARE Mini",
	0x003A: "MIFARE Ultralight C",
	0x003B: "FeliCa",
	0xF004: "Topaz / Jewel",
}

type historicalBytes struct {
	AID []byte `tlv:"4F"`
}

// Identity is the card identity a PC/SC reader reports in the ATR.
type Identity struct {
	ATR      []byte
	RID      []byte
	Standard uint8
	Name     []byte `fmt:"int"`
}

// ParseIdentity extracts the identity from a contactless ATR.
func ParseIdentity(atr []byte) (Identity, error) {
	hist, err := historical(atr)
	if err != nil {
		return Identity{}, err
	}
	if len(hist) < 2 || hist[0] != categoryCompactTLV {
		return Identity{}, ErrNotPCSCIdentity
	}

	var h historicalBytes
	if err := tlv.Unmarshal(hist[1:], &h); err != nil {
		return Identity{}, fmt.Errorf("historical bytes: %w", err)
	}
	if len(h.AID) < 8 || !bytes.Equal(h.AID[:5], ridPCSC) {
		return Identity{}, ErrNotPCSCIdentity
	}

	return Identity{
		ATR:      tlv.Concat(atr),
		RID:      tlv.Extract(h.AID, 0, 5),
		Standard: h.AID[5],
		Name:     tlv.Extract(h.AID, 6, 2),
	}, nil
}

// historical walks the interface bytes of an ATR and returns the historical bytes.
func historical(atr []byte) ([]byte, error) {
	if len(atr) < 2 {
		return nil, fmt.Errorf("ATR too short: %d bytes", len(atr))
	}

	t0 := atr[1]
	k := int(t0 & 0x0F)
	y := t0 >> 4
	i := 2
	for {
		// TA, TB and TC are flagged by the low three bits, TD by the high one
		i += bits.OnesCount8(y & 0x07)
		if y&0x08 == 0 {
			break
		}
		if i >= len(atr) {
			return nil, fmt.Errorf("ATR truncated in interface bytes")
		}
		y = atr[i] >> 4
		i++
	}

	hist := tlv.Extract(atr, i, k)
	if hist == nil {
		return nil, fmt.Errorf("ATR truncated: %d historical bytes announced", k)
	}
	return hist, nil
}

func (id Identity) cardName() uint16 {
	if len(id.Name) != 2 {
		return 0
	}
	return uint16(id.Name[0])<<8 | uint16(id.Name[1])
}

// IsUltralightFamily reports whether the card answers the Type 2 command set (Ultralight, NTAG).
func (id Identity) IsUltralightFamily() bool {
	switch id.cardName() {
	case 0x0003, 0x003A:
		return true
	}
	return false
}

// StandardName names the standard byte.
func (id Identity) StandardName() string {
	if name, ok := standardNames[id.Standard]; ok {
		return name
	}
	return fmt.Sprintf("unknown standard %02X", id.Standard)
}

// CardName names the card.
func (id Identity) CardName() string {
	if name, ok := cardNames[id.cardName()]; ok {
		return name
	}
	return fmt.Sprintf("unknown card %04X", id.cardName())
}

// Describe returns a report of the identity.
func (id Identity) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Card Identity: %s, %s", id.CardName(), id.StandardName())
	tlv.WriteStructFields(&sb, "Identity", id)
	return sb.String()
}
