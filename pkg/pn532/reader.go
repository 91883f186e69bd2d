package pn532

import (
	"fmt"

	"github.com/gregLibert/ntag-pwd/pkg/acr122"
	"github.com/gregLibert/ntag-pwd/pkg/iso7816"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

var (
	swOK          = []byte{0x90, 0x00}
	swUnsupported = []byte{0x6A, 0x81}
	swFailed      = []byte{0x63, 0x00}
)

// Transmit accepts the ACR122 pseudo-APDUs and answers like the reader would:
//
//   - FF 00 00 00 Lc D4 <cmd> ... is sent to the PN532, the response comes back with 90 00.
//   - FF CA 00 00 Le returns the UID of the selected target.
//   - FF 00 48 00 00 returns the PN532 firmware as text.
//
// Any other command is answered 6A 81. A PN532 error is reported as 63 00 so that channel
// failures stay transport failures.
func (t *Transport) Transmit(apdu []byte) ([]byte, error) {
	if len(apdu) < 5 || apdu[0] != iso7816.ReaderClass {
		return swUnsupported, nil
	}

	ins, p1, p2, lc := apdu[1], apdu[2], apdu[3], int(apdu[4])
	switch {
	case ins == 0x00 && p1 == 0x00 && p2 == 0x00 && lc > 1 && lc == len(apdu)-5 && apdu[5] == HostToPN532:
		resp, err := t.SendCommand(apdu[6], apdu[acr122.PreambleLen:])
		if err != nil {
			t.log.Warn().Err(err).Str("port", t.name).Msg("direct transmit failed")
			return swFailed, nil
		}
		return tlv.Concat(resp, swOK), nil

	case ins == 0xCA && p1 == 0x00 && p2 == 0x00:
		uid := t.UID()
		if len(uid) == 0 {
			return swFailed, nil
		}
		return tlv.Concat(uid, swOK), nil

	case ins == 0x00 && p1 == 0x48 && p2 == 0x00:
		resp, err := t.SendCommand(cmdGetFirmwareVersion, nil)
		if err != nil || len(resp) < 6 {
			return swFailed, nil
		}
		return tlv.Concat([]byte(fmt.Sprintf("PN5%02X V%d.%d", resp[2], resp[3], resp[4])), swOK), nil
	}
	return swUnsupported, nil
}

var _ iso7816.Transmitter = (*Transport)(nil)
