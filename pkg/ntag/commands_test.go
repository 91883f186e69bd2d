package ntag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/ntag-pwd/pkg/acr122"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

func TestCommandEncoders(t *testing.T) {
	tests := []struct {
		name string
		got  []byte
		want string
	}{
		{"read CFG0 213", ReadCommand(NTAG213.CFG0Page), "30 29"},
		{"enable 215", WriteCommand(NTAG215.CFG0Page, EnableProtection), "A2 83 04 00 00 00"},
		{"disable 216", WriteCommand(NTAG216.CFG0Page, DisableProtection), "A2 E3 04 00 00 FF"},
		{"clear pwd", WriteCommand(NTAG213.PWDPage, ClearedPassword), "A2 2B FF FF FF FF"},
		{"auth", AuthCommand([SecretLen]byte{0x01, 0x02, 0x03, 0x04}), "1B 01 02 03 04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tlv.Hex(tt.want), tt.got); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrappedAuth(t *testing.T) {
	got := acr122.Wrap(AuthCommand(Secret("toto")))
	want := tlv.Hex("FF 00 00 00 07 D4 42 1B F7 1D BE 52")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}
