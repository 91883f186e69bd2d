package tlv

import (
	"bytes"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		want      []byte
		wantPanic bool
	}{
		{
			name:   "Simple Join",
			inputs: []string{"FF", "00"},
			want:   []byte{0xFF, 0x00},
		},
		{
			name:   "Passthrough Preamble With Spaces",
			inputs: []string{"FF 00 00 00", " 07 D4 42 "},
			want:   []byte{0xFF, 0x00, 0x00, 0x00, 0x07, 0xD4, 0x42},
		},
		{
			name:   "Mixed Case",
			inputs: []string{"d5", "43"},
			want:   []byte{0xD5, 0x43},
		},
		{
			name:      "Invalid Hex",
			inputs:    []string{"ZZ"},
			wantPanic: true,
		},
		{
			name:      "Odd Length",
			inputs:    []string{"1B0"},
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if (r != nil) != tt.wantPanic {
					t.Errorf("Hex() panic = %v, wantPanic %v", r, tt.wantPanic)
				}
			}()

			got := Hex(tt.inputs...)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Hex() = %X, want %X", got, tt.want)
			}
		})
	}
}

func TestHexString(t *testing.T) {
	tests := []struct {
		in   []byte
		want string
	}{
		{nil, ""},
		{[]byte{}, ""},
		{[]byte{0x0A}, "0A"},
		{[]byte{0xD5, 0x43, 0x00}, "D5 43 00"},
	}

	for _, tt := range tests {
		if got := HexString(tt.in); got != tt.want {
			t.Errorf("HexString(%X) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
