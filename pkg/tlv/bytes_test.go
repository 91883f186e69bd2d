package tlv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConcat(t *testing.T) {
	a := []byte{0x1B}
	b := []byte{0x01, 0x02, 0x03, 0x04}

	got := Concat(a, b)
	if diff := cmp.Diff([]byte{0x1B, 0x01, 0x02, 0x03, 0x04}, got); diff != "" {
		t.Errorf("Concat mismatch (-want +got):\n%s", diff)
	}

	// The result must not alias the inputs.
	got[0] = 0x00
	if a[0] != 0x1B {
		t.Error("Concat result aliases its first input")
	}

	if got := Concat(); len(got) != 0 {
		t.Errorf("Concat() = %X, want empty", got)
	}
}

func TestExtract(t *testing.T) {
	digest := Hex("f71dbe52628a3f83a77ab494817525c6")

	tests := []struct {
		name         string
		start, count int
		want         []byte
	}{
		{"First Four", 0, 4, Hex("F71DBE52")},
		{"Tail", 12, 4, Hex("817525C6")},
		{"Empty Window", 3, 0, []byte{}},
		{"Overflow", 14, 4, nil},
		{"Negative Start", -1, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(digest, tt.start, tt.count)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Extract(%d, %d) mismatch (-want +got):\n%s", tt.start, tt.count, diff)
			}
		})
	}
}
