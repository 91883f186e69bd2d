package iso7816

import (
	"strings"
	"testing"
)

func TestStatusWord_Triggering(t *testing.T) {
	tests := []struct {
		sw     StatusWord
		isTrig bool
	}{
		{NewStatusWord(0x62, 0x02), true},  // Lower bound
		{NewStatusWord(0x62, 0x80), true},  // Upper bound
		{NewStatusWord(0x64, 0x10), true},  // Error triggering
		{NewStatusWord(0x62, 0x01), false}, // Invalid (< 02)
		{NewStatusWord(0x62, 0x81), false}, // Invalid (> 80)
	}

	for _, tt := range tests {
		if got := tt.sw.IsTriggeringByCard(); got != tt.isTrig {
			t.Errorf("SW %X IsTriggeringByCard = %v, want %v", uint16(tt.sw), got, tt.isTrig)
		}
	}
}

func TestStatusWord_Counter(t *testing.T) {
	tests := []struct {
		sw        StatusWord
		isCounter bool
	}{
		{NewStatusWord(0x63, 0xC0), true},  // Counter 0
		{NewStatusWord(0x63, 0xCF), true},  // Counter 15
		{NewStatusWord(0x63, 0x00), false}, // Not a counter
		{NewStatusWord(0x63, 0x81), false}, // File filled
	}

	for _, tt := range tests {
		if got := tt.sw.IsCounter(); got != tt.isCounter {
			t.Errorf("SW %X IsCounter = %v, want %v", uint16(tt.sw), got, tt.isCounter)
		}
	}
}

func TestStatusWord_IsSuccess(t *testing.T) {
	tests := []struct {
		sw        StatusWord
		isSuccess bool
	}{
		{SW_NO_ERROR, true},
		{NewStatusWord(0x61, 0x10), true},   // Bytes Available
		{SW_WARN_NV_CHANGED_NO_INFO, false}, // ACR122 operation failed
		{NewStatusWord(0x63, 0xC2), false},  // Counter
		{SW_ERR_FUNC_NOT_SUPPORTED, false},  // ACR122 unsupported pseudo-APDU
		{NewStatusWord(0x6C, 0x07), false},  // Wrong Le
	}

	for _, tt := range tests {
		if got := tt.sw.IsSuccess(); got != tt.isSuccess {
			t.Errorf("SW %X IsSuccess = %v, want %v", uint16(tt.sw), got, tt.isSuccess)
		}
	}
}

func TestStatusWord_Verbose(t *testing.T) {
	tests := []struct {
		sw       StatusWord
		contains string
	}{
		{NewStatusWord(0x62, 0x10), "Card expects query of 16 bytes"},
		{NewStatusWord(0x63, 0xC3), "counter = 3"},
		{NewStatusWord(0x61, 0x20), "32 bytes available"},
		{NewStatusWord(0x6C, 0x05), "correct Le is 5"},
		{NewStatusWord(0x62, 0x02), "Card expects query of 2 bytes"},
		{SW_ERR_FUNC_NOT_SUPPORTED, "SW_ERR_FUNC_NOT_SUPPORTED"},
		{NewStatusWord(0x69, 0x99), "Command not allowed"},
	}

	for _, tt := range tests {
		got := tt.sw.Verbose()
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Verbose(%X) = %q; want containing %q", tt.sw, got, tt.contains)
		}
	}
}

func TestStatusWord_String(t *testing.T) {
	if got := SW_NO_ERROR.String(); got != "SW_NO_ERROR" {
		t.Errorf("String() = %q, want SW_NO_ERROR", got)
	}
	if got := NewStatusWord(0x12, 0x34).String(); got != "StatusWord(0x1234)" {
		t.Errorf("String() = %q, want StatusWord(0x1234)", got)
	}
}

func TestStatusWord_Bytes(t *testing.T) {
	sw := NewStatusWord(144, 0)
	if sw != SW_NO_ERROR {
		t.Errorf("NewStatusWord(144, 0) = %04X, want 9000", uint16(sw))
	}
	if sw.SW1() != 0x90 || sw.SW2() != 0x00 {
		t.Errorf("SW1/SW2 = %02X/%02X, want 90/00", sw.SW1(), sw.SW2())
	}
}
