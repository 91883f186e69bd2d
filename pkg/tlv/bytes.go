package tlv

// Concat returns a new slice holding every part in order.
// The inputs are never aliased by the result.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Extract copies count bytes starting at start.
// It returns nil when the requested window does not fit inside data.
func Extract(data []byte, start, count int) []byte {
	if start < 0 || count < 0 || start+count > len(data) {
		return nil
	}

	out := make([]byte, count)
	copy(out, data[start:start+count])
	return out
}
