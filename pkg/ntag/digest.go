package ntag

import (
	"crypto/md5"
)

// SecretLen is the width of the PWD page.
const SecretLen = 4

// The password secret is the first four bytes of MD5(password). MD5 is kept for byte-for-byte
// compatibility with the NFC Tools mobile app, which derives tag passwords the same way.
// It offers no meaningful protection: the tag only holds 32 bits and PWD_AUTH travels in clear.
// Importing crypto/md5 links the digest in, so derivation cannot fail at run time.

// Digest returns MD5 over the bytes of password.
func Digest(password string) [md5.Size]byte {
	return md5.Sum([]byte(password))
}

// Secret returns the 4-byte PWD value derived from password.
func Secret(password string) [SecretLen]byte {
	d := Digest(password)

	var s [SecretLen]byte
	copy(s[:], d[:SecretLen])
	return s
}
