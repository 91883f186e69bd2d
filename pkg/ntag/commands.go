package ntag

// NTAG21x command set (ISO/IEC 14443-3 Type 2).
const (
	CmdRead    byte = 0x30 // READ: 4 pages (16 bytes) starting at the address
	CmdWrite   byte = 0xA2 // WRITE: one page (4 bytes)
	CmdPwdAuth byte = 0x1B // PWD_AUTH: 4-byte password, answers the 2-byte PACK
)

// PageSize is the size of a tag page in bytes.
const PageSize = 4

// ReadLen is the number of bytes returned by a single READ.
const ReadLen = 4 * PageSize

// Page values written by the protection operations.
var (
	// EnableProtection sets AUTH0 to 0x00: every page from 0 on needs PWD_AUTH for writes.
	EnableProtection = [PageSize]byte{0x04, 0x00, 0x00, 0x00}
	// DisableProtection sets AUTH0 to 0xFF, past the last page of every NTAG21x.
	DisableProtection = [PageSize]byte{0x04, 0x00, 0x00, 0xFF}
	// ClearedPassword is the factory PWD value.
	ClearedPassword = [PageSize]byte{0xFF, 0xFF, 0xFF, 0xFF}
)

// ReadCommand encodes READ for page.
func ReadCommand(page byte) []byte {
	return []byte{CmdRead, page}
}

// WriteCommand encodes WRITE of data into page.
func WriteCommand(page byte, data [PageSize]byte) []byte {
	return []byte{CmdWrite, page, data[0], data[1], data[2], data[3]}
}

// AuthCommand encodes PWD_AUTH with secret.
func AuthCommand(secret [SecretLen]byte) []byte {
	return []byte{CmdPwdAuth, secret[0], secret[1], secret[2], secret[3]}
}
