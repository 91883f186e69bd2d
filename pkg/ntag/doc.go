// Package ntag manages the password protection of NXP NTAG21x tags (NTAG213/215/216) reached
// through a PN532 passthrough reader.
//
// The tag keeps two configuration pages after user memory. CFG0 holds AUTH0, the first page
// that requires PWD_AUTH; 0xFF or anything past the last page disables protection. CFG1 holds
// the ACCESS byte. Two further pages hold the 4-byte password (write-only) and the 2-byte PACK
// returned by a successful PWD_AUTH.
//
// Each operation of a Session is an ordered list of encode, transmit and interpret steps.
// Steps never retry and never raise: transport errors and tag rejections are folded into a
// StepResult, and the boolean entry points collapse those into a single answer.
//
// A Session is not safe for concurrent use. The authenticated state lives on the tag and is
// bound to the RF session, so commands must be issued one at a time.
package ntag
