/*
Package iso7816 implements the APDU layer used to talk to a contactless tag through a PC/SC reader.

Readers built around the NXP PN532 (ACS ACR122 and friends) do not speak to memory tags with
interindustry commands. Instead they accept "pseudo-APDUs" with the reserved class byte 0xFF,
which the reader interprets itself. This package encodes those frames like any other command
APDU, so the same Client, Trace and StatusWord machinery serves both worlds.

# Fundamentals

The exchange is strictly synchronous:
 1. The host sends a Command APDU (Header + optional Body).
 2. The reader (or card) answers with a Response APDU (optional Body + Trailer SW1/SW2).

# Status Words

Every response ends with a 2-byte Status Word (SW).
  - 0x9000: Success. For pseudo-APDUs this only means the reader relayed the exchange.
  - 0x61XX: Success, XX bytes still waiting (older ACR122 firmware answers this way).
  - 0x6CXX: Wrong length expectation, XX is the correct Le.
  - 0x6300: Reader-level failure (e.g. the tag did not answer in time).

# Usage Example

	client := iso7816.NewClient(card) // card implements Transmitter
	cls, _ := iso7816.NewClass(0xFF)
	ins, _ := iso7816.NewInstruction(iso7816.INS_GET_DATA)

	trace, err := client.Send(iso7816.NewCommandAPDU(cls, ins, 0x00, 0x00, nil, iso7816.MaxShortLe))
	if err != nil {
	    log.Fatal(err)
	}
	if trace.IsSuccess() {
	    fmt.Printf("UID: %X\n", trace.Data())
	}
*/
package iso7816
