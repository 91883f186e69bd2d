package ntag

import (
	"fmt"
	"strings"
)

// Profile describes where a tag model keeps its protection pages.
type Profile struct {
	Name       string
	CFG0Page   byte // MIRROR, RFUI, MIRROR_PAGE, AUTH0
	CFG1Page   byte // ACCESS, RFUI, RFUI, RFUI
	PWDPage    byte
	PACKPage   byte
	TotalPages int
}

var (
	NTAG213 = Profile{Name: "NTAG213", CFG0Page: 0x29, CFG1Page: 0x2A, PWDPage: 0x2B, PACKPage: 0x2C, TotalPages: 45}
	NTAG215 = Profile{Name: "NTAG215", CFG0Page: 0x83, CFG1Page: 0x84, PWDPage: 0x85, PACKPage: 0x86, TotalPages: 135}
	NTAG216 = Profile{Name: "NTAG216", CFG0Page: 0xE3, CFG1Page: 0xE4, PWDPage: 0xE5, PACKPage: 0xE6, TotalPages: 231}
)

// Profiles lists the supported tag models.
func Profiles() []Profile {
	return []Profile{NTAG213, NTAG215, NTAG216}
}

// ProfileByName looks a profile up by name, ignoring case ("ntag215").
func ProfileByName(name string) (Profile, error) {
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown tag profile %q", name)
}

func (p Profile) String() string {
	return fmt.Sprintf("%s (AUTH0 page 0x%02X, PWD page 0x%02X)", p.Name, p.CFG0Page, p.PWDPage)
}
