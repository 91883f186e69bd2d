package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/rs/zerolog"

	"github.com/gregLibert/ntag-pwd/internal/observability"
	"github.com/gregLibert/ntag-pwd/pkg/acr122"
	"github.com/gregLibert/ntag-pwd/pkg/config"
	"github.com/gregLibert/ntag-pwd/pkg/iso7816"
	"github.com/gregLibert/ntag-pwd/pkg/ntag"
	"github.com/gregLibert/ntag-pwd/pkg/pn532"
	"github.com/gregLibert/ntag-pwd/pkg/reader"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

// device is a connected reader with a tag in its field.
type device interface {
	iso7816.Transmitter
	Close() error
}

func main() {
	configPath := flag.String("config", "", "TOML or YAML settings file")
	password := flag.String("password", "toto", "tag password")
	action := flag.String("action", "", "auto, check, auth, set, unset or info (overrides the settings file)")
	flag.Parse()

	// --- 1. Settings ---
	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Error loading settings: %s", err)
		}
	}
	if *action != "" {
		cfg.Action = *action
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid settings: %s", err)
	}

	logger, err := observability.InitLogger("ntag-pwd", cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %s", err)
	}
	profile, err := cfg.TagProfile()
	if err != nil {
		log.Fatalf("Invalid tag profile: %s", err)
	}

	// --- 2. Hardware Setup ---
	dev := connect(cfg, logger)
	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("Warning: Failed to close reader: %v", err)
		}
	}()
	printUID(dev)

	// --- 3. Execution Flow ---
	session := ntag.NewSession(dev, ntag.WithProfile(profile), ntag.WithLogger(logger))
	fmt.Printf(">> Tag profile: %s\n", profile)

	switch cfg.Action {
	case "auto":
		runAuto(session, *password)
	case "check":
		stepCheck(session)
	case "auth":
		stepAuth(session, *password)
	case "set":
		stepSet(session, *password)
	case "unset":
		stepUnset(session)
	case "info":
		stepInfo(session)
	}

	fmt.Println("\n>> Done")
}

// =========================================================================
// Helper Functions
// =========================================================================

// connect opens the configured transport and waits for a tag.
func connect(cfg config.Config, logger zerolog.Logger) device {
	if cfg.Transport == config.TransportSerial {
		t, err := pn532.Open(cfg.SerialPort, cfg.PresenceTimeout, pn532.WithLogger(logger))
		if err != nil {
			log.Fatalf("Error opening PN532 on %s: %s", cfg.SerialPort, err)
		}
		fmt.Printf(">> Using PN532 on %s\n", cfg.SerialPort)
		return t
	}

	r, err := reader.Open(cfg.Reader, cfg.PresenceTimeout, logger)
	if err != nil {
		log.Fatalf("Error connecting to card: %s", err)
	}
	fmt.Printf(">> Using reader: %s\n", r.Name())

	id, err := r.Identity()
	if err != nil {
		log.Printf("Warning: Could not decode the card identity: %v", err)
		return r
	}
	fmt.Println(id.Describe())
	if !id.IsUltralightFamily() {
		log.Printf("Warning: %s does not speak the NTAG command set, commands will likely fail", id.CardName())
	}
	return r
}

// printUID asks the reader for the UID of the tag in the field.
func printUID(dev device) {
	trace, err := iso7816.NewClient(dev).Send(acr122.GetUID())
	if err != nil || !trace.IsSuccess() {
		log.Printf("Warning: Could not read the tag UID (%v, SW %s)", err, trace.Status().Verbose())
		return
	}
	fmt.Printf(">> Tag UID: %s\n", tlv.HexString(trace.Data()))
}

// runAuto removes the password of a protected tag and protects an unprotected one.
func runAuto(session *ntag.Session, password string) {
	if stepCheck(session) {
		stepAuth(session, password)
		stepUnset(session)
		return
	}
	stepSet(session, password)
}

func banner(title string) {
	fmt.Println("\n=============================================")
	fmt.Printf(" %s\n", title)
	fmt.Println("=============================================")
}

func stepCheck(session *ntag.Session) bool {
	banner("CHECK PROTECTION (AUTH0)")

	state, r := session.ProtectionState()
	fmt.Printf("   %s\n", r)
	if r.Outcome == ntag.TransportFailure {
		fmt.Println("   (!) Could not read the configuration, assuming no protection.")
	}
	fmt.Printf("=> Has PWD = %t\n", state == ntag.Enabled)
	return state == ntag.Enabled
}

func stepAuth(session *ntag.Session, password string) bool {
	banner("PWD_AUTH")

	r := session.Auth(password)
	fmt.Printf("   %s\n", r)
	if r.OK() {
		fmt.Printf("   PACK: %s\n", tlv.HexString(r.Data()))
	}
	fmt.Printf("=> Auth = %t\n", r.OK())
	return r.OK()
}

func stepSet(session *ntag.Session, password string) bool {
	banner("SET PASSWORD")

	seq := session.Set(password)
	printSequence(seq)
	fmt.Printf("=> Password set = %t\n", seq.OK())
	return seq.OK()
}

func stepUnset(session *ntag.Session) bool {
	banner("REMOVE PASSWORD")

	seq := session.Unset()
	printSequence(seq)
	fmt.Printf("=> Remove password = %t\n", seq.OK())
	return seq.OK()
}

func stepInfo(session *ntag.Session) {
	banner("TAG CONFIGURATION")

	cfg, r := session.ReadConfiguration()
	if !r.OK() {
		fmt.Printf("Read failed: %s\n", r)
		return
	}
	fmt.Println(cfg.Describe())

	if from, ok := cfg.ProtectsFrom(session.Profile()); ok {
		fmt.Printf("   Write access needs PWD_AUTH from page 0x%02X\n", from)
	} else {
		fmt.Println("   Password protection is off")
	}
}

func printSequence(seq ntag.Sequence) {
	for i, r := range seq {
		fmt.Printf("   [%d/%d] %s\n", i+1, len(seq), r)
	}
}
