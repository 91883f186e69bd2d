// Package reader connects to a PC/SC reader with a contactless card in its field.
package reader

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog"

	"github.com/gregLibert/ntag-pwd/internal/syncutil"
	"github.com/gregLibert/ntag-pwd/pkg/tlv"
)

var (
	// ErrNoReader is returned when no connected reader matches the configured name.
	ErrNoReader = errors.New("no matching smart card reader")
	// ErrNoCard is returned when no card was presented before the timeout.
	ErrNoCard = errors.New("no card presented")
)

// Reader is a connected card. It satisfies iso7816.Transmitter.
type Reader struct {
	mu   syncutil.Mutex
	ctx  *scard.Context
	card *scard.Card
	name string
	log  zerolog.Logger
}

// Open picks the first reader whose name contains match (case-insensitive, empty matches any),
// waits up to presence for a card and connects to it.
func Open(match string, presence time.Duration, log zerolog.Logger) (*Reader, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establishing context: %w", err)
	}

	r, err := open(ctx, match, presence, log)
	if err != nil {
		if relErr := ctx.Release(); relErr != nil {
			log.Warn().Err(relErr).Msg("failed to release context during error handling")
		}
		return nil, err
	}
	return r, nil
}

func open(ctx *scard.Context, match string, presence time.Duration, log zerolog.Logger) (*Reader, error) {
	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("listing readers: %w", err)
	}

	name, ok := pickReader(readers, match)
	if !ok {
		return nil, fmt.Errorf("%w: %q among %v", ErrNoReader, match, readers)
	}
	log.Info().Str("reader", name).Msg("using reader")

	if err := waitForCard(ctx, name, presence); err != nil {
		return nil, err
	}

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(name, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		return nil, fmt.Errorf("connecting to card: %w", err)
	}

	return &Reader{ctx: ctx, card: card, name: name, log: log}, nil
}

func pickReader(readers []string, match string) (string, bool) {
	want := strings.ToLower(match)
	for _, r := range readers {
		if strings.Contains(strings.ToLower(r), want) {
			return r, true
		}
	}
	return "", false
}

func waitForCard(ctx *scard.Context, name string, presence time.Duration) error {
	states := []scard.ReaderState{{Reader: name, CurrentState: scard.StateUnaware}}
	deadline := time.Now().Add(presence)

	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		err := ctx.GetStatusChange(states, remaining)
		switch {
		case errors.Is(err, scard.ErrTimeout):
			return fmt.Errorf("%w on %s after %s", ErrNoCard, name, presence)
		case err != nil:
			return fmt.Errorf("waiting for card: %w", err)
		}

		if states[0].EventState&scard.StatePresent != 0 {
			return nil
		}
		if remaining == 0 {
			return fmt.Errorf("%w on %s after %s", ErrNoCard, name, presence)
		}
		states[0].CurrentState = states[0].EventState
	}
}

// Name returns the reader name.
func (r *Reader) Name() string {
	return r.name
}

// Transmit sends a raw APDU.
func (r *Reader) Transmit(cmd []byte) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	resp, err := r.card.Transmit(cmd)
	if err != nil {
		return nil, fmt.Errorf("transmit on %s: %w", r.name, err)
	}
	r.log.Trace().Str("tx", tlv.HexString(cmd)).Str("rx", tlv.HexString(resp)).Msg("apdu")
	return resp, nil
}

// Identity reads the ATR and decodes the card identity.
func (r *Reader) Identity() (Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, err := r.card.Status()
	if err != nil {
		return Identity{}, fmt.Errorf("card status: %w", err)
	}
	return ParseIdentity(status.Atr)
}

// Close disconnects the card and releases the context.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	if err := r.card.Disconnect(scard.LeaveCard); err != nil {
		errs = append(errs, fmt.Errorf("disconnect: %w", err))
	}
	if err := r.ctx.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release context: %w", err))
	}
	return errors.Join(errs...)
}
