package csvsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
)

// Mode is the user's decision about a staged batch.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModeAppend  Mode = "append"
	ModeCancel  Mode = "cancel"
)

// ErrInvalidMode indicates an unknown commit mode.
var ErrInvalidMode = errors.New("invalid import mode")

// ParseMode reads a commit mode, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeReplace, ModeAppend, ModeCancel:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// ProfileRegistrar accepts profiles synthesized during import.
type ProfileRegistrar interface {
	Register(ctx context.Context, profiles []profile.Profile) error
}

// LedgerWriter receives committed entries.
type LedgerWriter interface {
	Replace(ctx context.Context, entries []ledger.Entry) error
	Append(ctx context.Context, entries []ledger.Entry) error
}

// Commit applies a staged batch. Cancel touches nothing. Times are written
// before the synthesized profiles so a failed times write leaves no profiles
// behind.
func Commit(ctx context.Context, batch *Batch, mode Mode, profiles ProfileRegistrar, times LedgerWriter) error {
	if batch == nil {
		return fmt.Errorf("%w: no staged batch", ErrFormat)
	}

	switch mode {
	case ModeCancel:
		return nil
	case ModeReplace, ModeAppend:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	if mode == ModeReplace {
		if err := times.Replace(ctx, batch.Entries); err != nil {
			return fmt.Errorf("replacing times: %w", err)
		}
	} else if err := times.Append(ctx, batch.Entries); err != nil {
		return fmt.Errorf("appending times: %w", err)
	}
	if err := profiles.Register(ctx, batch.NewProfiles); err != nil {
		return fmt.Errorf("registering imported profiles: %w", err)
	}
	return nil
}
