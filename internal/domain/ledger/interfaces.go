package ledger

import (
	"context"

	"github.com/rpggio/lapledger/internal/domain/profile"
)

// Repository persists the ledger and the recent-circuits list.
type Repository interface {
	LoadTimes(ctx context.Context) ([]Entry, error)
	SaveTimes(ctx context.Context, entries []Entry) error
	LoadRecentCircuits(ctx context.Context) ([]string, error)
	SaveRecentCircuits(ctx context.Context, circuits []string) error
}

// ProfileLookup resolves profile ids.
type ProfileLookup interface {
	Find(id string) (*profile.Profile, bool)
}
