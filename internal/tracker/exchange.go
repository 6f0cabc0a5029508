package tracker

import (
	"context"
	"fmt"
	"io"

	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/domain/profile"
)

// ExportCSV renders the ledger in the spreadsheet exchange format.
func (t *Tracker) ExportCSV() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return csvsync.Encode(t.times.Entries(), t.profiles)
}

// ExportXLSX writes the ledger as a workbook.
func (t *Tracker) ExportXLSX(w io.Writer) error {
	t.mu.Lock()
	entries := t.times.Entries()
	t.mu.Unlock()
	return csvsync.EncodeXLSX(w, entries, profileView{t})
}

// CSVBackup returns the backup text kept alongside the ledger.
func (t *Tracker) CSVBackup(ctx context.Context) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.CSVBackup(ctx)
}

// StageImport reads CSV text from r and decodes it without touching the
// ledger. The returned batch must be passed to CommitImport.
func (t *Tracker) StageImport(r io.Reader) (*csvsync.Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}

	t.mu.Lock()
	batch, err := csvsync.Decode(string(data), t.profiles)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t.logger.Info("import staged", "entries", len(batch.Entries), "skipped", batch.Skipped, "new_profiles", len(batch.NewProfiles))
	return batch, nil
}

// CommitImport applies a staged batch in the given mode.
func (t *Tracker) CommitImport(ctx context.Context, batch *csvsync.Batch, mode csvsync.Mode) error {
	t.mu.Lock()
	err := csvsync.Commit(ctx, batch, mode, t.profiles, t.times)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if mode == csvsync.ModeCancel {
		t.logger.Info("import cancelled")
		return nil
	}

	t.logger.Info("import committed", "mode", mode, "entries", len(batch.Entries))
	events := []Event{{Type: EventTimesChanged}}
	if len(batch.NewProfiles) > 0 {
		events = append(events, Event{Type: EventProfilesChanged})
	}
	t.emit(events...)
	return nil
}

// profileView resolves profiles under the tracker lock for callers that run
// outside it.
type profileView struct {
	t *Tracker
}

func (v profileView) Find(id string) (*profile.Profile, bool) {
	return v.t.FindProfile(id)
}
