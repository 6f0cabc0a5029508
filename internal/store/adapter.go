package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/goccy/go-json"
	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/repository"
)

// Snapshot is the whole persisted store.
type Snapshot struct {
	Times           []ledger.Entry
	Profiles        []profile.Profile
	RecentCircuits  []string
	RelativeDates   bool
	CSVBackup       string
	SelectedProfile string
}

// Adapter maps the profile, ledger and preference repositories onto a KV
// medium. Each record is written as a full JSON overwrite. Reads never fail:
// a missing or unreadable record degrades to its empty value.
//
// The adapter remembers the last profiles and times it saw so it can
// regenerate the CSV backup whenever either changes.
type Adapter struct {
	kv     repository.KV
	logger *slog.Logger

	profiles []profile.Profile
	times    []ledger.Entry
}

// NewAdapter creates a persistence adapter over kv.
func NewAdapter(kv repository.KV, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{kv: kv, logger: logger}
}

// LoadSnapshot reads every record.
func (a *Adapter) LoadSnapshot(ctx context.Context) Snapshot {
	var snap Snapshot
	a.readJSON(ctx, KeyTimes, &snap.Times)
	a.readJSON(ctx, KeyProfiles, &snap.Profiles)
	a.readJSON(ctx, KeyRecentCircuits, &snap.RecentCircuits)
	a.readJSON(ctx, KeyRelativeDates, &snap.RelativeDates)
	snap.CSVBackup, _ = a.readRaw(ctx, KeyCSVBackup)
	a.readJSON(ctx, KeySelectedProfile, &snap.SelectedProfile)

	a.profiles = snap.Profiles
	a.times = snap.Times
	return snap
}

// SaveSnapshot overwrites every record in one atomic write. The CSV backup
// is regenerated from the snapshot rather than taken from it.
func (a *Adapter) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	values := make(map[string]string, len(AllKeys))
	for key, v := range map[string]any{
		KeyTimes:           nonNil(snap.Times),
		KeyProfiles:        nonNil(snap.Profiles),
		KeyRecentCircuits:  nonNil(snap.RecentCircuits),
		KeyRelativeDates:   snap.RelativeDates,
		KeySelectedProfile: snap.SelectedProfile,
	} {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		values[key] = string(data)
	}
	values[KeyCSVBackup] = csvsync.Encode(snap.Times, lookup(snap.Profiles))

	if err := a.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	a.profiles = slices.Clone(snap.Profiles)
	a.times = slices.Clone(snap.Times)
	return nil
}

// Reset removes every record.
func (a *Adapter) Reset(ctx context.Context) error {
	if err := a.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}
	a.profiles = nil
	a.times = nil
	return nil
}

// LoadProfiles implements profile.Repository.
func (a *Adapter) LoadProfiles(ctx context.Context) ([]profile.Profile, error) {
	var profiles []profile.Profile
	a.readJSON(ctx, KeyProfiles, &profiles)
	a.profiles = profiles
	return profiles, nil
}

// SaveProfiles implements profile.Repository.
func (a *Adapter) SaveProfiles(ctx context.Context, profiles []profile.Profile) error {
	data, err := json.Marshal(nonNil(profiles))
	if err != nil {
		return fmt.Errorf("encoding profiles: %w", err)
	}
	err = a.kv.SetMany(ctx, map[string]string{
		KeyProfiles:  string(data),
		KeyCSVBackup: csvsync.Encode(a.times, lookup(profiles)),
	})
	if err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	a.profiles = slices.Clone(profiles)
	return nil
}

// LoadSelected implements profile.Repository.
func (a *Adapter) LoadSelected(ctx context.Context) (string, error) {
	var id string
	a.readJSON(ctx, KeySelectedProfile, &id)
	return id, nil
}

// SaveSelected implements profile.Repository. Clearing the selection removes
// the record.
func (a *Adapter) SaveSelected(ctx context.Context, id string) error {
	if id == "" {
		if err := a.kv.Delete(ctx, KeySelectedProfile); err != nil {
			return fmt.Errorf("clearing %s: %w", KeySelectedProfile, err)
		}
		return nil
	}
	return a.writeJSON(ctx, KeySelectedProfile, id)
}

// LoadTimes implements ledger.Repository.
func (a *Adapter) LoadTimes(ctx context.Context) ([]ledger.Entry, error) {
	var times []ledger.Entry
	a.readJSON(ctx, KeyTimes, &times)
	a.times = times
	return times, nil
}

// SaveTimes implements ledger.Repository. The CSV backup is rewritten in the
// same write.
func (a *Adapter) SaveTimes(ctx context.Context, entries []ledger.Entry) error {
	data, err := json.Marshal(nonNil(entries))
	if err != nil {
		return fmt.Errorf("encoding times: %w", err)
	}
	err = a.kv.SetMany(ctx, map[string]string{
		KeyTimes:     string(data),
		KeyCSVBackup: csvsync.Encode(entries, lookup(a.profiles)),
	})
	if err != nil {
		return fmt.Errorf("writing times: %w", err)
	}
	a.times = slices.Clone(entries)
	return nil
}

// LoadRecentCircuits implements ledger.Repository.
func (a *Adapter) LoadRecentCircuits(ctx context.Context) ([]string, error) {
	var circuits []string
	a.readJSON(ctx, KeyRecentCircuits, &circuits)
	return circuits, nil
}

// SaveRecentCircuits implements ledger.Repository.
func (a *Adapter) SaveRecentCircuits(ctx context.Context, circuits []string) error {
	return a.writeJSON(ctx, KeyRecentCircuits, nonNil(circuits))
}

// LoadRelativeDates returns the relative-date display preference.
func (a *Adapter) LoadRelativeDates(ctx context.Context) (bool, error) {
	var on bool
	a.readJSON(ctx, KeyRelativeDates, &on)
	return on, nil
}

// SaveRelativeDates stores the relative-date display preference.
func (a *Adapter) SaveRelativeDates(ctx context.Context, on bool) error {
	return a.writeJSON(ctx, KeyRelativeDates, on)
}

// CSVBackup returns the last stored CSV backup text.
func (a *Adapter) CSVBackup(ctx context.Context) string {
	text, _ := a.readRaw(ctx, KeyCSVBackup)
	return text
}

func (a *Adapter) readRaw(ctx context.Context, key string) (string, bool) {
	raw, err := a.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			a.logger.Warn("store read failed, using default", "key", key, "error", err)
		}
		return "", false
	}
	return raw, true
}

func (a *Adapter) readJSON(ctx context.Context, key string, dst any) {
	raw, ok := a.readRaw(ctx, key)
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		a.logger.Warn("store record malformed, using default", "key", key, "error", err)
		resetValue(dst)
	}
}

func (a *Adapter) writeJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := a.kv.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func resetValue(dst any) {
	switch v := dst.(type) {
	case *[]ledger.Entry:
		*v = nil
	case *[]profile.Profile:
		*v = nil
	case *[]string:
		*v = nil
	case *bool:
		*v = false
	case *string:
		*v = ""
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type profileList []profile.Profile

func lookup(profiles []profile.Profile) profileList {
	return profileList(profiles)
}

func (l profileList) Find(id string) (*profile.Profile, bool) {
	for _, p := range l {
		if p.ID == id {
			p := p
			return &p, true
		}
	}
	return nil, false
}
