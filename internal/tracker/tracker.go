package tracker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/repository"
	"github.com/rpggio/lapledger/internal/store"
)

// Tracker is the single entry point to the lap ledger. It owns the profile
// registry, the time ledger and the display preference, serializes access to
// them and notifies subscribers after each persisted change.
type Tracker struct {
	mu       sync.Mutex
	store    *store.Adapter
	profiles *profile.Service
	times    *ledger.Service
	logger   *slog.Logger

	relativeDates bool

	ranks        map[string]ledger.Placement
	ranksVersion uint64
	ranksValid   bool

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSub     int
}

// New builds a tracker over kv and loads its contents.
func New(ctx context.Context, kv repository.KV, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	adapter := store.NewAdapter(kv, logger)
	profiles := profile.NewService(adapter, logger)
	t := &Tracker{
		store:       adapter,
		profiles:    profiles,
		times:       ledger.NewService(adapter, profiles, logger),
		logger:      logger,
		subscribers: make(map[int]func(Event)),
	}

	if err := t.profiles.Load(ctx); err != nil {
		return nil, err
	}
	if err := t.times.Load(ctx); err != nil {
		return nil, err
	}
	relative, err := adapter.LoadRelativeDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	t.relativeDates = relative

	logger.Debug("tracker loaded", "profiles", len(t.profiles.List()), "times", t.times.Len())
	return t, nil
}

// CreateProfile registers a new profile.
func (t *Tracker) CreateProfile(ctx context.Context, req profile.CreateRequest) (*profile.Profile, error) {
	t.mu.Lock()
	p, err := t.profiles.Create(ctx, req)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t.emit(Event{Type: EventProfilesChanged})
	return p, nil
}

// DeleteProfile removes a profile. Its time entries are kept.
func (t *Tracker) DeleteProfile(ctx context.Context, id string) error {
	t.mu.Lock()
	err := t.profiles.Delete(ctx, id)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.emit(Event{Type: EventProfilesChanged})
	return nil
}

// SelectProfile sets the active profile used when a time is added without one.
func (t *Tracker) SelectProfile(ctx context.Context, id string) error {
	t.mu.Lock()
	err := t.profiles.Select(ctx, id)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.emit(Event{Type: EventProfilesChanged})
	return nil
}

// ActiveProfile returns the selected profile.
func (t *Tracker) ActiveProfile() (*profile.Profile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profiles.Active()
}

// Profiles lists all profiles.
func (t *Tracker) Profiles() []profile.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profiles.List()
}

// FindProfile looks up a profile by id.
func (t *Tracker) FindProfile(id string) (*profile.Profile, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profiles.Find(id)
}

// AddTime records a time. An empty ProfileID means the active profile.
func (t *Tracker) AddTime(ctx context.Context, req ledger.AddRequest) (*ledger.AddResult, error) {
	t.mu.Lock()
	if req.ProfileID == "" {
		if p, ok := t.profiles.Active(); ok {
			req.ProfileID = p.ID
		}
	}
	res, err := t.times.Add(ctx, req)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}

	events := []Event{{Type: EventTimesChanged, Entry: &res.Entry}}
	if res.PersonalBest {
		events = append(events, Event{Type: EventPersonalBest, Entry: &res.Entry})
	}
	t.emit(events...)
	return res, nil
}

// EditTime overwrites the entry at index.
func (t *Tracker) EditTime(ctx context.Context, index int, req ledger.EditRequest) (*ledger.Entry, error) {
	t.mu.Lock()
	e, err := t.times.Edit(ctx, index, req)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t.emit(Event{Type: EventTimesChanged, Entry: e})
	return e, nil
}

// EditTimeByID overwrites the entry with the given id.
func (t *Tracker) EditTimeByID(ctx context.Context, id string, req ledger.EditRequest) (*ledger.Entry, error) {
	t.mu.Lock()
	idx := t.times.FindByID(id)
	if idx < 0 {
		t.mu.Unlock()
		return nil, ledger.ErrEntryNotFound
	}
	e, err := t.times.Edit(ctx, idx, req)
	t.mu.Unlock()
	if err != nil {
		return nil, err
	}
	t.emit(Event{Type: EventTimesChanged, Entry: e})
	return e, nil
}

// RemoveTime deletes the entry at index.
func (t *Tracker) RemoveTime(ctx context.Context, index int) error {
	t.mu.Lock()
	err := t.times.Remove(ctx, index)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.emit(Event{Type: EventTimesChanged})
	return nil
}

// RemoveTimeByID deletes the entry with the given id.
func (t *Tracker) RemoveTimeByID(ctx context.Context, id string) error {
	t.mu.Lock()
	idx := t.times.FindByID(id)
	if idx < 0 {
		t.mu.Unlock()
		return ledger.ErrEntryNotFound
	}
	err := t.times.Remove(ctx, idx)
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.emit(Event{Type: EventTimesChanged})
	return nil
}

// Times returns the ledger in insertion order.
func (t *Tracker) Times() []ledger.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.times.Entries()
}

// SortedTimes returns the ledger newest first.
func (t *Tracker) SortedTimes() []ledger.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.times.Sorted()
}

// FindIndex locates an entry by its composite key.
func (t *Tracker) FindIndex(k ledger.Key) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.times.FindIndex(k)
}

// Rankings returns placements keyed by entry id, recomputed only when the
// ledger has changed since the last call.
func (t *Tracker) Rankings() map[string]ledger.Placement {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.ranksValid || t.ranksVersion != t.times.Version() {
		t.ranks = ledger.RankByID(t.times.Entries())
		t.ranksVersion = t.times.Version()
		t.ranksValid = true
	}
	out := make(map[string]ledger.Placement, len(t.ranks))
	for k, v := range t.ranks {
		out[k] = v
	}
	return out
}

// PersonalBests returns the fastest entry per circuit.
func (t *Tracker) PersonalBests() []ledger.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.times.PersonalBests()
}

// RecentCircuits returns the most recently used circuits.
func (t *Tracker) RecentCircuits() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.times.RecentCircuits()
}

// RelativeDates reports whether dates should be shown relative to now.
func (t *Tracker) RelativeDates() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.relativeDates
}

// SetRelativeDates stores the relative-date display preference.
func (t *Tracker) SetRelativeDates(ctx context.Context, on bool) error {
	t.mu.Lock()
	err := t.store.SaveRelativeDates(ctx, on)
	if err == nil {
		t.relativeDates = on
	}
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	t.emit(Event{Type: EventPreferencesChanged})
	return nil
}

// Reset clears every persisted record and the in-memory state.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	err := t.store.Reset(ctx)
	if err == nil {
		t.profiles.Reset()
		t.times.Reset()
		t.relativeDates = false
	}
	t.mu.Unlock()
	if err != nil {
		return err
	}
	t.logger.Info("store reset")
	t.emit(Event{Type: EventReset})
	return nil
}
