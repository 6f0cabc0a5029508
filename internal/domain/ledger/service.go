package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/lapledger/internal/laptime"
)

// Service is the time ledger: an ordered, position-addressed list of entries
// written through to the repository on every change.
type Service struct {
	repo     Repository
	profiles ProfileLookup
	logger   *slog.Logger
	now      func() time.Time

	entries []Entry
	recent  []string
	version uint64
}

// NewService creates a new ledger service.
func NewService(repo Repository, profiles ProfileLookup, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, profiles: profiles, logger: logger, now: time.Now}
}

// AddRequest describes a new time entry.
type AddRequest struct {
	Time      string
	Circuit   string
	ProfileID string
}

// AddResult is the outcome of Add.
type AddResult struct {
	Entry        Entry
	Index        int
	PersonalBest bool
}

// EditRequest holds replacement fields for an entry.
type EditRequest struct {
	Time      string
	Circuit   string
	Character string
	Vehicle   string
}

// Load replaces the in-memory ledger with the repository contents. Entries
// stored before ids existed get one assigned.
func (s *Service) Load(ctx context.Context) error {
	entries, err := s.repo.LoadTimes(ctx)
	if err != nil {
		return fmt.Errorf("loading times: %w", err)
	}
	recent, err := s.repo.LoadRecentCircuits(ctx)
	if err != nil {
		return fmt.Errorf("loading recent circuits: %w", err)
	}
	s.entries = assignIDs(entries)
	s.recent = recent
	s.version++
	return nil
}

// Add validates and appends a new entry stamped with the current time. The
// result reports whether the time beats every earlier time on the circuit.
func (s *Service) Add(ctx context.Context, req AddRequest) (*AddResult, error) {
	if err := ValidateAddInput(req); err != nil {
		return nil, err
	}

	best := math.Inf(1)
	for _, e := range s.entries {
		if e.Circuit != req.Circuit {
			continue
		}
		if v := laptime.ToSeconds(e.Time); v < best {
			best = v
		}
	}
	personalBest := laptime.ToSeconds(req.Time) < best

	entry := Entry{
		ID:        uuid.NewString(),
		Time:      req.Time,
		Circuit:   req.Circuit,
		ProfileID: req.ProfileID,
		Date:      FormatDate(s.now()),
	}
	if p, ok := s.profiles.Find(req.ProfileID); ok {
		entry.Character = p.Character
		entry.Vehicle = p.Vehicle
	}

	entries := append(slices.Clone(s.entries), entry)
	recent := touchRecent(s.recent, req.Circuit)
	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	if err := s.repo.SaveRecentCircuits(ctx, recent); err != nil {
		return nil, fmt.Errorf("saving recent circuits: %w", err)
	}
	s.recent = recent

	s.logger.Debug("time added", "circuit", entry.Circuit, "time", entry.Time, "personal_best", personalBest)
	return &AddResult{Entry: entry, Index: len(entries) - 1, PersonalBest: personalBest}, nil
}

// Edit overwrites the entry at index. ProfileID, Date and ID are preserved.
func (s *Service) Edit(ctx context.Context, index int, req EditRequest) (*Entry, error) {
	if err := ValidateEditInput(req); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.entries) {
		return nil, ErrEntryNotFound
	}

	entries := slices.Clone(s.entries)
	updated := entries[index]
	updated.Time = req.Time
	updated.Circuit = req.Circuit
	updated.Character = req.Character
	updated.Vehicle = req.Vehicle
	entries[index] = updated

	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove deletes the entry at index.
func (s *Service) Remove(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.entries) {
		return ErrEntryNotFound
	}
	return s.save(ctx, slices.Delete(slices.Clone(s.entries), index, index+1))
}

// Replace swaps the whole ledger for entries.
func (s *Service) Replace(ctx context.Context, entries []Entry) error {
	return s.save(ctx, assignIDs(slices.Clone(entries)))
}

// Append adds entries after the existing ones.
func (s *Service) Append(ctx context.Context, entries []Entry) error {
	next := append(slices.Clone(s.entries), assignIDs(slices.Clone(entries))...)
	return s.save(ctx, next)
}

// FindIndex returns the position of the first entry with key k, or -1.
func (s *Service) FindIndex(k Key) int {
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.Key() == k })
}

// FindByID returns the position of the entry with the given id, or -1.
func (s *Service) FindByID(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.entries, func(e Entry) bool { return e.ID == id })
}

// Entries returns a copy of the ledger in insertion order.
func (s *Service) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Len returns the number of entries.
func (s *Service) Len() int {
	return len(s.entries)
}

// Sorted returns the ledger in display order, newest first. Entries with
// unreadable dates go last and keep their relative order.
func (s *Service) Sorted() []Entry {
	out := slices.Clone(s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		ti, okI := ParseDate(out[i].Date)
		tj, okJ := ParseDate(out[j].Date)
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI != okJ:
			return okI
		default:
			return false
		}
	})
	return out
}

// PersonalBests returns the fastest entry per circuit, ordered by circuit.
// Ties go to the earlier entry.
func (s *Service) PersonalBests() []Entry {
	best := make(map[string]Entry)
	for _, e := range s.entries {
		cur, ok := best[e.Circuit]
		if !ok || laptime.ToSeconds(e.Time) < laptime.ToSeconds(cur.Time) {
			best[e.Circuit] = e
		}
	}
	out := make([]Entry, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Circuit, b.Circuit) })
	return out
}

// RecentCircuits returns the most recently used circuits, newest first.
func (s *Service) RecentCircuits() []string {
	return slices.Clone(s.recent)
}

// Version changes whenever the ledger contents change.
func (s *Service) Version() uint64 {
	return s.version
}

// Reset drops in-memory state after the backing store was cleared.
func (s *Service) Reset() {
	s.entries = nil
	s.recent = nil
	s.version++
}

func (s *Service) save(ctx context.Context, entries []Entry) error {
	if err := s.repo.SaveTimes(ctx, entries); err != nil {
		return fmt.Errorf("saving times: %w", err)
	}
	s.entries = entries
	s.version++
	return nil
}

func touchRecent(recent []string, circuit string) []string {
	out := make([]string, 0, RecentCircuitsLimit)
	out = append(out, circuit)
	for _, c := range recent {
		if c == circuit {
			continue
		}
		if len(out) == RecentCircuitsLimit {
			break
		}
		out = append(out, c)
	}
	return out
}

func assignIDs(entries []Entry) []Entry {
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = uuid.NewString()
		}
	}
	return entries
}
