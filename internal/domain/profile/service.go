package profile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Service is the profile registry. It keeps the profile list in memory and
// writes every change through to the repository.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	now      func() time.Time
	profiles []Profile
	selected string
}

// NewService creates a new profile registry.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateRequest describes a profile creation request.
type CreateRequest struct {
	Character string
	Skin      string
	Vehicle   string
}

// NewID returns a time-ordered identifier with a random suffix.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Load replaces the in-memory state with the repository contents.
func (s *Service) Load(ctx context.Context) error {
	profiles, err := s.repo.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	selected, err := s.repo.LoadSelected(ctx)
	if err != nil {
		return fmt.Errorf("loading selected profile: %w", err)
	}
	s.profiles = profiles
	s.selected = ""
	if _, ok := s.Find(selected); ok {
		s.selected = selected
	}
	return nil
}

// Create validates and registers a new profile.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Profile, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	p := Profile{
		ID:            NewID(),
		Name:          DisplayName(req.Character, req.Vehicle),
		Character:     req.Character,
		CharacterSkin: req.Skin,
		Vehicle:       req.Vehicle,
		CreatedAt:     s.now(),
	}

	next := append(slices.Clone(s.profiles), p)
	if err := s.repo.SaveProfiles(ctx, next); err != nil {
		return nil, fmt.Errorf("saving profiles: %w", err)
	}
	s.profiles = next
	s.logger.Debug("profile created", "id", p.ID, "name", p.Name)
	return &p, nil
}

// Register adds already-built profiles, skipping ids that are present.
func (s *Service) Register(ctx context.Context, profiles []Profile) error {
	next := slices.Clone(s.profiles)
	for _, p := range profiles {
		if _, ok := s.Find(p.ID); ok {
			continue
		}
		next = append(next, p)
	}
	if len(next) == len(s.profiles) {
		return nil
	}
	if err := s.repo.SaveProfiles(ctx, next); err != nil {
		return fmt.Errorf("saving profiles: %w", err)
	}
	s.profiles = next
	return nil
}

// Delete removes a profile. Unknown ids are ignored. Time entries that
// reference the profile are left alone.
func (s *Service) Delete(ctx context.Context, id string) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.profiles), idx, idx+1)
	if err := s.repo.SaveProfiles(ctx, next); err != nil {
		return fmt.Errorf("saving profiles: %w", err)
	}
	s.profiles = next

	if s.selected == id {
		s.selected = ""
		if err := s.repo.SaveSelected(ctx, ""); err != nil {
			return fmt.Errorf("clearing selected profile: %w", err)
		}
	}
	s.logger.Debug("profile deleted", "id", id)
	return nil
}

// Select makes id the active profile. An empty id clears the selection.
func (s *Service) Select(ctx context.Context, id string) error {
	if id != "" {
		if _, ok := s.Find(id); !ok {
			return ErrProfileNotFound
		}
	}
	if err := s.repo.SaveSelected(ctx, id); err != nil {
		return fmt.Errorf("saving selected profile: %w", err)
	}
	s.selected = id
	return nil
}

// Active returns the selected profile, if any.
func (s *Service) Active() (*Profile, bool) {
	if s.selected == "" {
		return nil, false
	}
	return s.Find(s.selected)
}

// Find looks up a profile by id.
func (s *Service) Find(id string) (*Profile, bool) {
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, false
	}
	p := s.profiles[idx]
	return &p, true
}

// FindByAttributes looks up a profile by its exact attribute triple.
func (s *Service) FindByAttributes(character, skin, vehicle string) (*Profile, bool) {
	for _, p := range s.profiles {
		if p.Matches(character, skin, vehicle) {
			p := p
			return &p, true
		}
	}
	return nil, false
}

// List returns a copy of all profiles in creation order.
func (s *Service) List() []Profile {
	return slices.Clone(s.profiles)
}

// Reset drops in-memory state after the backing store was cleared.
func (s *Service) Reset() {
	s.profiles = nil
	s.selected = ""
}

func (s *Service) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.profiles, func(p Profile) bool { return p.ID == id })
}
