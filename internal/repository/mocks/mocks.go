package mocks

import (
	"context"

	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/stretchr/testify/mock"
)

// KV is a mock for repository.KV.
type KV struct {
	mock.Mock
}

func (m *KV) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *KV) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KV) SetMany(ctx context.Context, values map[string]string) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

func (m *KV) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *KV) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ProfileRepository is a mock for profile.Repository.
type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) LoadProfiles(ctx context.Context) ([]profile.Profile, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]profile.Profile); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProfileRepository) SaveProfiles(ctx context.Context, profiles []profile.Profile) error {
	args := m.Called(ctx, profiles)
	return args.Error(0)
}

func (m *ProfileRepository) LoadSelected(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *ProfileRepository) SaveSelected(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// LedgerRepository is a mock for ledger.Repository.
type LedgerRepository struct {
	mock.Mock
}

func (m *LedgerRepository) LoadTimes(ctx context.Context) ([]ledger.Entry, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]ledger.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) SaveTimes(ctx context.Context, entries []ledger.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *LedgerRepository) LoadRecentCircuits(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LedgerRepository) SaveRecentCircuits(ctx context.Context, circuits []string) error {
	args := m.Called(ctx, circuits)
	return args.Error(0)
}
