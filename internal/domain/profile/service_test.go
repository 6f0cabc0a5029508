package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileService_Create(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("SaveProfiles", ctx, mock.Anything).Return(nil)

	svc := profile.NewService(repo, nil)
	p, err := svc.Create(ctx, profile.CreateRequest{Character: "Mario", Skin: "Classic", Vehicle: "Standard Kart"})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.Equal(t, "Mario + Standard Kart", p.Name)
	require.False(t, p.CreatedAt.IsZero())

	found, ok := svc.Find(p.ID)
	require.True(t, ok)
	require.Equal(t, p.ID, found.ID)
	repo.AssertNumberOfCalls(t, "SaveProfiles", 1)
}

func TestProfileService_CreateUniqueIDs(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("SaveProfiles", ctx, mock.Anything).Return(nil)

	svc := profile.NewService(repo, nil)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		p, err := svc.Create(ctx, profile.CreateRequest{Character: "Luigi", Skin: "Classic", Vehicle: "Pipe Frame"})
		require.NoError(t, err)
		require.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestProfileService_CreateValidation(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	svc := profile.NewService(repo, nil)

	cases := []profile.CreateRequest{
		{Character: "", Skin: "Classic", Vehicle: "Kart"},
		{Character: "Mario", Skin: "  ", Vehicle: "Kart"},
		{Character: "Mario", Skin: "Classic", Vehicle: profile.Placeholder},
		{Character: "select", Skin: "Classic", Vehicle: "Kart"},
	}
	for _, req := range cases {
		_, err := svc.Create(ctx, req)
		require.ErrorIs(t, err, profile.ErrInvalidInput)
	}
	require.Empty(t, svc.List())
	repo.AssertNotCalled(t, "SaveProfiles", mock.Anything, mock.Anything)
}

func TestProfileService_CreateSaveFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("SaveProfiles", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := profile.NewService(repo, nil)
	_, err := svc.Create(ctx, profile.CreateRequest{Character: "Peach", Skin: "Classic", Vehicle: "Kart"})
	require.Error(t, err)
	require.Empty(t, svc.List())
}

func TestProfileService_DeleteClearsSelection(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("SaveProfiles", ctx, mock.Anything).Return(nil)
	repo.On("SaveSelected", ctx, mock.Anything).Return(nil)

	svc := profile.NewService(repo, nil)
	p, err := svc.Create(ctx, profile.CreateRequest{Character: "Yoshi", Skin: "Green", Vehicle: "Kart"})
	require.NoError(t, err)
	require.NoError(t, svc.Select(ctx, p.ID))

	active, ok := svc.Active()
	require.True(t, ok)
	require.Equal(t, p.ID, active.ID)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, ok = svc.Active()
	require.False(t, ok)
	_, ok = svc.Find(p.ID)
	require.False(t, ok)
	repo.AssertCalled(t, "SaveSelected", ctx, "")
}

func TestProfileService_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	svc := profile.NewService(repo, nil)
	require.NoError(t, svc.Delete(ctx, "missing"))
	repo.AssertNotCalled(t, "SaveProfiles", mock.Anything, mock.Anything)
}

func TestProfileService_SelectUnknown(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	svc := profile.NewService(repo, nil)
	require.ErrorIs(t, svc.Select(ctx, "missing"), profile.ErrProfileNotFound)
}

func TestProfileService_FindByAttributes(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("SaveProfiles", ctx, mock.Anything).Return(nil)

	svc := profile.NewService(repo, nil)
	p, err := svc.Create(ctx, profile.CreateRequest{Character: "Toad", Skin: "Blue", Vehicle: "Bike"})
	require.NoError(t, err)

	found, ok := svc.FindByAttributes("Toad", "Blue", "Bike")
	require.True(t, ok)
	require.Equal(t, p.ID, found.ID)

	_, ok = svc.FindByAttributes("Toad", "Red", "Bike")
	require.False(t, ok)
}

func TestProfileService_LoadDropsDanglingSelection(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("LoadProfiles", ctx).Return([]profile.Profile{{ID: "p1", Character: "Wario"}}, nil)
	repo.On("LoadSelected", ctx).Return("gone", nil)

	svc := profile.NewService(repo, nil)
	require.NoError(t, svc.Load(ctx))
	require.Len(t, svc.List(), 1)
	_, ok := svc.Active()
	require.False(t, ok)
}

func TestProfileService_RegisterSkipsKnownIDs(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProfileRepository{}
	repo.On("LoadProfiles", ctx).Return([]profile.Profile{{ID: "p1"}}, nil)
	repo.On("LoadSelected", ctx).Return("", nil)
	repo.On("SaveProfiles", ctx, mock.Anything).Return(nil)

	svc := profile.NewService(repo, nil)
	require.NoError(t, svc.Load(ctx))
	require.NoError(t, svc.Register(ctx, []profile.Profile{{ID: "p1"}, {ID: "p2"}}))
	require.Len(t, svc.List(), 2)
}
