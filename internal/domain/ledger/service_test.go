package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileStub map[string]profile.Profile

func (s profileStub) Find(id string) (*profile.Profile, bool) {
	p, ok := s[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func newLedger(t *testing.T) (*ledger.Service, *mocks.LedgerRepository) {
	t.Helper()
	ctx := context.Background()

	repo := &mocks.LedgerRepository{}
	repo.On("SaveTimes", ctx, mock.Anything).Return(nil)
	repo.On("SaveRecentCircuits", ctx, mock.Anything).Return(nil)

	profiles := profileStub{"p1": {ID: "p1", Character: "Mario", Vehicle: "Standard Kart"}}
	return ledger.NewService(repo, profiles, nil), repo
}

func TestLedgerService_AddPersonalBest(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	first, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "Mario Circuit", ProfileID: "p1"})
	require.NoError(t, err)
	require.True(t, first.PersonalBest)
	require.Equal(t, "Mario", first.Entry.Character)
	require.Equal(t, "Standard Kart", first.Entry.Vehicle)
	require.NotEmpty(t, first.Entry.ID)
	require.NotEmpty(t, first.Entry.Date)

	slower, err := svc.Add(ctx, ledger.AddRequest{Time: "1:25.000", Circuit: "Mario Circuit", ProfileID: "p1"})
	require.NoError(t, err)
	require.False(t, slower.PersonalBest)

	equal, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "Mario Circuit", ProfileID: "p1"})
	require.NoError(t, err)
	require.False(t, equal.PersonalBest)

	faster, err := svc.Add(ctx, ledger.AddRequest{Time: "1:19.999", Circuit: "Mario Circuit", ProfileID: "p1"})
	require.NoError(t, err)
	require.True(t, faster.PersonalBest)

	other, err := svc.Add(ctx, ledger.AddRequest{Time: "2:00.000", Circuit: "Rainbow Road", ProfileID: "p1"})
	require.NoError(t, err)
	require.True(t, other.PersonalBest)
	require.Equal(t, 4, other.Index)
}

func TestLedgerService_AddUnknownProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	res, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "Mario Circuit", ProfileID: "gone"})
	require.NoError(t, err)
	require.Empty(t, res.Entry.Character)
	require.Empty(t, res.Entry.Vehicle)
}

func TestLedgerService_AddValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newLedger(t)

	cases := []ledger.AddRequest{
		{Time: "1:65.000", Circuit: "Mario Circuit", ProfileID: "p1"},
		{Time: "1", Circuit: "Mario Circuit", ProfileID: "p1"},
		{Time: "1:20.000", Circuit: "", ProfileID: "p1"},
		{Time: "1:20.000", Circuit: "Mario Circuit", ProfileID: ""},
	}
	for _, req := range cases {
		_, err := svc.Add(ctx, req)
		require.ErrorIs(t, err, ledger.ErrInvalidInput)
	}
	require.Zero(t, svc.Len())
	repo.AssertNotCalled(t, "SaveTimes", mock.Anything, mock.Anything)
}

func TestLedgerService_RecentCircuits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	circuits := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	for _, c := range circuits {
		_, err := svc.Add(ctx, ledger.AddRequest{Time: "1:00.000", Circuit: c, ProfileID: "p1"})
		require.NoError(t, err)
	}
	require.Equal(t, []string{"I", "H", "G", "F", "E", "D", "C", "B"}, svc.RecentCircuits())

	_, err := svc.Add(ctx, ledger.AddRequest{Time: "1:00.000", Circuit: "E", ProfileID: "p1"})
	require.NoError(t, err)
	require.Equal(t, []string{"E", "I", "H", "G", "F", "D", "C", "B"}, svc.RecentCircuits())
}

func TestLedgerService_EditPreservesProvenance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	res, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "Mario Circuit", ProfileID: "p1"})
	require.NoError(t, err)

	updated, err := svc.Edit(ctx, res.Index, ledger.EditRequest{
		Time:      "1:18.500",
		Circuit:   "Moo Moo Meadows",
		Character: "Luigi",
		Vehicle:   "Pipe Frame",
	})
	require.NoError(t, err)
	require.Equal(t, res.Entry.ProfileID, updated.ProfileID)
	require.Equal(t, res.Entry.Date, updated.Date)
	require.Equal(t, res.Entry.ID, updated.ID)
	require.Equal(t, "Moo Moo Meadows", svc.Entries()[0].Circuit)
}

func TestLedgerService_EditValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	_, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "Mario Circuit", ProfileID: "p1"})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, 0, ledger.EditRequest{Time: "1:18.500", Circuit: "X", Character: "", Vehicle: "Kart"})
	require.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.Edit(ctx, 5, ledger.EditRequest{Time: "1:18.500", Circuit: "X", Character: "Y", Vehicle: "Kart"})
	require.ErrorIs(t, err, ledger.ErrEntryNotFound)
	require.Equal(t, "1:20.000", svc.Entries()[0].Time)
}

func TestLedgerService_RemoveAndFind(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	a, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "A", ProfileID: "p1"})
	require.NoError(t, err)
	b, err := svc.Add(ctx, ledger.AddRequest{Time: "1:21.000", Circuit: "B", ProfileID: "p1"})
	require.NoError(t, err)

	require.Equal(t, 1, svc.FindIndex(b.Entry.Key()))
	require.NoError(t, svc.Remove(ctx, 0))
	require.Equal(t, -1, svc.FindIndex(a.Entry.Key()))
	require.Equal(t, 0, svc.FindIndex(b.Entry.Key()))
	require.Equal(t, 0, svc.FindByID(b.Entry.ID))
	require.ErrorIs(t, svc.Remove(ctx, 3), ledger.ErrEntryNotFound)
}

func TestLedgerService_SaveFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.LedgerRepository{}
	repo.On("SaveTimes", ctx, mock.Anything).Return(errors.New("locked"))

	svc := ledger.NewService(repo, profileStub{}, nil)
	_, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "A", ProfileID: "p1"})
	require.Error(t, err)
	require.Zero(t, svc.Len())
}

func TestLedgerService_LoadAssignsMissingIDs(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.LedgerRepository{}
	repo.On("LoadTimes", ctx).Return([]ledger.Entry{{Time: "1:00.000", Circuit: "A", ProfileID: "p1", Date: "2024-01-01T00:00:00.000Z"}}, nil)
	repo.On("LoadRecentCircuits", ctx).Return([]string{"A"}, nil)

	svc := ledger.NewService(repo, profileStub{}, nil)
	require.NoError(t, svc.Load(ctx))
	require.NotEmpty(t, svc.Entries()[0].ID)
	require.Equal(t, []string{"A"}, svc.RecentCircuits())
}

func TestLedgerService_SortedNewestFirst(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.LedgerRepository{}
	repo.On("LoadTimes", ctx).Return([]ledger.Entry{
		{ID: "old", Date: "2024-01-01T00:00:00.000Z"},
		{ID: "bad", Date: "yesterday"},
		{ID: "new", Date: "2024-03-01T00:00:00.000Z"},
		{ID: "mid", Date: "2024-02-01T10:00:00Z"},
	}, nil)
	repo.On("LoadRecentCircuits", ctx).Return([]string(nil), nil)

	svc := ledger.NewService(repo, profileStub{}, nil)
	require.NoError(t, svc.Load(ctx))

	var ids []string
	for _, e := range svc.Sorted() {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"new", "mid", "old", "bad"}, ids)
	require.Equal(t, "old", svc.Entries()[0].ID)
}

func TestLedgerService_ReplaceAndAppend(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	_, err := svc.Add(ctx, ledger.AddRequest{Time: "1:20.000", Circuit: "A", ProfileID: "p1"})
	require.NoError(t, err)

	batch := []ledger.Entry{{Time: "1:10.000", Circuit: "B", ProfileID: "p2", Date: "2024-01-01T00:00:00.000Z"}}
	require.NoError(t, svc.Append(ctx, batch))
	require.Equal(t, 2, svc.Len())
	require.NotEmpty(t, svc.Entries()[1].ID)

	require.NoError(t, svc.Replace(ctx, batch))
	require.Equal(t, 1, svc.Len())
	require.Equal(t, "B", svc.Entries()[0].Circuit)
	require.Empty(t, batch[0].ID)
}

func TestLedgerService_PersonalBests(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t)

	for _, req := range []ledger.AddRequest{
		{Time: "1:20.000", Circuit: "B", ProfileID: "p1"},
		{Time: "1:10.000", Circuit: "B", ProfileID: "p1"},
		{Time: "0:59.000", Circuit: "A", ProfileID: "p1"},
	} {
		_, err := svc.Add(ctx, req)
		require.NoError(t, err)
	}

	bests := svc.PersonalBests()
	require.Len(t, bests, 2)
	require.Equal(t, "A", bests[0].Circuit)
	require.Equal(t, "1:10.000", bests[1].Time)
}
