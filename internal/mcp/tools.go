package mcp

import (
	"cmp"
	"context"
	"slices"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/laptime"
)

type toolset struct {
	tracker Tracker
}

func registerTools(server *sdkmcp.Server, t Tracker) {
	ts := &toolset{tracker: t}

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "ping",
		Description: "Check the server is up and report ledger size",
	}, ts.ping)

	// Profiles
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_profile",
		Description: "Create a racer profile from a character, skin and vehicle",
	}, ts.createProfile)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_profiles",
		Description: "List all racer profiles and mark the selected one",
	}, ts.listProfiles)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_profile",
		Description: "Delete a profile. Its recorded times are kept",
	}, ts.deleteProfile)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "select_profile",
		Description: "Select the profile used when a time is added without one",
	}, ts.selectProfile)

	// Times
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_time",
		Description: "Record a lap time and report whether it is a personal best on the circuit",
	}, ts.addTime)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_time",
		Description: "Overwrite the time, circuit, character and vehicle of an entry",
	}, ts.editTime)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_time",
		Description: "Delete a time entry",
	}, ts.removeTime)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_times",
		Description: "List time entries newest first with their circuit placement",
	}, ts.listTimes)

	// Derived views
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "rankings",
		Description: "Rank every time per circuit, fastest first, with gold, silver and bronze medals",
	}, ts.rankings)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "personal_bests",
		Description: "Fastest time on each circuit",
	}, ts.personalBests)

	// Exchange
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_csv",
		Description: "Export the ledger as spreadsheet CSV",
	}, ts.exportCSV)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_csv",
		Description: "Import spreadsheet CSV, replacing or appending to the ledger. Mode cancel previews without changes",
	}, ts.importCSV)
}

func (ts *toolset) ping(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, PingResult, error) {
	return nil, PingResult{
		Status:   "ok",
		Profiles: len(ts.tracker.Profiles()),
		Times:    len(ts.tracker.Times()),
	}, nil
}

func (ts *toolset) createProfile(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProfileParams) (*sdkmcp.CallToolResult, ProfileResult, error) {
	p, err := ts.tracker.CreateProfile(ctx, profile.CreateRequest{
		Character: in.Character,
		Skin:      in.Skin,
		Vehicle:   in.Vehicle,
	})
	if err != nil {
		return nil, ProfileResult{}, mapError(err)
	}
	return nil, ProfileResult{Profile: toProfileResponse(*p, ts.activeID())}, nil
}

func (ts *toolset) listProfiles(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, ProfileListResult, error) {
	activeID := ts.activeID()
	profiles := ts.tracker.Profiles()
	resp := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, toProfileResponse(p, activeID))
	}
	return nil, ProfileListResult{Profiles: resp}, nil
}

func (ts *toolset) deleteProfile(ctx context.Context, _ *sdkmcp.CallToolRequest, in ProfileIDParams) (*sdkmcp.CallToolResult, OKResult, error) {
	if _, ok := ts.tracker.FindProfile(in.ID); !ok {
		return nil, OKResult{}, mapError(profile.ErrProfileNotFound)
	}
	if err := ts.tracker.DeleteProfile(ctx, in.ID); err != nil {
		return nil, OKResult{}, mapError(err)
	}
	return nil, OKResult{OK: true}, nil
}

func (ts *toolset) selectProfile(ctx context.Context, _ *sdkmcp.CallToolRequest, in SelectProfileParams) (*sdkmcp.CallToolResult, OKResult, error) {
	if err := ts.tracker.SelectProfile(ctx, in.ID); err != nil {
		return nil, OKResult{}, mapError(err)
	}
	return nil, OKResult{OK: true}, nil
}

func (ts *toolset) addTime(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddTimeParams) (*sdkmcp.CallToolResult, AddTimeResult, error) {
	lap := in.Time
	if lap == "" && in.Digits != "" {
		lap = laptime.ParseMask(in.Digits)
	}
	res, err := ts.tracker.AddTime(ctx, ledger.AddRequest{
		Time:      lap,
		Circuit:   in.Circuit,
		ProfileID: in.ProfileID,
	})
	if err != nil {
		return nil, AddTimeResult{}, mapError(err)
	}
	return nil, AddTimeResult{
		Entry:        toTimeResponse(res.Entry, ts.tracker.Rankings()),
		PersonalBest: res.PersonalBest,
	}, nil
}

func (ts *toolset) editTime(ctx context.Context, _ *sdkmcp.CallToolRequest, in EditTimeParams) (*sdkmcp.CallToolResult, TimeResult, error) {
	e, err := ts.tracker.EditTimeByID(ctx, in.ID, ledger.EditRequest{
		Time:      in.Time,
		Circuit:   in.Circuit,
		Character: in.Character,
		Vehicle:   in.Vehicle,
	})
	if err != nil {
		return nil, TimeResult{}, mapError(err)
	}
	return nil, TimeResult{Entry: toTimeResponse(*e, ts.tracker.Rankings())}, nil
}

func (ts *toolset) removeTime(ctx context.Context, _ *sdkmcp.CallToolRequest, in TimeIDParams) (*sdkmcp.CallToolResult, OKResult, error) {
	if err := ts.tracker.RemoveTimeByID(ctx, in.ID); err != nil {
		return nil, OKResult{}, mapError(err)
	}
	return nil, OKResult{OK: true}, nil
}

func (ts *toolset) listTimes(_ context.Context, _ *sdkmcp.CallToolRequest, in ListTimesParams) (*sdkmcp.CallToolResult, TimeListResult, error) {
	ranks := ts.tracker.Rankings()
	resp := make([]TimeResponse, 0)
	total := 0
	for _, e := range ts.tracker.SortedTimes() {
		if in.Circuit != "" && e.Circuit != in.Circuit {
			continue
		}
		total++
		if in.Limit > 0 && len(resp) >= in.Limit {
			continue
		}
		resp = append(resp, toTimeResponse(e, ranks))
	}
	return nil, TimeListResult{Times: resp, Total: total}, nil
}

func (ts *toolset) rankings(_ context.Context, _ *sdkmcp.CallToolRequest, in RankingsParams) (*sdkmcp.CallToolResult, RankingsResult, error) {
	ranks := ts.tracker.Rankings()
	byCircuit := make(map[string][]TimeResponse)
	for _, e := range ts.tracker.Times() {
		if in.Circuit != "" && e.Circuit != in.Circuit {
			continue
		}
		byCircuit[e.Circuit] = append(byCircuit[e.Circuit], toTimeResponse(e, ranks))
	}

	circuits := make([]CircuitRanking, 0, len(byCircuit))
	for circuit, times := range byCircuit {
		slices.SortStableFunc(times, func(a, b TimeResponse) int { return cmp.Compare(a.Rank, b.Rank) })
		circuits = append(circuits, CircuitRanking{Circuit: circuit, Times: times})
	}
	slices.SortFunc(circuits, func(a, b CircuitRanking) int { return strings.Compare(a.Circuit, b.Circuit) })
	return nil, RankingsResult{Circuits: circuits}, nil
}

func (ts *toolset) personalBests(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, TimeListResult, error) {
	ranks := ts.tracker.Rankings()
	bests := ts.tracker.PersonalBests()
	resp := make([]TimeResponse, 0, len(bests))
	for _, e := range bests {
		resp = append(resp, toTimeResponse(e, ranks))
	}
	return nil, TimeListResult{Times: resp, Total: len(resp)}, nil
}

func (ts *toolset) exportCSV(_ context.Context, _ *sdkmcp.CallToolRequest, _ EmptyParams) (*sdkmcp.CallToolResult, ExportCSVResult, error) {
	return nil, ExportCSVResult{
		CSV:  ts.tracker.ExportCSV(),
		Rows: len(ts.tracker.Times()),
	}, nil
}

func (ts *toolset) importCSV(ctx context.Context, _ *sdkmcp.CallToolRequest, in ImportCSVParams) (*sdkmcp.CallToolResult, ImportCSVResult, error) {
	mode, err := csvsync.ParseMode(in.Mode)
	if err != nil {
		return nil, ImportCSVResult{}, mapError(err)
	}
	batch, err := ts.tracker.StageImport(strings.NewReader(in.CSV))
	if err != nil {
		return nil, ImportCSVResult{}, mapError(err)
	}
	if err := ts.tracker.CommitImport(ctx, batch, mode); err != nil {
		return nil, ImportCSVResult{}, mapError(err)
	}

	newProfiles := make([]ProfileResponse, 0, len(batch.NewProfiles))
	for _, p := range batch.NewProfiles {
		newProfiles = append(newProfiles, toProfileResponse(p, ""))
	}
	return nil, ImportCSVResult{
		Mode:        string(mode),
		Rows:        len(batch.Entries),
		Skipped:     batch.Skipped,
		NewProfiles: newProfiles,
		RowErrors:   toRowErrors(batch.RowErrors),
	}, nil
}

func (ts *toolset) activeID() string {
	if p, ok := ts.tracker.ActiveProfile(); ok {
		return p.ID
	}
	return ""
}
