package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/lapledger/internal/store"
	"github.com/rpggio/lapledger/internal/tracker"
	"github.com/stretchr/testify/require"
)

type testSession struct {
	session *sdkmcp.ClientSession
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()
	ctx := context.Background()

	tr, err := tracker.New(ctx, store.NewMemory(), nil)
	require.NoError(t, err)
	server := NewServer(Config{Tracker: tr})

	st, ct := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		cs.Close()
		ss.Close()
	})
	return &testSession{session: cs}
}

func (s *testSession) call(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	return result
}

func (s *testSession) callInto(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := s.call(t, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, textOf(result))
	require.NoError(t, json.Unmarshal([]byte(textOf(result)), out))
}

func textOf(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestTools_ProfileAndTimeWorkflow(t *testing.T) {
	s := newTestSession(t)

	var created ProfileResult
	s.callInto(t, "create_profile", map[string]any{"character": "Mario", "skin": "Classic", "vehicle": "Standard Kart"}, &created)
	require.NotEmpty(t, created.Profile.ID)
	require.Equal(t, "Mario + Standard Kart", created.Profile.Name)
	require.Equal(t, "characters/Mario.png", created.Profile.CharacterImage)

	var ok OKResult
	s.callInto(t, "select_profile", map[string]any{"id": created.Profile.ID}, &ok)
	require.True(t, ok.OK)

	var first AddTimeResult
	s.callInto(t, "add_time", map[string]any{"circuit": "Mario Circuit", "time": "1:20.000"}, &first)
	require.True(t, first.PersonalBest)
	require.Equal(t, created.Profile.ID, first.Entry.ProfileID)
	require.Equal(t, "gold", first.Entry.Medal)

	var second AddTimeResult
	s.callInto(t, "add_time", map[string]any{"circuit": "Mario Circuit", "digits": "121000"}, &second)
	require.False(t, second.PersonalBest)
	require.Equal(t, "1:21.000", second.Entry.Time)
	require.Equal(t, "silver", second.Entry.Medal)

	var list TimeListResult
	s.callInto(t, "list_times", map[string]any{"limit": 1}, &list)
	require.Equal(t, 2, list.Total)
	require.Len(t, list.Times, 1)

	var ranks RankingsResult
	s.callInto(t, "rankings", nil, &ranks)
	require.Len(t, ranks.Circuits, 1)
	require.Equal(t, "1:20.000", ranks.Circuits[0].Times[0].Time)

	var edited TimeResult
	s.callInto(t, "edit_time", map[string]any{
		"id": second.Entry.ID, "time": "1:19.500", "circuit": "Mario Circuit", "character": "Mario", "vehicle": "Standard Kart",
	}, &edited)
	require.Equal(t, "gold", edited.Entry.Medal)

	var bests TimeListResult
	s.callInto(t, "personal_bests", nil, &bests)
	require.Len(t, bests.Times, 1)
	require.Equal(t, "1:19.500", bests.Times[0].Time)

	s.callInto(t, "remove_time", map[string]any{"id": second.Entry.ID}, &ok)
	var ping PingResult
	s.callInto(t, "ping", nil, &ping)
	require.Equal(t, PingResult{Status: "ok", Profiles: 1, Times: 1}, ping)
}

func TestTools_InvalidTimeIsToolError(t *testing.T) {
	s := newTestSession(t)

	var created ProfileResult
	s.callInto(t, "create_profile", map[string]any{"character": "Mario", "skin": "Classic", "vehicle": "Standard Kart"}, &created)

	result := s.call(t, "add_time", map[string]any{"circuit": "Mario Circuit", "time": "1:60.000", "profile_id": created.Profile.ID})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "INVALID_TIME")

	result = s.call(t, "delete_profile", map[string]any{"id": "missing"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "PROFILE_NOT_FOUND")

	result = s.call(t, "create_profile", map[string]any{"character": "Select...", "skin": "Classic", "vehicle": "Standard Kart"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "INVALID_PROFILE")
}

func TestTools_ImportExport(t *testing.T) {
	s := newTestSession(t)
	csv := "time_of_entry,track,character,outfit,kart,race_time\n" +
		"2024-05-01T18:30:00.000Z,\"Toad's Factory, Remix\",Luigi,Green,Pipe Frame,1:05.250\n" +
		"2024-05-02T18:30:00.000Z,Mario Circuit,Luigi,Green,Pipe Frame,not a time"

	var preview ImportCSVResult
	s.callInto(t, "import_csv", map[string]any{"csv": csv, "mode": "cancel"}, &preview)
	require.Equal(t, 1, preview.Rows)
	require.Equal(t, 1, preview.Skipped)
	require.Len(t, preview.NewProfiles, 1)
	require.Len(t, preview.RowErrors, 1)

	var profiles ProfileListResult
	s.callInto(t, "list_profiles", nil, &profiles)
	require.Empty(t, profiles.Profiles)

	var imported ImportCSVResult
	s.callInto(t, "import_csv", map[string]any{"csv": csv, "mode": "replace"}, &imported)
	require.Equal(t, "replace", imported.Mode)

	s.callInto(t, "list_profiles", nil, &profiles)
	require.Len(t, profiles.Profiles, 1)
	require.Equal(t, "Luigi (Green)", profiles.Profiles[0].Name)

	var exported ExportCSVResult
	s.callInto(t, "export_csv", nil, &exported)
	require.Equal(t, 1, exported.Rows)
	require.Equal(t, "time_of_entry,track,character,outfit,kart,race_time\n"+
		"2024-05-01T18:30:00.000Z,\"Toad's Factory, Remix\",Luigi,Green,Pipe Frame,1:05.250", exported.CSV)

	result := s.call(t, "import_csv", map[string]any{"csv": "track,race_time\nA,1:00.000", "mode": "append"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "CSV_HEADER_MISMATCH")

	result = s.call(t, "import_csv", map[string]any{"csv": csv, "mode": "merge"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "INVALID_MODE")
}

func TestResources(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	res, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "lapledger://docs/csv-format"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "time_of_entry,track,character,outfit,kart,race_time")

	res, err = s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: exportURI})
	require.NoError(t, err)
	require.Equal(t, "time_of_entry,track,character,outfit,kart,race_time", res.Contents[0].Text)
}
