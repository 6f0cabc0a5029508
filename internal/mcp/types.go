package mcp

import (
	"time"

	"github.com/rpggio/lapledger/internal/assets"
	"github.com/rpggio/lapledger/internal/csvsync"
	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
)

// Tool parameters.

type EmptyParams struct{}

type CreateProfileParams struct {
	Character string `json:"character" jsonschema:"Character name"`
	Skin      string `json:"skin" jsonschema:"Character skin or outfit"`
	Vehicle   string `json:"vehicle" jsonschema:"Vehicle name"`
}

type ProfileIDParams struct {
	ID string `json:"id" jsonschema:"Profile ID"`
}

type SelectProfileParams struct {
	ID string `json:"id,omitempty" jsonschema:"Profile ID (omit to clear the selection)"`
}

type AddTimeParams struct {
	Time      string `json:"time,omitempty" jsonschema:"Lap time as M:SS.mmm or MM:SS.mmm"`
	Digits    string `json:"digits,omitempty" jsonschema:"Raw digits typed on a keypad, e.g. 123456 for 1:23.456; used when time is omitted"`
	Circuit   string `json:"circuit" jsonschema:"Circuit name"`
	ProfileID string `json:"profile_id,omitempty" jsonschema:"Profile ID (omit to use the selected profile)"`
}

type EditTimeParams struct {
	ID        string `json:"id" jsonschema:"Time entry ID"`
	Time      string `json:"time" jsonschema:"Lap time as M:SS.mmm or MM:SS.mmm"`
	Circuit   string `json:"circuit" jsonschema:"Circuit name"`
	Character string `json:"character" jsonschema:"Character name"`
	Vehicle   string `json:"vehicle" jsonschema:"Vehicle name"`
}

type TimeIDParams struct {
	ID string `json:"id" jsonschema:"Time entry ID"`
}

type ListTimesParams struct {
	Circuit string `json:"circuit,omitempty" jsonschema:"Only times on this circuit"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Maximum number of results"`
}

type RankingsParams struct {
	Circuit string `json:"circuit,omitempty" jsonschema:"Only this circuit"`
}

type ImportCSVParams struct {
	CSV  string `json:"csv" jsonschema:"CSV text with a time_of_entry,track,character,outfit,kart,race_time header"`
	Mode string `json:"mode" jsonschema:"replace, append or cancel (cancel only previews)"`
}

// Tool results.

type PingResult struct {
	Status   string `json:"status"`
	Profiles int    `json:"profiles"`
	Times    int    `json:"times"`
}

type ProfileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Skin      string `json:"skin"`
	Vehicle   string `json:"vehicle"`
	CreatedAt string `json:"created_at"`
	Active    bool   `json:"active,omitempty"`

	CharacterImage string `json:"character_image,omitempty"`
	VehicleImage   string `json:"vehicle_image,omitempty"`
}

type ProfileResult struct {
	Profile ProfileResponse `json:"profile"`
}

type ProfileListResult struct {
	Profiles []ProfileResponse `json:"profiles"`
}

type OKResult struct {
	OK bool `json:"ok"`
}

type TimeResponse struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Circuit   string `json:"circuit"`
	ProfileID string `json:"profile_id"`
	Date      string `json:"date"`
	Character string `json:"character,omitempty"`
	Vehicle   string `json:"vehicle,omitempty"`
	Rank      int    `json:"rank,omitempty"`
	Medal     string `json:"medal,omitempty"`

	CircuitImage string `json:"circuit_image,omitempty"`
}

type AddTimeResult struct {
	Entry        TimeResponse `json:"entry"`
	PersonalBest bool         `json:"personal_best"`
}

type TimeResult struct {
	Entry TimeResponse `json:"entry"`
}

type TimeListResult struct {
	Times []TimeResponse `json:"times"`
	Total int            `json:"total"`
}

type CircuitRanking struct {
	Circuit string         `json:"circuit"`
	Times   []TimeResponse `json:"times"`
}

type RankingsResult struct {
	Circuits []CircuitRanking `json:"circuits"`
}

type ExportCSVResult struct {
	CSV  string `json:"csv"`
	Rows int    `json:"rows"`
}

type RowErrorResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportCSVResult struct {
	Mode        string             `json:"mode"`
	Rows        int                `json:"rows"`
	Skipped     int                `json:"skipped"`
	NewProfiles []ProfileResponse  `json:"new_profiles"`
	RowErrors   []RowErrorResponse `json:"row_errors,omitempty"`
}

func toProfileResponse(p profile.Profile, activeID string) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Name:      p.Name,
		Character: p.Character,
		Skin:      p.CharacterSkin,
		Vehicle:   p.Vehicle,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		Active:    activeID != "" && p.ID == activeID,

		CharacterImage: imagePath(assets.KindCharacter, p.Character),
		VehicleImage:   imagePath(assets.KindVehicle, p.Vehicle),
	}
}

func toTimeResponse(e ledger.Entry, ranks map[string]ledger.Placement) TimeResponse {
	resp := TimeResponse{
		ID:        e.ID,
		Time:      e.Time,
		Circuit:   e.Circuit,
		ProfileID: e.ProfileID,
		Date:      e.Date,
		Character: e.Character,
		Vehicle:   e.Vehicle,

		CircuitImage: imagePath(assets.KindCircuit, e.Circuit),
	}
	if p, ok := ranks[e.ID]; ok {
		resp.Rank = p.Rank
		resp.Medal = string(p.Medal)
	}
	return resp
}

func toRowErrors(errs []csvsync.RowError) []RowErrorResponse {
	if len(errs) == 0 {
		return nil
	}
	out := make([]RowErrorResponse, 0, len(errs))
	for _, e := range errs {
		out = append(out, RowErrorResponse{Line: e.Line, Reason: e.Reason})
	}
	return out
}

func imagePath(kind assets.Kind, name string) string {
	if assets.Sanitize(name) == "" {
		return ""
	}
	p, err := assets.Path(kind, name)
	if err != nil {
		return ""
	}
	return p
}
