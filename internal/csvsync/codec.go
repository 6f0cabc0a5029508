package csvsync

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/lapledger/internal/domain/ledger"
	"github.com/rpggio/lapledger/internal/domain/profile"
	"github.com/rpggio/lapledger/internal/laptime"
)

// Column names of the spreadsheet exchange format, in export order.
const (
	ColTimeOfEntry = "time_of_entry"
	ColTrack       = "track"
	ColCharacter   = "character"
	ColOutfit      = "outfit"
	ColKart        = "kart"
	ColRaceTime    = "race_time"
)

// Header is the fixed column order written on export.
var Header = []string{ColTimeOfEntry, ColTrack, ColCharacter, ColOutfit, ColKart, ColRaceTime}

// Fallbacks used on export when neither the entry nor its profile knows a value.
const (
	UnknownCharacter = "Unknown Character"
	DefaultOutfit    = "Default"
	DefaultKart      = "Standard Kart"
)

var (
	// ErrFormat indicates input that is not a usable CSV ledger.
	ErrFormat = errors.New("invalid CSV format")
	// ErrHeaderMismatch indicates required columns are missing from the header.
	ErrHeaderMismatch = fmt.Errorf("%w: header mismatch", ErrFormat)
)

// Resolver finds existing profiles by attribute triple during import.
type Resolver interface {
	FindByAttributes(character, skin, vehicle string) (*profile.Profile, bool)
}

// Encode renders entries in the exchange format. Rows are separated by a
// bare newline with no trailing newline.
func Encode(entries []ledger.Entry, profiles ledger.ProfileLookup) string {
	var b strings.Builder
	b.WriteString(encodeRow(Header))
	for _, e := range entries {
		b.WriteByte('\n')
		b.WriteString(encodeRow(Row(e, profiles)))
	}
	return b.String()
}

// Row maps one entry onto the export columns.
func Row(e ledger.Entry, profiles ledger.ProfileLookup) []string {
	var p *profile.Profile
	if profiles != nil {
		p, _ = profiles.Find(e.ProfileID)
	}

	character := e.Character
	if character == "" && p != nil {
		character = p.Character
	}
	if character == "" {
		character = UnknownCharacter
	}

	outfit := DefaultOutfit
	if p != nil && p.CharacterSkin != "" {
		outfit = p.CharacterSkin
	}

	kart := e.Vehicle
	if kart == "" && p != nil {
		kart = p.Vehicle
	}
	if kart == "" {
		kart = DefaultKart
	}

	return []string{e.Date, e.Circuit, character, outfit, kart, e.Time}
}

func encodeRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteField(f)
	}
	return strings.Join(quoted, ",")
}

func quoteField(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

// splitFields splits one line on commas outside double quotes. A doubled
// quote inside a quoted section is a literal quote.
func splitFields(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"' && inQuotes && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}

// RowError describes a skipped data row.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Batch is a decoded import waiting for the user to pick a commit mode.
type Batch struct {
	Entries     []ledger.Entry    `json:"entries"`
	NewProfiles []profile.Profile `json:"new_profiles,omitempty"`
	Skipped     int               `json:"skipped"`
	RowErrors   []RowError        `json:"row_errors,omitempty"`
}

type triple struct {
	character, outfit, kart string
}

// Decode parses exchange-format text into a staged batch. Header problems
// fail the whole decode; bad rows are skipped and counted. Rows whose
// (character, outfit, kart) matches no known profile get one new profile per
// distinct triple, carried in the batch until it is committed.
func Decode(text string, resolver Resolver) (*Batch, error) {
	var lines []string
	var lineNos []int
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		lineNos = append(lineNos, i+1)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: need a header and at least one row", ErrFormat)
	}

	header := splitFields(lines[0])
	col := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := col[name]; !dup {
			col[name] = i
		}
	}
	var missing []string
	for _, name := range Header {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrHeaderMismatch, strings.Join(missing, ", "))
	}

	batch := &Batch{}
	pending := make(map[triple]profile.Profile)
	now := time.Now()

	skip := func(line int, reason string) {
		batch.Skipped++
		batch.RowErrors = append(batch.RowErrors, RowError{Line: line, Reason: reason})
	}

	for n, line := range lines[1:] {
		lineNo := lineNos[n+1]
		fields := splitFields(line)
		if len(fields) != len(header) {
			skip(lineNo, fmt.Sprintf("expected %d fields, got %d", len(header), len(fields)))
			continue
		}

		track := fields[col[ColTrack]]
		character := fields[col[ColCharacter]]
		raceTime := fields[col[ColRaceTime]]
		if track == "" || character == "" || raceTime == "" {
			skip(lineNo, "track, character and race_time are required")
			continue
		}
		if !laptime.IsValidLenient(raceTime) {
			skip(lineNo, fmt.Sprintf("race_time %q is not M:SS.mmm", raceTime))
			continue
		}

		outfit := fields[col[ColOutfit]]
		kart := fields[col[ColKart]]

		var profileID string
		if p, ok := resolver.FindByAttributes(character, outfit, kart); ok {
			profileID = p.ID
		} else {
			key := triple{character, outfit, kart}
			p, ok := pending[key]
			if !ok {
				p = profile.Profile{
					ID:            profile.NewID(),
					Name:          profile.ImportedName(character, outfit),
					Character:     character,
					CharacterSkin: outfit,
					Vehicle:       kart,
					CreatedAt:     now,
				}
				pending[key] = p
				batch.NewProfiles = append(batch.NewProfiles, p)
			}
			profileID = p.ID
		}

		batch.Entries = append(batch.Entries, ledger.Entry{
			Time:      raceTime,
			Circuit:   track,
			ProfileID: profileID,
			Date:      fields[col[ColTimeOfEntry]],
			Vehicle:   kart,
			Character: character,
		})
	}

	return batch, nil
}
