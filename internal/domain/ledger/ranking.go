package ledger

import (
	"slices"

	"github.com/rpggio/lapledger/internal/laptime"
)

// Medal is the award for the top three times on a circuit.
type Medal string

const (
	MedalNone   Medal = ""
	MedalGold   Medal = "gold"
	MedalSilver Medal = "silver"
	MedalBronze Medal = "bronze"
)

// Emoji returns the medal glyph, or an empty string for no medal.
func (m Medal) Emoji() string {
	switch m {
	case MedalGold:
		return "🥇"
	case MedalSilver:
		return "🥈"
	case MedalBronze:
		return "🥉"
	default:
		return ""
	}
}

// Placement is an entry's position among the times on its circuit.
type Placement struct {
	Rank  int   `json:"rank"`
	Medal Medal `json:"medal,omitempty"`
}

// MedalFor returns the medal for a 1-based rank.
func MedalFor(rank int) Medal {
	switch rank {
	case 1:
		return MedalGold
	case 2:
		return MedalSilver
	case 3:
		return MedalBronze
	default:
		return MedalNone
	}
}

// Rank computes placements keyed by the composite entry key. Within a
// circuit entries are ordered by time; equal times keep ledger order. When
// two entries share a key the better placement is kept.
func Rank(entries []Entry) map[Key]Placement {
	out := make(map[Key]Placement, len(entries))
	walkPlacements(entries, func(i int, p Placement) {
		if _, ok := out[entries[i].Key()]; !ok {
			out[entries[i].Key()] = p
		}
	})
	return out
}

// RankByID computes placements keyed by entry id.
func RankByID(entries []Entry) map[string]Placement {
	out := make(map[string]Placement, len(entries))
	walkPlacements(entries, func(i int, p Placement) {
		out[entries[i].ID] = p
	})
	return out
}

// Placements returns the placement of each entry by position, so entries
// sharing a key or lacking an id still get distinct ranks.
func Placements(entries []Entry) []Placement {
	out := make([]Placement, len(entries))
	walkPlacements(entries, func(i int, p Placement) {
		out[i] = p
	})
	return out
}

func walkPlacements(entries []Entry, fn func(int, Placement)) {
	groups := make(map[string][]int)
	var order []string
	for i, e := range entries {
		if _, ok := groups[e.Circuit]; !ok {
			order = append(order, e.Circuit)
		}
		groups[e.Circuit] = append(groups[e.Circuit], i)
	}

	for _, circuit := range order {
		group := groups[circuit]
		slices.SortStableFunc(group, func(a, b int) int {
			sa, sb := laptime.ToSeconds(entries[a].Time), laptime.ToSeconds(entries[b].Time)
			switch {
			case sa < sb:
				return -1
			case sa > sb:
				return 1
			default:
				return 0
			}
		})
		for rank, i := range group {
			fn(i, Placement{Rank: rank + 1, Medal: MedalFor(rank + 1)})
		}
	}
}
