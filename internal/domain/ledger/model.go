package ledger

import "time"

// DateLayout is the timestamp format stored in Entry.Date.
const DateLayout = "2006-01-02T15:04:05.000Z"

// RecentCircuitsLimit bounds the most-recently-used circuit list.
const RecentCircuitsLimit = 8

// Entry is one recorded race time.
//
// Character and Vehicle are copies of the owning profile taken when the
// entry was created; they are empty for entries written before the fields
// existed. ProfileID may point at a deleted profile.
type Entry struct {
	ID        string `json:"id,omitempty"`
	Time      string `json:"time"`
	Circuit   string `json:"circuit"`
	ProfileID string `json:"profileId"`
	Date      string `json:"date"`
	Vehicle   string `json:"vehicle,omitempty"`
	Character string `json:"character,omitempty"`
}

// Key is the composite of observable fields that locates an entry when its
// ID is unknown. Two entries can share a key.
type Key struct {
	Time      string
	Circuit   string
	Date      string
	ProfileID string
}

// Key returns the composite lookup key of e.
func (e Entry) Key() Key {
	return Key{Time: e.Time, Circuit: e.Circuit, Date: e.Date, ProfileID: e.ProfileID}
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate reads an entry date, accepting RFC 3339 variants as well.
func ParseDate(s string) (time.Time, bool) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
