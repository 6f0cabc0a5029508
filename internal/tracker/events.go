package tracker

import "github.com/rpggio/lapledger/internal/domain/ledger"

// EventType names a kind of store change.
type EventType string

const (
	EventProfilesChanged    EventType = "profiles_changed"
	EventTimesChanged       EventType = "times_changed"
	EventPersonalBest       EventType = "personal_best"
	EventPreferencesChanged EventType = "preferences_changed"
	EventReset              EventType = "reset"
)

// Event is delivered to subscribers after a change has been persisted.
type Event struct {
	Type  EventType
	Entry *ledger.Entry
}

// Subscribe registers fn for change events and returns a function that
// removes it. Handlers run synchronously after the tracker lock is released,
// so they may call back into the tracker.
func (t *Tracker) Subscribe(fn func(Event)) func() {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	id := t.nextSub
	t.nextSub++
	t.subscribers[id] = fn

	return func() {
		t.subMu.Lock()
		defer t.subMu.Unlock()
		delete(t.subscribers, id)
	}
}

func (t *Tracker) emit(events ...Event) {
	t.subMu.Lock()
	handlers := make([]func(Event), 0, len(t.subscribers))
	for id := 0; id < t.nextSub; id++ {
		if fn, ok := t.subscribers[id]; ok {
			handlers = append(handlers, fn)
		}
	}
	t.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range handlers {
			fn(ev)
		}
	}
}
