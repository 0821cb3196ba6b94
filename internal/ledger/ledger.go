// Package ledger is the append-only record of every payment and friendship.
//
// A single Ledger is created by the application root and shared by all
// accounts and the payment router. Events are never removed or modified.
package ledger

import (
	"iter"
	"slices"
	"sync"
)

type Ledger struct {
	mu     sync.RWMutex
	events []Event
}

func New() *Ledger {
	return &Ledger{events: make([]Event, 0, 64)}
}

// Append records e at the end of the ledger.
func (l *Ledger) Append(e Event) {
	if e == nil {
		panic("ledger: append nil event")
	}

	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

// All yields the events oldest first. Each iteration sees the events recorded
// when it starts; appends made during the iteration are not visited.
func (l *Ledger) All() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for _, e := range l.view() {
			if !yield(e) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the events recorded so far.
func (l *Ledger) Snapshot() []Event {
	return slices.Clone(l.view())
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.events)
}

// view returns the current prefix capped at its length, so appends made
// through it can never write into the shared backing array.
func (l *Ledger) view() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.events[:len(l.events):len(l.events)]
}
