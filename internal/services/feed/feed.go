// Package feed derives a user's activity feed from the ledger.
package feed

import (
	"iter"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/ledger"
)

type View struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *View {
	return &View{ledger: l}
}

// For yields, in ledger order, every payment and friendship the account took
// part in. The sequence is recomputed from the ledger on every iteration.
func (v *View) For(id uuid.UUID) iter.Seq[ledger.Event] {
	return func(yield func(ledger.Event) bool) {
		for e := range v.ledger.All() {
			if !ledger.Involves(e, id) {
				continue
			}

			if !yield(e) {
				return
			}
		}
	}
}

// Collect returns the account's feed as a slice.
func (v *View) Collect(id uuid.UUID) []ledger.Event {
	var out []ledger.Event
	for e := range v.For(id) {
		out = append(out, e)
	}

	return out
}
