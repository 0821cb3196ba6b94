package feed

import (
	"fmt"
	"io"
	"iter"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/ledger"
)

// NameFunc resolves an account id to its display name.
type NameFunc func(uuid.UUID) string

// Line renders one event:
//
//	Bobby paid Carol $5.00 for Coffee
//	Bobby and Carol are now friends
func Line(e ledger.Event, name NameFunc) string {
	switch ev := e.(type) {
	case ledger.Payment:
		return fmt.Sprintf("%s paid %s $%s for %s", name(ev.PayerID), name(ev.PayeeID), ev.Amount, ev.Note)
	case ledger.Friendship:
		return fmt.Sprintf("%s and %s are now friends", name(ev.A), name(ev.B))
	default:
		panic(fmt.Sprintf("feed: unknown event type %T", e))
	}
}

func Lines(events iter.Seq[ledger.Event], name NameFunc) []string {
	var out []string
	for e := range events {
		out = append(out, Line(e, name))
	}

	return out
}

// Render writes one line per event to w.
func Render(w io.Writer, events iter.Seq[ledger.Event], name NameFunc) error {
	for e := range events {
		_, err := fmt.Fprintln(w, Line(e, name))
		if err != nil {
			return fmt.Errorf("render feed: %w", err)
		}
	}

	return nil
}
