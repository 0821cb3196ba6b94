package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/money"
)

type Kind string

const (
	KindPayment    Kind = "payment"
	KindFriendship Kind = "friendship"
)

// FundingSource tells which path paid for a Payment.
type FundingSource string

const (
	FundingBalance FundingSource = "balance"
	FundingCard    FundingSource = "card"
)

// Event is either a Payment or a Friendship. The set is closed: only types in
// this package implement it.
type Event interface {
	Kind() Kind
	OccurredAt() time.Time
	sealed()
}

type Payment struct {
	ID        uuid.UUID
	PayerID   uuid.UUID
	PayeeID   uuid.UUID
	Amount    money.Amount
	Note      string
	Funding   FundingSource
	CreatedAt time.Time
}

func (Payment) Kind() Kind              { return KindPayment }
func (p Payment) OccurredAt() time.Time { return p.CreatedAt }
func (Payment) sealed()                 {}

// Friendship links A (who asked) and B (the new friend).
type Friendship struct {
	A         uuid.UUID
	B         uuid.UUID
	CreatedAt time.Time
}

func (Friendship) Kind() Kind              { return KindFriendship }
func (f Friendship) OccurredAt() time.Time { return f.CreatedAt }
func (Friendship) sealed()                 {}

// Involves reports whether the account took part in e.
func Involves(e Event, id uuid.UUID) bool {
	switch ev := e.(type) {
	case Payment:
		return ev.PayerID == id || ev.PayeeID == id
	case Friendship:
		return ev.A == id || ev.B == id
	default:
		panic("ledger: unknown event type")
	}
}
