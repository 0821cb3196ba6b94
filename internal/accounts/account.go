// Package accounts owns account state: balance, linked card and friends.
//
// Every mutation happens under the account's lock. Operations on two
// accounts lock both in id order, see WithTx.
package accounts

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/ledger"
	"github.com/fastprodman/minivenmo/internal/money"
	"github.com/fastprodman/minivenmo/internal/validate"
)

type Account struct {
	id       uuid.UUID
	username string
	book     *Book

	mu      sync.Mutex
	balance money.Amount
	card    string
	friends map[uuid.UUID]struct{}
}

func (a *Account) ID() uuid.UUID { return a.id }

func (a *Account) Username() string { return a.username }

func (a *Account) Balance() money.Amount {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.balance
}

// Card returns the linked card token, if any.
func (a *Account) Card() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.card, a.card != ""
}

func (a *Account) HasCard() bool {
	_, ok := a.Card()
	return ok
}

// Friends returns the friend ids in byte order.
func (a *Account) Friends() []uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(a.friends))
	for id := range a.friends {
		ids = append(ids, id)
	}

	slices.SortFunc(ids, func(x, y uuid.UUID) int { return bytes.Compare(x[:], y[:]) })

	return ids
}

func (a *Account) IsFriend(id uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok := a.friends[id]

	return ok
}

// Credit adds a non-negative amount to the balance.
func (a *Account) Credit(amount money.Amount) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: credit %s", ErrInvalidAmount, amount)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	next, err := a.balance.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: credit %s", ErrBalanceOverflow, amount)
	}

	a.balance = next

	return nil
}

// LinkCard sets the account's card. A card can be linked only once.
// The token is stored in canonical form (see validate.CardNumber).
func (a *Account) LinkCard(token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.card != "" {
		return ErrCardAlreadyLinked
	}

	token = validate.CardNumber(token)
	if !a.book.cards(token) {
		return ErrInvalidCard
	}

	a.card = token

	return nil
}

// AddFriend links a and other both ways and records a Friendship.
// It reports whether a new link was created; befriending an existing
// friend does nothing and returns false.
func (a *Account) AddFriend(other *Account) (bool, error) {
	if other.id == a.id {
		return false, ErrSelfFriendship
	}

	if other.book != a.book {
		return false, ErrForeignAccount
	}

	unlock := lockPair(a, other)
	defer unlock()

	if _, ok := a.friends[other.id]; ok {
		return false, nil
	}

	a.friends[other.id] = struct{}{}
	other.friends[a.id] = struct{}{}

	a.book.ledger.Append(ledger.Friendship{
		A:         a.id,
		B:         other.id,
		CreatedAt: a.book.now(),
	})

	return true, nil
}

// lockPair locks both accounts in id order and returns the matching unlock.
func lockPair(a, b *Account) func() {
	if a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}

	first, second := a, b
	if bytes.Compare(a.id[:], b.id[:]) > 0 {
		first, second = b, a
	}

	first.mu.Lock()
	second.mu.Lock()

	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
