package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/ledger"
	"github.com/fastprodman/minivenmo/internal/validate"
)

// Book opens accounts that share one ledger and one set of validation
// policies. Accounts from different books never interact.
type Book struct {
	ledger    *ledger.Ledger
	usernames validate.Func
	cards     validate.Func
	now       func() time.Time
}

// NewBook returns a Book writing friendship events to l. Nil validators fall
// back to validate.Username and the reference card allow-list.
func NewBook(l *ledger.Ledger, usernames, cards validate.Func) *Book {
	if usernames == nil {
		usernames = validate.Username
	}

	if cards == nil {
		cards = validate.AllowList(validate.ReferenceCards...)
	}

	return &Book{
		ledger:    l,
		usernames: usernames,
		cards:     cards,
		now:       time.Now,
	}
}

// Open creates an account with a zero balance, no card and no friends.
func (b *Book) Open(username string) (*Account, error) {
	if !b.usernames(username) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}

	return &Account{
		id:       uuid.New(),
		username: username,
		book:     b,
		friends:  make(map[uuid.UUID]struct{}),
	}, nil
}
