package accounts

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/money"
)

// Tx stages balance changes on a locked pair of accounts. Nothing is applied
// until the WithTx callback returns nil.
type Tx struct {
	accounts [2]*Account
	deltas   map[uuid.UUID]money.Amount
	hooks    []func()
}

// WithTx runs fn with a and b locked.
// It commits the staged changes if fn returns nil, otherwise it discards them.
// After-commit hooks run before the locks are released.
func WithTx(a, b *Account, fn func(*Tx) error) error {
	if a.book != b.book {
		return ErrForeignAccount
	}

	unlock := lockPair(a, b)
	defer unlock()

	tx := &Tx{
		accounts: [2]*Account{a, b},
		deltas:   make(map[uuid.UUID]money.Amount, 2),
	}

	err := fn(tx)
	if err != nil {
		return err
	}

	tx.commit()

	return nil
}

// Balance returns acc's balance including staged changes.
func (tx *Tx) Balance(acc *Account) (money.Amount, error) {
	err := tx.member(acc)
	if err != nil {
		return 0, err
	}

	bal, err := acc.balance.Add(tx.deltas[acc.id])
	if err != nil {
		return 0, fmt.Errorf("%w: staged balance", ErrBalanceOverflow)
	}

	return bal, nil
}

// Card returns acc's linked card token, if any.
func (tx *Tx) Card(acc *Account) (string, bool, error) {
	err := tx.member(acc)
	if err != nil {
		return "", false, err
	}

	return acc.card, acc.card != "", nil
}

// Debit stages a withdrawal. The resulting balance must stay non-negative.
func (tx *Tx) Debit(acc *Account, amount money.Amount) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: debit %s", ErrInvalidAmount, amount)
	}

	bal, err := tx.Balance(acc)
	if err != nil {
		return err
	}

	if bal < amount {
		return fmt.Errorf("%w: balance %s, debit %s", ErrInsufficientFunds, bal, amount)
	}

	tx.deltas[acc.id] -= amount

	return nil
}

// Credit stages a deposit.
func (tx *Tx) Credit(acc *Account, amount money.Amount) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: credit %s", ErrInvalidAmount, amount)
	}

	bal, err := tx.Balance(acc)
	if err != nil {
		return err
	}

	_, err = bal.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: credit %s", ErrBalanceOverflow, amount)
	}

	tx.deltas[acc.id] += amount

	return nil
}

// AfterCommit registers fn to run once the changes are applied.
func (tx *Tx) AfterCommit(fn func()) {
	tx.hooks = append(tx.hooks, fn)
}

func (tx *Tx) member(acc *Account) error {
	if acc != tx.accounts[0] && acc != tx.accounts[1] {
		return ErrNotInTx
	}

	return nil
}

func (tx *Tx) commit() {
	for _, acc := range tx.accounts {
		acc.balance += tx.deltas[acc.id]
		tx.deltas[acc.id] = 0
	}

	for _, fn := range tx.hooks {
		fn()
	}
}
