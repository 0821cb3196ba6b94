package accounts

import (
	"errors"
	"sync"
	"testing"
)

func TestWithTx_CommitAppliesAndRunsHooks(t *testing.T) {
	t.Parallel()

	b, _ := newBook(t)
	payer := mustOpen(t, b, "payer")
	payee := mustOpen(t, b, "payee")

	if err := payer.Credit(1_000); err != nil {
		t.Fatalf("seed: %v", err)
	}

	hookRan := false

	err := WithTx(payer, payee, func(tx *Tx) error {
		if err := tx.Debit(payer, 400); err != nil {
			return err
		}

		if err := tx.Credit(payee, 400); err != nil {
			return err
		}

		bal, err := tx.Balance(payer)
		if err != nil {
			return err
		}

		if bal != 600 {
			t.Errorf("staged balance: want 600, got %d", bal)
		}

		if payer.balance != 1_000 {
			t.Errorf("balance applied before commit: %d", payer.balance)
		}

		tx.AfterCommit(func() {
			hookRan = true

			if payer.balance != 600 || payee.balance != 400 {
				t.Errorf("hook ran before commit applied: %d/%d", payer.balance, payee.balance)
			}
		})

		return nil
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	if !hookRan {
		t.Fatalf("after-commit hook did not run")
	}

	if payer.Balance() != 600 || payee.Balance() != 400 {
		t.Fatalf("balances: payer=%d payee=%d", payer.Balance(), payee.Balance())
	}
}

func TestWithTx_ErrorDiscardsChanges(t *testing.T) {
	t.Parallel()

	b, _ := newBook(t)
	payer := mustOpen(t, b, "payer")
	payee := mustOpen(t, b, "payee")

	if err := payer.Credit(500); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("boom")
	hookRan := false

	err := WithTx(payer, payee, func(tx *Tx) error {
		_ = tx.Credit(payee, 500)
		_ = tx.Debit(payer, 500)
		tx.AfterCommit(func() { hookRan = true })

		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}

	if hookRan {
		t.Fatalf("hook must not run on rollback")
	}

	if payer.Balance() != 500 || payee.Balance() != 0 {
		t.Fatalf("balances changed on rollback: payer=%d payee=%d", payer.Balance(), payee.Balance())
	}
}

func TestTx_Guards(t *testing.T) {
	t.Parallel()

	b, _ := newBook(t)
	x := mustOpen(t, b, "xxxx")
	y := mustOpen(t, b, "yyyy")
	z := mustOpen(t, b, "zzzz")

	err := WithTx(x, y, func(tx *Tx) error {
		if err := tx.Debit(x, 1); !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("debit empty: want ErrInsufficientFunds, got %v", err)
		}

		if err := tx.Credit(x, -1); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("negative credit: want ErrInvalidAmount, got %v", err)
		}

		if _, err := tx.Balance(z); !errors.Is(err, ErrNotInTx) {
			t.Errorf("outsider: want ErrNotInTx, got %v", err)
		}

		if _, ok, err := tx.Card(y); ok || err != nil {
			t.Errorf("card: ok=%v err=%v", ok, err)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}

	other, _ := newBook(t)
	foreign := mustOpen(t, other, "foreign")

	err = WithTx(x, foreign, func(*Tx) error { return nil })
	if !errors.Is(err, ErrForeignAccount) {
		t.Fatalf("want ErrForeignAccount, got %v", err)
	}
}

func TestWithTx_ConcurrentTransfersConserveTotal(t *testing.T) {
	t.Parallel()

	b, _ := newBook(t)
	x := mustOpen(t, b, "xxxx")
	y := mustOpen(t, b, "yyyy")

	if err := x.Credit(10_000); err != nil {
		t.Fatalf("seed x: %v", err)
	}

	if err := y.Credit(10_000); err != nil {
		t.Fatalf("seed y: %v", err)
	}

	transfer := func(from, to *Account) {
		_ = WithTx(from, to, func(tx *Tx) error {
			if err := tx.Debit(from, 300); err != nil {
				return err
			}

			return tx.Credit(to, 300)
		})
	}

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				transfer(x, y)
			} else {
				transfer(y, x)
			}
		}()
	}
	wg.Wait()

	if total := x.Balance() + y.Balance(); total != 20_000 {
		t.Fatalf("total not conserved: %d", total)
	}

	if x.Balance() < 0 || y.Balance() < 0 {
		t.Fatalf("negative balance: x=%d y=%d", x.Balance(), y.Balance())
	}
}
