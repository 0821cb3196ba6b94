package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/minivenmo/internal/accounts"
	"github.com/fastprodman/minivenmo/internal/ledger"
	"github.com/fastprodman/minivenmo/internal/money"
	"github.com/fastprodman/minivenmo/internal/processor"
)

// DefaultChargeTimeout bounds a card charge when Config.ChargeTimeout is zero.
const DefaultChargeTimeout = 5 * time.Second

type Config struct {
	ChargeTimeout time.Duration
}

// Source selects how a payment is funded. SourceAuto prefers the balance
// and falls back to the card.
type Source string

const (
	SourceAuto    Source = ""
	SourceBalance Source = Source(ledger.FundingBalance)
	SourceCard    Source = Source(ledger.FundingCard)
)

// ParseSource accepts "", "auto", "balance" and "card".
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourceAuto, "auto":
		return SourceAuto, nil
	case SourceBalance, SourceCard:
		return Source(s), nil
	default:
		return "", fmt.Errorf("unknown funding source %q", s)
	}
}

type Router struct {
	ledger        *ledger.Ledger
	proc          processor.Processor
	chargeTimeout time.Duration
	now           func() time.Time
}

func New(l *ledger.Ledger, proc processor.Processor, cfg Config) *Router {
	timeout := cfg.ChargeTimeout
	if timeout <= 0 {
		timeout = DefaultChargeTimeout
	}

	return &Router{
		ledger:        l,
		proc:          proc,
		chargeTimeout: timeout,
		now:           time.Now,
	}
}

// Pay moves amount from payer to payee, funded from the payer's balance when
// it covers the amount and from the payer's card otherwise.
func (r *Router) Pay(ctx context.Context, payer, payee *accounts.Account, amount money.Amount, note string) (ledger.Payment, error) {
	return r.PayFrom(ctx, SourceAuto, payer, payee, amount, note)
}

// PayWithBalance funds the payment from the balance only.
func (r *Router) PayWithBalance(ctx context.Context, payer, payee *accounts.Account, amount money.Amount, note string) (ledger.Payment, error) {
	return r.PayFrom(ctx, SourceBalance, payer, payee, amount, note)
}

// PayWithCard funds the payment from the linked card only.
func (r *Router) PayWithCard(ctx context.Context, payer, payee *accounts.Account, amount money.Amount, note string) (ledger.Payment, error) {
	return r.PayFrom(ctx, SourceCard, payer, payee, amount, note)
}

// PayFrom runs the full flow with both accounts locked:
//
// 1) Reject self payments and non-positive amounts.
// 2) Pick the funding source.
// 3) Stage the payee credit, then debit the balance or charge the card.
// 4) Commit and append the Payment to the ledger.
//
// On any error nothing is changed and nothing is recorded.
//
// The card charge runs with both account locks held, so other operations on
// either account (including Balance) wait for it. Config.ChargeTimeout bounds
// that wait.
func (r *Router) PayFrom(ctx context.Context, src Source, payer, payee *accounts.Account, amount money.Amount, note string) (ledger.Payment, error) {
	if payer.ID() == payee.ID() {
		return ledger.Payment{}, ErrSelfPayment
	}

	if !amount.IsPositive() {
		return ledger.Payment{}, fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}

	var payment ledger.Payment

	err := accounts.WithTx(payer, payee, func(tx *accounts.Tx) error {
		funding, err := r.selectFunding(tx, src, payer, amount)
		if err != nil {
			return err
		}

		// credit first: an overflow must surface before the card is charged
		err = tx.Credit(payee, amount)
		if err != nil {
			return fmt.Errorf("credit payee: %w", err)
		}

		switch funding {
		case ledger.FundingBalance:
			err = tx.Debit(payer, amount)
			if errors.Is(err, accounts.ErrInsufficientFunds) {
				return fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
			}

			if err != nil {
				return fmt.Errorf("debit payer: %w", err)
			}

		case ledger.FundingCard:
			err = r.chargeCard(ctx, tx, payer, amount)
			if err != nil {
				return err
			}

		default:
			return fmt.Errorf("invalid funding source: %s", funding)
		}

		payment = ledger.Payment{
			ID:        uuid.New(),
			PayerID:   payer.ID(),
			PayeeID:   payee.ID(),
			Amount:    amount,
			Note:      note,
			Funding:   funding,
			CreatedAt: r.now(),
		}

		tx.AfterCommit(func() { r.ledger.Append(payment) })

		return nil
	})
	if err != nil {
		return ledger.Payment{}, fmt.Errorf("pay: %w", err)
	}

	slog.InfoContext(ctx, "payment routed",
		"payment_id", payment.ID,
		"payer_id", payment.PayerID,
		"payee_id", payment.PayeeID,
		"amount", amount.String(),
		"funding", payment.Funding,
	)

	return payment, nil
}

func (r *Router) selectFunding(tx *accounts.Tx, src Source, payer *accounts.Account, amount money.Amount) (ledger.FundingSource, error) {
	switch src {
	case SourceBalance:
		return ledger.FundingBalance, nil
	case SourceCard:
		return ledger.FundingCard, nil
	case SourceAuto:
	default:
		return "", fmt.Errorf("unknown funding source %q", src)
	}

	balance, err := tx.Balance(payer)
	if err != nil {
		return "", fmt.Errorf("read payer balance: %w", err)
	}

	funding := ledger.FundingCard
	if balance >= amount {
		funding = ledger.FundingBalance
	}

	slog.Debug("funding selected", "payer_id", payer.ID(), "balance", balance.String(), "amount", amount.String(), "funding", funding)

	return funding, nil
}

func (r *Router) chargeCard(ctx context.Context, tx *accounts.Tx, payer *accounts.Account, amount money.Amount) error {
	token, ok, err := tx.Card(payer)
	if err != nil {
		return fmt.Errorf("read payer card: %w", err)
	}

	if !ok {
		return ErrNoCardLinked
	}

	chargeCtx, cancel := context.WithTimeout(ctx, r.chargeTimeout)
	defer cancel()

	err = r.proc.Charge(chargeCtx, token, amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCardDeclined, err)
	}

	return nil
}
