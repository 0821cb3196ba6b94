// Package processor models the external card processor as an injected
// capability that either authorizes a charge or fails.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fastprodman/minivenmo/internal/money"
)

var ErrDeclined = errors.New("charge declined")

// Processor charges a card token. A nil error means the charge was authorized.
type Processor interface {
	Charge(ctx context.Context, token string, amount money.Amount) error
}

// Func adapts a plain function to Processor.
type Func func(ctx context.Context, token string, amount money.Amount) error

func (f Func) Charge(ctx context.Context, token string, amount money.Amount) error {
	return f(ctx, token, amount)
}

// Simulated authorizes every charge up to MaxCharge (zero means no limit).
// It stands in for a real processor in local runs.
type Simulated struct {
	MaxCharge money.Amount
}

func (s Simulated) Charge(ctx context.Context, _ string, amount money.Amount) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("charge: %w", err)
	}

	if s.MaxCharge > 0 && amount > s.MaxCharge {
		return fmt.Errorf("%w: %s exceeds limit %s", ErrDeclined, amount, s.MaxCharge)
	}

	return nil
}

type logging struct {
	next Processor
}

// WithLogging logs every charge attempt and its outcome. Tokens are masked.
func WithLogging(next Processor) Processor {
	return &logging{next: next}
}

func (l *logging) Charge(ctx context.Context, token string, amount money.Amount) error {
	err := l.next.Charge(ctx, token, amount)
	if err != nil {
		slog.WarnContext(ctx, "card charge failed", "card", Mask(token), "amount", amount.String(), "error", err)
		return err
	}

	slog.InfoContext(ctx, "card charged", "card", Mask(token), "amount", amount.String())

	return nil
}

// Mask keeps only the last four characters of a token.
func Mask(token string) string {
	if len(token) <= 4 {
		return "****"
	}

	return "****" + token[len(token)-4:]
}
