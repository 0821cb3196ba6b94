// Package money holds currency amounts as integer minor units (cents).
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount.
const Scale = 2

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOverflow      = errors.New("amount overflow")
)

const (
	// maxInputLen caps the text Parse accepts.
	maxInputLen = 64
	// maxIntDigits is the number of whole-unit digits an int64 of cents can hold.
	maxIntDigits = 17
)

var (
	minorPerUnit = decimal.New(1, Scale)
	maxMinor     = decimal.NewFromInt(math.MaxInt64)
	minMinor     = decimal.NewFromInt(math.MinInt64)
)

// Amount is a currency amount in cents.
type Amount int64

// Zero is the zero amount.
const Zero Amount = 0

func FromCents(c int64) Amount { return Amount(c) }

// Parse converts a decimal string ("5", "5.5", "5.50") into an Amount.
// More than two significant fractional digits is an error.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	if len(s) > maxInputLen {
		return 0, fmt.Errorf("%w: too long", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: not a number", ErrInvalidAmount)
	}

	return FromDecimal(d)
}

// FromDecimal converts d into cents, rejecting sub-cent precision.
//
// The magnitude is checked from the digit count and exponent before any
// arithmetic, so inputs like 1e1000000 are rejected without being expanded.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if d.IsZero() {
		return 0, nil
	}

	exp := int64(d.Exponent())
	if exp < -maxInputLen {
		return 0, fmt.Errorf("%w: supports up to %d decimals", ErrInvalidAmount, Scale)
	}

	if int64(d.NumDigits())+exp > maxIntDigits {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}

	minor := d.Mul(minorPerUnit)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: supports up to %d decimals", ErrInvalidAmount, Scale)
	}

	if minor.GreaterThan(maxMinor) || minor.LessThan(minMinor) {
		return 0, fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}

	return Amount(minor.IntPart()), nil
}

func (a Amount) Cents() int64 { return int64(a) }

func (a Amount) Decimal() decimal.Decimal { return decimal.New(int64(a), -Scale) }

// String renders the amount with exactly two decimals, e.g. "15.00".
func (a Amount) String() string { return a.Decimal().StringFixed(Scale) }

func (a Amount) IsPositive() bool { return a > 0 }

func (a Amount) IsNegative() bool { return a < 0 }

// Add returns a+b or ErrOverflow.
func (a Amount) Add(b Amount) (Amount, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, ErrOverflow
	}

	return a + b, nil
}

// Sub returns a-b or ErrOverflow.
func (a Amount) Sub(b Amount) (Amount, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, ErrOverflow
	}

	return a - b, nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so amounts can be read
// from env vars and JSON strings.
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}

	*a = v

	return nil
}

// UnmarshalJSON accepts both "5.00" and 5.00.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}

	s = strings.Trim(s, `"`)

	return a.UnmarshalText([]byte(s))
}
