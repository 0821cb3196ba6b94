package config

import (
	"time"

	"github.com/fastprodman/minivenmo/internal/money"
)

type PaymentsConfig struct {
	ChargeTimeout time.Duration `env:"PAYMENTS_CHARGE_TIMEOUT" default:"5s"`
}

type CardsConfig struct {
	Policy    string   `env:"CARD_POLICY" default:"allowlist"`
	AllowList []string `env:"CARD_ALLOWLIST" default:"4111111111111111,4242424242424242"`
}

// ProcessorConfig drives the simulated card processor.
type ProcessorConfig struct {
	MaxCharge money.Amount `env:"PROCESSOR_MAX_CHARGE" default:"0"`
}
