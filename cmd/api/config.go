package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/minivenmo/internal/config"
	"github.com/fastprodman/minivenmo/internal/processor"
	"github.com/fastprodman/minivenmo/internal/services/payments"
	"github.com/fastprodman/minivenmo/internal/services/venmo"
	"github.com/fastprodman/minivenmo/internal/validate"
)

type apiConfig struct {
	Port            uint16        `env:"API_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	LogFormat       string        `env:"APP_LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"10s"`

	Payments  config.PaymentsConfig
	Cards     config.CardsConfig
	Processor config.ProcessorConfig
}

func (c *apiConfig) venmoConfig() (venmo.Config, error) {
	cards, err := validate.CardPolicy(c.Cards.Policy, c.Cards.AllowList)
	if err != nil {
		return venmo.Config{}, fmt.Errorf("card policy: %w", err)
	}

	return venmo.Config{
		Payments: payments.Config{ChargeTimeout: c.Payments.ChargeTimeout},
		Cards:    cards,
	}, nil
}

func (c *apiConfig) processor() processor.Processor {
	return processor.WithLogging(processor.Simulated{MaxCharge: c.Processor.MaxCharge})
}
