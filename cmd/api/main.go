package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fastprodman/minivenmo/internal/api"
	"github.com/fastprodman/minivenmo/internal/infra/logging"
	"github.com/fastprodman/minivenmo/internal/services/venmo"
	"github.com/fastprodman/minivenmo/pkg/envconf"
	"github.com/fastprodman/minivenmo/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	// .env is optional; real environment variables win.
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := new(apiConfig)

	err = envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = logging.Setup(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Domain ---
	venmoCfg, err := cfg.venmoConfig()
	if err != nil {
		return fmt.Errorf("init venmo config: %w", err)
	}

	svc := venmo.New(venmoCfg, cfg.processor())

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, svc)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "card_policy", cfg.Cards.Policy)

	select {
	case <-ctx.Done():
		slog.Info("API stopping", "events", svc.Ledger().Len())
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
