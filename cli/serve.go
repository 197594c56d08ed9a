package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/guard"
	"go.faceguard.dev/faceguard/web/server"
)

// Serve starts the guard service: the card monitor loop and the HTTP status
// API.
type Serve struct {
	Address string `help:"[host]:port for the status API to listen on."`
	NoAPI   bool   `help:"Disable the HTTP status API."`
}

// Run the serve command.
func (c *Serve) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit == "" {
		return aerrors.NewWith("faceguard is not initialized",
			"hint", "Did you forget to run 'faceguard init'?")
	}

	g, err := c.setupGuard(appCtx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := g.Close(); cerr != nil {
			slog.Warn("failed closing hardware", "error", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(appCtx.Ctx)
	defer cancel()

	guardDone := make(chan error, 1)
	go func() {
		guardDone <- g.Run(ctx)
	}()

	srvDone := make(chan error, 1)
	var srv *server.Server
	if !c.NoAPI {
		srv = server.New(appCtx, c.Address)
		go func() {
			srvErr := srv.ListenAndServe()
			slog.Debug("web server shutdown")
			srvDone <- srvErr
		}()
	}

	// Gracefully shutdown if a process signal is received, or the main
	// context is done.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sigCh:
		slog.Debug("process received signal", "signal", s)
	case <-appCtx.Ctx.Done():
		slog.Debug("app context is done")
	case err = <-guardDone:
		if err != nil {
			return fmt.Errorf("guard error: %w", err)
		}
		return nil
	case srvErr := <-srvDone:
		if srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", srvErr)
		}
		return nil
	}

	cancel()
	if err = <-guardDone; err != nil {
		return fmt.Errorf("guard error: %w", err)
	}

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("failed shutting down web server: %w", err)
		}
	}

	return nil
}

func (c *Serve) setupGuard(appCtx *actx.Context) (*guard.Guard, error) {
	chip, err := openChip(appCtx)
	if err != nil {
		return nil, err
	}

	reader, err := newReader(appCtx, chip)
	if err != nil {
		return nil, err
	}
	writer, err := newWriter(appCtx, chip)
	if err != nil {
		return nil, err
	}
	panel, err := newPanel(appCtx)
	if err != nil {
		return nil, err
	}
	readerLEDs, err := newReaderLEDs(appCtx, chip)
	if err != nil {
		return nil, err
	}
	device, err := openDevice(appCtx)
	if err != nil {
		return nil, err
	}
	appCtx.Device = device

	return guard.New(appCtx.DB, reader, device,
		guard.WithWriter(writer),
		guard.WithFeedback(guard.NewFeedback(panel, readerLEDs, appCtx.Config.LED.Flash.V)),
		guard.WithCooldown(appCtx.Config.Reader.Cooldown.V),
		guard.WithParity(appCtx.Config.Transmitter.Parity.V),
		guard.WithTimeNow(appCtx.TimeSource.Now),
		guard.WithLogger(appCtx.Logger),
	)
}
