package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/facedev"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
	"go.faceguard.dev/faceguard/guard"
)

// Auth runs the interactive authentication tool. An authentication attempt is
// triggered by pressing space, or by the physical push-button wired to the
// appliance.
type Auth struct {
	NoButton bool `help:"Disable the GPIO push-button trigger."`
}

// Run the auth command.
func (c *Auth) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit == "" {
		return aerrors.NewWith("faceguard is not initialized",
			"hint", "Did you forget to run 'faceguard init'?")
	}

	chip, err := openChip(appCtx)
	if err != nil {
		return err
	}
	defer chip.Close()

	device, err := openDevice(appCtx)
	if err != nil {
		return err
	}
	defer device.Close()
	appCtx.Device = device

	panel, err := newPanel(appCtx)
	if err != nil {
		return err
	}
	readerLEDs, err := newReaderLEDs(appCtx, chip)
	if err != nil {
		return err
	}
	feedback := guard.NewFeedback(panel, readerLEDs, appCtx.Config.LED.Flash.V)
	defer feedback.Close()

	g, err := guard.New(appCtx.DB, nil, device,
		guard.WithTimeNow(appCtx.TimeSource.Now),
		guard.WithLogger(appCtx.Logger),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(appCtx.Ctx)
	defer cancel()

	triggers := make(chan struct{}, 1)
	quit := make(chan struct{})

	restore, err := c.watchKeyboard(appCtx, triggers, quit)
	if err != nil {
		return err
	}
	if restore != nil {
		defer restore()
	}

	if !c.NoButton {
		watcher, werr := c.watchButton(appCtx, chip, triggers)
		if werr != nil {
			return werr
		}
		defer watcher.Close()
	}

	fmt.Fprintln(appCtx.Stdout, "Press space to authenticate, 'i' for info, 'q' to quit.")

	for {
		select {
		case <-triggers:
			c.authenticate(ctx, appCtx, g, feedback)
			// A trigger pressed mid-attempt is rejected, not queued.
			select {
			case <-triggers:
			default:
			}
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Auth) authenticate(
	ctx context.Context, appCtx *actx.Context, g *guard.Guard, feedback *guard.Feedback,
) {
	res, err := g.Identify(ctx, func(hint facedev.Hint) {
		fmt.Fprintf(appCtx.Stdout, "  %s\r\n", hint.Message())
	})
	if err != nil {
		fmt.Fprintf(appCtx.Stdout, "Authentication error: %s\r\n", err)
		return
	}

	if res.Granted {
		fmt.Fprintf(appCtx.Stdout, "Authenticated: %s (score %d)\r\n",
			res.User.Name, res.Score.Int64)
		if ferr := feedback.Grant(); ferr != nil {
			appCtx.Logger.Warn("failed signalling LEDs", "error", ferr)
		}
	} else {
		fmt.Fprintf(appCtx.Stdout, "Not authenticated: %s\r\n", res.Reason)
		if ferr := feedback.Deny(); ferr != nil {
			appCtx.Logger.Warn("failed signalling LEDs", "error", ferr)
		}
	}
}

// watchKeyboard reads single key presses from stdin. If stdin is a terminal
// it is put in raw mode, and the returned function restores it. Under systemd
// stdin is not a terminal, and the keyboard is disabled.
func (c *Auth) watchKeyboard(
	appCtx *actx.Context, triggers chan<- struct{}, quit chan<- struct{},
) (func(), error) {
	var restore func()
	if f, ok := appCtx.Stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		oldState, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return nil, aerrors.NewWithCause("failed setting terminal raw mode", err)
		}
		restore = func() {
			_ = term.Restore(int(f.Fd()), oldState)
		}
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := appCtx.Stdin.Read(buf)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					appCtx.Logger.Debug("failed reading stdin", "error", err)
				}
				return
			}
			if n == 0 {
				continue
			}
			switch buf[0] {
			case ' ':
				select {
				case triggers <- struct{}{}:
				default:
				}
			case 'i':
				c.printInfo(appCtx)
			case 'q', 0x03: // Ctrl-C in raw mode
				close(quit)
				return
			}
		}
	}()

	return restore, nil
}

// watchButton triggers authentication on the falling edge of the push-button
// line, with debouncing.
func (c *Auth) watchButton(
	appCtx *actx.Context, chip gtypes.Chip, triggers chan<- struct{},
) (io.Closer, error) {
	var (
		debounce = appCtx.Config.Button.Debounce.V
		lastEdge time.Duration = -debounce
	)
	watcher, err := chip.WatchFalling(func(event gtypes.Event) {
		if event.Timestamp-lastEdge < debounce {
			return
		}
		lastEdge = event.Timestamp
		select {
		case triggers <- struct{}{}:
		default:
		}
	}, appCtx.Config.Button.Pin.V)
	if err != nil {
		return nil, aerrors.NewWithCause("failed watching the push-button", err,
			"pin", appCtx.Config.Button.Pin.V)
	}

	return watcher, nil
}

func (c *Auth) printInfo(appCtx *actx.Context) {
	fmt.Fprintf(appCtx.Stdout, "Device: %s\r\n", appCtx.Device.DeviceType())

	users, err := appCtx.DB.QueryContext(appCtx.DB.NewContext(),
		`SELECT COUNT(*), COUNT(faceprints) FROM users`)
	if err != nil {
		fmt.Fprintf(appCtx.Stdout, "Failed counting users: %s\r\n", err)
		return
	}
	defer users.Close()

	var total, enrolled int
	if users.Next() {
		if err = users.Scan(&total, &enrolled); err != nil {
			fmt.Fprintf(appCtx.Stdout, "Failed counting users: %s\r\n", err)
			return
		}
	}
	_ = users.Err()
	fmt.Fprintf(appCtx.Stdout, "Users: %d (%d enrolled)\r\n", total, enrolled)

	deviceIDs, err := appCtx.Device.EnrolledIDs(appCtx.DB.NewContext())
	if err != nil {
		fmt.Fprintf(appCtx.Stdout, "Failed querying device enrollments: %s\r\n", err)
		return
	}
	fmt.Fprintf(appCtx.Stdout, "On-device enrollments: %d\r\n", len(deviceIDs))
}
