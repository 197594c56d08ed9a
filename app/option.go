package app

import (
	"context"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/mandelsoft/vfs/pkg/vfs"

	actx "go.faceguard.dev/faceguard/app/context"
	"go.faceguard.dev/faceguard/db"
	"go.faceguard.dev/faceguard/facedev"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
	"go.faceguard.dev/faceguard/led"
)

// Option is a function that allows configuring the application.
type Option func(*App)

// WithContext sets the main context.
func WithContext(ctx context.Context) Option {
	return func(app *App) {
		app.ctx.Ctx = ctx
	}
}

// WithDB sets the database used by the application.
func WithDB(d *db.DB) Option {
	return func(app *App) {
		app.ctx.DB = d
	}
}

// WithDeviceOpener sets the function used to open the biometric camera.
func WithDeviceOpener(open facedev.Opener) Option {
	return func(app *App) {
		app.ctx.DeviceOpen = open
	}
}

// WithEnv sets the process environment used by the application.
func WithEnv(env actx.Environment) Option {
	return func(app *App) {
		app.ctx.Env = env
	}
}

// WithFDs sets the file descriptors used by the application.
func WithFDs(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *App) {
		app.ctx.Stdin = stdin
		app.ctx.Stdout = stdout
		app.ctx.Stderr = stderr
	}
}

// WithFS sets the filesystem used by the application.
func WithFS(fs vfs.FileSystem) Option {
	return func(app *App) {
		app.ctx.FS = fs
	}
}

// WithGPIOOpener sets the function used to open GPIO chips.
func WithGPIOOpener(open gtypes.Opener) Option {
	return func(app *App) {
		app.ctx.GPIOOpen = open
	}
}

// WithLEDStrip sets the LED panel strip used by the application.
func WithLEDStrip(strip led.Strip) Option {
	return func(app *App) {
		app.ctx.LEDStrip = strip
	}
}

// WithLogger initializes the logger used by the application.
func WithLogger(_, isStderrTTY bool) Option {
	return func(app *App) {
		lvl := &slog.LevelVar{}
		lvl.Set(slog.LevelInfo)
		logger := slog.New(
			tint.NewHandler(app.ctx.Stderr, &tint.Options{
				Level:      lvl,
				NoColor:    !isStderrTTY,
				TimeFormat: "2006-01-02 15:04:05.000",
			}),
		)
		app.logLevel = lvl
		app.ctx.Logger = logger
		slog.SetDefault(logger)
	}
}

// WithTimeSource sets the source used to retrieve the current system time.
func WithTimeSource(ts actx.TimeSource) Option {
	return func(app *App) {
		app.ctx.TimeSource = ts
	}
}
