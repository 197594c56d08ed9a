package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.faceguard.dev/faceguard/app/config"
	actx "go.faceguard.dev/faceguard/app/context"
	aerrors "go.faceguard.dev/faceguard/app/errors"
	"go.faceguard.dev/faceguard/cli"
	"go.faceguard.dev/faceguard/db"
	"go.faceguard.dev/faceguard/db/queries"
	"go.faceguard.dev/faceguard/facedev/sim"
	"go.faceguard.dev/faceguard/gpio/cdev"
	gpiomock "go.faceguard.dev/faceguard/gpio/mock"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
	"go.faceguard.dev/faceguard/led"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	args []string
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application.
func New(name, configFilePath, dataDir string, opts ...Option) (*App, error) {
	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		Version: actx.GetVersion(),
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}
	if app.ctx.TimeSource == nil {
		app.ctx.TimeSource = systemTime{}
	}

	var err error
	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(configFilePath, dataDir, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if err := app.loadConfig(); err != nil {
		return err
	}

	if err := app.initDB(); err != nil {
		return err
	}

	app.setHardwareDefaults()

	if err := app.cli.Execute(app.ctx); err != nil {
		return err
	}

	return nil
}

func (app *App) loadConfig() error {
	cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
	if err := cfg.Load(); err != nil {
		return err
	}
	cfg.SetDefaults()
	app.ctx.Config = cfg
	app.cli.ApplyConfig(cfg)

	return nil
}

func (app *App) initDB() error {
	if app.ctx.DB == nil {
		if err := app.ctx.FS.MkdirAll(app.cli.DataDir, 0o700); err != nil {
			return aerrors.NewWithCause("failed creating the data directory", err,
				"path", app.cli.DataDir)
		}
		dbPath := filepath.Join(app.cli.DataDir, fmt.Sprintf("%s.db", app.name))
		d, err := db.Open(app.ctx.Ctx, dbPath, app.ctx.TimeSource.Now)
		if err != nil {
			return err
		}
		app.ctx.DB = d
	}

	version, err := queries.Version(app.ctx.DB.NewContext(), app.ctx.DB)
	if err != nil {
		// The schema doesn't exist before 'faceguard init' runs.
		app.ctx.Logger.Debug("failed reading the app version from the database",
			"error", err)
		return nil
	}
	if version.Valid {
		app.ctx.VersionInit = version.V
	}

	return nil
}

// setHardwareDefaults wires the hardware constructors, unless they were set
// via options. In simulation mode all hardware is replaced with in-memory
// implementations.
func (app *App) setHardwareDefaults() {
	if app.cli.Simulate {
		if app.ctx.GPIOOpen == nil {
			app.ctx.GPIOOpen = func(_ int) (gtypes.Chip, error) {
				return gpiomock.New(), nil
			}
		}
		if app.ctx.DeviceOpen == nil {
			app.ctx.DeviceOpen = sim.Open
		}
		if app.ctx.LEDStrip == nil {
			app.ctx.LEDStrip = led.NewMemoryStrip(app.ctx.Config.LED.Pixels.V)
		}
		return
	}

	if app.ctx.GPIOOpen == nil {
		app.ctx.GPIOOpen = cdev.Open
	}
	if app.ctx.DeviceOpen == nil {
		app.ctx.DeviceOpen = sim.Open
	}
}

type systemTime struct{}

func (systemTime) Now() time.Time {
	return time.Now()
}
