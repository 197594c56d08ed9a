package context

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.faceguard.dev/faceguard/app/config"
	"go.faceguard.dev/faceguard/db"
	"go.faceguard.dev/faceguard/facedev"
	gtypes "go.faceguard.dev/faceguard/gpio/types"
	"go.faceguard.dev/faceguard/led"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx        context.Context // global context
	FS         vfs.FileSystem  // filesystem
	Env        Environment     // process environment
	Logger     *slog.Logger    // global logger
	TimeSource TimeSource
	Config     *config.Config
	DB         *db.DB
	Device     facedev.Authenticator // may be nil outside device modes

	// Hardware constructors, swapped for in-memory implementations in tests
	// and simulation mode.
	GPIOOpen   gtypes.Opener
	DeviceOpen facedev.Opener
	LEDStrip   led.Strip

	// VersionInit is the app version the database was initialized with. It is
	// empty if the database hasn't been initialized yet.
	VersionInit string

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version *VersionInfo
}

// TimeSource is the source of time information.
type TimeSource interface {
	Now() time.Time
}
