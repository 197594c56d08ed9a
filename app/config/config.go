package config

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Config represents the application configuration, backed by a filesystem for
// persistence.
type Config struct {
	Device      Device
	Reader      Reader
	Transmitter Transmitter
	LED         LED
	Button      Button
	Server      Server
	Service     Service

	fs   vfs.FileSystem
	path string
}

// NewConfig creates a new Config instance with the specified filesystem
// and configuration file path.
func NewConfig(fs vfs.FileSystem, path string) *Config {
	return &Config{fs: fs, path: path}
}

// Load reads and parses the configuration file from the filesystem.
// If the file doesn't exist, it initializes with an empty configuration.
func (c *Config) Load() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}

	configJSON, err := vfs.ReadFile(c.fs, c.path)
	if err != nil && !vfs.IsErrNotExist(err) {
		return fmt.Errorf("failed reading configuration file: %w", err)
	}

	// Ensure that unmarshalling JSON doesn't fail if the file doesn't exist or is empty.
	if len(configJSON) == 0 {
		configJSON = []byte("{}")
	}

	if err = json.Unmarshal(configJSON, c); err != nil {
		return fmt.Errorf("failed parsing configuration file: %w", err)
	}

	return nil
}

// Path returns the filesystem path where the configuration is stored.
func (c *Config) Path() string {
	return c.path
}

// Save writes the current configuration to the filesystem as JSON.
func (c *Config) Save() error {
	if err := c.fs.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed creating configuration directory: %w", err)
	}
	configJSON, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed serializing configuration data: %w", err)
	}
	if err = vfs.WriteFile(c.fs, c.path, configJSON, 0o644); err != nil {
		return fmt.Errorf("failed writing configuration file: %w", err)
	}

	return nil
}

// Device defines configuration options for the face authentication camera.
type Device struct {
	// Port is the serial port the camera is connected to. If unset, the port
	// is discovered by enumerating USB serial devices.
	Port sql.Null[string] `json:"port"`
	// Simulate replaces the physical camera and GPIO lines with in-memory
	// implementations. Useful for development away from the appliance.
	Simulate sql.Null[bool] `json:"simulate"`
}

// Reader defines configuration options for the Wiegand card reader.
type Reader struct {
	// Chip is the GPIO chip number the reader data lines are connected to.
	Chip sql.Null[int] `json:"chip"`
	// D0Pin and D1Pin are the GPIO line offsets of the reader's data lines.
	D0Pin sql.Null[int] `json:"d0_pin"`
	D1Pin sql.Null[int] `json:"d1_pin"`
	// Gap is the inter-bit silence after which a frame is considered complete.
	Gap sql.Null[time.Duration] `json:"gap"`
	// Cooldown is the time during which repeated reads of the same card are
	// ignored.
	Cooldown sql.Null[time.Duration] `json:"cooldown"`
}

// Transmitter defines configuration options for the Wiegand transmitter that
// forwards accepted card IDs to the door controller.
type Transmitter struct {
	// D0Pin and D1Pin are the GPIO line offsets of the transmit data lines.
	D0Pin sql.Null[int] `json:"d0_pin"`
	D1Pin sql.Null[int] `json:"d1_pin"`
	// Pulse is the duration of the active pulse per bit.
	Pulse sql.Null[time.Duration] `json:"pulse"`
	// Space is the idle time between bit pulses.
	Space sql.Null[time.Duration] `json:"space"`
	// ActiveHigh selects the pulse polarity. Opto-isolated drivers are
	// typically active-high.
	ActiveHigh sql.Null[bool] `json:"active_high"`
	// Parity enables wrapping transmitted IDs in a parity frame.
	Parity sql.Null[bool] `json:"parity"`
}

// LED defines configuration options for the LED panel and the discrete reader
// LEDs.
type LED struct {
	// Pixels is the number of pixels on the panel.
	Pixels sql.Null[int] `json:"pixels"`
	// Brightness scales the panel output, in the range (0, 1].
	Brightness sql.Null[float64] `json:"brightness"`
	// RedPin and GreenPin are the GPIO line offsets of the reader LEDs.
	RedPin   sql.Null[int] `json:"red_pin"`
	GreenPin sql.Null[int] `json:"green_pin"`
	// Flash is the duration of timed feedback flashes.
	Flash sql.Null[time.Duration] `json:"flash"`
}

// Button defines configuration options for the physical authentication button.
type Button struct {
	// Pin is the GPIO line offset of the button.
	Pin sql.Null[int] `json:"pin"`
	// Debounce is the time after a press during which further edges are
	// ignored.
	Debounce sql.Null[time.Duration] `json:"debounce"`
}

// Server defines configuration options specific to the HTTP status API server.
type Server struct {
	// Address is the network address in [host]:port format the server will listen on.
	Address sql.Null[string] `json:"address"`
}

// Service defines configuration options for the installed systemd service.
type Service struct {
	// User and Group are the identity the service runs as.
	User  sql.Null[string] `json:"user"`
	Group sql.Null[string] `json:"group"`
	// WorkingDirectory is the service's working directory. If unset, the
	// data directory is used.
	WorkingDirectory sql.Null[string] `json:"working_directory"`
	// StartDelay is the sleep before the service starts, to let the camera
	// and GPIO hardware settle after boot.
	StartDelay sql.Null[time.Duration] `json:"start_delay"`
	// RestartDelay is the time systemd waits before restarting the service
	// after a failure.
	RestartDelay sql.Null[time.Duration] `json:"restart_delay"`
	// SupplementaryGroups grant the service access to hardware devices.
	SupplementaryGroups []string `json:"supplementary_groups"`
}

type cfgWrapper struct {
	Device      deviceCfgWrapper  `json:"device"`
	Reader      readerCfgWrapper  `json:"reader"`
	Transmitter txCfgWrapper      `json:"transmitter"`
	LED         ledCfgWrapper     `json:"led"`
	Button      buttonCfgWrapper  `json:"button"`
	Server      serverCfgWrapper  `json:"server"`
	Service     serviceCfgWrapper `json:"service"`
}
type deviceCfgWrapper struct {
	Port     string `json:"port,omitempty"`
	Simulate bool   `json:"simulate,omitempty"`
}
type readerCfgWrapper struct {
	Chip     *int   `json:"chip,omitempty"`
	D0Pin    *int   `json:"d0_pin,omitempty"`
	D1Pin    *int   `json:"d1_pin,omitempty"`
	Gap      string `json:"gap,omitempty"`
	Cooldown string `json:"cooldown,omitempty"`
}
type txCfgWrapper struct {
	D0Pin      *int   `json:"d0_pin,omitempty"`
	D1Pin      *int   `json:"d1_pin,omitempty"`
	Pulse      string `json:"pulse,omitempty"`
	Space      string `json:"space,omitempty"`
	ActiveHigh *bool  `json:"active_high,omitempty"`
	Parity     bool   `json:"parity,omitempty"`
}
type ledCfgWrapper struct {
	Pixels     *int    `json:"pixels,omitempty"`
	Brightness float64 `json:"brightness,omitempty"`
	RedPin     *int    `json:"red_pin,omitempty"`
	GreenPin   *int    `json:"green_pin,omitempty"`
	Flash      string  `json:"flash,omitempty"`
}
type buttonCfgWrapper struct {
	Pin      *int   `json:"pin,omitempty"`
	Debounce string `json:"debounce,omitempty"`
}
type serverCfgWrapper struct {
	Address string `json:"address,omitempty"`
}
type serviceCfgWrapper struct {
	User                string   `json:"user,omitempty"`
	Group               string   `json:"group,omitempty"`
	WorkingDirectory    string   `json:"working_directory,omitempty"`
	StartDelay          string   `json:"start_delay,omitempty"`
	RestartDelay        string   `json:"restart_delay,omitempty"`
	SupplementaryGroups []string `json:"supplementary_groups,omitempty"`
}

// MarshalJSON implements custom JSON marshaling to convert sql.Null values
// to their underlying types, omitting invalid/null fields from the output.
func (c Config) MarshalJSON() ([]byte, error) {
	w := cfgWrapper{}

	if c.Device.Port.Valid {
		w.Device.Port = c.Device.Port.V
	}
	if c.Device.Simulate.Valid {
		w.Device.Simulate = c.Device.Simulate.V
	}

	w.Reader.Chip = nullIntPtr(c.Reader.Chip)
	w.Reader.D0Pin = nullIntPtr(c.Reader.D0Pin)
	w.Reader.D1Pin = nullIntPtr(c.Reader.D1Pin)
	w.Reader.Gap = nullDurStr(c.Reader.Gap)
	w.Reader.Cooldown = nullDurStr(c.Reader.Cooldown)

	w.Transmitter.D0Pin = nullIntPtr(c.Transmitter.D0Pin)
	w.Transmitter.D1Pin = nullIntPtr(c.Transmitter.D1Pin)
	w.Transmitter.Pulse = nullDurStr(c.Transmitter.Pulse)
	w.Transmitter.Space = nullDurStr(c.Transmitter.Space)
	if c.Transmitter.ActiveHigh.Valid {
		w.Transmitter.ActiveHigh = &c.Transmitter.ActiveHigh.V
	}
	if c.Transmitter.Parity.Valid {
		w.Transmitter.Parity = c.Transmitter.Parity.V
	}

	w.LED.Pixels = nullIntPtr(c.LED.Pixels)
	if c.LED.Brightness.Valid {
		w.LED.Brightness = c.LED.Brightness.V
	}
	w.LED.RedPin = nullIntPtr(c.LED.RedPin)
	w.LED.GreenPin = nullIntPtr(c.LED.GreenPin)
	w.LED.Flash = nullDurStr(c.LED.Flash)

	w.Button.Pin = nullIntPtr(c.Button.Pin)
	w.Button.Debounce = nullDurStr(c.Button.Debounce)

	if c.Server.Address.Valid {
		w.Server.Address = c.Server.Address.V
	}

	if c.Service.User.Valid {
		w.Service.User = c.Service.User.V
	}
	if c.Service.Group.Valid {
		w.Service.Group = c.Service.Group.V
	}
	if c.Service.WorkingDirectory.Valid {
		w.Service.WorkingDirectory = c.Service.WorkingDirectory.V
	}
	w.Service.StartDelay = nullDurStr(c.Service.StartDelay)
	w.Service.RestartDelay = nullDurStr(c.Service.RestartDelay)
	w.Service.SupplementaryGroups = c.Service.SupplementaryGroups

	//nolint:wrapcheck // This is fine.
	return json.Marshal(w)
}

// UnmarshalJSON implements custom JSON unmarshaling to convert plain values
// into sql.Null types and parse duration strings into time.Duration values.
func (c *Config) UnmarshalJSON(data []byte) error {
	var w cfgWrapper
	if err := json.Unmarshal(data, &w); err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	if w.Device.Port != "" {
		c.Device.Port = sql.Null[string]{V: w.Device.Port, Valid: true}
	}
	if w.Device.Simulate {
		c.Device.Simulate = sql.Null[bool]{V: true, Valid: true}
	}

	c.Reader.Chip = intPtrNull(w.Reader.Chip)
	c.Reader.D0Pin = intPtrNull(w.Reader.D0Pin)
	c.Reader.D1Pin = intPtrNull(w.Reader.D1Pin)
	var err error
	if c.Reader.Gap, err = durStrNull(w.Reader.Gap, "reader gap"); err != nil {
		return err
	}
	if c.Reader.Cooldown, err = durStrNull(w.Reader.Cooldown, "reader cooldown"); err != nil {
		return err
	}

	c.Transmitter.D0Pin = intPtrNull(w.Transmitter.D0Pin)
	c.Transmitter.D1Pin = intPtrNull(w.Transmitter.D1Pin)
	if c.Transmitter.Pulse, err = durStrNull(w.Transmitter.Pulse, "transmitter pulse"); err != nil {
		return err
	}
	if c.Transmitter.Space, err = durStrNull(w.Transmitter.Space, "transmitter space"); err != nil {
		return err
	}
	if w.Transmitter.ActiveHigh != nil {
		c.Transmitter.ActiveHigh = sql.Null[bool]{V: *w.Transmitter.ActiveHigh, Valid: true}
	}
	if w.Transmitter.Parity {
		c.Transmitter.Parity = sql.Null[bool]{V: true, Valid: true}
	}

	c.LED.Pixels = intPtrNull(w.LED.Pixels)
	if w.LED.Brightness > 0 {
		c.LED.Brightness = sql.Null[float64]{V: w.LED.Brightness, Valid: true}
	}
	c.LED.RedPin = intPtrNull(w.LED.RedPin)
	c.LED.GreenPin = intPtrNull(w.LED.GreenPin)
	if c.LED.Flash, err = durStrNull(w.LED.Flash, "LED flash"); err != nil {
		return err
	}

	c.Button.Pin = intPtrNull(w.Button.Pin)
	if c.Button.Debounce, err = durStrNull(w.Button.Debounce, "button debounce"); err != nil {
		return err
	}

	if w.Server.Address != "" {
		c.Server.Address = sql.Null[string]{V: w.Server.Address, Valid: true}
	}

	if w.Service.User != "" {
		c.Service.User = sql.Null[string]{V: w.Service.User, Valid: true}
	}
	if w.Service.Group != "" {
		c.Service.Group = sql.Null[string]{V: w.Service.Group, Valid: true}
	}
	if w.Service.WorkingDirectory != "" {
		c.Service.WorkingDirectory = sql.Null[string]{V: w.Service.WorkingDirectory, Valid: true}
	}
	if c.Service.StartDelay, err = durStrNull(w.Service.StartDelay, "service start delay"); err != nil {
		return err
	}
	if c.Service.RestartDelay, err = durStrNull(w.Service.RestartDelay, "service restart delay"); err != nil {
		return err
	}
	c.Service.SupplementaryGroups = w.Service.SupplementaryGroups

	return nil
}

// SetDefaults sets default configuration values if they weren't set already.
func (c *Config) SetDefaults() {
	setNull(&c.Reader.Chip, 0)
	setNull(&c.Reader.D0Pin, 17)
	setNull(&c.Reader.D1Pin, 27)
	setNull(&c.Reader.Gap, 30*time.Millisecond)
	setNull(&c.Reader.Cooldown, 2*time.Second)

	setNull(&c.Transmitter.D0Pin, 22)
	setNull(&c.Transmitter.D1Pin, 23)
	setNull(&c.Transmitter.Pulse, 80*time.Microsecond)
	setNull(&c.Transmitter.Space, 2*time.Millisecond)
	setNull(&c.Transmitter.ActiveHigh, true)
	setNull(&c.Transmitter.Parity, false)

	setNull(&c.LED.Pixels, 19)
	setNull(&c.LED.Brightness, 0.6)
	setNull(&c.LED.RedPin, 5)
	setNull(&c.LED.GreenPin, 6)
	setNull(&c.LED.Flash, 3*time.Second)

	setNull(&c.Button.Pin, 16)
	setNull(&c.Button.Debounce, 200*time.Millisecond)

	setNull(&c.Server.Address, "127.0.0.1:8087")

	setNull(&c.Service.User, "pi")
	setNull(&c.Service.Group, "pi")
	setNull(&c.Service.StartDelay, 10*time.Second)
	setNull(&c.Service.RestartDelay, 3*time.Second)
	if c.Service.SupplementaryGroups == nil {
		c.Service.SupplementaryGroups = []string{"gpio"}
	}
}

func setNull[T any](v *sql.Null[T], def T) {
	if !v.Valid {
		*v = sql.Null[T]{V: def, Valid: true}
	}
}

func nullIntPtr(v sql.Null[int]) *int {
	if !v.Valid {
		return nil
	}
	return &v.V
}

func intPtrNull(v *int) sql.Null[int] {
	if v == nil {
		return sql.Null[int]{}
	}
	return sql.Null[int]{V: *v, Valid: true}
}

func nullDurStr(v sql.Null[time.Duration]) string {
	if !v.Valid {
		return ""
	}
	return v.V.String()
}

func durStrNull(s, name string) (sql.Null[time.Duration], error) {
	if s == "" {
		return sql.Null[time.Duration]{}, nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return sql.Null[time.Duration]{}, fmt.Errorf("failed parsing %s: %w", name, err)
	}
	return sql.Null[time.Duration]{V: dur, Valid: true}, nil
}
